package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "socialhub",
	Short: "SocialHub - a social feed in your terminal",
	Long: `socialhub is a command-line client for the SocialHub social network.
Browse feeds, like, bookmark and share posts, join comment threads,
follow people and keep up with notifications.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be text, json or table")
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeSession()
	},
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		closeSession()
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/socialhub/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
