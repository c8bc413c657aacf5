package cmd

import (
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/spf13/cobra"
)

// configKeys are the settings shown by config show
var configKeys = []string{
	"api.base_url", "api.timeout", "api.page_size", "live.url",
	"output.format", "log.level", "log.file",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([][]string, 0, len(configKeys)+2)
		for _, k := range configKeys {
			rows = append(rows, []string{k, config.GetString(k)})
		}
		rows = append(rows,
			[]string{"config file", config.GetConfigFilePath()},
			[]string{"credentials", config.GetCredentialsPath()},
		)
		return output.New().Table([]string{"Key", "Value"}, rows)
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change a setting in the config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: configKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return err
		}
		output.New().Success("%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
