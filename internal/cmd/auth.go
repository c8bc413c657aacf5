package cmd

import (
	"context"

	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/prompter"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var loginEmail string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to SocialHub and manage the stored session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to SocialHub",
	Long:  "Authenticate with email and password. The token is stored in the config directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		p := prompter.Stdio()
		email := loginEmail
		if email == "" {
			if email, err = p.String("Email: "); err != nil {
				return err
			}
		}
		password, err := p.Password("Password: ")
		if err != nil {
			return err
		}
		if email == "" || password == "" {
			return clierrors.ValidationError("credentials", "email and password are required")
		}

		creds, err := s.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		name := creds.Username
		if name == "" {
			name = creds.Email
		}
		output.New().Success("Logged in as %s", name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from SocialHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.Logout(cmd.Context()); err != nil {
			return err
		}
		output.New().Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the current user",
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		rec, err := s.Auth.Me(ctx)
		if err != nil {
			return err
		}
		return p.Record("Signed in as", rec, append([]string{"id", "email"}, formatter.ProfileFields...)...)
	}),
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
}
