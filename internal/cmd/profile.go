package cmd

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var profileUpdate api.ProfileUpdate

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit profiles",
}

var profileViewCmd = &cobra.Command{
	Use:   "view [user-id]",
	Short: "View a profile (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		userID := s.Principal()
		if len(args) == 1 {
			userID = args[0]
		}
		rec, err := s.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		title := "Profile"
		if author := formatter.Author(rec); author != "" {
			title += " " + author
		}
		return p.Record(title, rec, formatter.ProfileFields...)
	}),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Long:  "Edit your profile. Only the flags you pass are changed.",
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		if _, ok := s.Profiles.Cached(s.Principal()); !ok {
			if _, err := s.Profiles.Get(ctx, s.Principal()); err != nil {
				return err
			}
		}
		rec, err := s.Profiles.Update(ctx, profileUpdate)
		if err != nil {
			return err
		}
		p.Success("Profile updated")
		return p.Record("", rec, formatter.ProfileFields...)
	}),
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileUpdate.DisplayName, "display-name", "", "Display name")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Bio, "bio", "", "Bio")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Location, "location", "", "Location")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Website, "website", "", "Website")

	profileCmd.AddCommand(profileViewCmd)
	profileCmd.AddCommand(profileUpdateCmd)
}
