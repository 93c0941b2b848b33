package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-site-settings/apiclient"
	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Get or set the site title",
}

var titleGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current site title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		title, err := a.client.GetSiteTitle(cmd.Context())
		if err != nil {
			return commandError(err, "Failed to fetch title")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Current Title: %s\n", title)
		return nil
	},
}

var titleSetCmd = &cobra.Command{
	Use:   "set <title>",
	Short: "Change the site title",
	Long: `Change the site title. Words are joined with single spaces.

Example:
  siteadmin title set "My New Site"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return apperrors.ErrTitleRequired
		}

		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		saved, err := a.client.UpdateSiteTitle(cmd.Context(), title)
		if err != nil {
			return commandError(err, "Update failed")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Title updated successfully!")
		fmt.Fprintf(cmd.OutOrStdout(), "Current Title: %s\n", saved.Title)
		return nil
	},
}

func init() {
	titleCmd.AddCommand(titleGetCmd, titleSetCmd)
	rootCmd.AddCommand(titleCmd)
}

// commandError turns a client error into the message shown to the user.
func commandError(err error, fallback string) error {
	if apiclient.IsSessionEnded(err) {
		return err
	}
	return errors.New(apiclient.MessageFrom(err, fallback))
}
