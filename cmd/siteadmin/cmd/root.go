// Package cmd provides the CLI commands for siteadmin.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-site-settings/internal/config"
)

var (
	baseURL    string
	dataFolder string
)

var rootCmd = &cobra.Command{
	Use:   "siteadmin",
	Short: "siteadmin - edit the site title of a WordPress site",
	Long: `siteadmin logs in to a WordPress content API and edits the site title.

It can run as a small local web front-end (siteadmin serve) or be driven
from the command line. Both share one token file in the data folder.

Configuration:
  Settings are read from environment variables (BASE_URL, FOLDER, HOST, PORT,
  TOKEN_STORE_KEY, REQUEST_TIMEOUT, LOG_LEVEL, ENV). The --base-url and --data
  flags override BASE_URL and FOLDER.

Commands:
  serve       Start the local web front-end
  login       Log in and store the session tokens
  logout      Revoke the refresh token and clear the session
  status      Show the stored session
  refresh     Refresh the access token now
  title       Get or set the site title`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyFlagOverrides(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "content API base URL (default: $BASE_URL or "+config.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&dataFolder, "data", "", "folder holding the token file (default: $FOLDER or ./data)")
}

// applyFlagOverrides pushes flag values into the environment so config.New sees them.
func applyFlagOverrides(cmd *cobra.Command) error {
	overrides := map[string]string{
		"base-url": config.BaseURLEnvVar,
		"data":     config.FolderEnvVar,
	}
	for flag, envVar := range overrides {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return err
		}
		if err := os.Setenv(envVar, value); err != nil {
			return fmt.Errorf("set %s: %w", envVar, err)
		}
	}
	return nil
}
