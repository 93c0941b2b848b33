package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-site-settings/sessions"
	"github.com/jrsteele09/go-site-settings/token"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		storage := "plain"
		if a.store.Encrypted() {
			storage = "encrypted"
		}
		fmt.Fprintf(out, "API:           %s\n", a.client.BaseURL())
		fmt.Fprintf(out, "Token file:    %s (%s)\n", a.store.Path(), storage)

		tokens, err := a.store.Load()
		if err != nil {
			return err
		}
		if tokens.IsEmpty() {
			fmt.Fprintln(out, "Authenticated: no")
			return nil
		}

		st := sessions.StateOf(tokens)
		switch {
		case st.Authenticated:
			fmt.Fprintln(out, "Authenticated: yes")
			fmt.Fprintf(out, "User ID:       %d\n", st.UserID)
		case tokens.RefreshToken != "" && !token.IsExpired(tokens.RefreshToken):
			fmt.Fprintln(out, "Authenticated: no (refreshed on next request)")
		default:
			fmt.Fprintln(out, "Authenticated: no")
		}

		for _, row := range []struct{ label, key string }{
			{"Access token:  ", tokenstore.KeyAccessToken},
			{"Refresh token: ", tokenstore.KeyRefreshToken},
		} {
			printExpiry(out, row.label, tokens.Get(row.key))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printExpiry(out io.Writer, label, raw string) {
	if raw == "" {
		fmt.Fprintf(out, "%snone\n", label)
		return
	}
	exp, err := token.ExpiresAt(raw)
	if err != nil {
		fmt.Fprintf(out, "%sunreadable (%v)\n", label, err)
		return
	}
	state := "valid"
	if token.IsExpired(raw) {
		state = "expired"
	}
	fmt.Fprintf(out, "%s%s, expires %s\n", label, state, exp.Local().Format(time.RFC1123))
}
