package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jrsteele09/go-site-settings/apiclient"
	"github.com/jrsteele09/go-site-settings/token"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session tokens",
	Long: `Log in to the content API and store the returned tokens in the token file.

The password is prompted for when --password is omitted. Passing it as a flag
leaves it in shell history.

Example:
  siteadmin login --username admin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		password := loginPassword
		if password == "" {
			if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}

		tokens, err := a.client.Login(cmd.Context(), token.Credentials{
			Username: strings.TrimSpace(loginUsername),
			Password: password,
		})
		if err != nil {
			return errors.New(apiclient.MessageFrom(err, "Login failed"))
		}
		if err := a.session.Login(tokens); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as user %d\n", tokens.UserID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(loginCmd)
}

// readPassword reads without echo from a terminal, or one line from any other input.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
