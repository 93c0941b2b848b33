package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-site-settings/apiclient/cmsfake"
	"github.com/jrsteele09/go-site-settings/internal/config"
	"github.com/jrsteele09/go-site-settings/token"
	"github.com/jrsteele09/go-site-settings/token/tokenfake"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

func setupCLI(t *testing.T) []string {
	t.Helper()

	cms := cmsfake.New("My Site")
	t.Cleanup(cms.Close)

	dir := t.TempDir()
	t.Setenv("ENV", "TEST")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TOKEN_STORE_KEY", "")
	t.Setenv(config.BaseURLEnvVar, cms.URL)
	t.Setenv(config.FolderEnvVar, dir)

	return []string{"--base-url", cms.URL, "--data", dir}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	loginUsername, loginPassword = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "login", "logout", "status", "refresh", "title", "version"} {
		require.True(t, names[want], "command %q not registered", want)
	}
}

func TestSessionLifecycle(t *testing.T) {
	flags := setupCLI(t)

	out, err := execute(t, "", append([]string{"login", "--username", cmsfake.Username, "--password", cmsfake.Password}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as user 7")

	out, err = execute(t, "", append([]string{"status"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Authenticated: yes")
	require.Contains(t, out, "User ID:       7")
	require.Contains(t, out, "Access token:  valid")

	out, err = execute(t, "", append([]string{"title", "get"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Current Title: My Site")

	out, err = execute(t, "", append([]string{"title", "set", "Brand", "New"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Title updated successfully!")
	require.Contains(t, out, "Current Title: Brand New")

	out, err = execute(t, "", append([]string{"refresh"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Access token refreshed")

	out, err = execute(t, "", append([]string{"logout"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	out, err = execute(t, "", append([]string{"status"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Authenticated: no")
}

func TestExpiredAccessToken(t *testing.T) {
	setupExpired := func(t *testing.T) ([]string, *tokenstore.FileStore, string) {
		flags := setupCLI(t)
		_, err := execute(t, "", append([]string{"login", "-u", cmsfake.Username, "-p", cmsfake.Password}, flags...)...)
		require.NoError(t, err)

		store := tokenstore.NewFileStore(config.New().GetTokenFile(), "")
		refresh := tokenfake.Mint(time.Now().Add(24 * time.Hour))
		require.NoError(t, store.Save(tokenstore.Tokens{AccessToken: tokenfake.Expired(), RefreshToken: refresh, UserID: "7"}))
		return flags, store, refresh
	}

	t.Run("StatusKeepsTokens", func(t *testing.T) {
		flags, store, refresh := setupExpired(t)

		out, err := execute(t, "", append([]string{"status"}, flags...)...)
		require.NoError(t, err)
		require.Contains(t, out, "refreshed on next request")
		require.Contains(t, out, "Access token:  expired")

		stored, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, refresh, stored.RefreshToken)
	})

	t.Run("RefreshCommand", func(t *testing.T) {
		flags, store, _ := setupExpired(t)

		out, err := execute(t, "", append([]string{"refresh"}, flags...)...)
		require.NoError(t, err)
		require.Contains(t, out, "Access token refreshed")

		stored, err := store.Load()
		require.NoError(t, err)
		require.False(t, token.IsExpired(stored.AccessToken))
		require.Equal(t, "7", stored.UserID)
	})

	t.Run("TitleGetRefreshesFirst", func(t *testing.T) {
		flags, store, _ := setupExpired(t)

		out, err := execute(t, "", append([]string{"title", "get"}, flags...)...)
		require.NoError(t, err)
		require.Contains(t, out, "Current Title: My Site")

		stored, err := store.Load()
		require.NoError(t, err)
		require.False(t, token.IsExpired(stored.AccessToken))
	})
}

func TestLoginCommand(t *testing.T) {
	t.Run("PasswordFromStdin", func(t *testing.T) {
		flags := setupCLI(t)

		out, err := execute(t, cmsfake.Password+"\n", append([]string{"login", "-u", cmsfake.Username}, flags...)...)
		require.NoError(t, err)
		require.Contains(t, out, "Logged in as user 7")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		flags := setupCLI(t)

		_, err := execute(t, "", append([]string{"login", "-u", cmsfake.Username, "-p", "nope"}, flags...)...)
		require.EqualError(t, err, "Invalid username or password")
	})
}

func TestTitleCommand(t *testing.T) {
	t.Run("NotLoggedIn", func(t *testing.T) {
		flags := setupCLI(t)

		_, err := execute(t, "", append([]string{"title", "get"}, flags...)...)
		require.EqualError(t, err, "You are not currently logged in.")
	})

	t.Run("SetRequiresTitle", func(t *testing.T) {
		flags := setupCLI(t)

		_, err := execute(t, "", append([]string{"title", "set", "  "}, flags...)...)
		require.Error(t, err)
	})
}
