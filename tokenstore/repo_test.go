package tokenstore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
	"github.com/jrsteele09/go-site-settings/tokenstore"
	"github.com/stretchr/testify/require"
)

var sampleTokens = tokenstore.Tokens{
	AccessToken:  "access-1",
	RefreshToken: "refresh-1",
	UserID:       "7",
}

func testStoreContract(t *testing.T, store tokenstore.Store) {
	t.Helper()

	loaded, err := store.Load()
	require.NoError(t, err)
	require.True(t, loaded.IsEmpty())

	require.NoError(t, store.Save(sampleTokens))
	loaded, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, sampleTokens, loaded)
	require.Equal(t, "access-1", loaded.Get(tokenstore.KeyAccessToken))
	require.Equal(t, "refresh-1", loaded.Get(tokenstore.KeyRefreshToken))
	require.Equal(t, "7", loaded.Get(tokenstore.KeyUserID))

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	require.True(t, loaded.IsEmpty())

	// Clearing twice is not an error
	require.NoError(t, store.Clear())
}

func TestInMemoryStore(t *testing.T) {
	testStoreContract(t, tokenstore.NewInMemoryStore())
}

func TestFileStore_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := tokenstore.NewFileStore(path, "")
	testStoreContract(t, store)

	t.Run("persists across instances", func(t *testing.T) {
		require.NoError(t, store.Save(sampleTokens))

		reopened := tokenstore.NewFileStore(path, "")
		loaded, err := reopened.Load()
		require.NoError(t, err)
		require.Equal(t, sampleTokens, loaded)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(raw), `"access_token": "access-1"`)

		info, err := os.Stat(path)
		require.NoError(t, err)
		if runtime.GOOS == "windows" {
			return
		}
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("no temp file left behind", func(t *testing.T) {
		_, err := os.Stat(path + ".tmp")
		require.True(t, os.IsNotExist(err))
	})
}

func TestFileStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := tokenstore.NewFileStore(path, "correct horse")
	require.True(t, store.Encrypted())
	testStoreContract(t, store)

	require.NoError(t, store.Save(sampleTokens))

	t.Run("ciphertext does not reveal tokens", func(t *testing.T) {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotContains(t, string(raw), "access-1")
		require.Contains(t, string(raw), `"ciphertext"`)
	})

	t.Run("same key decrypts", func(t *testing.T) {
		loaded, err := tokenstore.NewFileStore(path, "correct horse").Load()
		require.NoError(t, err)
		require.Equal(t, sampleTokens, loaded)
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := tokenstore.NewFileStore(path, "battery staple").Load()
		require.Error(t, err)
		require.True(t, apperrors.Is(err, apperrors.ErrStoreLocked))
	})

	t.Run("no key", func(t *testing.T) {
		_, err := tokenstore.NewFileStore(path, "").Load()
		require.Error(t, err)
		require.True(t, apperrors.Is(err, apperrors.ErrStoreLocked))
	})
}

func TestFileStore_PlainFileReadWithKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, tokenstore.NewFileStore(path, "").Save(sampleTokens))

	// A key configured after the fact still reads the existing plain file
	loaded, err := tokenstore.NewFileStore(path, "new key").Load()
	require.NoError(t, err)
	require.Equal(t, sampleTokens, loaded)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := tokenstore.NewFileStore(path, "").Load()
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrStoreCorrupt))
}
