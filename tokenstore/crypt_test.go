package tokenstore

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_DerivesKeyOnce(t *testing.T) {
	var derivations atomic.Int32
	original := deriveKey
	deriveKey = func(passphrase string, salt []byte) *[keyLength]byte {
		derivations.Add(1)
		return original(passphrase, salt)
	}
	t.Cleanup(func() { deriveKey = original })

	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path, "correct horse")
	tokens := Tokens{AccessToken: "a", RefreshToken: "r", UserID: "7"}

	require.NoError(t, store.Save(tokens))
	for i := 0; i < 5; i++ {
		loaded, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, tokens, loaded)
	}
	require.NoError(t, store.Save(Tokens{AccessToken: "b", RefreshToken: "r", UserID: "7"}))
	require.EqualValues(t, 1, derivations.Load())

	// A file written by another instance carries its own salt
	other := NewFileStore(path, "correct horse")
	require.NoError(t, other.Save(tokens))
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, tokens, loaded)
	require.EqualValues(t, 3, derivations.Load())
}
