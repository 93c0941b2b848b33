package config

import "path/filepath"

const (
	tokenStoreKeyVar = "TOKEN_STORE_KEY"
	tokenFileName    = "tokens.json"
)

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetTokenFile() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), tokenFileName)
}

// GetTokenStoreKey returns the passphrase used to encrypt the token file.
// An empty key leaves the file in plain JSON.
func (Store) GetTokenStoreKey() string {
	return GetEnv(tokenStoreKeyVar, "")
}
