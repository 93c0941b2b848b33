package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetHost() string
	GetPort() string
	GetAddr() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

// APIConfig describes how the remote content API is reached.
type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetProceedOnRefreshFailure() bool
}

// StoreConfig describes where the session tokens are persisted.
type StoreConfig interface {
	GetTokenFile() string
	GetTokenStoreKey() string
}

type mainConfig struct {
	EnvVars
	API
	Store
}

func New() Config {
	return mainConfig{}
}
