package config

import (
	"net"
	"os"
	"strings"
)

const (
	hostEnvVar     = "HOST"
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	FolderEnvVar   = "FOLDER"
	logLevelEnvVar = "LOG_LEVEL"
	envEnvVar      = "ENV"
)

// EnvDev turns on console logging and route logging.
const EnvDev = "DEV"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetHost defaults to loopback: the front-end serves a single local user.
func (EnvVars) GetHost() string {
	return GetEnv(hostEnvVar, "127.0.0.1")
}

func (EnvVars) GetPort() string {
	return strings.TrimPrefix(GetEnv(portEnvVar, "3000"), ":")
}

func (e EnvVars) GetAddr() string {
	return net.JoinHostPort(e.GetHost(), e.GetPort())
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Site Settings")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(FolderEnvVar, "./data")
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelEnvVar, "info"))
}

func (EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, EnvDev)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
