package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	BaseURLEnvVar              = "BASE_URL"
	requestTimeoutVar          = "REQUEST_TIMEOUT"
	proceedOnRefreshFailureVar = "PROCEED_ON_REFRESH_FAILURE"

	DefaultBaseURL        = "http://localhost/simorq/wp-json"
	DefaultRequestTimeout = 15 * time.Second
)

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the root of the content API (e.g. "https://example.com/wp-json")
// without a trailing slash.
func (API) GetBaseURL() string {
	return strings.TrimRight(GetEnv(BaseURLEnvVar, DefaultBaseURL), "/")
}

func (API) GetRequestTimeout() time.Duration {
	raw := GetEnv(requestTimeoutVar, "")
	if raw == "" {
		return DefaultRequestTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("value", raw).Msg("Invalid " + requestTimeoutVar + ", using default")
		return DefaultRequestTimeout
	}
	return d
}

// GetProceedOnRefreshFailure reports whether a request whose proactive refresh failed
// is still sent without credentials instead of being aborted.
func (API) GetProceedOnRefreshFailure() bool {
	v, err := strconv.ParseBool(GetEnv(proceedOnRefreshFailureVar, "false"))
	return err == nil && v
}
