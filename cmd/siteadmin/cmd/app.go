package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-site-settings/apiclient"
	"github.com/jrsteele09/go-site-settings/internal/config"
	"github.com/jrsteele09/go-site-settings/sessions"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

// app wires the components every command shares.
type app struct {
	cfg     config.Config
	store   *tokenstore.FileStore
	session *sessions.Session
	client  *apiclient.Client
}

// newApp builds the shared components. When hint is non-nil, a session ended by
// the client also prints a re-login hint there.
func newApp(hint io.Writer) (*app, error) {
	cfg := config.New()
	setupLogging(cfg)

	store := tokenstore.NewFileStore(cfg.GetTokenFile(), cfg.GetTokenStoreKey())
	session := sessions.New(store)

	var navigator apiclient.Navigator = session
	if hint != nil {
		navigator = apiclient.NavigatorFunc(func() {
			session.Expire()
			fmt.Fprintln(hint, "Session expired. Please login again: siteadmin login --username <user>")
		})
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:                 cfg.GetBaseURL(),
		Store:                   store,
		Navigator:               navigator,
		Timeout:                 cfg.GetRequestTimeout(),
		UserAgent:               "siteadmin/" + Version,
		ProceedOnRefreshFailure: cfg.GetProceedOnRefreshFailure(),
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, session: session, client: client}, nil
}

// restore picks up the persisted session for a long running view. One-shot
// commands skip it and let the client refresh the stored tokens as needed.
func (a *app) restore() {
	if err := a.session.Restore(); err != nil {
		log.Warn().Err(err).Str("file", a.store.Path()).Msg("Could not restore session")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetEnv() == config.EnvDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
