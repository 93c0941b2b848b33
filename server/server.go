package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-site-settings/apiclient"
	"github.com/jrsteele09/go-site-settings/internal/config"
	"github.com/jrsteele09/go-site-settings/sessions"
)

// Server is the controller of the local front-end. It owns the session and the
// API client and renders the login and settings pages.
type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	appName string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	session *sessions.Session
	client  *apiclient.Client

	unsubscribe func()
}

func New(config config.Config, session *sessions.Session, client *apiclient.Client) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("[Server New] session is required")
	}
	if client == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}

	s := &Server{
		env:     config.GetEnv(),
		appName: config.GetAppName(),
		mux:     http.NewServeMux(),
		config:  config,
		session: session,
		client:  client,
	}

	s.unsubscribe = session.Subscribe(func(st sessions.State) {
		if st.Authenticated {
			log.Info().Int64("user_id", st.UserID).Msg("Session started")
			return
		}
		log.Info().Msg("Session ended")
	})

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops listening to session changes.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDev {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", displayMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", displayMethod(method), path, Red+error+ResetColor)
}

func displayMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
