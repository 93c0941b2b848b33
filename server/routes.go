package server

import (
	"fmt"
	"net/http"
	"strings"
)

func (s *Server) initRoutes() error {
	loginPage, err := s.LoginPageUIHandler()
	if err != nil {
		return err
	}
	loginSubmit, err := s.LoginSubmissionHandler()
	if err != nil {
		return err
	}
	settingsPage, err := s.SettingsPageHandler()
	if err != nil {
		return err
	}
	settingsSubmit, err := s.SettingsSubmissionHandler()
	if err != nil {
		return err
	}

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(loginPage, s.HTMLMiddleWare(s.RouteGuard)...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(loginSubmit, s.HTMLMiddleWare(s.RouteGuard)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.RouteGuard)...))

	// SETTINGS
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(settingsPage, s.HTMLMiddleWare(s.RouteGuard)...))
	s.RegisterRouteHandler("POST "+RouteSettings, ChainMiddleware(settingsSubmit, s.HTMLMiddleWare(s.RouteGuard)...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	return nil
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func handlerError(page string, err error) error {
	return fmt.Errorf("failed to parse %s template: %w", page, err)
}
