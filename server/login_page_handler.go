package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-site-settings/apiclient"
	"github.com/jrsteele09/go-site-settings/token"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgLoginFailed         = "Login failed"
	msgSessionExpired      = "Session expired. Please login again."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName   string
	PageTitle string
	Error     string
	Username  string // Preserve username on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() (http.HandlerFunc, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, handlerError("login", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderLogin(w, loginTmpl, LoginPageData{
			Error:    r.URL.Query().Get("error"),
			Username: r.URL.Query().Get("username"),
		})
	}, nil
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() (http.HandlerFunc, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, handlerError("login", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := token.Credentials{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
		}
		if creds.Username == "" || creds.Password == "" {
			s.renderLogin(w, loginTmpl, LoginPageData{Error: msgCredentialsRequired, Username: creds.Username})
			return
		}

		tokens, err := s.client.Login(r.Context(), creds)
		if err != nil {
			log.Warn().Err(err).Int("status", apiclient.StatusCode(err)).Msg("Login rejected")
			s.renderLogin(w, loginTmpl, LoginPageData{
				Error:    apiclient.MessageFrom(err, msgLoginFailed),
				Username: creds.Username,
			})
			return
		}

		if err := s.session.Login(tokens); err != nil {
			log.Err(err).Msg("Failed to store session tokens")
			s.renderLogin(w, loginTmpl, LoginPageData{Error: msgLoginFailed, Username: creds.Username})
			return
		}

		redirectSuccess(w, r, RouteSettings)
	}, nil
}

// LogoutHandler revokes the refresh token and ends the local session (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.client.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to revoke refresh token")
		}
		if err := s.session.Logout(); err != nil {
			log.Err(err).Msg("Logout: failed to clear session")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, tmpl *template.Template, data LoginPageData) {
	data.AppName = s.appName
	data.PageTitle = "Login"

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.ExecuteTemplate(w, layoutTemplate, data); err != nil {
		log.Err(err).Msg("Failed to render login template")
		http.Error(w, "Failed to render login page", http.StatusInternalServerError)
	}
}
