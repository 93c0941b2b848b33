// Package cmsfake is an in-process stand-in for the content API used in tests.
package cmsfake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-site-settings/token/tokenfake"
)

const (
	Username = "admin"
	Password = "password123"
	UserID   = int64(7)
)

// Request records what the fake saw for one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

// Server is a fake content API. Its behaviour is tuned with the Set* methods.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	title    string

	refreshStatus     int
	refreshDelay      time.Duration
	forbiddenSettings int
	settingsStatus    int
	settingsMessage   string
	rejectToken       string
	logoutStatus      int
}

// New starts a fake content API. Close it when the test ends.
func New(title string) *Server {
	s := &Server{title: title}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cja/v1/login", s.handle(s.login))
	mux.HandleFunc("POST /cja/v1/refresh", s.handle(s.refresh))
	mux.HandleFunc("POST /cja/v1/logout", s.handle(s.logout))
	mux.HandleFunc("GET /wp/v2/settings", s.handle(s.settings))
	mux.HandleFunc("POST /wp/v2/settings", s.handle(s.settings))
	s.Server = httptest.NewServer(mux)
	return s
}

// SetRefreshStatus makes the refresh endpoint answer with status (0 = normal).
func (s *Server) SetRefreshStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// SetRefreshDelay holds each refresh response back by d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// SetForbiddenSettings makes the next n settings calls answer 403.
func (s *Server) SetForbiddenSettings(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forbiddenSettings = n
}

// SetSettingsError makes every authorised settings call fail (status 0 = normal).
func (s *Server) SetSettingsError(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsStatus = status
	s.settingsMessage = message
}

// SetRejectToken answers 403 to settings calls carrying this bearer token.
func (s *Server) SetRejectToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectToken = tok
}

// SetLogoutStatus makes the logout endpoint answer with status (0 = normal).
func (s *Server) SetLogoutStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutStatus = status
}

// Requests returns every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls returns the recorded calls to one path.
func (s *Server) Calls(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Title returns the stored site title.
func (s *Server) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Server) handle(fn func(http.ResponseWriter, *http.Request, Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		}
		_ = json.NewDecoder(r.Body).Decode(&req.Body)

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		fn(w, r, req)
	}
}

func (s *Server) login(w http.ResponseWriter, _ *http.Request, req Request) {
	if req.Body["username"] != Username || req.Body["password"] != Password {
		writeJSON(w, http.StatusForbidden, map[string]any{"code": "invalid_credentials", "message": "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":       tokenfake.Valid(),
		"refresh_token":      tokenfake.Mint(time.Now().Add(24 * time.Hour)),
		"access_expires_in":  3600,
		"refresh_expires_in": 86400,
		"user_id":            UserID,
	})
}

func (s *Server) refresh(w http.ResponseWriter, _ *http.Request, req Request) {
	s.mu.Lock()
	status, delay := s.refreshStatus, s.refreshDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 && status != http.StatusOK {
		writeJSON(w, status, map[string]any{"code": "refresh_failed", "message": "Refresh failed"})
		return
	}
	if rt, _ := req.Body["refresh_token"].(string); rt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "missing_refresh_token", "message": "refresh_token is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  tokenfake.Valid(),
		"refresh_token": tokenfake.Mint(time.Now().Add(24 * time.Hour)),
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request, _ Request) {
	s.mu.Lock()
	status := s.logoutStatus
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"code": "logout_failed", "message": "Logout failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request, req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	forbidden := s.forbiddenSettings > 0
	if forbidden {
		s.forbiddenSettings--
	}
	if s.rejectToken != "" && req.Authorization == "Bearer "+s.rejectToken {
		forbidden = true
	}

	switch {
	case forbidden:
		writeJSON(w, http.StatusForbidden, map[string]any{"code": "rest_forbidden", "message": "Sorry, you are not allowed to do that."})
		return
	case !strings.HasPrefix(req.Authorization, "Bearer "):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "rest_not_logged_in", "message": "You are not currently logged in."})
		return
	case s.settingsStatus != 0:
		writeJSON(w, s.settingsStatus, map[string]any{"code": "rest_error", "message": s.settingsMessage})
		return
	}

	if r.Method == http.MethodPost {
		if title, ok := req.Body["title"].(string); ok {
			s.title = title
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": s.title, "description": "Just another site"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
