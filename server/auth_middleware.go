package server

import (
	"net/http"
)

// RouteGuard keeps page requests on the view that matches the session state:
// unauthenticated requests go to the login page, and an authenticated user who
// asks for the login page is sent to the settings page.
func (s *Server) RouteGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onLogin := r.URL.Path == RouteLogin
		authenticated := s.session.IsAuthenticated()

		switch {
		case !authenticated && !onLogin:
			redirectSuccess(w, r, RouteLogin)
			return
		case authenticated && onLogin:
			redirectSuccess(w, r, RouteSettings)
			return
		}
		next(w, r)
	}
}
