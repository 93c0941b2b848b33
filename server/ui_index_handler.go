package server

import (
	"net/http"
)

// IndexHandler sends the user to the page that matches the session state
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.session.IsAuthenticated() {
			redirectSuccess(w, r, RouteSettings)
			return
		}
		redirectSuccess(w, r, RouteLogin)
	}
}
