package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-site-settings/apiclient"
)

const (
	msgTitleRequired = "Title is required"
	msgTitleUpdated  = "Title updated successfully!"
	msgFetchFailed   = "Failed to fetch title"
	msgUpdateFailed  = "Update failed"
)

// SettingsPageData contains data for rendering the settings page
type SettingsPageData struct {
	AppName      string
	PageTitle    string
	UserID       int64
	CurrentTitle string
	Title        string // form value
	Success      string
	Error        string
}

// SettingsPageHandler shows the current site title (GET /settings)
func (s *Server) SettingsPageHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("settings.html")
	if err != nil {
		return nil, handlerError("settings", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		title, err := s.client.GetSiteTitle(r.Context())
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			log.Err(err).Msg("Failed to fetch site title")
			s.renderSettings(w, tmpl, SettingsPageData{Error: apiclient.MessageFrom(err, msgFetchFailed)})
			return
		}
		s.renderSettings(w, tmpl, SettingsPageData{CurrentTitle: title, Title: title})
	}, nil
}

// SettingsSubmissionHandler updates the site title (POST /settings)
func (s *Server) SettingsSubmissionHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("settings.html")
	if err != nil {
		return nil, handlerError("settings", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			data := SettingsPageData{Error: msgTitleRequired}
			if current, err := s.client.GetSiteTitle(r.Context()); err == nil {
				data.CurrentTitle = current
			} else if s.sessionEnded(w, r, err) {
				return
			}
			s.renderSettings(w, tmpl, data)
			return
		}

		saved, err := s.client.UpdateSiteTitle(r.Context(), title)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			log.Err(err).Int("status", apiclient.StatusCode(err)).Msg("Failed to update site title")
			s.renderSettings(w, tmpl, SettingsPageData{Title: title, Error: apiclient.MessageFrom(err, msgUpdateFailed)})
			return
		}

		log.Info().Int64("user_id", s.session.UserID()).Msg("Site title updated")
		s.renderSettings(w, tmpl, SettingsPageData{
			CurrentTitle: saved.Title,
			Title:        saved.Title,
			Success:      msgTitleUpdated,
		})
	}, nil
}

// sessionEnded sends the user back to the login page when the API client gave up
// on the session. It reports whether it did.
func (s *Server) sessionEnded(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsSessionEnded(err) {
		return false
	}
	if s.session.IsAuthenticated() {
		s.session.Expire()
	}
	redirectWithError(w, r, RouteLogin, msgSessionExpired)
	return true
}

func (s *Server) renderSettings(w http.ResponseWriter, tmpl *template.Template, data SettingsPageData) {
	data.AppName = s.appName
	data.PageTitle = "Settings"
	data.UserID = s.session.UserID()

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.ExecuteTemplate(w, layoutTemplate, data); err != nil {
		log.Err(err).Msg("Failed to render settings template")
		http.Error(w, "Failed to render settings page", http.StatusInternalServerError)
	}
}
