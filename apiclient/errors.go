package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
)

// APIError is a non-2xx response from the content API.
// Code and Message come from the WordPress error body {"code": "...", "message": "..."}.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	return apiErr
}

// MessageFrom returns the message carried by an API error body, or fallback
// when err has none.
func MessageFrom(err error, fallback string) string {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsSessionEnded reports whether err means the client dropped the session.
func IsSessionEnded(err error) bool {
	return apperrors.Is(err, apperrors.ErrSessionExpired) || apperrors.Is(err, apperrors.ErrRefreshFailed)
}
