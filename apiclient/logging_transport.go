package apiclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const headerRequestID = "X-Request-Id"

// loggingTransport stamps outgoing requests with a request id and user agent and
// writes one log line per round trip. Payloads and credentials are never logged.
type loggingTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rid := req.Header.Get(headerRequestID)
	if rid == "" {
		rid = uuid.NewString()
	}

	out := req.Clone(req.Context())
	out.Header.Set(headerRequestID, rid)
	if out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(out)
	dur := time.Since(start)

	if err != nil {
		log.Err(err).
			Str("request_id", rid).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("dur", dur).
			Msg("api")
		return nil, err
	}

	log.Debug().
		Str("request_id", rid).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("dur", dur).
		Msg("api")
	return resp, nil
}
