package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
	"github.com/jrsteele09/go-site-settings/token"
)

// authTransport attaches the stored bearer token to each request.
//
// Before sending, an expired access token is refreshed; if the refresh token is
// missing or expired too the request is aborted without touching the network.
// After sending, a 403 triggers one refresh and one replay of the request. The
// replayed response is returned as is, so a second 403 reaches the caller. When
// that refresh fails the session is ended and the error wraps ErrRefreshFailed.
type authTransport struct {
	client *Client
	next   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.client
	ctx := req.Context()

	tokens, err := c.store.Load()
	if err != nil {
		closeBody(req)
		return nil, fmt.Errorf("[apiclient] load tokens: %w", err)
	}

	accessToken := tokens.AccessToken
	if accessToken != "" && token.IsExpired(accessToken) {
		if tokens.RefreshToken == "" || token.IsExpired(tokens.RefreshToken) {
			closeBody(req)
			c.endSession("refresh token missing or expired")
			return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "refresh token expired, please login again")
		}

		refreshed, err := c.refreshAccessToken(ctx, tokens.RefreshToken)
		switch {
		case err == nil:
			accessToken = refreshed
		case ctx.Err() != nil:
			closeBody(req)
			return nil, ctx.Err()
		case c.proceedOnRefreshFailure:
			c.endSession("proactive refresh failed")
			log.Warn().Str("path", req.URL.Path).Msg("Sending request without credentials after failed refresh")
			accessToken = ""
		default:
			closeBody(req)
			c.endSession("proactive refresh failed")
			return nil, fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
		}
	}

	if err := bufferBody(req); err != nil {
		return nil, err
	}

	resp, err := t.next.RoundTrip(withBearer(req, accessToken))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusForbidden || isRefreshPath(req) {
		return resp, nil
	}

	current, err := c.store.Load()
	if err != nil || current.RefreshToken == "" {
		return resp, nil
	}

	refreshed, err := c.refreshAccessToken(ctx, current.RefreshToken)
	if err != nil {
		drainAndClose(resp)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Err(err).Str("path", req.URL.Path).Msg("Refresh after 403 failed")
		c.endSession("refresh after 403 failed")
		return nil, fmt.Errorf("%w: after %d from %s: %v", apperrors.ErrRefreshFailed, resp.StatusCode, req.URL.Path, err)
	}

	retry, err := withBearerReplay(req, refreshed)
	if err != nil {
		// Without a replayable body the first response is all we have
		log.Err(err).Str("path", req.URL.Path).Msg("Cannot replay request")
		return resp, nil
	}
	drainAndClose(resp)
	return t.next.RoundTrip(retry)
}

// withBearer returns a copy of req carrying the access token, when there is one.
func withBearer(req *http.Request, accessToken string) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(out)
	}
	return out
}

func withBearerReplay(req *http.Request, accessToken string) (*http.Request, error) {
	out := withBearer(req, accessToken)
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body for %s %s cannot be replayed", req.Method, req.URL.Path)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	out.Body = body
	return out, nil
}

// bufferBody makes a one-shot request body replayable.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func isRefreshPath(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, PathRefresh)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
}
