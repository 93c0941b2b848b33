package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-site-settings/tokenstore"
)

// Content API routes, relative to the base URL
const (
	PathLogin    = "/cja/v1/login"
	PathRefresh  = "/cja/v1/refresh"
	PathLogout   = "/cja/v1/logout"
	PathSettings = "/wp/v2/settings"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "go-site-settings"
	maxResponseBytes = 1 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Store     tokenstore.Store
	Navigator Navigator
	Timeout   time.Duration
	UserAgent string

	// ProceedOnRefreshFailure sends a request without credentials when its
	// proactive refresh failed, instead of aborting it with ErrRefreshFailed.
	ProceedOnRefreshFailure bool

	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client talks to the content API on behalf of the single local session.
// Requests made through it carry the stored bearer token and refresh it when needed.
type Client struct {
	baseURL   string
	store     tokenstore.Store
	navigator Navigator

	api     *http.Client // bearer token, proactive and reactive refresh
	raw     *http.Client // login and refresh calls, no interception
	timeout time.Duration

	proceedOnRefreshFailure bool
	refreshGroup            singleflight.Group
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("[apiclient New] base URL is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("[apiclient New] token store is required")
	}
	if opts.Navigator == nil {
		opts.Navigator = noopNavigator{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	c := &Client{
		baseURL:                 strings.TrimRight(opts.BaseURL, "/"),
		store:                   opts.Store,
		navigator:               opts.Navigator,
		timeout:                 opts.Timeout,
		proceedOnRefreshFailure: opts.ProceedOnRefreshFailure,
	}

	logged := &loggingTransport{next: opts.Transport, userAgent: opts.UserAgent}
	c.raw = &http.Client{Transport: logged, Timeout: opts.Timeout}
	c.api = &http.Client{Transport: &authTransport{client: c, next: logged}, Timeout: opts.Timeout}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
// Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// endSession drops every stored token and tells the navigator.
func (c *Client) endSession(reason string) {
	log.Warn().Str("reason", reason).Msg("Session ended by API client")
	if err := c.store.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear token store")
	}
	c.navigator.RedirectToLogin()
}
