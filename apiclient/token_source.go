package apiclient

import (
	"context"

	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
	"github.com/jrsteele09/go-site-settings/token"
)

var _ oauth2.TokenSource = (*Client)(nil)

// Token returns the stored access token, refreshing it first when it has expired.
// It lets callers outside this package reuse the session with oauth2.NewClient.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.TokenContext(context.Background())
}

// TokenContext is Token with a caller supplied context for the refresh call.
func (c *Client) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	tokens, err := c.store.Load()
	if err != nil {
		return nil, apperrors.Wrapf(err, "[apiclient Token] load tokens")
	}
	if tokens.AccessToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	access := tokens.AccessToken
	if token.IsExpired(access) {
		if tokens.RefreshToken == "" || token.IsExpired(tokens.RefreshToken) {
			c.endSession("refresh token missing or expired")
			return nil, apperrors.ErrSessionExpired
		}
		if access, err = c.refreshAccessToken(ctx, tokens.RefreshToken); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.endSession("token source refresh failed")
			return nil, apperrors.Wrapf(apperrors.ErrRefreshFailed, "%v", err)
		}
	}

	out := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if exp, err := token.ExpiresAt(access); err == nil {
		out.Expiry = exp
	}
	if current, err := c.store.Load(); err == nil {
		out.RefreshToken = current.RefreshToken
	}
	return out, nil
}
