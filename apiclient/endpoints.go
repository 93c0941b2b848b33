package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
	"github.com/jrsteele09/go-site-settings/token"
)

// SiteSettings is the part of /wp/v2/settings this front-end edits.
type SiteSettings struct {
	Title string `json:"title"`
}

// Login exchanges credentials for a token set. It does not persist anything;
// the session owns storage of the result.
func (c *Client) Login(ctx context.Context, creds token.Credentials) (*token.AuthTokens, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var tokens token.AuthTokens
	if err := c.do(ctx, c.raw, http.MethodPost, PathLogin, creds, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, errors.New("[apiclient Login] response is missing tokens")
	}
	return &tokens, nil
}

// Refresh forces a token refresh with the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	tokens, err := c.store.Load()
	if err != nil {
		return apperrors.Wrapf(err, "[apiclient Refresh] load tokens")
	}
	if tokens.RefreshToken == "" {
		return apperrors.ErrRefreshTokenMissing
	}
	if token.IsExpired(tokens.RefreshToken) {
		c.endSession("refresh token expired")
		return apperrors.ErrSessionExpired
	}
	if _, err := c.refreshAccessToken(ctx, tokens.RefreshToken); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.endSession("explicit refresh failed")
		return errors.Join(apperrors.ErrRefreshFailed, err)
	}
	return nil
}

// Logout revokes the stored refresh token and clears the store. The store is
// cleared even when the revocation call fails; that error is still returned.
func (c *Client) Logout(ctx context.Context) error {
	tokens, err := c.store.Load()
	if err != nil {
		return apperrors.Wrapf(err, "[apiclient Logout] load tokens")
	}

	var callErr error
	if tokens.RefreshToken != "" {
		callErr = c.do(ctx, c.api, http.MethodPost, PathLogout, map[string]string{"refresh_token": tokens.RefreshToken}, nil)
	}

	if err := c.store.Clear(); err != nil {
		return errors.Join(callErr, err)
	}
	return callErr
}

// GetSiteTitle returns the current site title.
func (c *Client) GetSiteTitle(ctx context.Context) (string, error) {
	var settings SiteSettings
	if err := c.do(ctx, c.api, http.MethodGet, PathSettings, nil, &settings); err != nil {
		return "", err
	}
	return settings.Title, nil
}

// UpdateSiteTitle sets the site title and returns the settings as saved by the server.
func (c *Client) UpdateSiteTitle(ctx context.Context, title string) (*SiteSettings, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.ErrTitleRequired
	}

	var settings SiteSettings
	if err := c.do(ctx, c.api, http.MethodPost, PathSettings, SiteSettings{Title: title}, &settings); err != nil {
		return nil, err
	}
	if settings.Title == "" {
		settings.Title = title
	}
	return &settings, nil
}
