package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-site-settings/token"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

const refreshFlightKey = "refresh"

// refreshAccessToken exchanges the refresh token for a new token pair and persists it.
// Concurrent callers share one call to the refresh endpoint. The shared call is not
// tied to any one caller's context, so a cancelled caller only stops waiting.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	ch := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.exchangeRefreshToken(flightCtx, refreshToken)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	current, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("[apiclient refresh] load tokens: %w", err)
	}
	// Another flight already rotated the pair this caller loaded
	if current.RefreshToken != refreshToken && current.AccessToken != "" && !token.IsExpired(current.AccessToken) {
		log.Debug().Msg("Refresh token already rotated, using stored access token")
		return current.AccessToken, nil
	}

	var refreshed token.RefreshedTokens
	err = c.do(ctx, c.raw, http.MethodPost, PathRefresh, map[string]string{"refresh_token": refreshToken}, &refreshed)
	if err != nil {
		return "", fmt.Errorf("[apiclient refresh] %w", err)
	}
	if refreshed.AccessToken == "" {
		return "", errors.New("[apiclient refresh] response has no access_token")
	}

	next := tokenstore.Tokens{
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		UserID:       current.UserID,
	}
	// Servers that do not rotate refresh tokens leave the field out
	if next.RefreshToken == "" {
		next.RefreshToken = refreshToken
	}

	if err := c.store.Save(next); err != nil {
		return "", fmt.Errorf("[apiclient refresh] save tokens: %w", err)
	}
	return refreshed.AccessToken, nil
}
