package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiresAt decodes the exp claim of a JWT without verifying its signature.
// The client holds no verification key; it only needs to know when to refresh.
func ExpiresAt(rawToken string) (time.Time, error) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, fmt.Errorf("%w: empty token", apperrors.ErrInvalidToken)
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", apperrors.ErrInvalidToken)
	}
	return exp.Time, nil
}

// IsExpired reports whether the token's exp is at or before now.
// Tokens that cannot be decoded count as expired.
func IsExpired(rawToken string) bool {
	exp, err := ExpiresAt(rawToken)
	if err != nil {
		return true
	}
	return !exp.After(NowTimeFunc())
}
