package errors

import (
	"errors"
	"fmt"
)

// Common error types for the site settings front-end
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenMissing = errors.New("refresh token missing")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrRefreshFailed  = errors.New("token refresh failed")

	// Storage errors
	ErrStoreLocked  = errors.New("token store cannot be decrypted")
	ErrStoreCorrupt = errors.New("token store is corrupt")

	// Input errors
	ErrTitleRequired = errors.New("title is required")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
