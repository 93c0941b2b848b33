package token

import "strconv"

// AuthTokens is the body returned by the login endpoint.
type AuthTokens struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in,omitempty"`  // seconds
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"` // seconds
	UserID           int64  `json:"user_id"`
}

// UserIDString is the form the user id is persisted in.
func (t AuthTokens) UserIDString() string {
	return strconv.FormatInt(t.UserID, 10)
}

// RefreshedTokens is the body returned by the refresh endpoint.
type RefreshedTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Credentials are only ever sent to the login endpoint; they are never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
