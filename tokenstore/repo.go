package tokenstore

// Storage keys. The file store uses them as JSON field names.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
)

// Tokens is everything persisted for the single local session.
// A non-empty AccessToken implies RefreshToken and UserID were written with it.
type Tokens struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// IsEmpty reports whether nothing is stored.
func (t Tokens) IsEmpty() bool {
	return t.AccessToken == "" && t.RefreshToken == "" && t.UserID == ""
}

// Get returns the value stored under one of the storage keys.
func (t Tokens) Get(key string) string {
	switch key {
	case KeyAccessToken:
		return t.AccessToken
	case KeyRefreshToken:
		return t.RefreshToken
	case KeyUserID:
		return t.UserID
	default:
		return ""
	}
}

// Store persists the session tokens. Save replaces all fields in one operation
// and Clear removes all of them.
type Store interface {
	Load() (Tokens, error)
	Save(tokens Tokens) error
	Clear() error
}
