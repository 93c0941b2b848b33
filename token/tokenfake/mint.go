// Package tokenfake mints JWTs for tests. They are signed with a constant key;
// the client never verifies signatures.
package tokenfake

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("tokenfake-test-key")

// Mint returns a compact JWT whose exp claim is the given time.
func Mint(exp time.Time) string {
	return MintClaims(jwtlib.MapClaims{"exp": exp.Unix(), "iat": exp.Add(-time.Hour).Unix()})
}

// MintClaims returns a compact JWT carrying exactly the given claims.
func MintClaims(claims jwtlib.MapClaims) string {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		panic("tokenfake: " + err.Error())
	}
	return signed
}

// Valid returns a token that expires in an hour.
func Valid() string {
	return Mint(time.Now().Add(time.Hour))
}

// Expired returns a token that expired an hour ago.
func Expired() string {
	return Mint(time.Now().Add(-time.Hour))
}
