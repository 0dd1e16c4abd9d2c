package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried inside the access token. The upstream API is the
// authority on token validity; local decoding only provides identity and
// expiry hints, so the signature is not checked here.
type Claims struct {
	UserID string `json:"_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// DecodeClaims parses the token payload without verifying the signature.
func DecodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an exp claim in the past.
// Tokens that cannot be decoded are not treated as expired; the upstream
// verify call is the authority for those.
func TokenExpired(token string, now time.Time) bool {
	claims, err := DecodeClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
