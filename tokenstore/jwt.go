package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromJWT extracts the exp claim from an access token without
// verifying its signature. Used as a fallback when the server omits
// expires_in from a token response. Returns false for non-JWT tokens or
// tokens without an exp claim.
func ExpiryFromJWT(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
