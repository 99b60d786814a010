package tokenstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestExpiryFromJWT(t *testing.T) {
	exp := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	got, ok := ExpiryFromJWT(token)
	if !ok {
		t.Fatal("ExpiryFromJWT returned ok = false")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

func TestExpiryFromJWTNoExpClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-1"})
	if _, ok := ExpiryFromJWT(token); ok {
		t.Error("ExpiryFromJWT returned ok = true for a token without exp")
	}
}

func TestExpiryFromJWTOpaqueToken(t *testing.T) {
	if _, ok := ExpiryFromJWT("not-a-jwt"); ok {
		t.Error("ExpiryFromJWT returned ok = true for an opaque token")
	}
}
