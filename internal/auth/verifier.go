package auth

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session-token claims this service relies on. The subject is
// the owning principal's identifier used for every ownership check.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates identity-provider session tokens locally, without a
// round trip to the provider.
type Verifier struct {
	rsaKey *rsa.PublicKey
	hmac   []byte
}

// NewVerifier builds a verifier from the configured key material. A PEM
// public key selects RSA verification; anything else is treated as a shared
// HMAC secret.
func NewVerifier(key string) (*Verifier, error) {
	if key == "" {
		return nil, fmt.Errorf("identity jwt key is required")
	}
	if strings.Contains(key, "-----BEGIN") {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("parse identity public key: %w", err)
		}
		return &Verifier{rsaKey: pub}, nil
	}
	return &Verifier{hmac: []byte(key)}, nil
}

// Verify parses and validates a session token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	keyFunc := func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.rsaKey == nil {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return v.rsaKey, nil
		case *jwt.SigningMethodHMAC:
			if v.hmac == nil {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return v.hmac, nil
		default:
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
