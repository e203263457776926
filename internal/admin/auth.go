// Package admin exposes a remote operator console over WebSocket, the
// modernized counterpart of the "remote operator datagram" path in the
// original rcon command handling: an authenticated operator can issue
// the same console commands available on the local stdin console
// (internal/logging's tee target), without packet-level game auth.
package admin

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the operator a console session belongs to. Role
// distinguishes a full operator from a read-only status watcher.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

const (
	RoleOperator = "operator"
	RoleReadOnly = "readonly"
)

// IssueToken signs a console session token good for ttl, HMAC-signed
// with key (server.yaml's admin_jwt_key). This server is both issuer
// and verifier, so HS256 replaces the ES256 key-pair scheme used where
// issuer and verifier are different services.
func IssueToken(key []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken verifies tokenString's signature and expiry and
// returns its claims.
func ValidateToken(key []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("admin: parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("admin: invalid token claims")
	}
	return claims, nil
}
