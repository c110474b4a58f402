package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short, log-safe identifier for a token.
func Fingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	return HashSHA256Hex(tok)[:12]
}

// HashHMACSHA256Base64 returns base64(HMAC-SHA256(s, key)).
func HashHMACSHA256Base64(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return base64.StdEncoding.EncodeToString(m.Sum(nil))
}

// SecretHash computes the SECRET_HASH the identity provider expects from app clients
// that were created with a client secret: base64(HMAC-SHA256(secret, username+clientID)).
func SecretHash(username, clientID, secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrSecretMissing
	}
	return HashHMACSHA256Base64(username+clientID, []byte(secret)), nil
}

// BearerFromHeader extracts the token from an Authorization header value.
// Both "Bearer <t>" and a bare "<t>" are accepted; the scheme is matched case-insensitively.
// A scheme with no token ("Bearer", "Bearer ") is ErrBearerMissing.
func BearerFromHeader(h string) (string, error) {
	parts := strings.Fields(h)
	switch {
	case len(parts) == 0:
		return "", ErrBearerMissing
	case strings.EqualFold(parts[0], "bearer"):
		if len(parts) == 1 {
			return "", ErrBearerMissing
		}
		if len(parts) > 2 {
			return "", ErrBearerMalformed
		}
		return parts[1], nil
	case len(parts) == 1:
		return parts[0], nil
	default:
		return "", ErrBearerMalformed
	}
}

// CheckStructure reports whether raw is a structurally well-formed JWT and returns its
// unverified subject claim (may be empty). No signature or expiry verification is done.
func CheckStructure(raw string) (string, error) {
	if raw == "" {
		return "", ErrBearerMissing
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	// An unknown or missing alg is a verification concern, not a structural one.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return "", fmt.Errorf("%w: %v", ErrBearerMalformed, err)
	}

	sub, _ := claims["sub"].(string)
	return sub, nil
}
