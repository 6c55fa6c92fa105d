// Package session issues and verifies the stateless, HMAC-signed session
// tokens carried in the site's session cookie.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Duration is the lifetime of an issued token.
const Duration = 12 * time.Hour

// ErrEmptySecret is returned when a token is issued without a signing secret.
var ErrEmptySecret = errors.New("session secret is empty")

type payload struct {
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// Issue returns a new token signed with secret, valid for Duration from now.
func Issue(secret string) (string, error) {
	return IssueAt(secret, time.Now())
}

// IssueAt returns a token as if issued at now.
func IssueAt(secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	iat := now.Unix()
	return encode(secret, payload{IssuedAt: iat, ExpiresAt: iat + int64(Duration/time.Second)})
}

func encode(secret string, p payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + sign(secret, encoded), nil
}

// Verify reports whether token carries a valid signature for secret and has
// not expired.
func Verify(token, secret string) bool {
	return VerifyAt(token, secret, time.Now())
}

// VerifyAt is Verify evaluated at now. It never panics; malformed input is
// simply invalid.
func VerifyAt(token, secret string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	encoded, signature := parts[0], parts[1]

	// Plain comparison; only the login password check is constant-time.
	if sign(secret, encoded) != signature {
		return false
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	return p.ExpiresAt > now.Unix()
}

func sign(secret, encoded string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
