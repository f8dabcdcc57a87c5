package apikey

import (
	"errors"
	"strings"
	"time"
)

const keyScheme = "ok"

var (
	ErrInvalidKey  = errors.New("invalid api key")
	ErrNotFound    = errors.New("api key not found")
	ErrPrefixTaken = errors.New("api key prefix collision")
)

// Key is a stored API key. Only the bcrypt hash of the secret is kept.
type Key struct {
	ID         string
	AccountID  string
	Name       string
	Prefix     string
	SecretHash []byte
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// Revoked reports whether the key has been revoked.
func (k Key) Revoked() bool {
	return k.RevokedAt != nil
}

// split breaks "ok_<prefix>_<secret>" into its parts.
func split(plaintext string) (prefix, secret string, err error) {
	parts := strings.SplitN(strings.TrimSpace(plaintext), "_", 3)
	if len(parts) != 3 || parts[0] != keyScheme || parts[1] == "" || parts[2] == "" {
		return "", "", ErrInvalidKey
	}
	return parts[1], parts[2], nil
}
