package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	prefixBytes = 4
	secretBytes = 24
	maxAttempts = 3
)

// Service issues and verifies account API keys.
type Service struct {
	repo Repository
	cost int
}

// NewService creates a key service using bcrypt.DefaultCost.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Issued is returned once, at creation. Plaintext is never stored.
type Issued struct {
	Key       Key
	Plaintext string
}

// Issue creates a key for the account.
func (s *Service) Issue(ctx context.Context, accountID, name string) (Issued, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		prefix, err := randomHex(prefixBytes)
		if err != nil {
			return Issued{}, err
		}
		secret, err := randomHex(secretBytes)
		if err != nil {
			return Issued{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
		if err != nil {
			return Issued{}, fmt.Errorf("hash api key: %w", err)
		}

		key := Key{
			ID:         uuid.NewString(),
			AccountID:  accountID,
			Name:       name,
			Prefix:     prefix,
			SecretHash: hash,
			CreatedAt:  time.Now().UTC(),
		}
		err = s.repo.Create(ctx, key)
		if errors.Is(err, ErrPrefixTaken) {
			continue
		}
		if err != nil {
			return Issued{}, err
		}
		return Issued{Key: key, Plaintext: keyScheme + "_" + prefix + "_" + secret}, nil
	}
	return Issued{}, ErrPrefixTaken
}

// Verify resolves a plaintext key to its account id.
func (s *Service) Verify(ctx context.Context, plaintext string) (string, error) {
	prefix, secret, err := split(plaintext)
	if err != nil {
		return "", err
	}
	key, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidKey
		}
		return "", err
	}
	if key.Revoked() {
		return "", ErrInvalidKey
	}
	if err := bcrypt.CompareHashAndPassword(key.SecretHash, []byte(secret)); err != nil {
		return "", ErrInvalidKey
	}
	return key.AccountID, nil
}

// Revoke disables a key of the account.
func (s *Service) Revoke(ctx context.Context, accountID, id string) error {
	return s.repo.Revoke(ctx, accountID, id, time.Now())
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
