package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DemoHashCost is the bcrypt cost of hashes printed for DEMO_PASSWORD_HASH.
const DemoHashCost = 12

// bcrypt ignores everything past this many bytes.
const maxSecretBytes = 72

var (
	ErrEmptySecret   = errors.New("password is empty")
	ErrSecretTooLong = fmt.Errorf("password exceeds %d bytes", maxSecretBytes)
)

// Hasher produces and verifies the stored form of the demo account secret.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into the range bcrypt accepts.
func NewHasher(cost int) Hasher {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > maxSecretBytes {
		return "", ErrSecretTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(out), nil
}

// Matches is false for an unset or unparsable stored hash, so a missing
// DEMO_PASSWORD_HASH locks the account instead of opening it.
func (h Hasher) Matches(secret, stored string) bool {
	if stored == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
}

// HashPassword hashes secret at DemoHashCost.
func HashPassword(secret string) (string, error) {
	return NewHasher(DemoHashCost).Hash(secret)
}

// CheckPassword reports whether secret matches the stored hash.
func CheckPassword(secret, stored string) bool {
	return Hasher{}.Matches(secret, stored)
}
