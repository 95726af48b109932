// Package verification keeps pending email registrations until the emailed
// code is confirmed. Entries are time-boxed and verified with an atomic
// compare-and-delete so concurrent confirmations create at most one account.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Expired entries are kept this long past their expiry so Consume can still
// report ErrExpired and Reissue can still renew them. Both stores honor it.
const expiredGrace = time.Hour

var (
	ErrNotFound = errors.New("no pending verification for this email")
	ErrExpired  = errors.New("verification code expired")
	ErrMismatch = errors.New("invalid verification code")
)

// Pending is a registration waiting for its code to be confirmed.
type Pending struct {
	Email        string    `json:"email"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expires_at"`
	PasswordHash string    `json:"password_hash"`
	DisplayName  string    `json:"nombre"`
}

// Store holds pending registrations keyed by normalized email.
type Store interface {
	// Put stores p, replacing any previous entry for the same email.
	Put(ctx context.Context, p Pending) error
	// Reissue swaps the code and expiry of an existing entry, keeping its payload.
	Reissue(ctx context.Context, email, code string, expiresAt time.Time) (Pending, error)
	// Consume removes and returns the entry when code matches and has not expired.
	// Expired entries are evicted; a mismatch leaves the entry in place.
	Consume(ctx context.Context, email, code string, now time.Time) (Pending, error)
}

// NormalizeEmail is the key used for every store operation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
