package credential

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is the only failure a Verifier reports. Lookup and
// comparison internals are deliberately not distinguishable to callers.
var ErrInvalidCredential = errors.New("invalid credential")

// HashSource resolves stored credential material for an account.
type HashSource interface {
	PasswordHash(ctx context.Context, email string) (string, error)
}

type Verifier interface {
	Check(ctx context.Context, email, password string) error
}

type BcryptVerifier struct {
	source HashSource
}

func NewBcryptVerifier(source HashSource) *BcryptVerifier {
	return &BcryptVerifier{source: source}
}

func (v *BcryptVerifier) Check(ctx context.Context, email, password string) error {
	hash, err := v.source.PasswordHash(ctx, email)
	if err != nil {
		return ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}
