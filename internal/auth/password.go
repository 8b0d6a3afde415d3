package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "shopapi/internal/errors"
)

// DefaultCost is the bcrypt work factor used for stored digests.
const DefaultCost = 10

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// BcryptHasher is a PasswordHasher backed by bcrypt. The digest embeds the
// salt and cost. Work runs on its own goroutine so callers can give up on ctx.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost, clamped to bcrypt's range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	return await(ctx, func() (string, error) {
		digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		return string(digest), nil
	})
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil).
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	return await(ctx, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, apperrors.Internal(err)
		}
	})
}

// await runs fn on a new goroutine and waits for it or for ctx.
func await[R any](ctx context.Context, fn func() (R, error)) (R, error) {
	type result struct {
		value R
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}
