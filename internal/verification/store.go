package verification

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCodeNotFound means no live code exists for the contact, either
	// because none was issued or because it was already consumed.
	ErrCodeNotFound = errors.New("verification code not found")

	// ErrCodeExpired means a code exists but its validity window passed.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch means the submitted value differs from the stored
	// code. The stored code stays live for another attempt.
	ErrCodeMismatch = errors.New("verification code incorrect")
)

// Store persists at most one live code per contact. Save overwrites any
// prior unconsumed code for the same contact. Consume is an atomic
// check-and-delete: a matching, unexpired submission removes the code so
// it can never validate twice. Peek performs the same checks without
// consuming.
type Store interface {
	Save(ctx context.Context, code Code) error
	Consume(ctx context.Context, contact, submitted string, now time.Time) error
	Peek(ctx context.Context, contact, submitted string, now time.Time) error
}
