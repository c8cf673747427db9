package verification

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Purpose names the flow a verification code was requested for.
type Purpose string

const (
	PurposeRegister      Purpose = "register"
	PurposeLogin         Purpose = "login"
	PurposeResetPassword Purpose = "reset-password"
	PurposeQuickLogin    Purpose = "quick-login"
)

// ErrUnknownPurpose indicates an unrecognized purpose value.
var ErrUnknownPurpose = errors.New("unknown verification purpose")

// ParsePurpose resolves a purpose name. The numeric kinds of the legacy
// client API (101..104) are accepted as aliases.
func ParsePurpose(s string) (Purpose, error) {
	switch s {
	case "register", "101":
		return PurposeRegister, nil
	case "login", "102":
		return PurposeLogin, nil
	case "reset-password", "103":
		return PurposeResetPassword, nil
	case "quick-login", "104":
		return PurposeQuickLogin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPurpose, s)
	}
}

// Code is a one-time verification code bound to a contact. A contact has
// at most one live code; issuing a new one supersedes the old.
type Code struct {
	Contact   string
	Purpose   Purpose
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

const codeDigits = 6

var codeMax = big.NewInt(1_000_000)

// generateValue produces a fixed-length numeric code.
func generateValue() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
