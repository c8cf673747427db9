package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wallet holds the multisig configuration for a user's account.
type Wallet struct {
	UserID               string
	AccountID            string
	SubPubkeys           []string
	SignStrategies       []SignStrategy
	ParticipantDeviceIDs []string
	CreatedAt            time.Time
}

// SignStrategy is an m-of-n signing threshold: Threshold distinct
// signatures out of Total authorized participants.
type SignStrategy struct {
	Threshold int
	Total     int
}

// ErrBadStrategy indicates an unparseable or inconsistent strategy descriptor.
var ErrBadStrategy = errors.New("invalid sign strategy")

// ParseSignStrategy parses an "m-n" descriptor. The legacy "m/n" form
// used by older clients is accepted as well.
func ParseSignStrategy(s string) (SignStrategy, error) {
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return SignStrategy{}, fmt.Errorf("%w: %q", ErrBadStrategy, s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return SignStrategy{}, fmt.Errorf("%w: %q", ErrBadStrategy, s)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return SignStrategy{}, fmt.Errorf("%w: %q", ErrBadStrategy, s)
	}
	if m < 1 || n < m {
		return SignStrategy{}, fmt.Errorf("%w: threshold %d of %d", ErrBadStrategy, m, n)
	}
	return SignStrategy{Threshold: m, Total: n}, nil
}

func (s SignStrategy) String() string {
	return fmt.Sprintf("%d-%d", s.Threshold, s.Total)
}

// Satisfied reports whether count distinct signatures meet the threshold.
func (s SignStrategy) Satisfied(count int) bool {
	return count >= s.Threshold
}

// ActiveStrategy selects the strategy governing new transactions for
// this wallet: the entry whose participant total matches the wallet's
// current device count, falling back to the first entry.
func (w Wallet) ActiveStrategy() SignStrategy {
	for _, s := range w.SignStrategies {
		if s.Total == len(w.ParticipantDeviceIDs) {
			return s
		}
	}
	if len(w.SignStrategies) > 0 {
		return w.SignStrategies[0]
	}
	return SignStrategy{Threshold: 1, Total: 1}
}
