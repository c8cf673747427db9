package verification

import (
	"context"
	"log/slog"
	"time"

	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/dispatch"
)

// DefaultLifetime is how long an issued code stays valid.
const DefaultLifetime = 10 * time.Minute

const dispatchTimeout = 30 * time.Second

// Service issues and checks one-time verification codes.
type Service struct {
	store    Store
	sender   dispatch.Sender
	logger   *slog.Logger
	lifetime time.Duration
	now      func() time.Time
}

// NewService builds a verification service. sender may be nil, in which
// case codes are stored but never delivered.
func NewService(store Store, sender dispatch.Sender, logger *slog.Logger, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Service{store: store, sender: sender, logger: logger, lifetime: lifetime, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue generates a new code for the contact and hands it to the
// dispatch transport. The contact must classify as phone or email.
// Delivery runs in the background: a transport failure is logged but the
// stored code stays usable.
func (s *Service) Issue(ctx context.Context, to string, purpose Purpose) (Code, error) {
	kind := contact.Classify(to)
	if kind == contact.KindInvalid {
		return Code{}, contact.ErrFormatInvalid
	}

	value, err := generateValue()
	if err != nil {
		return Code{}, err
	}

	issued := s.now().UTC()
	code := Code{
		Contact:   to,
		Purpose:   purpose,
		Value:     value,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.lifetime),
	}

	if err := s.store.Save(ctx, code); err != nil {
		return Code{}, err
	}

	if s.sender != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()
			if err := s.sender.SendCode(sendCtx, to, kind, value); err != nil && s.logger != nil {
				s.logger.Warn("verification code dispatch failed", "contact", to, "error", err)
			}
		}()
	}

	return code, nil
}

// Check consumes the contact's code if the submitted value matches and
// is unexpired. A consumed code never validates again.
func (s *Service) Check(ctx context.Context, to, submitted string) error {
	return s.store.Consume(ctx, to, submitted, s.now())
}

// Verify checks the submitted value without consuming the code, for
// client-side prechecks before the consuming flow runs.
func (s *Service) Verify(ctx context.Context, to, submitted string) error {
	return s.store.Peek(ctx, to, submitted, s.now())
}
