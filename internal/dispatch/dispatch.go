package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/covault-pay/covault/internal/contact"
)

// ErrDispatchFailed reports that delivery to the contact channel failed.
// Callers treat it as non-fatal: a stored code stays usable regardless.
var ErrDispatchFailed = errors.New("code dispatch failed")

// Sender delivers a verification code to a contact channel (SMS or email).
type Sender interface {
	SendCode(ctx context.Context, to string, kind contact.Kind, code string) error
}

// LoggerSender is a stub transport that writes deliveries to the logger.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender constructs a logging sender stub.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// SendCode writes the delivery to the structured logger.
func (s *LoggerSender) SendCode(_ context.Context, to string, kind contact.Kind, code string) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("dispatch code", "channel", kind.String(), "to", to, "code", code)
	return nil
}

// Retrying wraps a Sender with a bounded retry/backoff policy so a flaky
// transport is retried without the caller waiting on it.
type Retrying struct {
	next     Sender
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewRetrying decorates next with up to attempts tries, sleeping backoff
// (doubled each try) between failures.
func NewRetrying(next Sender, attempts int, backoff time.Duration, logger *slog.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{next: next, attempts: attempts, backoff: backoff, logger: logger}
}

// SendCode tries the underlying sender until it succeeds or attempts run out.
func (r *Retrying) SendCode(ctx context.Context, to string, kind contact.Kind, code string) error {
	delay := r.backoff
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = r.next.SendCode(ctx, to, kind, code); err == nil {
			return nil
		}
		if r.logger != nil {
			r.logger.Warn("code dispatch attempt failed", "to", to, "attempt", i+1, "error", err)
		}
		if i == r.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return errors.Join(ErrDispatchFailed, err)
}
