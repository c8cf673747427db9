package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/logging"
)

type flakySender struct {
	failures int
	calls    int
}

func (s *flakySender) SendCode(_ context.Context, _ string, _ contact.Kind, _ string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("transport down")
	}
	return nil
}

func TestRetryingEventuallySucceeds(t *testing.T) {
	inner := &flakySender{failures: 2}
	s := NewRetrying(inner, 3, 0, logging.Discard())

	if err := s.SendCode(context.Background(), "+86 18888888888", contact.KindPhone, "123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryingGivesUp(t *testing.T) {
	inner := &flakySender{failures: 10}
	s := NewRetrying(inner, 2, 0, logging.Discard())

	err := s.SendCode(context.Background(), "john@example.com", contact.KindEmail, "123456")
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", inner.calls)
	}
}
