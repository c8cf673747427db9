package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/account"
	"github.com/covault-pay/covault/internal/respond"
	"github.com/covault-pay/covault/internal/transfer"
	"github.com/covault-pay/covault/internal/verification"
)

func envelopeFor(t *testing.T, err error) (int, respond.Envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respond.Error(c, err)
	})

	resp, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	if testErr != nil {
		t.Fatalf("app.Test: %v", testErr)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		t.Fatalf("read body: %v", readErr)
	}
	var env respond.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

func TestErrorMapsKnownErrors(t *testing.T) {
	cases := []struct {
		err        error
		wantCode   int
		wantStatus int
	}{
		{verification.ErrCodeNotFound, respond.CodeCodeNotFound, http.StatusBadRequest},
		{verification.ErrCodeExpired, respond.CodeCodeExpired, http.StatusBadRequest},
		{verification.ErrCodeMismatch, respond.CodeCodeIncorrect, http.StatusBadRequest},
		{account.ErrDuplicateRegistration, respond.CodeAlreadyUsed, http.StatusConflict},
		{account.ErrNotRegistered, respond.CodeNotRegistered, http.StatusNotFound},
		{account.ErrPasswordIncorrect, respond.CodeBadPassword, http.StatusUnauthorized},
		{transfer.ErrSenderMismatch, respond.CodeSenderMismatch, http.StatusForbidden},
		{transfer.ErrReceiverNotFound, respond.CodeNoReceiver, http.StatusNotFound},
		{transfer.ErrInvalidStateTransition, respond.CodeBadTransition, http.StatusConflict},
		{transfer.ErrNotCounterparty, respond.CodeNotParty, http.StatusForbidden},
	}
	for _, tc := range cases {
		status, env := envelopeFor(t, tc.err)
		if env.StatusCode != tc.wantCode || status != tc.wantStatus {
			t.Errorf("Error(%v) = (%d, %d), want (%d, %d)", tc.err, env.StatusCode, status, tc.wantCode, tc.wantStatus)
		}
	}
}

func TestErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("checking code: %w", verification.ErrCodeExpired)
	status, env := envelopeFor(t, wrapped)
	if env.StatusCode != respond.CodeCodeExpired || status != http.StatusBadRequest {
		t.Fatalf("wrapped error mapped to (%d, %d)", env.StatusCode, status)
	}
	if env.Msg == "" {
		t.Fatal("expected the wrapped message to survive")
	}
}

func TestErrorHidesUnknownDetail(t *testing.T) {
	status, env := envelopeFor(t, errors.New("pool exhausted"))
	if env.StatusCode != respond.CodeInternal || status != http.StatusInternalServerError {
		t.Fatalf("unknown error mapped to (%d, %d)", env.StatusCode, status)
	}
	if env.Msg != "internal error" {
		t.Fatalf("expected opaque message, got %q", env.Msg)
	}
}
