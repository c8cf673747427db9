package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-signing-secret"

func TestIssueAndValidate(t *testing.T) {
	svc := NewService(testSecret, DefaultTTL)

	token, err := svc.Issue("user-1", "device-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}
}

func TestValidateExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(testSecret, time.Hour)
	svc.WithClock(func() time.Time { return now })

	token, err := svc.Issue("user-1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(time.Hour + time.Minute)
	if _, err := svc.Validate(token); !errors.Is(err, ErrCredentialExpired) {
		t.Fatalf("want ErrCredentialExpired, got %v", err)
	}
}

func TestValidateTampered(t *testing.T) {
	svc := NewService(testSecret, DefaultTTL)
	token, err := svc.Issue("user-1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewService("another-secret", DefaultTTL)
	if _, err := other.Validate(token); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("want ErrMalformedCredential for wrong secret, got %v", err)
	}

	if _, err := svc.Validate(token + "x"); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("want ErrMalformedCredential for mangled token, got %v", err)
	}
	if _, err := svc.Validate("not-a-jwt"); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("want ErrMalformedCredential for garbage, got %v", err)
	}
}

func TestValidateMissing(t *testing.T) {
	svc := NewService(testSecret, DefaultTTL)
	if _, err := svc.Validate(""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("want ErrMissingCredential, got %v", err)
	}
}

func TestFromHeader(t *testing.T) {
	if _, err := FromHeader(""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("want ErrMissingCredential, got %v", err)
	}
	if _, err := FromHeader("Basic abc"); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("want ErrMalformedCredential, got %v", err)
	}
	for _, h := range []string{"Bearer tok123", "bearer tok123"} {
		tok, err := FromHeader(h)
		if err != nil || tok != "tok123" {
			t.Fatalf("FromHeader(%q) = %q, %v", h, tok, err)
		}
	}
}
