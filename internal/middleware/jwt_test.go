package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/respond"
)

func setupAuthApp(t *testing.T, creds *auth.Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/me", BearerAuth(creds), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(UserIDKey).(string)
		return respond.OK(c, fiber.Map{"userId": uid})
	})
	return app
}

func getMe(t *testing.T, app *fiber.App, authorization string) (int, respond.Envelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env respond.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

func TestBearerAuthValidToken(t *testing.T) {
	creds := auth.NewService("test-secret", auth.DefaultTTL)
	app := setupAuthApp(t, creds)

	userID := uuid.New().String()
	token, err := creds.Issue(userID, "device-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	status, env := getMe(t, app, "Bearer "+token)
	if status != fiber.StatusOK || env.StatusCode != respond.CodeOK {
		t.Fatalf("expected success, got http=%d code=%d", status, env.StatusCode)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["userId"] != userID {
		t.Fatalf("expected user id %s in locals, got %v", userID, env.Data)
	}
}

func TestBearerAuthMissingAndMalformed(t *testing.T) {
	creds := auth.NewService("test-secret", auth.DefaultTTL)
	app := setupAuthApp(t, creds)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		status, env := getMe(t, app, header)
		if status != fiber.StatusUnauthorized || env.StatusCode != respond.CodeUnauthorized {
			t.Fatalf("header %q: expected 401/%d, got http=%d code=%d", header, respond.CodeUnauthorized, status, env.StatusCode)
		}
	}
}

func TestBearerAuthExpiredToken(t *testing.T) {
	creds := auth.NewService("test-secret", auth.DefaultTTL)
	past := time.Now().Add(-20 * 24 * time.Hour)
	creds.WithClock(func() time.Time { return past })
	token, err := creds.Issue(uuid.New().String(), "device-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	creds.WithClock(time.Now)

	app := setupAuthApp(t, creds)
	status, env := getMe(t, app, "Bearer "+token)
	if status != fiber.StatusUnauthorized || env.StatusCode != respond.CodeUnauthorized {
		t.Fatalf("expected 401/%d for expired token, got http=%d code=%d", respond.CodeUnauthorized, status, env.StatusCode)
	}
}

func TestBearerAuthRejectsTamperedToken(t *testing.T) {
	creds := auth.NewService("test-secret", auth.DefaultTTL)
	other := auth.NewService("other-secret", auth.DefaultTTL)
	token, err := other.Issue(uuid.New().String(), "device-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	app := setupAuthApp(t, creds)
	status, env := getMe(t, app, "Bearer "+token)
	if status != fiber.StatusUnauthorized || env.StatusCode != respond.CodeUnauthorized {
		t.Fatalf("expected 401/%d for foreign signature, got http=%d code=%d", respond.CodeUnauthorized, status, env.StatusCode)
	}
}
