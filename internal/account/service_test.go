package account

import (
	"context"
	"errors"
	"testing"

	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/logging"
	"github.com/covault-pay/covault/internal/verification"
	"github.com/covault-pay/covault/internal/wallet"
)

const testEmail = "test1@gmail.com"

type testEnv struct {
	svc     *Service
	codes   *verification.Service
	creds   *auth.Service
	wallets *wallet.Service
}

func newTestEnv() testEnv {
	codes := verification.NewService(verification.NewMemoryStore(), nil, logging.Discard(), verification.DefaultLifetime)
	creds := auth.NewService("test-secret", auth.DefaultTTL)
	wallets := wallet.NewService(wallet.NewMemoryRepository())
	svc := NewService(NewMemoryRepository(), codes, creds, wallets)
	return testEnv{svc: svc, codes: codes, creds: creds, wallets: wallets}
}

func (e testEnv) register(t *testing.T, c, password, strategy string) User {
	t.Helper()
	ctx := context.Background()
	code, err := e.codes.Issue(ctx, c, verification.PurposeRegister)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	user, err := e.svc.Register(ctx, RegisterInput{
		Contact:          c,
		DeviceID:         "device-1",
		VerificationCode: code.Value,
		Password:         password,
		SignStrategy:     strategy,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestRegisterProvisionsWallet(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := env.register(t, testEmail, "secret-pw", "2-2")
	if user.SignStrategy != (wallet.SignStrategy{Threshold: 2, Total: 2}) {
		t.Fatalf("unexpected strategy: %v", user.SignStrategy)
	}

	w, err := env.wallets.GetByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("wallet lookup: %v", err)
	}
	if len(w.ParticipantDeviceIDs) != 1 || w.ParticipantDeviceIDs[0] != "device-1" {
		t.Fatalf("expected registering device as participant, got %v", w.ParticipantDeviceIDs)
	}
}

func TestRegisterRejectsInvalidContact(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Register(context.Background(), RegisterInput{
		Contact: "johnexample.com", Password: "pw", SignStrategy: "1-1", VerificationCode: "123456",
	})
	if !errors.Is(err, contact.ErrFormatInvalid) {
		t.Fatalf("want ErrFormatInvalid, got %v", err)
	}
}

func TestRegisterRejectsWrongCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	code, err := env.codes.Issue(ctx, testEmail, verification.PurposeRegister)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	wrong := "000000"
	if wrong == code.Value {
		wrong = "000001"
	}
	_, err = env.svc.Register(ctx, RegisterInput{
		Contact: testEmail, Password: "pw", SignStrategy: "1-1", VerificationCode: wrong,
	})
	if !errors.Is(err, verification.ErrCodeMismatch) {
		t.Fatalf("want ErrCodeMismatch, got %v", err)
	}

	used, err := env.svc.ContactIsUsed(ctx, testEmail)
	if err != nil || used {
		t.Fatalf("no user should exist after failed registration, used=%v err=%v", used, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.register(t, testEmail, "pw", "1-1")

	code, err := env.codes.Issue(ctx, testEmail, verification.PurposeRegister)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	_, err = env.svc.Register(ctx, RegisterInput{
		Contact: testEmail, Password: "pw", SignStrategy: "1-1", VerificationCode: code.Value,
	})
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("want ErrDuplicateRegistration, got %v", err)
	}

	// the rejected registration must not have consumed the code
	if err := env.codes.Check(ctx, testEmail, code.Value); err != nil {
		t.Fatalf("code should survive a duplicate-registration failure, got %v", err)
	}
}

func TestLoginWithPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.register(t, testEmail, "secret-pw", "1-1")

	token, got, err := env.svc.Login(ctx, LoginInput{Contact: testEmail, Password: "secret-pw", DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
	uid, err := env.creds.Validate(token)
	if err != nil || uid != user.ID {
		t.Fatalf("token should validate to %s, got %s (%v)", user.ID, uid, err)
	}

	if _, _, err := env.svc.Login(ctx, LoginInput{Contact: testEmail, Password: "wrong"}); !errors.Is(err, ErrPasswordIncorrect) {
		t.Fatalf("want ErrPasswordIncorrect, got %v", err)
	}
	if _, _, err := env.svc.Login(ctx, LoginInput{Contact: testEmail}); !errors.Is(err, ErrNoLoginProof) {
		t.Fatalf("want ErrNoLoginProof, got %v", err)
	}
	if _, _, err := env.svc.Login(ctx, LoginInput{Contact: "nobody@example.com", Password: "pw"}); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("want ErrNotRegistered, got %v", err)
	}
}

func TestLoginWithCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.register(t, testEmail, "secret-pw", "1-1")

	code, err := env.codes.Issue(ctx, testEmail, verification.PurposeQuickLogin)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	token, got, err := env.svc.Login(ctx, LoginInput{Contact: testEmail, VerificationCode: code.Value})
	if err != nil {
		t.Fatalf("login with code: %v", err)
	}
	if token == "" || got.ID != user.ID {
		t.Fatalf("unexpected login result: %s / %+v", token, got)
	}

	// code was consumed by the login
	_, _, err = env.svc.Login(ctx, LoginInput{Contact: testEmail, VerificationCode: code.Value})
	if !errors.Is(err, verification.ErrCodeNotFound) {
		t.Fatalf("want ErrCodeNotFound on reused code, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.register(t, testEmail, "old-pw", "1-1")

	code, err := env.codes.Issue(ctx, testEmail, verification.PurposeResetPassword)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	if err := env.svc.ResetPassword(ctx, user.ID, code.Value, "new-pw"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, _, err := env.svc.Login(ctx, LoginInput{Contact: testEmail, Password: "old-pw"}); !errors.Is(err, ErrPasswordIncorrect) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, err := env.svc.Login(ctx, LoginInput{Contact: testEmail, Password: "new-pw"}); err != nil {
		t.Fatalf("new password login: %v", err)
	}
}
