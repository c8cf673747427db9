package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/verification"
	"github.com/covault-pay/covault/internal/wallet"
)

// ErrPasswordIncorrect means the supplied password does not match.
var ErrPasswordIncorrect = errors.New("password incorrect")

// ErrNoLoginProof means neither a password nor a verification code was supplied.
var ErrNoLoginProof = errors.New("password or verification code required")

// Service drives registration, login, and password reset on top of the
// user directory, verification codes, and the credential authority.
type Service struct {
	repo    Repository
	codes   *verification.Service
	creds   *auth.Service
	wallets *wallet.Service
}

// NewService creates an account service.
func NewService(repo Repository, codes *verification.Service, creds *auth.Service, wallets *wallet.Service) *Service {
	return &Service{repo: repo, codes: codes, creds: creds, wallets: wallets}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Contact          string
	DeviceID         string
	VerificationCode string
	InviteCode       string
	Password         string
	SignStrategy     string
}

// Register verifies ownership of the contact, creates the user, and
// provisions a wallet with the declared sign strategy. The registering
// device becomes the wallet's first participant.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if contact.Classify(input.Contact) == contact.KindInvalid {
		return User{}, contact.ErrFormatInvalid
	}
	strategy, err := wallet.ParseSignStrategy(input.SignStrategy)
	if err != nil {
		return User{}, err
	}
	// duplicate check runs first so a rejected registration never
	// consumes the submitted code
	if _, err := s.repo.FindByContact(ctx, input.Contact); err == nil {
		return User{}, ErrDuplicateRegistration
	} else if !errors.Is(err, ErrNotRegistered) {
		return User{}, fmt.Errorf("directory lookup: %w", err)
	}
	if err := s.codes.Check(ctx, input.Contact, input.VerificationCode); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Contact:      input.Contact,
		ContactKind:  contact.Classify(input.Contact),
		PasswordHash: hash,
		InviteCode:   input.InviteCode,
		SignStrategy: strategy,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	if s.wallets != nil {
		if _, err := s.wallets.Provision(ctx, wallet.ProvisionInput{
			UserID:   user.ID,
			DeviceID: input.DeviceID,
			Strategy: strategy,
		}); err != nil {
			return User{}, err
		}
	}

	return user, nil
}

// LoginInput carries a login request. Either Password or
// VerificationCode must be set; the code path covers both login and
// quick-login flows.
type LoginInput struct {
	Contact          string
	DeviceID         string
	Password         string
	VerificationCode string
}

// Login authenticates by password or one-time code and issues a session
// credential for the resolved user.
func (s *Service) Login(ctx context.Context, input LoginInput) (string, User, error) {
	user, err := s.repo.FindByContact(ctx, input.Contact)
	if err != nil {
		return "", User{}, err
	}

	switch {
	case input.VerificationCode != "":
		if err := s.codes.Check(ctx, input.Contact, input.VerificationCode); err != nil {
			return "", User{}, err
		}
	case input.Password != "":
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(input.Password)); err != nil {
			return "", User{}, ErrPasswordIncorrect
		}
	default:
		return "", User{}, ErrNoLoginProof
	}

	token, err := s.creds.Issue(user.ID, input.DeviceID)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}

// ResetPassword replaces the password of the authenticated user after a
// reset-password code check against the user's own registered contact.
// The user identity comes from the validated credential, never from the
// request body.
func (s *Service) ResetPassword(ctx context.Context, userID, code, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.codes.Check(ctx, user.Contact, code); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, hash)
}

// ContactIsUsed reports whether a contact already has an account.
func (s *Service) ContactIsUsed(ctx context.Context, c string) (bool, error) {
	_, err := s.repo.FindByContact(ctx, c)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotRegistered) {
		return false, nil
	}
	return false, err
}

// Get returns the user record for an id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}
