package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes wallet provisioning and lookup.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProvisionInput captures data required to provision a wallet at registration.
type ProvisionInput struct {
	UserID     string
	DeviceID   string
	Strategy   SignStrategy
	SubPubkeys []string
}

// Provision creates the wallet record for a freshly registered user. The
// registering device becomes the first participant.
func (s *Service) Provision(ctx context.Context, input ProvisionInput) (Wallet, error) {
	if _, err := uuid.Parse(input.UserID); err != nil {
		return Wallet{}, err
	}

	w := Wallet{
		UserID:               input.UserID,
		AccountID:            uuid.New().String(),
		SubPubkeys:           input.SubPubkeys,
		SignStrategies:       []SignStrategy{input.Strategy},
		ParticipantDeviceIDs: []string{input.DeviceID},
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// GetByUser retrieves the wallet configuration for a user.
func (s *Service) GetByUser(ctx context.Context, userID string) (Wallet, error) {
	return s.repo.GetByUser(ctx, userID)
}
