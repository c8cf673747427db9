package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/covault-pay/covault/internal/account"
	"github.com/covault-pay/covault/internal/wallet"
)

var (
	// ErrSenderMismatch means the payload's declared sender differs from
	// the authenticated user.
	ErrSenderMismatch = errors.New("transaction sender is not the authenticated user")

	// ErrReceiverNotFound means the receiver does not resolve in the
	// user directory.
	ErrReceiverNotFound = errors.New("receiver not found")

	// ErrInvalidStateTransition means the requested operation is not
	// legal from the transaction's current status. Status is unchanged.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotCounterparty means the user has no role that permits the
	// operation on this transaction.
	ErrNotCounterparty = errors.New("user is not the acting party of this transaction")
)

const (
	broadcastAttempts = 3
	broadcastBackoff  = 500 * time.Millisecond
	broadcastTimeout  = 30 * time.Second
)

// Service coordinates the transfer lifecycle: proposal, counter-party
// response, sender reconfirmation, signature collection, and the
// threshold flip to broadcast. It is the sole writer of transaction
// status and signatures.
type Service struct {
	repo      Repository
	directory account.Repository
	wallets   *wallet.Service
	caster    Broadcaster
	logger    *slog.Logger
}

// NewService constructs a transfer coordinator.
func NewService(repo Repository, directory account.Repository, wallets *wallet.Service, caster Broadcaster, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, wallets: wallets, caster: caster, logger: logger}
}

// ProposeInput carries a transfer proposal. Payload is the opaque raw
// transfer blob; decoding it is the client's concern, the coordinator
// persists it untouched.
type ProposeInput struct {
	DeclaredSender string
	Receiver       string
	Payload        string
}

// Propose validates the proposal and creates the transaction in Created
// status, snapshotting the sender wallet's active sign strategy onto the
// record so later threshold checks use the strategy in force at
// proposal time.
func (s *Service) Propose(ctx context.Context, senderID string, input ProposeInput) (CoinTransaction, error) {
	if input.DeclaredSender != senderID {
		return CoinTransaction{}, ErrSenderMismatch
	}
	if _, err := s.directory.FindByID(ctx, input.Receiver); err != nil {
		if errors.Is(err, account.ErrNotRegistered) {
			return CoinTransaction{}, ErrReceiverNotFound
		}
		return CoinTransaction{}, fmt.Errorf("directory lookup: %w", err)
	}
	senderWallet, err := s.wallets.GetByUser(ctx, senderID)
	if err != nil {
		return CoinTransaction{}, err
	}

	now := time.Now().UTC()
	tx := CoinTransaction{
		TxID:       uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: input.Receiver,
		Payload:    input.Payload,
		Status:     StatusCreated,
		Strategy:   senderWallet.ActiveStrategy(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return CoinTransaction{}, err
	}
	return tx, nil
}

// Respond records the receiver's decision on a freshly created transfer.
func (s *Service) Respond(ctx context.Context, userID, txID string, approved bool) (CoinTransaction, error) {
	return s.repo.Mutate(ctx, txID, func(tx *CoinTransaction) error {
		if tx.ReceiverID != userID {
			return ErrNotCounterparty
		}
		if tx.Status != StatusCreated {
			return ErrInvalidStateTransition
		}
		if approved {
			tx.Status = StatusReceiverApproved
		} else {
			tx.Status = StatusReceiverRejected
		}
		tx.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Reconfirm records the sender's final go/no-go after receiver approval.
func (s *Service) Reconfirm(ctx context.Context, userID, txID string, confirmed bool) (CoinTransaction, error) {
	return s.repo.Mutate(ctx, txID, func(tx *CoinTransaction) error {
		if tx.SenderID != userID {
			return ErrNotCounterparty
		}
		if tx.Status != StatusReceiverApproved {
			return ErrInvalidStateTransition
		}
		if confirmed {
			tx.Status = StatusSenderReconfirmed
		} else {
			tx.Status = StatusSenderCanceled
		}
		tx.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// SubmitResult reports the outcome of a signature submission.
type SubmitResult struct {
	Tx          CoinTransaction
	Count       int
	Broadcasted bool
}

// SubmitSignature appends a device signature to a reconfirmed transfer
// and flips it to Broadcast once the distinct-signature count satisfies
// the transaction's strategy. Duplicate signature values are ignored and
// never re-trigger a broadcast. The settlement hand-off runs in the
// background, outside the per-transaction lock; its failure never
// reverts the status.
func (s *Service) SubmitSignature(ctx context.Context, userID, txID, deviceID, signature string) (SubmitResult, error) {
	var result SubmitResult
	tx, err := s.repo.Mutate(ctx, txID, func(tx *CoinTransaction) error {
		if tx.SenderID != userID {
			return ErrNotCounterparty
		}
		switch tx.Status {
		case StatusSenderReconfirmed:
		case StatusBroadcast:
			// a duplicate of an already-counted signature is an idempotent no-op
			if tx.hasSignature(signature) {
				result.Count = len(tx.Signatures)
				return nil
			}
			return ErrInvalidStateTransition
		default:
			return ErrInvalidStateTransition
		}

		count, added := tx.addSignature(Signature{DeviceID: deviceID, Value: signature})
		result.Count = count
		if added && tx.Strategy.Satisfied(count) {
			tx.Status = StatusBroadcast
			result.Broadcasted = true
		}
		tx.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	result.Tx = tx

	if result.Broadcasted && s.caster != nil {
		go s.broadcast(tx)
	}
	return result, nil
}

// PendingFor returns a snapshot of the transactions still awaiting a
// move from the user.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]CoinTransaction, error) {
	return s.repo.PendingFor(ctx, userID)
}

// Get fetches one transaction; only its parties may see it.
func (s *Service) Get(ctx context.Context, userID, txID string) (CoinTransaction, error) {
	tx, err := s.repo.Get(ctx, txID)
	if err != nil {
		return CoinTransaction{}, err
	}
	if tx.SenderID != userID && tx.ReceiverID != userID {
		return CoinTransaction{}, ErrNotCounterparty
	}
	return tx, nil
}

// broadcast hands the transaction to the settlement layer with bounded
// retries. Failures are logged for operator retry; the transaction
// keeps its Broadcast status either way.
func (s *Service) broadcast(tx CoinTransaction) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	delay := broadcastBackoff
	var err error
	for i := 0; i < broadcastAttempts; i++ {
		if err = s.caster.SubmitForBroadcast(ctx, tx.TxID, tx.Payload, tx.Signatures); err == nil {
			return
		}
		if i == broadcastAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			i = broadcastAttempts
		case <-time.After(delay):
			delay *= 2
		}
	}
	if s.logger != nil {
		s.logger.Error("broadcast hand-off failed", "tx_id", tx.TxID, "error", errors.Join(ErrBroadcastFailed, err))
	}
}
