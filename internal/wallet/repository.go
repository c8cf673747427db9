package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrWalletNotFound indicates no wallet is provisioned for the user.
var ErrWalletNotFound = errors.New("wallet not found")

// Repository persists wallet configurations.
type Repository interface {
	Create(ctx context.Context, w Wallet) error
	GetByUser(ctx context.Context, userID string) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record. Strategies are stored in their "m-n"
// text form and parsed again on read.
func (r *PostgresRepository) Create(ctx context.Context, w Wallet) error {
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return err
	}
	strategies := make([]string, len(w.SignStrategies))
	for i, s := range w.SignStrategies {
		strategies[i] = s.String()
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (user_id, account_id, sub_pubkeys, sign_strategies, participant_device_ids, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, w.AccountID, w.SubPubkeys, strategies, w.ParticipantDeviceIDs, w.CreatedAt.UTC())
	return err
}

// GetByUser fetches the wallet provisioned for a user.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, account_id, sub_pubkeys, sign_strategies, participant_device_ids, created_at
        FROM wallets WHERE user_id = $1`, uid)

	var (
		w          Wallet
		id         uuid.UUID
		strategies []string
		createdAt  time.Time
	)
	if err := row.Scan(&id, &w.AccountID, &w.SubPubkeys, &strategies, &w.ParticipantDeviceIDs, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	w.UserID = id.String()
	w.CreatedAt = createdAt.UTC()
	w.SignStrategies = make([]SignStrategy, 0, len(strategies))
	for _, s := range strategies {
		parsed, err := ParseSignStrategy(s)
		if err != nil {
			return Wallet{}, err
		}
		w.SignStrategies = append(w.SignStrategies, parsed)
	}
	return w, nil
}
