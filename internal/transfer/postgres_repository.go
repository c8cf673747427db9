package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covault-pay/covault/internal/wallet"
)

// PostgresRepository stores coin transactions in PostgreSQL. Mutations
// run inside a transaction holding a row lock on the record, which gives
// the per-transaction serialization the coordinator relies on.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed transaction store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const txColumns = `tx_id, sender_id, receiver_id, payload, status, strategy, signatures, created_at, updated_at`

// Create inserts a transaction record.
func (r *PostgresRepository) Create(ctx context.Context, t CoinTransaction) error {
	txID, err := uuid.Parse(t.TxID)
	if err != nil {
		return err
	}
	senderID, err := uuid.Parse(t.SenderID)
	if err != nil {
		return err
	}
	receiverID, err := uuid.Parse(t.ReceiverID)
	if err != nil {
		return err
	}
	sigs, err := json.Marshal(t.Signatures)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO coin_transactions (`+txColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txID, senderID, receiverID, t.Payload, t.Status.String(), t.Strategy.String(),
		sigs, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return err
}

// Get fetches a transaction by id.
func (r *PostgresRepository) Get(ctx context.Context, txID string) (CoinTransaction, error) {
	id, err := uuid.Parse(txID)
	if err != nil {
		return CoinTransaction{}, ErrTxNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+txColumns+` FROM coin_transactions WHERE tx_id = $1`, id)
	return scanTx(row)
}

// Mutate applies fn to the row under a SELECT ... FOR UPDATE lock and
// writes back status and signatures when fn succeeds.
func (r *PostgresRepository) Mutate(ctx context.Context, txID string, fn func(*CoinTransaction) error) (CoinTransaction, error) {
	id, err := uuid.Parse(txID)
	if err != nil {
		return CoinTransaction{}, ErrTxNotFound
	}

	dbTx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CoinTransaction{}, err
	}
	defer dbTx.Rollback(ctx) // nolint:errcheck

	row := dbTx.QueryRow(ctx, `SELECT `+txColumns+` FROM coin_transactions WHERE tx_id = $1 FOR UPDATE`, id)
	current, err := scanTx(row)
	if err != nil {
		return CoinTransaction{}, err
	}

	if err := fn(&current); err != nil {
		return CoinTransaction{}, err
	}

	sigs, err := json.Marshal(current.Signatures)
	if err != nil {
		return CoinTransaction{}, err
	}
	if _, err := dbTx.Exec(ctx, `UPDATE coin_transactions SET status = $1, signatures = $2, updated_at = $3 WHERE tx_id = $4`,
		current.Status.String(), sigs, current.UpdatedAt.UTC(), id); err != nil {
		return CoinTransaction{}, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return CoinTransaction{}, err
	}
	return current, nil
}

// PendingFor lists transactions still awaiting a move from the user.
func (r *PostgresRepository) PendingFor(ctx context.Context, userID string) ([]CoinTransaction, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+txColumns+` FROM coin_transactions
        WHERE (receiver_id = $1 AND status = $2)
           OR (sender_id = $1 AND status IN ($3, $4))
        ORDER BY created_at`,
		id, StatusCreated.String(), StatusReceiverApproved.String(), StatusSenderReconfirmed.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoinTransaction
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTx(row pgx.Row) (CoinTransaction, error) {
	var (
		t          CoinTransaction
		txID       uuid.UUID
		senderID   uuid.UUID
		receiverID uuid.UUID
		status     string
		strategy   string
		sigs       []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&txID, &senderID, &receiverID, &t.Payload, &status, &strategy, &sigs, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CoinTransaction{}, ErrTxNotFound
		}
		return CoinTransaction{}, err
	}
	t.TxID = txID.String()
	t.SenderID = senderID.String()
	t.ReceiverID = receiverID.String()
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()

	parsedStatus, err := ParseStatus(status)
	if err != nil {
		return CoinTransaction{}, err
	}
	t.Status = parsedStatus

	parsedStrategy, err := wallet.ParseSignStrategy(strategy)
	if err != nil {
		return CoinTransaction{}, err
	}
	t.Strategy = parsedStrategy

	if len(sigs) > 0 {
		if err := json.Unmarshal(sigs, &t.Signatures); err != nil {
			return CoinTransaction{}, err
		}
	}
	return t, nil
}
