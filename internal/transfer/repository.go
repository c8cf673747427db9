package transfer

import (
	"context"
	"errors"
)

// ErrTxNotFound indicates no transaction exists for the id.
var ErrTxNotFound = errors.New("transaction not found")

// ErrTxExists indicates a create-time id collision. Ids are generated
// uuids, so hitting this means a caller bug.
var ErrTxExists = errors.New("transaction already exists")

// Repository persists coin transactions. Mutate is the only write path
// after creation: it runs fn on the current record under a per-
// transaction lock and persists the result only when fn succeeds, so
// concurrent operations on one transaction observe a strict before/after
// ordering while different transactions proceed independently.
type Repository interface {
	Create(ctx context.Context, tx CoinTransaction) error
	Get(ctx context.Context, txID string) (CoinTransaction, error)
	Mutate(ctx context.Context, txID string, fn func(*CoinTransaction) error) (CoinTransaction, error)
	PendingFor(ctx context.Context, userID string) ([]CoinTransaction, error)
}
