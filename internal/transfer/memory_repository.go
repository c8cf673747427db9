package transfer

import (
	"context"
	"sort"
	"sync"
)

type memoryEntry struct {
	mu sync.Mutex
	tx CoinTransaction
}

// memoryRepository keeps transactions in a map with one lock per
// transaction, so mutations on different transactions never serialize
// behind each other.
type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemoryRepository builds an in-memory transaction store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]*memoryEntry)}
}

func (r *memoryRepository) Create(_ context.Context, tx CoinTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[tx.TxID]; exists {
		return ErrTxExists
	}
	r.entries[tx.TxID] = &memoryEntry{tx: tx.clone()}
	return nil
}

func (r *memoryRepository) Get(_ context.Context, txID string) (CoinTransaction, error) {
	entry, err := r.entry(txID)
	if err != nil {
		return CoinTransaction{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.tx.clone(), nil
}

func (r *memoryRepository) Mutate(_ context.Context, txID string, fn func(*CoinTransaction) error) (CoinTransaction, error) {
	entry, err := r.entry(txID)
	if err != nil {
		return CoinTransaction{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.tx.clone()
	if err := fn(&working); err != nil {
		return CoinTransaction{}, err
	}
	entry.tx = working.clone()
	return working, nil
}

func (r *memoryRepository) PendingFor(_ context.Context, userID string) ([]CoinTransaction, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []CoinTransaction
	for _, e := range entries {
		e.mu.Lock()
		tx := e.tx.clone()
		e.mu.Unlock()
		if pendingFor(tx, userID) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// pendingFor reports whether the user still has a move on the
// transaction: receivers see freshly created transfers, senders see
// approved ones and those still collecting signatures.
func pendingFor(tx CoinTransaction, userID string) bool {
	switch {
	case tx.ReceiverID == userID && tx.Status == StatusCreated:
		return true
	case tx.SenderID == userID && (tx.Status == StatusReceiverApproved || tx.Status == StatusSenderReconfirmed):
		return true
	default:
		return false
	}
}

func (r *memoryRepository) entry(txID string) (*memoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[txID]
	if !ok {
		return nil, ErrTxNotFound
	}
	return entry, nil
}
