package verification

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.Mutex
	codes map[string]Code
}

// NewMemoryStore builds an in-memory code store for testing.
func NewMemoryStore() Store {
	return &memoryStore{codes: make(map[string]Code)}
}

func (s *memoryStore) Save(_ context.Context, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Contact] = code
	return nil
}

func (s *memoryStore) Consume(_ context.Context, contact, submitted string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[contact]
	if !ok {
		return ErrCodeNotFound
	}
	if code.Expired(now) {
		return ErrCodeExpired
	}
	if code.Value != submitted {
		return ErrCodeMismatch
	}
	delete(s.codes, contact)
	return nil
}

func (s *memoryStore) Peek(_ context.Context, contact, submitted string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[contact]
	if !ok {
		return ErrCodeNotFound
	}
	if code.Expired(now) {
		return ErrCodeExpired
	}
	if code.Value != submitted {
		return ErrCodeMismatch
	}
	return nil
}
