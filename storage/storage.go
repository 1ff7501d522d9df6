package storage

import (
	"context"
	"sync"
	"time"

	"letter-simplify-service/models"
)

// Store persists processed explanations. It is never on the request hot
// path: a failed save is logged and the caller's response is unaffected.
type Store interface {
	SaveExplanation(ctx context.Context, exp *models.Explanation) (int64, error)
	GetExplanation(ctx context.Context, id int64) (*models.Explanation, error)
	Close() error
}

// MemStore is the in-memory Store used when no database is configured.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.Explanation
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		nextID: 1,
		items:  make(map[int64]models.Explanation),
	}
}

// SaveExplanation stores a copy of the explanation and returns its id
func (m *MemStore) SaveExplanation(_ context.Context, exp *models.Explanation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	stored := *exp
	stored.ID = id
	stored.CreatedAt = time.Now()
	m.items[id] = stored

	exp.ID = id
	exp.CreatedAt = stored.CreatedAt
	return id, nil
}

// GetExplanation returns the stored explanation, or nil when it does not exist
func (m *MemStore) GetExplanation(_ context.Context, id int64) (*models.Explanation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &exp, nil
}

// Close is a no-op for the in-memory store
func (m *MemStore) Close() error {
	return nil
}
