package repo

import (
	"context"
	"sync"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// MemoryStore keeps the last saved list in process memory. Data is lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	items []model.ScheduledTransaction
	saves int
}

func NewMemoryStore(seed ...model.ScheduledTransaction) *MemoryStore {
	return &MemoryStore{items: cloneAll(seed)}
}

func (m *MemoryStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.items), nil
}

func (m *MemoryStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = cloneAll(items)
	m.saves++
	return nil
}

// Saves reports how many times SaveAll succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneAll(items []model.ScheduledTransaction) []model.ScheduledTransaction {
	out := make([]model.ScheduledTransaction, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

var _ Persistence = (*MemoryStore)(nil)
