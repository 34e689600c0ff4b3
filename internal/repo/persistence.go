package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// Persistence is the durable home of the scheduled transaction list.
// LoadAll is called once at startup; SaveAll after every mutation with the
// full list in insertion order.
type Persistence interface {
	LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error)
	SaveAll(ctx context.Context, items []model.ScheduledTransaction) error
}

const snapshotVersion = 1

// snapshot is the envelope used by the blob-style backends (file, redis, gcs).
type snapshot struct {
	Version int                          `json:"version"`
	SavedAt time.Time                    `json:"savedAt"`
	Items   []model.ScheduledTransaction `json:"items"`
}

func encodeSnapshot(items []model.ScheduledTransaction, now time.Time) ([]byte, error) {
	if items == nil {
		items = []model.ScheduledTransaction{}
	}
	return json.Marshal(snapshot{Version: snapshotVersion, SavedAt: now.UTC(), Items: items})
}

func decodeSnapshot(b []byte) ([]model.ScheduledTransaction, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s.Items, nil
}
