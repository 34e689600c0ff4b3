package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

const DefaultGCSObject = "scheduled/snapshot.json"

// GCSStore keeps the snapshot as one object in a Cloud Storage bucket.
// It relies on Application Default Credentials unless options say otherwise.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

func NewGCSStore(ctx context.Context, bucket, object string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket must not be empty")
	}
	if object == "" {
		object = DefaultGCSObject
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, object: object}, nil
}

func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.bucket, s.object, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return decodeSnapshot(b)
}

func (s *GCSStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	b, err := encodeSnapshot(items, time.Now())
	if err != nil {
		return err
	}

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"
	// Snapshots are small; send them in a single request.
	w.ChunkSize = 0

	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", s.bucket, s.object, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return nil
}

var _ Persistence = (*GCSStore)(nil)
