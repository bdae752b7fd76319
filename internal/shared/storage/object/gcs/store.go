package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"application-tracker/internal/shared/storage/object"
)

// Store implements ObjectStore using Google Cloud Storage.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS-backed object store using application default credentials.
func New(ctx context.Context, bucket, prefix string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Save streams the reader into the bucket. The write only succeeds if the object does not exist yet.
func (s *Store) Save(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	name := s.objectName(storageKey)
	obj := s.client.Bucket(s.bucket).Object(name).If(storage.Conditions{DoesNotExist: true})

	wc := obj.NewWriter(ctx)
	if contentType != "" {
		wc.ContentType = contentType
	}
	written, err := io.Copy(wc, r)
	if err != nil {
		wc.Close()
		return 0, fmt.Errorf("failed to write data to object %s: %w", name, err)
	}
	if err := wc.Close(); err != nil {
		return 0, fmt.Errorf("failed to close object writer %s: %w", name, err)
	}
	return written, nil
}

// Open returns a reader for the stored object.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	name := s.objectName(storageKey)
	rc, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", name, err)
	}
	return rc, nil
}

// Delete removes the stored object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	name := s.objectName(storageKey)
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectName(storageKey string) string {
	key := strings.TrimLeft(storageKey, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ object.ObjectStore = (*Store)(nil)
