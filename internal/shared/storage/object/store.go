package object

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrExists is returned when Save targets a key that is already taken.
	ErrExists = errors.New("object already exists")
	// ErrNotFound is returned when no object is stored under the key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that would escape the store root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Save never overwrites an existing object.
type ObjectStore interface {
	Save(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
