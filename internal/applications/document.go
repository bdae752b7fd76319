package applications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Document is the unit of durability: the whole token -> record mapping,
// loaded and saved at once.
type Document interface {
	Load(ctx context.Context) (map[string]Record, error)
	Save(ctx context.Context, records map[string]Record) error
}

// FileDocument keeps the mapping in a single JSON file.
type FileDocument struct {
	path string
}

// OpenFileDocument prepares the file at path. A missing file is initialized
// with an empty mapping; an unreadable one fails with ErrStorageCorrupt and
// is left untouched.
func OpenFileDocument(ctx context.Context, path string) (*FileDocument, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	doc := &FileDocument{path: path}
	if _, err := doc.Load(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// Path returns the backing file path.
func (d *FileDocument) Path() string {
	return d.path
}

func (d *FileDocument) Load(ctx context.Context) (map[string]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		records := map[string]Record{}
		if err := d.Save(ctx, records); err != nil {
			return nil, err
		}
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	return decodeDocument(raw)
}

// Save writes the mapping to a temp file and renames it over the document.
func (d *FileDocument) Save(ctx context.Context, records map[string]Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeDocument(records)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// MemoryDocument holds the encoded mapping in memory, mirroring FileDocument
// byte for byte.
type MemoryDocument struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{}
}

func (d *MemoryDocument) Load(ctx context.Context) (map[string]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.data == nil {
		return map[string]Record{}, nil
	}
	return decodeDocument(d.data)
}

func (d *MemoryDocument) Save(ctx context.Context, records map[string]Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeDocument(records)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.data = data
	d.mu.Unlock()
	return nil
}

// Bytes returns a copy of the encoded mapping.
func (d *MemoryDocument) Bytes() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.data...)
}

func encodeDocument(records map[string]Record) ([]byte, error) {
	if records == nil {
		records = map[string]Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeDocument(raw []byte) (map[string]Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]Record{}, nil
	}
	var records map[string]Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	if records == nil {
		records = map[string]Record{}
	}
	return records, nil
}
