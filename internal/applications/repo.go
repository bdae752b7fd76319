package applications

import (
	"context"
	"sync"
	"time"
)

// Repo defines persistence operations for application records.
type Repo interface {
	Get(ctx context.Context, token string) (Record, error)
	// Put inserts or replaces the record stored under rec.Token.
	Put(ctx context.Context, rec Record) error
	// Create inserts rec, failing with ErrTokenTaken if the token exists.
	Create(ctx context.Context, rec Record) error
	// AppendHistory sets the status and appends {status, at} to the history.
	AppendHistory(ctx context.Context, token, status string, at time.Time) (Record, error)
	Load(ctx context.Context) (map[string]Record, error)
}

// DocumentRepo implements Repo over a Document by read-modify-write of the
// whole mapping. Cycles are serialized within the process only.
type DocumentRepo struct {
	mu  sync.Mutex
	doc Document
}

func NewDocumentRepo(doc Document) *DocumentRepo {
	return &DocumentRepo{doc: doc}
}

// NewMemoryRepo returns a DocumentRepo over a fresh in-memory document.
func NewMemoryRepo() *DocumentRepo {
	return NewDocumentRepo(NewMemoryDocument())
}

func (r *DocumentRepo) Get(ctx context.Context, token string) (Record, error) {
	records, err := r.doc.Load(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, ok := records[token]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *DocumentRepo) Put(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.doc.Load(ctx)
	if err != nil {
		return err
	}
	records[rec.Token] = rec.Clone()
	return r.doc.Save(ctx, records)
}

func (r *DocumentRepo) Create(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.doc.Load(ctx)
	if err != nil {
		return err
	}
	if _, exists := records[rec.Token]; exists {
		return ErrTokenTaken
	}
	records[rec.Token] = rec.Clone()
	return r.doc.Save(ctx, records)
}

func (r *DocumentRepo) AppendHistory(ctx context.Context, token, status string, at time.Time) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.doc.Load(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, ok := records[token]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Status = status
	rec.History = append(rec.History, HistoryEntry{Status: status, At: at})
	records[token] = rec
	if err := r.doc.Save(ctx, records); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *DocumentRepo) Load(ctx context.Context) (map[string]Record, error) {
	return r.doc.Load(ctx)
}

var _ Repo = (*DocumentRepo)(nil)
