package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. History appends are a single
// UPDATE, so concurrent transitions never lose entries.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `token, name, email, role, skills, message, resume_ref, quiz, status, history, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Get(ctx context.Context, token string) (Record, error) {
	query := `SELECT ` + selectColumns + ` FROM applications WHERE token = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) Put(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO applications (
    token, name, email, role, skills, message, resume_ref, quiz, status, history, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (token) DO UPDATE SET
    name = EXCLUDED.name,
    email = EXCLUDED.email,
    role = EXCLUDED.role,
    skills = EXCLUDED.skills,
    message = EXCLUDED.message,
    resume_ref = EXCLUDED.resume_ref,
    quiz = EXCLUDED.quiz,
    status = EXCLUDED.status,
    history = EXCLUDED.history,
    submitted_at = EXCLUDED.submitted_at`

	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO applications (
    token, name, email, role, skills, message, resume_ref, quiz, status, history, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (token) DO NOTHING`

	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenTaken
	}
	return nil
}

func (r *PGRepo) AppendHistory(ctx context.Context, token, status string, at time.Time) (Record, error) {
	entry, err := json.Marshal([]HistoryEntry{{Status: status, At: at}})
	if err != nil {
		return Record{}, fmt.Errorf("encode history entry: %w", err)
	}
	query := `
UPDATE applications
SET status = $2, history = history || $3::jsonb
WHERE token = $1
RETURNING ` + selectColumns

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, token, status, string(entry)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) Load(ctx context.Context) (map[string]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM applications ORDER BY submitted_at`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := map[string]Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records[rec.Token] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func recordArgs(rec Record) ([]any, error) {
	var resumeRef sql.NullString
	if rec.ResumeRef != nil {
		resumeRef = sql.NullString{String: *rec.ResumeRef, Valid: true}
	}
	var quiz any
	if rec.Quiz != nil {
		raw, err := json.Marshal(rec.Quiz)
		if err != nil {
			return nil, fmt.Errorf("encode quiz: %w", err)
		}
		quiz = string(raw)
	}
	history := rec.History
	if history == nil {
		history = []HistoryEntry{}
	}
	rawHistory, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return []any{
		rec.Token,
		rec.Name,
		rec.Email,
		rec.Role,
		rec.Skills,
		rec.Message,
		resumeRef,
		quiz,
		rec.Status,
		string(rawHistory),
		rec.SubmittedAt,
	}, nil
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var resumeRef sql.NullString
	var quiz []byte
	var history []byte
	err := row.Scan(
		&rec.Token,
		&rec.Name,
		&rec.Email,
		&rec.Role,
		&rec.Skills,
		&rec.Message,
		&resumeRef,
		&quiz,
		&rec.Status,
		&history,
		&rec.SubmittedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if resumeRef.Valid {
		ref := resumeRef.String
		rec.ResumeRef = &ref
	}
	if len(quiz) > 0 {
		var q QuizResult
		if err := json.Unmarshal(quiz, &q); err != nil {
			return Record{}, fmt.Errorf("%w: quiz for %s: %v", ErrStorageCorrupt, rec.Token, err)
		}
		rec.Quiz = &q
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &rec.History); err != nil {
			return Record{}, fmt.Errorf("%w: history for %s: %v", ErrStorageCorrupt, rec.Token, err)
		}
	}
	rec.SubmittedAt = rec.SubmittedAt.UTC()
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
