package applications

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{"token", "name", "email", "role", "skills", "message", "resume_ref", "quiz", "status", "history", "submitted_at"}

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newPGRepo(t)
	rec := sampleRecord("app-1")

	mock.ExpectExec("INSERT INTO applications").
		WithArgs(
			rec.Token,
			rec.Name,
			rec.Email,
			rec.Role,
			"",
			"",
			nil, // resume_ref
			nil, // quiz
			StatusApplied,
			sqlmock.AnyArg(), // history
			rec.SubmittedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoPutUpserts(t *testing.T) {
	repo, mock := newPGRepo(t)
	rec := sampleRecord("app-1")
	ref := "7f3c.pdf"
	rec.ResumeRef = &ref
	rec.Skills = "sql"
	rec.Quiz = &QuizResult{Role: "Data Intern", Percent: 80, Correct: 4, Total: 5, Details: []QuizDetail{}}
	rec.Status = StatusInterview
	rec.History = append(rec.History, HistoryEntry{Status: StatusInterview, At: time.Date(2026, time.March, 3, 10, 30, 0, 0, time.UTC)})

	mock.ExpectExec(`(?s)INSERT INTO applications (.+) ON CONFLICT \(token\) DO UPDATE`).
		WithArgs(
			"app-1",
			"Asha Rao",
			"asha@x.io",
			"Data Intern",
			"sql",
			"",
			ref,
			`{"role":"Data Intern","percent":80,"correct":4,"total":5,"details":[]}`,
			StatusInterview,
			`[{"status":"Applied","at":"2026-03-02T09:00:00Z"},{"status":"Interview","at":"2026-03-03T10:30:00Z"}]`,
			rec.SubmittedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoPutPropagatesError(t *testing.T) {
	repo, mock := newPGRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO applications").WillReturnError(boom)

	if err := repo.Put(context.Background(), sampleRecord("app-1")); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestPGRepoCreateConflict(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), sampleRecord("app-1"))
	if !errors.Is(err, ErrTokenTaken) {
		t.Fatalf("expected ErrTokenTaken, got %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	repo, mock := newPGRepo(t)
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(pgColumns).AddRow(
		"app-1", "Asha Rao", "asha@x.io", "Data Intern", "sql", "", "abc.pdf",
		`{"percent":80,"correct":4,"total":5,"details":[{"q":"x","choices":["a"],"chosen":0,"correct":0}]}`,
		StatusApplied, `[{"status":"Applied","at":"2026-03-02T09:00:00Z"}]`, at,
	)
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE token").
		WithArgs("app-1").
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ResumeRef == nil || *rec.ResumeRef != "abc.pdf" {
		t.Fatalf("unexpected resume ref: %v", rec.ResumeRef)
	}
	if rec.Quiz == nil || rec.Quiz.Percent != 80 || len(rec.Quiz.Details) != 1 {
		t.Fatalf("unexpected quiz: %+v", rec.Quiz)
	}
	if len(rec.History) != 1 || !rec.History[0].At.Equal(at) {
		t.Fatalf("unexpected history: %+v", rec.History)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE token").
		WithArgs("app-missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "app-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoAppendHistory(t *testing.T) {
	repo, mock := newPGRepo(t)
	at := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(pgColumns).AddRow(
		"app-1", "Asha Rao", "asha@x.io", "Data Intern", "", "", nil, nil,
		StatusInterview,
		`[{"status":"Applied","at":"2026-03-02T09:00:00Z"},{"status":"Interview","at":"2026-03-03T10:00:00Z"}]`,
		at.Add(-24*time.Hour),
	)
	mock.ExpectQuery("UPDATE applications").
		WithArgs("app-1", StatusInterview, `[{"status":"Interview","at":"2026-03-03T10:00:00Z"}]`).
		WillReturnRows(rows)

	rec, err := repo.AppendHistory(context.Background(), "app-1", StatusInterview, at)
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if rec.Status != StatusInterview || len(rec.History) != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Quiz != nil || rec.ResumeRef != nil {
		t.Fatalf("expected null quiz and resume ref, got %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendHistoryNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("UPDATE applications").
		WillReturnRows(sqlmock.NewRows(pgColumns))

	if _, err := repo.AppendHistory(context.Background(), "app-missing", StatusHired, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoLoad(t *testing.T) {
	repo, mock := newPGRepo(t)
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(pgColumns).
		AddRow("app-1", "A", "a@x.io", "r", "", "", nil, nil, StatusApplied, `[]`, at).
		AddRow("app-2", "B", "b@x.io", "r", "", "", nil, nil, StatusApplied, `[]`, at)
	mock.ExpectQuery("SELECT (.+) FROM applications ORDER BY submitted_at").
		WillReturnRows(rows)

	records, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}
