package applications

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(token string) Record {
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	return Record{
		Token:       token,
		Name:        "Asha Rao",
		Email:       "asha@x.io",
		Role:        "Data Intern",
		Status:      StatusApplied,
		History:     []HistoryEntry{{Status: StatusApplied, At: at}},
		SubmittedAt: at,
	}
}

func TestOpenFileDocumentInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "applications.json")

	doc, err := OpenFileDocument(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, doc.Path())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{}\n", string(raw))
}

func TestOpenFileDocumentRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	corrupt := []byte(`{"app-1": {"token": "app-1", "history": [`)
	require.NoError(t, os.WriteFile(path, corrupt, 0o644))

	_, err := OpenFileDocument(context.Background(), path)
	require.ErrorIs(t, err, ErrStorageCorrupt)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, corrupt, raw, "corrupt document must not be overwritten")
}

func TestFileDocumentTreatsEmptyFileAsEmptyMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	doc, err := OpenFileDocument(context.Background(), path)
	require.NoError(t, err)
	records, err := doc.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFileDocumentRoundTripUsesIndentedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "applications.json")
	doc, err := OpenFileDocument(context.Background(), path)
	require.NoError(t, err)

	want := map[string]Record{"app-1": sampleRecord("app-1")}
	require.NoError(t, doc.Save(context.Background(), want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "{\n  \"app-1\": {\n    \"token\": \"app-1\""), string(raw))

	got, err := doc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestDocumentRepoCreateRejectsTakenToken(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleRecord("app-1")))
	other := sampleRecord("app-1")
	other.Name = "Someone Else"
	require.ErrorIs(t, repo.Create(ctx, other), ErrTokenTaken)

	got, err := repo.Get(ctx, "app-1")
	require.NoError(t, err)
	require.Equal(t, "Asha Rao", got.Name)
}

func TestDocumentRepoPutUpserts(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	rec := sampleRecord("app-1")
	require.NoError(t, repo.Put(ctx, rec))
	rec.Message = "updated"
	require.NoError(t, repo.Put(ctx, rec))

	got, err := repo.Get(ctx, "app-1")
	require.NoError(t, err)
	require.Equal(t, "updated", got.Message)
}

func TestDocumentRepoAppendHistoryUnknownToken(t *testing.T) {
	repo := NewMemoryRepo()
	_, err := repo.AppendHistory(context.Background(), "app-missing", StatusHired, time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentRepoSerializesConcurrentAppends(t *testing.T) {
	doc, err := OpenFileDocument(context.Background(), filepath.Join(t.TempDir(), "applications.json"))
	require.NoError(t, err)
	repo := NewDocumentRepo(doc)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleRecord("app-1")))

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendHistory(ctx, "app-1", fmt.Sprintf("Step %d", i), time.Now().UTC())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.Get(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, got.History, writers+1)
	require.Equal(t, got.History[len(got.History)-1].Status, got.Status)
}

func TestRecordCloneIsDeep(t *testing.T) {
	ref := "abc.pdf"
	chosen := 1
	rec := sampleRecord("app-1")
	rec.ResumeRef = &ref
	rec.Quiz = &QuizResult{Details: []QuizDetail{{Q: "q", Choices: []string{"a", "b"}, Chosen: &chosen}}}

	clone := rec.Clone()
	*clone.ResumeRef = "other.pdf"
	clone.Quiz.Details[0].Choices[0] = "z"
	*clone.Quiz.Details[0].Chosen = 0
	clone.History[0].Status = "changed"

	require.Equal(t, "abc.pdf", *rec.ResumeRef)
	require.Equal(t, "a", rec.Quiz.Details[0].Choices[0])
	require.Equal(t, 1, *rec.Quiz.Details[0].Chosen)
	require.Equal(t, StatusApplied, rec.History[0].Status)
}
