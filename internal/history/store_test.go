package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stemsi/exstem-client/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(attemptID string, submittedAt time.Time) (model.AttemptState, model.SubmissionResult) {
	st := model.AttemptState{
		TestID:           "test-1",
		Title:            "Algebra",
		TotalSeconds:     600,
		RemainingSeconds: 540,
	}
	res := model.SubmissionResult{
		AttemptID:      attemptID,
		TotalQuestions: 10,
		Attempted:      8,
		Correct:        6,
		Wrong:          2,
		Skipped:        2,
		Percentage:     60,
		SubmittedAt:    submittedAt,
		Source:         model.ResultSourceRemote,
	}
	return st, res
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	st1, res1 := sampleResult("att-1", base)
	st2, res2 := sampleResult("att-2", base.Add(time.Hour))

	if err := s.RecordResult(context.Background(), st1, res1); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := s.RecordResult(context.Background(), st2, res2); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	records, err := s.ListAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	// Newest first.
	if records[0].AttemptID != "att-2" || records[1].AttemptID != "att-1" {
		t.Errorf("order = %s, %s, want att-2 then att-1", records[0].AttemptID, records[1].AttemptID)
	}

	got := records[1]
	if got.TestID != "test-1" || got.Title != "Algebra" {
		t.Errorf("record = %+v", got)
	}
	if got.Correct != 6 || got.Percentage != 60 || got.Source != "REMOTE" {
		t.Errorf("record = %+v", got)
	}
	if got.DurationSec != 60 {
		t.Errorf("DurationSec = %d, want 60", got.DurationSec)
	}
	if !got.SubmittedAt.Equal(base) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, base)
	}
}

// Replaying the same attempt id updates in place instead of duplicating.
func TestStore_RecordIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	st, res := sampleResult("att-1", base)
	if err := s.RecordResult(context.Background(), st, res); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	// Second write: the remote result replaced a local fallback.
	res.Source = model.ResultSourceLocal
	res.Correct = 0
	if err := s.RecordResult(context.Background(), st, res); err != nil {
		t.Fatalf("RecordResult replay: %v", err)
	}

	records, err := s.ListAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1 after replay", len(records))
	}
	if records[0].Source != "LOCAL" || records[0].Correct != 0 {
		t.Errorf("record = %+v, want updated values", records[0])
	}
}

// A corrupt timestamp is an error, not a silent zero time.
func TestStore_CorruptTimestampSurfaces(t *testing.T) {
	s := openTestStore(t)

	_, err := s.db.Exec(
		`INSERT INTO attempts (attempt_id, test_id, title, total_questions, attempted, correct, wrong, skipped, percentage, source, duration_sec, submitted_at)
		 VALUES ('att-bad', 'test-1', 'Algebra', 1, 1, 1, 0, 0, 100, 'REMOTE', 60, 'yesterday-ish')`)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	if _, err := s.ListAttempts(context.Background(), 10); err == nil {
		t.Fatal("ListAttempts succeeded over a corrupt submitted_at")
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		st, res := sampleResult(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := s.RecordResult(context.Background(), st, res); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}

	records, err := s.ListAttempts(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}
