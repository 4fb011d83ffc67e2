package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"meetme/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecord() *models.MeetingRecord {
	return &models.MeetingRecord{
		Name:      "Planning",
		Comments:  []string{"first pass"},
		DateRange: [2]string{"2024-06-10", "2024-06-11"},
		TimeRange: models.TimeRange{"09:00", "17:00"},
		FreeTime: [][]models.TimeRange{
			{{"09:00", "10:00"}, {"11:00", "17:00"}},
			{},
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meetings.json")

	s, err := NewFileStore(testLogger(), path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	id, err := s.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected an id")
	}

	// A fresh store must see what the first one wrote.
	reopened, err := NewFileStore(testLogger(), path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	rec, err := reopened.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Name != "Planning" || rec.CreatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.FreeTime) != 2 || rec.FreeTime[0][1] != (models.TimeRange{"11:00", "17:00"}) {
		t.Fatalf("unexpected free time %v", rec.FreeTime)
	}

	rec.Comments = append(rec.Comments, "works for me")
	if err := reopened.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || len(list[0].Comments) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := reopened.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := reopened.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := reopened.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFileStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(testLogger(), filepath.Join(t.TempDir(), "m.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	id, err := s.Create(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec, _ := s.Get(ctx, id)
	rec.Name = "changed"
	again, _ := s.Get(ctx, id)
	if again.Name != "Planning" {
		t.Fatal("mutating a returned record must not change the store")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(testLogger(), path); err == nil {
		t.Fatal("expected an error for a corrupt meetings file")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pass123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	rec := &models.MeetingRecord{PasswordHash: hash}
	if err := CheckPassword(rec, "pass123"); err != nil {
		t.Fatalf("CheckPassword should succeed: %v", err)
	}
	if err := CheckPassword(rec, "wrong-pass"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}

	open, err := HashPassword("")
	if err != nil || open != "" {
		t.Fatalf("expected empty hash for empty password, got %q, %v", open, err)
	}
	if err := CheckPassword(&models.MeetingRecord{}, "anything"); err != nil {
		t.Fatalf("open meetings accept any password, got %v", err)
	}
}

func TestEncodeColumns(t *testing.T) {
	cols, err := encodeColumns(&models.MeetingRecord{
		DateRange: [2]string{"2024-06-10", "2024-06-10"},
		TimeRange: models.TimeRange{"09:00", "17:00"},
		FreeTime:  [][]models.TimeRange{{{"09:00", "17:00"}}},
	})
	if err != nil {
		t.Fatalf("encodeColumns failed: %v", err)
	}
	if string(cols.comments) != "[]" {
		t.Fatalf("expected nil comments stored as [], got %s", cols.comments)
	}
	if string(cols.freeTime) != `[[["09:00","17:00"]]]` {
		t.Fatalf("unexpected free_time column %s", cols.freeTime)
	}
}
