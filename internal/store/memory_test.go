package store

import (
	"context"
	"errors"
	"testing"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

func TestMemoryStore_RecordAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := Record(ctx, s, "example.com", types.Found("https://example.com/contact", "confirmed"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	rec, err := s.Get(ctx, "example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != types.StatusFound || !rec.HasForm {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.CheckedAt.IsZero() {
		t.Fatal("checked_at must be set")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "unknown.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_HistoryNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = Record(ctx, s, "example.com", types.NotFound("nothing yet"))
	_ = Record(ctx, s, "example.com", types.Found("https://example.com/contact", "confirmed"))

	entries, err := s.History(ctx, "example.com", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(entries))
	}
	if entries[0].Status != types.StatusFound {
		t.Fatalf("history must be newest first, got %+v", entries)
	}

	limited, _ := s.History(ctx, "example.com", 1)
	if len(limited) != 1 {
		t.Fatalf("limit must apply, got %d rows", len(limited))
	}
}

func TestMemoryStore_LatestStateIsUpserted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = Record(ctx, s, "example.com", types.NotFound("nothing yet"))
	_ = Record(ctx, s, "example.com", types.NoForm("https://example.com/contact", "no usable form"))

	rec, err := s.Get(ctx, "example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != types.StatusNoForm {
		t.Fatalf("latest state must win, got %s", rec.Status)
	}
}
