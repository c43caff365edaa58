// Package store persists per-site check state and an append-only history.
// The detection engine itself is stateless; callers own persistence.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// ErrNotFound is returned when a site has no stored check record.
var ErrNotFound = errors.New("check record not found")

// Store keeps the latest known state per site plus an audit trail.
type Store interface {
	// SaveCheck upserts the latest check state for the site.
	SaveCheck(ctx context.Context, rec types.CheckRecord) error
	// AppendHistory adds one audit row. Rows are never updated or deleted.
	AppendHistory(ctx context.Context, entry types.HistoryEntry) error
	// Get returns the latest check state, or ErrNotFound.
	Get(ctx context.Context, site string) (types.CheckRecord, error)
	// History lists audit rows for the site, newest first, up to limit.
	History(ctx context.Context, site string, limit int) ([]types.HistoryEntry, error)
}

// Record persists a detection result as both the latest state and a history
// row. Partial failure returns the first error; the history append is
// attempted even if the upsert fails so audit gaps stay rare.
func Record(ctx context.Context, s Store, site string, result types.ContactCheckResult) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC()
	saveErr := s.SaveCheck(ctx, types.CheckRecord{
		Site:       site,
		Status:     result.Status,
		ContactURL: result.ContactURL,
		HasForm:    result.HasForm,
		Message:    result.Message,
		CheckedAt:  now,
	})
	histErr := s.AppendHistory(ctx, types.HistoryEntry{
		Site:       site,
		Status:     result.Status,
		ContactURL: result.ContactURL,
		Message:    result.Message,
		CheckedAt:  now,
	})
	if saveErr != nil {
		return saveErr
	}
	return histErr
}
