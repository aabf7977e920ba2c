package storage

import (
	"context"
	"time"
)

// SyncReport итог последней синхронизации очереди.
// Хранится целиком, чтобы status мог показать, что осталось недоигранным.
type SyncReport struct {
	FinishedAt     time.Time `json:"finished_at"`
	PausedEntities []string  `json:"paused_entities,omitempty"` // сервер был недоступен для этих plays
	ConflictOps    []string  `json:"conflict_ops,omitempty"`    // операции, ждущие resolve
	Committed      int       `json:"committed"`
	Conflicts      int       `json:"conflicts"`
	Abandoned      int       `json:"abandoned"`
	AutoResolved   int       `json:"auto_resolved"`
}

// Drained reports whether the sync left nothing behind
func (r *SyncReport) Drained() bool {
	return r.Conflicts == 0 && len(r.PausedEntities) == 0
}

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the time of the last sync that drained the queue
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
	// Returns 0 if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (int64, error)

	// SaveSyncReport replaces the report of the last sync
	SaveSyncReport(ctx context.Context, report *SyncReport) error

	// GetSyncReport returns the report of the last sync, or nil if there was none
	GetSyncReport(ctx context.Context) (*SyncReport, error)
}
