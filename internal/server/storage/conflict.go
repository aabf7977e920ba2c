package storage

import (
	"context"

	"github.com/iudanet/playsync/internal/models"
)

//go:generate moq -out conflictstorage_mock.go . ConflictStorage

// ConflictStorage defines append-only persistence for conflict records
type ConflictStorage interface {
	// AppendConflict stores a new conflict record
	AppendConflict(ctx context.Context, record *models.ConflictRecord) error

	// GetConflict retrieves a conflict record by ID
	// Returns models.ErrConflictNotFound if record doesn't exist
	GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error)

	// MarkConflictResolved performs the single allowed unresolved -> resolved transition
	// Returns models.ErrAlreadyResolved if record is already resolved,
	// models.ErrConflictNotFound if record doesn't exist
	MarkConflictResolved(ctx context.Context, id string, resolution models.ConflictResolution) error

	// ListConflictsByEntity returns all records of an entity ordered by detection time
	ListConflictsByEntity(ctx context.Context, entityID string) ([]*models.ConflictRecord, error)

	// ListConflicts returns all records detected within the time range ordered by detection time
	ListConflicts(ctx context.Context, timeRange models.TimeRange) ([]*models.ConflictRecord, error)
}
