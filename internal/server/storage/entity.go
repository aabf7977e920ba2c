package storage

import (
	"context"

	"github.com/iudanet/playsync/internal/models"
)

//go:generate moq -out entitystorage_mock.go . EntityStorage

// EntityStorage defines the versioned entity store.
// The version of an entity is mutated only by ConditionalWrite.
type EntityStorage interface {
	// CreateEntity stores a new entity with version 1
	// Returns models.ErrAlreadyExists if id is taken
	CreateEntity(ctx context.Context, id string, payload []byte, actor string) (*models.VersionedEntity, error)

	// GetEntity retrieves the current state of an entity
	// Returns models.ErrNotFound if entity doesn't exist
	GetEntity(ctx context.Context, id string) (*models.VersionedEntity, error)

	// ListEntities returns all entities ordered by id
	ListEntities(ctx context.Context) ([]*models.VersionedEntity, error)

	// ConditionalWrite atomically writes payload with version = expectedVersion + 1
	// only if the current version equals expectedVersion.
	// Returns *models.VersionConflictError (carrying the current state) on mismatch,
	// models.ErrNotFound if entity doesn't exist. Nothing is mutated on error.
	ConditionalWrite(ctx context.Context, id string, expectedVersion int64, payload []byte, actor string) (*models.VersionedEntity, error)
}
