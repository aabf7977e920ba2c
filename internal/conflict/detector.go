package conflict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server/storage"
	"github.com/iudanet/playsync/internal/validation"
)

// Detector applies write intents through the store's conditional write
// and records every version mismatch in the ledger.
type Detector struct {
	store  storage.EntityStorage
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewDetector creates a new conflict detector
func NewDetector(store storage.EntityStorage, ledger Ledger, logger *slog.Logger) *Detector {
	return &Detector{
		store:  store,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// AttemptWrite пытается закоммитить intent.
// Успех: SaveResult.Entity с новой версией. Конфликт: SaveResult.Conflict,
// запись уже добавлена в журнал, в хранилище ничего не изменено.
// ErrNotFound и ErrStoreUnavailable возвращаются как ошибки.
func (d *Detector) AttemptWrite(ctx context.Context, intent models.WriteIntent) (*models.SaveResult, error) {
	if err := validation.ValidateIntent(intent); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}

	entity, err := d.store.ConditionalWrite(ctx, intent.EntityID, intent.BaseVersion, intent.ProposedPayload, intent.Actor)
	if err == nil {
		d.logger.Debug("Write committed",
			"entity_id", entity.ID,
			"version", entity.Version,
			"actor", intent.Actor)
		return &models.SaveResult{Entity: entity}, nil
	}

	var conflictErr *models.VersionConflictError
	if !errors.As(err, &conflictErr) {
		return nil, err
	}

	record := newRecord(intent.EntityID, intent.BaseVersion, intent.ProposedPayload, conflictErr.Current, intent.Actor)
	record.DetectedAt = d.now().UTC()

	if err := d.ledger.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record conflict on %s: %w", intent.EntityID, err)
	}

	d.logger.Info("Version conflict detected",
		"entity_id", intent.EntityID,
		"conflict_id", record.ID,
		"base_version", record.BaseVersion,
		"server_version", record.ServerVersion,
		"actor", intent.Actor)

	return &models.SaveResult{Conflict: record}, nil
}
