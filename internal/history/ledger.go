// Package history хранит журнал конфликтов и считает по нему аналитику.
// Журнал только дополняется; единственное изменение записи - переход в resolved.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/playsync/internal/crypto"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server/storage"
)

// Ledger is the conflict history and analytics ledger
type Ledger struct {
	storage storage.ConflictStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewLedger creates a ledger on top of the conflict storage
func NewLedger(conflictStorage storage.ConflictStorage, logger *slog.Logger) *Ledger {
	return &Ledger{
		storage: conflictStorage,
		logger:  logger,
		now:     time.Now,
	}
}

// Append записывает новый неразрешенный конфликт.
// ID, DetectedAt и digests заполняются, если не заданы.
func (l *Ledger) Append(ctx context.Context, record *models.ConflictRecord) error {
	if record.IsResolved() {
		return fmt.Errorf("append conflict %q: %w", record.ID, models.ErrAlreadyResolved)
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.DetectedAt.IsZero() {
		record.DetectedAt = l.now().UTC()
	}
	record.ClientDigest = crypto.PayloadDigest(record.ClientPayload)
	record.ServerDigest = crypto.PayloadDigest(record.ServerPayload)

	if err := l.storage.AppendConflict(ctx, record); err != nil {
		return fmt.Errorf("failed to append conflict: %w", err)
	}

	l.logger.Info("Conflict recorded",
		"conflict_id", record.ID,
		"entity_id", record.EntityID,
		"base_version", record.BaseVersion,
		"server_version", record.ServerVersion,
		"detected_by", record.DetectedBy)

	return nil
}

// MarkResolved переводит запись в состояние resolved.
// Повторный вызов для той же записи возвращает models.ErrAlreadyResolved.
func (l *Ledger) MarkResolved(ctx context.Context, id string, resolution models.ConflictResolution) error {
	if !resolution.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidResolution, resolution.Strategy)
	}

	if resolution.ResolvedAt.IsZero() {
		resolution.ResolvedAt = l.now().UTC()
	}
	resolution.ResolvedDigest = crypto.PayloadDigest(resolution.ResolvedPayload)

	if err := l.storage.MarkConflictResolved(ctx, id, resolution); err != nil {
		return fmt.Errorf("failed to mark conflict %s resolved: %w", id, err)
	}

	l.logger.Info("Conflict resolved",
		"conflict_id", id,
		"strategy", resolution.Strategy,
		"resolved_by", resolution.ResolvedBy,
		"resulting_version", resolution.ResultingVersion)

	return nil
}

// Get returns a conflict record by id
func (l *Ledger) Get(ctx context.Context, id string) (*models.ConflictRecord, error) {
	record, err := l.storage.GetConflict(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}
	return record, nil
}

// ListByEntity returns the conflict history of an entity in detection order
func (l *Ledger) ListByEntity(ctx context.Context, entityID string) ([]*models.ConflictRecord, error) {
	records, err := l.storage.ListConflictsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts for %s: %w", entityID, err)
	}
	return records, nil
}

// ListAll returns every conflict detected in the range
func (l *Ledger) ListAll(ctx context.Context, timeRange models.TimeRange) ([]*models.ConflictRecord, error) {
	records, err := l.storage.ListConflicts(ctx, timeRange)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return records, nil
}

// Aggregate считает аналитику по конфликтам, обнаруженным в диапазоне
func (l *Ledger) Aggregate(ctx context.Context, timeRange models.TimeRange) (*models.ConflictAnalytics, error) {
	records, err := l.ListAll(ctx, timeRange)
	if err != nil {
		return nil, err
	}
	return Summarize(records, timeRange), nil
}
