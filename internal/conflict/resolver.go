package conflict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server/storage"
	"github.com/iudanet/playsync/internal/validation"
)

// resolveFunc выбирает payload, который будет закоммичен для конфликта
type resolveFunc func(record *models.ConflictRecord, merged []byte) ([]byte, error)

// strategies - одна функция разрешения на каждый вариант Strategy
var strategies = map[models.Strategy]resolveFunc{
	models.StrategyServerWins: func(record *models.ConflictRecord, _ []byte) ([]byte, error) {
		return record.ServerPayload, nil
	},
	models.StrategyClientWins: func(record *models.ConflictRecord, _ []byte) ([]byte, error) {
		return record.ClientPayload, nil
	},
	models.StrategyMerge: func(_ *models.ConflictRecord, merged []byte) ([]byte, error) {
		if len(merged) == 0 {
			return nil, fmt.Errorf("%w: merge requires a resolved payload", models.ErrInvalidResolution)
		}
		return merged, nil
	},
}

// ResolvedPayload returns the payload a strategy would commit for the record
func ResolvedPayload(record *models.ConflictRecord, strategy models.Strategy, merged []byte) ([]byte, error) {
	resolve, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidResolution, strategy)
	}
	return resolve(record, merged)
}

// Resolver commits conflict resolutions through the store's conditional write
type Resolver struct {
	store  storage.EntityStorage
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time

	// ledgerBackoff задает повторы записи разрешения в журнал
	ledgerBackoff func() retry.Backoff
}

// NewResolver creates a new resolution strategy engine
func NewResolver(store storage.EntityStorage, ledger Ledger, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
		ledgerBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
		},
	}
}

// Resolve применяет стратегию к конфликту и коммитит результат с expectedVersion = ServerVersion.
// Если версия успела сдвинуться, возвращает новый конфликт в SaveResult.Conflict,
// исходная запись при этом остается неразрешенной.
func (r *Resolver) Resolve(
	ctx context.Context,
	record *models.ConflictRecord,
	strategy models.Strategy,
	merged []byte,
	actor string,
) (*models.SaveResult, error) {
	if record == nil {
		return nil, models.ErrConflictNotFound
	}
	if record.IsResolved() {
		return nil, fmt.Errorf("conflict %s: %w", record.ID, models.ErrAlreadyResolved)
	}

	payload, err := ResolvedPayload(record, strategy, merged)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateActor(actor); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}
	if err := validation.ValidatePayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidResolution, err)
	}

	if err := record.ChooseStrategy(strategy); err != nil {
		return nil, err
	}
	r.logger.Debug("Strategy chosen",
		"conflict_id", record.ID,
		"entity_id", record.EntityID,
		"strategy", strategy,
		"state", record.State())

	entity, err := r.store.ConditionalWrite(ctx, record.EntityID, record.ServerVersion, payload, actor)
	if err != nil {
		record.AbandonStrategy()
		var conflictErr *models.VersionConflictError
		if !errors.As(err, &conflictErr) {
			return nil, err
		}
		return r.reconflict(ctx, record, payload, conflictErr.Current, actor)
	}

	resolution := models.ConflictResolution{
		Strategy:         strategy,
		ResolvedPayload:  payload,
		ResolvedBy:       actor,
		ResolvedAt:       r.now().UTC(),
		ResultingVersion: entity.Version,
	}
	result := &models.SaveResult{Entity: entity}

	// Коммит уже состоялся и не откатывается: журнал догоняем повторами
	if err := r.markResolved(ctx, record.ID, resolution); err != nil {
		r.logger.Error("Failed to mark conflict resolved",
			"conflict_id", record.ID,
			"entity_id", record.EntityID,
			"state", record.State(),
			"resulting_version", entity.Version,
			"error", err)
		return result, fmt.Errorf("%w: conflict %s committed as version %d: %w",
			models.ErrLedgerStale, record.ID, entity.Version, err)
	}
	resolution.Apply(record)

	r.logger.Info("Conflict resolution committed",
		"conflict_id", record.ID,
		"entity_id", record.EntityID,
		"strategy", strategy,
		"version", entity.Version,
		"actor", actor)

	return result, nil
}

// markResolved повторяет запись разрешения в журнал.
// ErrAlreadyResolved на повторе значит, что предыдущая попытка все же прошла.
func (r *Resolver) markResolved(ctx context.Context, id string, resolution models.ConflictResolution) error {
	attempt := 0
	return retry.Do(ctx, r.ledgerBackoff(), func(ctx context.Context) error {
		attempt++
		err := r.ledger.MarkResolved(ctx, id, resolution)
		switch {
		case err == nil:
			return nil
		case attempt > 1 && errors.Is(err, models.ErrAlreadyResolved):
			return nil
		case errors.Is(err, models.ErrAlreadyResolved), errors.Is(err, models.ErrConflictNotFound):
			return err
		}

		r.logger.Warn("Conflict ledger update failed, retrying",
			"conflict_id", id, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

func (r *Resolver) reconflict(
	ctx context.Context,
	record *models.ConflictRecord,
	payload []byte,
	current *models.VersionedEntity,
	actor string,
) (*models.SaveResult, error) {
	next := newRecord(record.EntityID, record.ServerVersion, payload, current, actor)
	next.DetectedAt = r.now().UTC()

	if err := r.ledger.Append(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to record conflict on %s: %w", record.EntityID, err)
	}

	r.logger.Warn("Resolution lost a race, new conflict recorded",
		"conflict_id", record.ID,
		"new_conflict_id", next.ID,
		"entity_id", record.EntityID,
		"server_version", next.ServerVersion)

	return &models.SaveResult{Conflict: next}, nil
}
