// Package engine is the entry point of the conflict resolution engine:
// entity creation, guarded saves, conflict resolution and the conflict history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/playsync/internal/conflict"
	"github.com/iudanet/playsync/internal/history"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server/storage"
	"github.com/iudanet/playsync/internal/validation"
)

// CommitListener receives every successful commit
type CommitListener func(event models.CommitEvent)

// Engine coordinates the entity store, conflict detector, resolver and ledger
type Engine struct {
	store     storage.EntityStorage
	ledger    *history.Ledger
	detector  *conflict.Detector
	resolver  *conflict.Resolver
	logger    *slog.Logger
	listeners map[uint64]CommitListener
	mu        sync.RWMutex
	nextID    uint64
}

// New creates a new engine
func New(store storage.EntityStorage, conflicts storage.ConflictStorage, logger *slog.Logger) *Engine {
	ledger := history.NewLedger(conflicts, logger)

	return &Engine{
		store:     store,
		ledger:    ledger,
		detector:  conflict.NewDetector(store, ledger, logger),
		resolver:  conflict.NewResolver(store, ledger, logger),
		logger:    logger,
		listeners: make(map[uint64]CommitListener),
	}
}

// CreateEntity creates a new entity at version 1
func (e *Engine) CreateEntity(ctx context.Context, id string, payload []byte, actor string) (*models.VersionedEntity, error) {
	if err := validation.ValidateEntityID(id); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}
	if err := validation.ValidateActor(actor); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}
	if err := validation.ValidatePayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}

	entity, err := e.store.CreateEntity(ctx, id, payload, actor)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Entity created", "entity_id", id, "actor", actor)
	e.publish(entity, actor)

	return entity, nil
}

// GetEntity returns the current state of an entity
func (e *Engine) GetEntity(ctx context.Context, id string) (*models.VersionedEntity, error) {
	return e.store.GetEntity(ctx, id)
}

// ListEntities returns all entities
func (e *Engine) ListEntities(ctx context.Context) ([]*models.VersionedEntity, error) {
	return e.store.ListEntities(ctx)
}

// SaveEntity выполняет запись под оптимистичной блокировкой.
// При конфликте возвращает SaveResult.Conflict, ошибка при этом nil.
func (e *Engine) SaveEntity(ctx context.Context, intent models.WriteIntent) (*models.SaveResult, error) {
	result, err := e.detector.AttemptWrite(ctx, intent)
	if err != nil {
		return nil, err
	}

	if result.Saved() {
		e.publish(result.Entity, intent.Actor)
	}

	return result, nil
}

// ResolveConflict разрешает конфликт выбранной стратегией.
// Разрешенная запись неизменяема: повторный вызов возвращает models.ErrAlreadyResolved.
// Если сущность успела измениться, возвращается новый конфликт.
// При models.ErrLedgerStale коммит состоялся и result валиден.
func (e *Engine) ResolveConflict(
	ctx context.Context,
	conflictID string,
	strategy models.Strategy,
	payload []byte,
	actor string,
) (*models.SaveResult, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidResolution, strategy)
	}

	record, err := e.ledger.Get(ctx, conflictID)
	if err != nil {
		return nil, err
	}

	result, err := e.resolver.Resolve(ctx, record, strategy, payload, actor)
	if err != nil && !errors.Is(err, models.ErrLedgerStale) {
		return nil, err
	}

	if result.Saved() {
		e.publish(result.Entity, actor)
	}

	return result, err
}

// GetConflict returns a conflict record by id
func (e *Engine) GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error) {
	return e.ledger.Get(ctx, id)
}

// GetConflictHistory returns every conflict recorded for the entity
func (e *Engine) GetConflictHistory(ctx context.Context, entityID string) ([]*models.ConflictRecord, error) {
	if _, err := e.store.GetEntity(ctx, entityID); err != nil {
		return nil, err
	}
	return e.ledger.ListByEntity(ctx, entityID)
}

// GetConflictAnalytics aggregates conflicts detected within the range
func (e *Engine) GetConflictAnalytics(ctx context.Context, timeRange models.TimeRange) (*models.ConflictAnalytics, error) {
	if !timeRange.From.IsZero() && !timeRange.To.IsZero() && timeRange.To.Before(timeRange.From) {
		return nil, fmt.Errorf("%w: range end %s is before start %s",
			models.ErrInvalidIntent, timeRange.To, timeRange.From)
	}
	return e.ledger.Aggregate(ctx, timeRange)
}

// Subscribe registers a listener for commit events and returns the unsubscribe function
func (e *Engine) Subscribe(listener CommitListener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Engine) publish(entity *models.VersionedEntity, actor string) {
	event := models.CommitEvent{
		EntityID: entity.ID,
		Version:  entity.Version,
		Actor:    actor,
		At:       entity.LastModifiedAt,
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, listener := range e.listeners {
		listener(event)
	}
}
