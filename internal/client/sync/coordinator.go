// Package sync реплеит офлайн-очередь на сервере после восстановления связи.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/playsync/internal/client/queue"
	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/models"
)

//go:generate moq -out remote_mock.go . Remote

// ErrOffline is returned when a sync is requested without connectivity
var ErrOffline = errors.New("client is offline")

// ErrResolvedElsewhere is returned by ResolvePending when the conflict was
// already resolved by another actor or with another strategy. The operation
// stays awaiting resolution: re-save it against the current version or abandon it.
var ErrResolvedElsewhere = errors.New("conflict was resolved elsewhere")

const (
	defaultParallelism    = 4
	maxAutoResolveRetries = 3
)

// Remote is the server side of the write and resolve contract.
// Implemented by the HTTP client and, in-process, by the engine.
type Remote interface {
	SaveEntity(ctx context.Context, intent models.WriteIntent) (*models.SaveResult, error)
	ResolveConflict(ctx context.Context, conflictID string, strategy models.Strategy, payload []byte, actor string) (*models.SaveResult, error)
	GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error)
}

// State is the sync coordinator state
type State string

const (
	StateOffline            State = "offline"
	StateSyncing            State = "syncing"
	StateIdle               State = "idle"
	StateAwaitingResolution State = "awaiting_conflict_resolution"
)

// PendingConflict связывает офлайн-операцию с конфликтом, который ждет решения
type PendingConflict struct {
	Operation *models.OfflineOperation
	Conflict  *models.ConflictRecord // nil, если запись не удалось загрузить
}

// SyncResult contains sync operation results
type SyncResult struct {
	Committed    []*models.OfflineOperation // операции, закоммиченные на сервере
	Conflicts    []PendingConflict          // группы, остановленные конфликтом
	Paused       []string                   // сущности, реплей которых отложен из-за недоступности сервера
	Abandoned    []*models.OfflineOperation // операции, от которых пришлось отказаться
	AutoResolved int                        // конфликты, разрешенные автоматически

	mu sync.Mutex
}

func (r *SyncResult) addCommitted(op *models.OfflineOperation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Committed = append(r.Committed, op)
}

func (r *SyncResult) addConflict(op *models.OfflineOperation, record *models.ConflictRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Conflicts = append(r.Conflicts, PendingConflict{Operation: op, Conflict: record})
}

func (r *SyncResult) addPaused(entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Paused = append(r.Paused, entityID)
}

func (r *SyncResult) addAbandoned(op *models.OfflineOperation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Abandoned = append(r.Abandoned, op)
}

func (r *SyncResult) addAutoResolved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AutoResolved++
}

// report сворачивает результат в отчет для локального хранилища
func (r *SyncResult) report(finishedAt time.Time) *storage.SyncReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &storage.SyncReport{
		FinishedAt:     finishedAt.UTC(),
		PausedEntities: slices.Sorted(slices.Values(r.Paused)),
		Committed:      len(r.Committed),
		Conflicts:      len(r.Conflicts),
		Abandoned:      len(r.Abandoned),
		AutoResolved:   r.AutoResolved,
	}
	for _, pending := range r.Conflicts {
		report.ConflictOps = append(report.ConflictOps, pending.Operation.ID)
	}

	return report
}

// Option configures the coordinator
type Option func(*Coordinator)

// WithParallelism limits the number of entities replayed concurrently
func WithParallelism(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithAutoResolve resolves replay conflicts with a strategy that needs no payload.
// Merge is ignored: it always requires a caller supplied payload.
func WithAutoResolve(strategy models.Strategy) Option {
	return func(c *Coordinator) {
		if strategy == models.StrategyServerWins || strategy == models.StrategyClientWins {
			c.autoResolve = strategy
		}
	}
}

// Coordinator drains the offline queue against the remote store
type Coordinator struct {
	remote      Remote
	queue       *queue.Queue
	metadata    storage.MetadataStorage
	logger      *slog.Logger
	now         func() time.Time
	state       State
	autoResolve models.Strategy
	parallelism int
	online      bool

	mu     sync.Mutex // защищает state и online
	syncMu sync.Mutex // сериализует реплей
}

// NewCoordinator creates a sync coordinator in the Offline state
func NewCoordinator(
	remote Remote,
	q *queue.Queue,
	metadata storage.MetadataStorage,
	logger *slog.Logger,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		remote:      remote,
		queue:       q,
		metadata:    metadata,
		logger:      logger,
		now:         time.Now,
		state:       StateOffline,
		parallelism: defaultParallelism,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current coordinator state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Online reports whether the coordinator considers the server reachable
func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// SetOnline switches connectivity; going offline moves the coordinator to Offline
func (c *Coordinator) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.online = online
	switch {
	case !online:
		c.state = StateOffline
	case c.state == StateOffline:
		c.state = StateIdle
	}
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.online {
		c.state = StateOffline
		return
	}
	c.state = state
}

// QueueOfflineEdit stores an edit made without connectivity
func (c *Coordinator) QueueOfflineEdit(
	ctx context.Context,
	entityID string,
	baseVersion int64,
	payload []byte,
	actor string,
) (*models.OfflineOperation, error) {
	return c.queue.Enqueue(ctx, entityID, baseVersion, payload, actor)
}

// TriggerSync реплеит очередь: группы сущностей параллельно, внутри группы строго по порядку.
// Конфликт останавливает группу до разрешения, недоступность сервера откладывает ее до следующего вызова.
func (c *Coordinator) TriggerSync(ctx context.Context) (*SyncResult, error) {
	if !c.Online() {
		return nil, ErrOffline
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	c.setState(StateSyncing)
	c.logger.Info("Starting offline queue replay")

	result := &SyncResult{}

	groups, err := c.queue.Pending(ctx)
	if err != nil {
		c.refreshState(ctx)
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)

	for _, group := range groups {
		g.Go(func() error {
			return c.replayGroup(gctx, group.Operations, result)
		})
	}

	err = g.Wait()
	c.refreshState(ctx)

	if err != nil {
		return result, fmt.Errorf("sync failed: %w", err)
	}

	c.logger.Info("Offline queue replay finished",
		"committed", len(result.Committed),
		"conflicts", len(result.Conflicts),
		"paused", len(result.Paused),
		"abandoned", len(result.Abandoned),
		"auto_resolved", result.AutoResolved)

	report := result.report(c.now())
	if err := c.metadata.SaveSyncReport(ctx, report); err != nil {
		c.logger.Warn("Failed to save sync report", "error", err)
	}
	if report.Drained() {
		if err := c.metadata.SaveLastSyncTimestamp(ctx, report.FinishedAt.Unix()); err != nil {
			c.logger.Warn("Failed to save last sync timestamp", "error", err)
		}
	}

	return result, nil
}

// ResolvePending разрешает конфликт операции и продолжает реплей ее сущности.
// Повторный конфликт обновляет ConflictID операции и возвращается в результате.
func (c *Coordinator) ResolvePending(
	ctx context.Context,
	opID string,
	strategy models.Strategy,
	payload []byte,
	actor string,
) (*SyncResult, error) {
	if !c.Online() {
		return nil, ErrOffline
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	op, err := c.queue.Get(ctx, opID)
	if err != nil {
		return nil, err
	}
	if op.Status != models.OperationConflictPendingResolution {
		return nil, fmt.Errorf("%w: operation %s is %s, not awaiting resolution",
			storage.ErrInvalidTransition, op.ID, op.Status)
	}
	if actor == "" {
		actor = op.Actor
	}

	result := &SyncResult{}

	outcome, err := c.remote.ResolveConflict(ctx, op.ConflictID, strategy, payload, actor)
	switch {
	case errors.Is(err, models.ErrAlreadyResolved):
		if err := c.acceptPriorResolution(ctx, op, strategy, actor); err != nil {
			return nil, err
		}
	case errors.Is(err, models.ErrLedgerStale) && outcome.Saved():
		c.logger.Warn("Resolution committed but conflict ledger is stale",
			"op_id", op.ID, "conflict_id", op.ConflictID, "error", err)
	case err != nil:
		return nil, err
	case !outcome.Saved():
		if _, err := c.queue.MarkConflict(ctx, op.ID, outcome.Conflict.ID); err != nil {
			return nil, err
		}
		result.addConflict(op, outcome.Conflict)
		c.refreshState(ctx)
		return result, nil
	}

	if _, err := c.queue.MarkReplayed(ctx, op.ID); err != nil {
		return nil, err
	}
	result.addCommitted(op)

	group, err := c.queue.PendingFor(ctx, op.EntityID)
	if err != nil {
		return result, err
	}

	err = c.replayGroup(ctx, group.Operations, result)
	c.refreshState(ctx)

	return result, err
}

// acceptPriorResolution решает, можно ли считать уже разрешенный конфликт своим.
// Совпадение автора и стратегии означает повтор после сбоя клиента: ответ на
// первую попытку потерян, но решение на сервере наше.
func (c *Coordinator) acceptPriorResolution(
	ctx context.Context,
	op *models.OfflineOperation,
	strategy models.Strategy,
	actor string,
) error {
	record, err := c.remote.GetConflict(ctx, op.ConflictID)
	if err != nil {
		return fmt.Errorf("failed to load resolved conflict %s: %w", op.ConflictID, err)
	}

	if record.ResolvedBy == actor && record.Strategy == strategy {
		c.logger.Info("Conflict already resolved by this attempt, marking operation replayed",
			"op_id", op.ID, "conflict_id", op.ConflictID)
		return nil
	}

	c.logger.Warn("Conflict resolved elsewhere, operation kept pending",
		"op_id", op.ID,
		"conflict_id", op.ConflictID,
		"resolved_by", record.ResolvedBy,
		"strategy", record.Strategy,
	)

	return fmt.Errorf("%w: conflict %s resolved by %s with %s",
		ErrResolvedElsewhere, op.ConflictID, record.ResolvedBy, record.Strategy)
}

// Abandon отказывается от операции; связанный конфликт остается неразрешенным
func (c *Coordinator) Abandon(ctx context.Context, opID, reason string) (*models.OfflineOperation, error) {
	if reason == "" {
		reason = "abandoned by user"
	}

	op, err := c.queue.MarkAbandoned(ctx, opID, reason)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Offline operation abandoned", "op_id", opID, "reason", reason)
	c.refreshState(ctx)

	return op, nil
}

// replayGroup реплеит операции одной сущности строго по порядку
func (c *Coordinator) replayGroup(ctx context.Context, ops []*models.OfflineOperation, result *SyncResult) error {
	for _, op := range ops {
		// голова группы уже ждет разрешения: группу пропускаем
		if op.Status == models.OperationConflictPendingResolution {
			record, err := c.remote.GetConflict(ctx, op.ConflictID)
			if errors.Is(err, models.ErrStoreUnavailable) {
				result.addPaused(op.EntityID)
				return nil
			}
			if err != nil {
				c.logger.Warn("Failed to load pending conflict",
					"op_id", op.ID, "conflict_id", op.ConflictID, "error", err)
			}

			resolved, err := c.handleConflict(ctx, op, record, result)
			if err != nil || !resolved {
				return err
			}
			continue
		}

		outcome, err := c.remote.SaveEntity(ctx, op.Intent())
		switch {
		case errors.Is(err, models.ErrStoreUnavailable):
			c.logger.Warn("Server unavailable, replay paused",
				"entity_id", op.EntityID, "op_id", op.ID, "error", err)
			result.addPaused(op.EntityID)
			return nil

		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidIntent):
			abandoned, markErr := c.queue.MarkAbandoned(ctx, op.ID, err.Error())
			if markErr != nil {
				return markErr
			}
			c.logger.Warn("Offline operation abandoned",
				"entity_id", op.EntityID, "op_id", op.ID, "reason", err)
			result.addAbandoned(abandoned)
			continue

		case err != nil:
			return fmt.Errorf("failed to replay operation %s: %w", op.ID, err)
		}

		if outcome.Saved() {
			if _, err := c.queue.MarkReplayed(ctx, op.ID); err != nil {
				return err
			}
			c.logger.Debug("Offline operation replayed",
				"entity_id", op.EntityID, "op_id", op.ID, "version", outcome.Entity.Version)
			result.addCommitted(op)
			continue
		}

		if _, err := c.queue.MarkConflict(ctx, op.ID, outcome.Conflict.ID); err != nil {
			return err
		}
		c.logger.Info("Replay conflict, entity replay halted",
			"entity_id", op.EntityID, "op_id", op.ID, "conflict_id", outcome.Conflict.ID)

		resolved, err := c.handleConflict(ctx, op, outcome.Conflict, result)
		if err != nil || !resolved {
			return err
		}
	}

	return nil
}

// handleConflict либо разрешает конфликт автоматически, либо отдает его вызывающему.
// Возвращает true, если операция закоммичена и реплей группы можно продолжать.
func (c *Coordinator) handleConflict(
	ctx context.Context,
	op *models.OfflineOperation,
	record *models.ConflictRecord,
	result *SyncResult,
) (bool, error) {
	if c.autoResolve == "" || record == nil {
		result.addConflict(op, record)
		return false, nil
	}

	current := record
	for range maxAutoResolveRetries {
		outcome, err := c.remote.ResolveConflict(ctx, current.ID, c.autoResolve, nil, op.Actor)
		if err != nil {
			c.logger.Warn("Automatic resolution failed",
				"op_id", op.ID, "conflict_id", current.ID, "error", err)
			result.addConflict(op, current)
			return false, nil
		}

		if outcome.Saved() {
			if _, err := c.queue.MarkReplayed(ctx, op.ID); err != nil {
				return false, err
			}
			result.addAutoResolved()
			result.addCommitted(op)
			return true, nil
		}

		current = outcome.Conflict
		if _, err := c.queue.MarkConflict(ctx, op.ID, current.ID); err != nil {
			return false, err
		}
	}

	result.addConflict(op, current)
	return false, nil
}

// Refresh re-evaluates the state from the queue contents and returns it
func (c *Coordinator) Refresh(ctx context.Context) State {
	if c.Online() {
		c.refreshState(ctx)
	}
	return c.State()
}

// refreshState выставляет Idle или AwaitingResolution по содержимому очереди
func (c *Coordinator) refreshState(ctx context.Context) {
	groups, err := c.queue.Pending(ctx)
	if err != nil {
		c.logger.Warn("Failed to inspect queue", "error", err)
		c.setState(StateIdle)
		return
	}

	for _, group := range groups {
		if head := group.Head(); head != nil && head.Status == models.OperationConflictPendingResolution {
			c.setState(StateAwaitingResolution)
			return
		}
	}

	c.setState(StateIdle)
}
