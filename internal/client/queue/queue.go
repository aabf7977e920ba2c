// Package queue is the offline operation queue of the editor client.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/validation"
)

// Group is the pending operations of one entity in queue order
type Group struct {
	EntityID   string
	Operations []*models.OfflineOperation
}

// Head returns the first operation of the group
func (g Group) Head() *models.OfflineOperation {
	if len(g.Operations) == 0 {
		return nil
	}
	return g.Operations[0]
}

// Queue stores edits made while disconnected until they are replayed
type Queue struct {
	storage storage.QueueStorage
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a new offline queue
func New(queueStorage storage.QueueStorage, logger *slog.Logger) *Queue {
	return &Queue{
		storage: queueStorage,
		logger:  logger,
		now:     time.Now,
	}
}

// Enqueue сохраняет правку, сделанную офлайн.
// baseVersion - версия, которую редактор видел в момент правки; при replay она не меняется.
func (q *Queue) Enqueue(
	ctx context.Context,
	entityID string,
	baseVersion int64,
	payload []byte,
	actor string,
) (*models.OfflineOperation, error) {
	intent := models.WriteIntent{
		EntityID:        entityID,
		BaseVersion:     baseVersion,
		ProposedPayload: payload,
		Actor:           actor,
	}
	if err := validation.ValidateIntent(intent); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidIntent, err)
	}

	op := &models.OfflineOperation{
		ID:              uuid.New().String(),
		EntityID:        entityID,
		BaseVersion:     baseVersion,
		ProposedPayload: payload,
		Actor:           actor,
		QueuedAt:        q.now().UTC(),
		Status:          models.OperationPending,
	}

	if err := q.storage.Enqueue(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to enqueue operation: %w", err)
	}

	q.logger.Debug("Offline edit queued",
		"op_id", op.ID,
		"entity_id", entityID,
		"base_version", baseVersion,
		"seq", op.Seq)

	return op, nil
}

// Pending возвращает незавершенные операции, сгруппированные по сущности.
// Группы упорядочены по первой операции, внутри группы - порядок очереди.
func (q *Queue) Pending(ctx context.Context) ([]Group, error) {
	ops, err := q.storage.PendingOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending operations: %w", err)
	}

	var groups []Group
	position := make(map[string]int)

	for _, op := range ops {
		i, ok := position[op.EntityID]
		if !ok {
			i = len(groups)
			position[op.EntityID] = i
			groups = append(groups, Group{EntityID: op.EntityID})
		}
		groups[i].Operations = append(groups[i].Operations, op)
	}

	return groups, nil
}

// PendingFor returns the pending operations of one entity
func (q *Queue) PendingFor(ctx context.Context, entityID string) (Group, error) {
	groups, err := q.Pending(ctx)
	if err != nil {
		return Group{}, err
	}

	for _, group := range groups {
		if group.EntityID == entityID {
			return group, nil
		}
	}

	return Group{EntityID: entityID}, nil
}

// Get returns an operation by id
func (q *Queue) Get(ctx context.Context, id string) (*models.OfflineOperation, error) {
	return q.storage.GetOperation(ctx, id)
}

// List returns every operation still kept in the log
func (q *Queue) List(ctx context.Context) ([]*models.OfflineOperation, error) {
	return q.storage.ListOperations(ctx)
}

// MarkReplayed marks the operation as committed on the server
func (q *Queue) MarkReplayed(ctx context.Context, id string) (*models.OfflineOperation, error) {
	return q.transition(ctx, id, models.OperationReplayed, "", "")
}

// MarkConflict marks the operation as waiting for the resolution of conflictID
func (q *Queue) MarkConflict(ctx context.Context, id, conflictID string) (*models.OfflineOperation, error) {
	return q.transition(ctx, id, models.OperationConflictPendingResolution, conflictID, "")
}

// MarkAbandoned drops the operation with a reason
func (q *Queue) MarkAbandoned(ctx context.Context, id, reason string) (*models.OfflineOperation, error) {
	return q.transition(ctx, id, models.OperationAbandoned, "", reason)
}

// Counts returns the number of operations per status
func (q *Queue) Counts(ctx context.Context) (map[models.OperationStatus]int, error) {
	ops, err := q.storage.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	counts := make(map[models.OperationStatus]int)
	for _, op := range ops {
		counts[op.Status]++
	}

	return counts, nil
}

// Compact removes replayed and abandoned operations older than retention
func (q *Queue) Compact(ctx context.Context, retention time.Duration) (int, error) {
	removed, err := q.storage.CompactOperations(ctx, q.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to compact queue: %w", err)
	}

	if removed > 0 {
		q.logger.Info("Offline queue compacted", "removed", removed)
	}

	return removed, nil
}

func (q *Queue) transition(
	ctx context.Context,
	id string,
	status models.OperationStatus,
	conflictID, reason string,
) (*models.OfflineOperation, error) {
	op, err := q.storage.UpdateStatus(ctx, id, status, conflictID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to mark operation %s as %s: %w", id, status, err)
	}

	q.logger.Debug("Offline operation updated",
		"op_id", id,
		"entity_id", op.EntityID,
		"status", status)

	return op, nil
}
