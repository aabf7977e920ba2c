package storage

import (
	"context"
	"time"

	"github.com/iudanet/playsync/internal/models"
)

// QueueStorage is the durable log of offline operations.
// Operations are kept in enqueue order; the order survives restarts.
type QueueStorage interface {
	// Enqueue appends the operation to the log and assigns its Seq
	Enqueue(ctx context.Context, op *models.OfflineOperation) error

	// GetOperation returns an operation by id
	// Returns ErrOperationNotFound if it doesn't exist
	GetOperation(ctx context.Context, id string) (*models.OfflineOperation, error)

	// PendingOperations returns Pending and ConflictPendingResolution operations in log order
	PendingOperations(ctx context.Context) ([]*models.OfflineOperation, error)

	// ListOperations returns every operation in log order
	ListOperations(ctx context.Context) ([]*models.OfflineOperation, error)

	// UpdateStatus changes the operation status.
	// Returns ErrInvalidTransition if the change is not allowed.
	UpdateStatus(ctx context.Context, id string, status models.OperationStatus, conflictID, reason string) (*models.OfflineOperation, error)

	// CompactOperations removes terminal operations queued before the cut-off
	CompactOperations(ctx context.Context, before time.Time) (int, error)
}
