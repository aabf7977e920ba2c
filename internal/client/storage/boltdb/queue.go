package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"go.etcd.io/bbolt"

	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/models"
)

// Очередь хранится как журнал: ключ - порядковый номер bucket.NextSequence()
// в big-endian, поэтому обход курсором идет в порядке постановки в очередь.
// Индекс op id -> ключ журнала позволяет менять статус без полного обхода.

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// encodeOperation сериализует операцию в JSON и сжимает snappy:
// payload схем с координатами и маршрутами хорошо сжимается
func encodeOperation(op *models.OfflineOperation) ([]byte, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

func decodeOperation(raw []byte) (*models.OfflineOperation, error) {
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress operation: %w", err)
	}

	op := &models.OfflineOperation{}
	if err := json.Unmarshal(data, op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}
	return op, nil
}

// Enqueue appends the operation to the log and assigns its Seq
func (s *Storage) Enqueue(ctx context.Context, op *models.OfflineOperation) error {
	if op.ID == "" {
		return fmt.Errorf("operation id cannot be empty")
	}

	return s.update(func(tx *bbolt.Tx) error {
		ops := tx.Bucket(bucketOps)
		index := tx.Bucket(bucketOpsIndex)

		if index.Get([]byte(op.ID)) != nil {
			return fmt.Errorf("operation %s is already queued", op.ID)
		}

		seq, err := ops.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		op.Seq = seq
		if op.Status == "" {
			op.Status = models.OperationPending
		}
		if op.QueuedAt.IsZero() {
			op.QueuedAt = s.now().UTC()
		}
		op.UpdatedAt = op.QueuedAt

		data, err := encodeOperation(op)
		if err != nil {
			return err
		}

		key := seqKey(seq)
		if err := ops.Put(key, data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}
		if err := index.Put([]byte(op.ID), key); err != nil {
			return fmt.Errorf("failed to index operation: %w", err)
		}

		return nil
	})
}

// GetOperation returns an operation by id
func (s *Storage) GetOperation(ctx context.Context, id string) (*models.OfflineOperation, error) {
	var op *models.OfflineOperation

	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		op, _, err = loadOperation(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

// PendingOperations returns non-terminal operations in log order
func (s *Storage) PendingOperations(ctx context.Context) ([]*models.OfflineOperation, error) {
	return s.scanOperations(func(op *models.OfflineOperation) bool {
		return !op.Status.IsTerminal()
	})
}

// ListOperations returns every operation in log order
func (s *Storage) ListOperations(ctx context.Context) ([]*models.OfflineOperation, error) {
	return s.scanOperations(func(*models.OfflineOperation) bool { return true })
}

// UpdateStatus changes the operation status if the transition is allowed.
// conflictID is recorded for ConflictPendingResolution, reason for Abandoned.
func (s *Storage) UpdateStatus(
	ctx context.Context,
	id string,
	status models.OperationStatus,
	conflictID, reason string,
) (*models.OfflineOperation, error) {
	var updated *models.OfflineOperation

	err := s.update(func(tx *bbolt.Tx) error {
		op, key, err := loadOperation(tx, id)
		if err != nil {
			return err
		}

		if !op.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s for operation %s",
				storage.ErrInvalidTransition, op.Status, status, id)
		}

		op.Status = status
		op.UpdatedAt = s.now().UTC()
		switch status {
		case models.OperationConflictPendingResolution:
			op.ConflictID = conflictID
		case models.OperationAbandoned:
			op.Reason = reason
		}

		data, err := encodeOperation(op)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketOps).Put(key, data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}

		updated = op
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CompactOperations removes Replayed and Abandoned operations queued before the cut-off
func (s *Storage) CompactOperations(ctx context.Context, before time.Time) (int, error) {
	removed := 0

	err := s.update(func(tx *bbolt.Tx) error {
		ops := tx.Bucket(bucketOps)
		index := tx.Bucket(bucketOpsIndex)

		// Собираем ключи заранее: удаление во время обхода курсором пропускает записи
		type victim struct {
			key []byte
			id  string
		}
		var victims []victim

		err := ops.ForEach(func(k, v []byte) error {
			op, err := decodeOperation(v)
			if err != nil {
				return err
			}
			if op.Status.IsTerminal() && op.QueuedAt.Before(before) {
				victims = append(victims, victim{key: append([]byte(nil), k...), id: op.ID})
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, v := range victims {
			if err := ops.Delete(v.key); err != nil {
				return fmt.Errorf("failed to delete operation: %w", err)
			}
			if err := index.Delete([]byte(v.id)); err != nil {
				return fmt.Errorf("failed to delete operation index: %w", err)
			}
		}

		removed = len(victims)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func (s *Storage) scanOperations(keep func(op *models.OfflineOperation) bool) ([]*models.OfflineOperation, error) {
	var result []*models.OfflineOperation

	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOps).ForEach(func(_, v []byte) error {
			op, err := decodeOperation(v)
			if err != nil {
				return err
			}
			if keep(op) {
				result = append(result, op)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func loadOperation(tx *bbolt.Tx, id string) (*models.OfflineOperation, []byte, error) {
	key := tx.Bucket(bucketOpsIndex).Get([]byte(id))
	if key == nil {
		return nil, nil, fmt.Errorf("operation %s: %w", id, storage.ErrOperationNotFound)
	}
	key = append([]byte(nil), key...)

	raw := tx.Bucket(bucketOps).Get(key)
	if raw == nil {
		return nil, nil, fmt.Errorf("operation %s: %w", id, storage.ErrOperationNotFound)
	}

	op, err := decodeOperation(raw)
	if err != nil {
		return nil, nil, err
	}

	return op, key, nil
}
