package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/playsync/internal/client/storage"
)

var (
	keyLastSyncTimestamp = []byte("last_sync_timestamp")
	keySyncReport        = []byte("sync_report")

	errNoMetadataBucket = errors.New("metadata bucket not found")
)

func metadataBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(bucketMetadata)
	if bucket == nil {
		return nil, errNoMetadataBucket
	}
	return bucket, nil
}

// putMeta пишет значение в metadata bucket
func (s *Storage) putMeta(key, value []byte) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := metadataBucket(tx)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// getMeta возвращает копию значения; nil если ключа нет
func (s *Storage) getMeta(key []byte) ([]byte, error) {
	var value []byte

	err := s.view(func(tx *bbolt.Tx) error {
		bucket, err := metadataBucket(tx)
		if err != nil {
			return err
		}
		// значение валидно только внутри транзакции
		if v := bucket.Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})

	return value, err
}

// SaveLastSyncTimestamp saves the timestamp of the last sync that drained the queue
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	if err := s.putMeta(keyLastSyncTimestamp, binary.BigEndian.AppendUint64(nil, uint64(timestamp))); err != nil {
		return fmt.Errorf("failed to save last sync timestamp: %w", err)
	}
	return nil
}

// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	value, err := s.getMeta(keyLastSyncTimestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}
	if len(value) != 8 {
		// первая синхронизация еще не выполнялась
		return 0, nil
	}
	return int64(binary.BigEndian.Uint64(value)), nil
}

// SaveSyncReport заменяет отчет о последней синхронизации
func (s *Storage) SaveSyncReport(ctx context.Context, report *storage.SyncReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode sync report: %w", err)
	}
	if err := s.putMeta(keySyncReport, data); err != nil {
		return fmt.Errorf("failed to save sync report: %w", err)
	}
	return nil
}

// GetSyncReport returns the report of the last sync, or nil if none was saved
func (s *Storage) GetSyncReport(ctx context.Context) (*storage.SyncReport, error) {
	data, err := s.getMeta(keySyncReport)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync report: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var report storage.SyncReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode sync report: %w", err)
	}
	return &report, nil
}
