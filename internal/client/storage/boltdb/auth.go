package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/playsync/internal/client/storage"
)

var errAuthBucketMissing = errors.New("auth bucket not found")

// SaveAuth сохраняет токен под ключом URL сервера
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	key := storage.ServerKey(auth.ServerURL)
	if key == "" {
		return fmt.Errorf("auth data has no server url")
	}

	stored := *auth
	stored.ServerURL = key

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal auth data: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return errAuthBucketMissing
		}
		return bucket.Put([]byte(key), data)
	})
}

// GetAuth возвращает токен для сервера
func (s *Storage) GetAuth(ctx context.Context, serverURL string) (*storage.AuthData, error) {
	var auth *storage.AuthData

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return errAuthBucketMissing
		}

		data := bucket.Get([]byte(storage.ServerKey(serverURL)))
		if data == nil {
			return storage.ErrAuthNotFound
		}

		var err error
		auth, err = decodeAuth(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	return auth, nil
}

// DeleteAuth удаляет токен сервера (logout)
func (s *Storage) DeleteAuth(ctx context.Context, serverURL string) error {
	key := []byte(storage.ServerKey(serverURL))

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return errAuthBucketMissing
		}
		if bucket.Get(key) == nil {
			return storage.ErrAuthNotFound
		}
		return bucket.Delete(key)
	})
}

// ListAuth возвращает токены всех серверов; bbolt отдает ключи отсортированными
func (s *Storage) ListAuth(ctx context.Context) ([]*storage.AuthData, error) {
	var all []*storage.AuthData

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return errAuthBucketMissing
		}

		return bucket.ForEach(func(_, v []byte) error {
			auth, err := decodeAuth(v)
			if err != nil {
				return err
			}
			all = append(all, auth)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

func decodeAuth(data []byte) (*storage.AuthData, error) {
	auth := &storage.AuthData{}
	if err := json.Unmarshal(data, auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth data: %w", err)
	}
	return auth, nil
}
