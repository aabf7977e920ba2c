package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/playsync/internal/models"
)

const selectEntity = `
	SELECT id, version, payload, last_modified_by, last_modified_at, created_at
	FROM entities
`

// CreateEntity inserts a new entity at version 1
func (s *Storage) CreateEntity(ctx context.Context, id string, payload []byte, actor string) (*models.VersionedEntity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := getEntity(ctx, tx, id); err == nil {
		return nil, fmt.Errorf("entity %q: %w", id, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	entity := &models.VersionedEntity{
		ID:             id,
		Version:        1,
		Payload:        nonNil(payload),
		LastModifiedBy: actor,
		LastModifiedAt: now,
		CreatedAt:      now,
	}

	query := `
		INSERT INTO entities (id, version, payload, last_modified_by, last_modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Version,
		entity.Payload,
		entity.LastModifiedBy,
		now.UnixNano(),
		now.UnixNano(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("entity %q: %w", id, models.ErrAlreadyExists)
	}
	if err != nil {
		return nil, unavailable("insert entity", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit", err)
	}

	return entity, nil
}

// GetEntity returns the current state of an entity
func (s *Storage) GetEntity(ctx context.Context, id string) (*models.VersionedEntity, error) {
	return getEntity(ctx, s.db, id)
}

// ListEntities returns all entities ordered by id
func (s *Storage) ListEntities(ctx context.Context) ([]*models.VersionedEntity, error) {
	rows, err := s.db.QueryContext(ctx, selectEntity+` ORDER BY id`)
	if err != nil {
		return nil, unavailable("query entities", err)
	}
	defer rows.Close()

	var entities []*models.VersionedEntity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate entities", err)
	}

	return entities, nil
}

// ConditionalWrite атомарно заменяет payload и увеличивает версию на 1,
// только если текущая версия равна expectedVersion.
// При несовпадении возвращает *models.VersionConflictError с текущим состоянием.
func (s *Storage) ConditionalWrite(
	ctx context.Context,
	id string,
	expectedVersion int64,
	payload []byte,
	actor string,
) (*models.VersionedEntity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		UPDATE entities
		SET payload = ?, version = version + 1, last_modified_by = ?, last_modified_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := tx.ExecContext(ctx, query,
		nonNil(payload),
		actor,
		s.now().UTC().UnixNano(),
		id,
		expectedVersion,
	)
	if err != nil {
		return nil, unavailable("update entity", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, unavailable("rows affected", err)
	}

	// Читаем в той же транзакции: либо результат коммита, либо причину отказа
	current, err := getEntity(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		return nil, &models.VersionConflictError{
			Current:         current,
			ExpectedVersion: expectedVersion,
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit", err)
	}

	return current, nil
}

func getEntity(ctx context.Context, q querier, id string) (*models.VersionedEntity, error) {
	row := q.QueryRowContext(ctx, selectEntity+` WHERE id = ?`, id)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return entity, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*models.VersionedEntity, error) {
	var (
		entity         models.VersionedEntity
		lastModifiedAt int64
		createdAt      int64
	)

	err := row.Scan(
		&entity.ID,
		&entity.Version,
		&entity.Payload,
		&entity.LastModifiedBy,
		&lastModifiedAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("scan entity", err)
	}

	entity.LastModifiedAt = fromUnixNano(lastModifiedAt)
	entity.CreatedAt = fromUnixNano(createdAt)

	return &entity, nil
}

func nonNil(payload []byte) []byte {
	if payload == nil {
		return []byte{}
	}
	return payload
}
