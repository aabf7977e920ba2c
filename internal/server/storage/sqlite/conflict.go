package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/playsync/internal/models"
)

const selectConflict = `
	SELECT id, entity_id, base_version, server_version,
	       client_payload, server_payload, client_digest, server_digest,
	       detected_by, detected_at,
	       strategy, resolved_payload, resolved_digest, resolved_by, resolved_at, resulting_version
	FROM conflicts
`

// AppendConflict добавляет новую неразрешенную запись в журнал конфликтов
func (s *Storage) AppendConflict(ctx context.Context, record *models.ConflictRecord) error {
	query := `
		INSERT INTO conflicts (
			id, entity_id, base_version, server_version,
			client_payload, server_payload, client_digest, server_digest,
			detected_by, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.EntityID,
		record.BaseVersion,
		record.ServerVersion,
		nonNil(record.ClientPayload),
		nonNil(record.ServerPayload),
		record.ClientDigest,
		record.ServerDigest,
		record.DetectedBy,
		record.DetectedAt.UTC().UnixNano(),
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("conflict %q: %w", record.ID, models.ErrAlreadyExists)
	case isForeignKeyViolation(err):
		return fmt.Errorf("entity %q: %w", record.EntityID, models.ErrNotFound)
	case err != nil:
		return unavailable("insert conflict", err)
	}

	return nil
}

// GetConflict returns a conflict record by id
func (s *Storage) GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error) {
	return getConflict(ctx, s.db, id)
}

// MarkConflictResolved выполняет единственный допустимый переход unresolved -> resolved.
// Повторное разрешение возвращает models.ErrAlreadyResolved.
func (s *Storage) MarkConflictResolved(ctx context.Context, id string, resolution models.ConflictResolution) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		UPDATE conflicts
		SET strategy = ?, resolved_payload = ?, resolved_digest = ?,
		    resolved_by = ?, resolved_at = ?, resulting_version = ?
		WHERE id = ? AND resolved_at IS NULL
	`
	res, err := tx.ExecContext(ctx, query,
		string(resolution.Strategy),
		nonNil(resolution.ResolvedPayload),
		resolution.ResolvedDigest,
		resolution.ResolvedBy,
		resolution.ResolvedAt.UTC().UnixNano(),
		resolution.ResultingVersion,
		id,
	)
	if err != nil {
		return unavailable("update conflict", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}

	if affected == 0 {
		if _, err := getConflict(ctx, tx, id); err != nil {
			return err
		}
		return fmt.Errorf("conflict %q: %w", id, models.ErrAlreadyResolved)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}

	return nil
}

// ListConflictsByEntity returns all conflicts of an entity in detection order
func (s *Storage) ListConflictsByEntity(ctx context.Context, entityID string) ([]*models.ConflictRecord, error) {
	return listConflicts(ctx, s.db, selectConflict+` WHERE entity_id = ? ORDER BY detected_at, id`, entityID)
}

// ListConflicts returns all conflicts detected within the range
func (s *Storage) ListConflicts(ctx context.Context, timeRange models.TimeRange) ([]*models.ConflictRecord, error) {
	var (
		conditions []string
		args       []any
	)

	if !timeRange.From.IsZero() {
		conditions = append(conditions, "detected_at >= ?")
		args = append(args, timeRange.From.UTC().UnixNano())
	}
	if !timeRange.To.IsZero() {
		conditions = append(conditions, "detected_at < ?")
		args = append(args, timeRange.To.UTC().UnixNano())
	}

	query := selectConflict
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY detected_at, id"

	return listConflicts(ctx, s.db, query, args...)
}

func getConflict(ctx context.Context, q querier, id string) (*models.ConflictRecord, error) {
	row := q.QueryRowContext(ctx, selectConflict+` WHERE id = ?`, id)

	record, err := scanConflict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conflict %q: %w", id, models.ErrConflictNotFound)
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

func listConflicts(ctx context.Context, q querier, query string, args ...any) ([]*models.ConflictRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query conflicts", err)
	}
	defer rows.Close()

	var records []*models.ConflictRecord
	for rows.Next() {
		record, err := scanConflict(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate conflicts", err)
	}

	return records, nil
}

func scanConflict(row scanner) (*models.ConflictRecord, error) {
	var (
		record           models.ConflictRecord
		detectedAt       int64
		strategy         sql.NullString
		resolvedDigest   sql.NullString
		resolvedBy       sql.NullString
		resolvedAt       sql.NullInt64
		resultingVersion sql.NullInt64
	)

	err := row.Scan(
		&record.ID,
		&record.EntityID,
		&record.BaseVersion,
		&record.ServerVersion,
		&record.ClientPayload,
		&record.ServerPayload,
		&record.ClientDigest,
		&record.ServerDigest,
		&record.DetectedBy,
		&detectedAt,
		&strategy,
		&record.ResolvedPayload,
		&resolvedDigest,
		&resolvedBy,
		&resolvedAt,
		&resultingVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("scan conflict", err)
	}

	record.DetectedAt = fromUnixNano(detectedAt)
	record.Strategy = models.Strategy(strategy.String)
	record.ResolvedDigest = resolvedDigest.String
	record.ResolvedBy = resolvedBy.String
	record.ResultingVersion = resultingVersion.Int64

	if resolvedAt.Valid {
		at := fromUnixNano(resolvedAt.Int64)
		record.ResolvedAt = &at
	}

	return &record, nil
}
