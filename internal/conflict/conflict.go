// Package conflict обнаруживает конфликты версий при записи и разрешает их
// одной из стратегий: ServerWins, ClientWins, Merge.
package conflict

import (
	"context"

	"github.com/iudanet/playsync/internal/models"
)

// Ledger is the part of the conflict history the detector and resolver write to
type Ledger interface {
	Append(ctx context.Context, record *models.ConflictRecord) error
	MarkResolved(ctx context.Context, id string, resolution models.ConflictResolution) error
}

// newRecord строит неразрешенную запись о конфликте по проигравшему payload
// и текущему состоянию сущности на сервере
func newRecord(entityID string, baseVersion int64, lost []byte, current *models.VersionedEntity, actor string) *models.ConflictRecord {
	record := &models.ConflictRecord{
		EntityID:      entityID,
		BaseVersion:   baseVersion,
		ClientPayload: clonePayload(lost),
		DetectedBy:    actor,
	}

	if current != nil {
		record.ServerVersion = current.Version
		record.ServerPayload = clonePayload(current.Payload)
	}

	return record
}

func clonePayload(payload []byte) []byte {
	if payload == nil {
		return nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out
}
