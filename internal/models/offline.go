package models

import "time"

// OperationStatus is the replay status of a queued offline operation.
type OperationStatus string

const (
	OperationPending                   OperationStatus = "pending"
	OperationReplayed                  OperationStatus = "replayed"
	OperationConflictPendingResolution OperationStatus = "conflict_pending_resolution"
	OperationAbandoned                 OperationStatus = "abandoned"
)

// allowedTransitions описывает допустимые переходы статусов.
// ConflictPendingResolution -> ConflictPendingResolution нужен при повторном конфликте во время разрешения.
var allowedTransitions = map[OperationStatus][]OperationStatus{
	OperationPending: {
		OperationReplayed,
		OperationConflictPendingResolution,
		OperationAbandoned,
	},
	OperationConflictPendingResolution: {
		OperationReplayed,
		OperationConflictPendingResolution,
		OperationAbandoned,
	},
}

// IsTerminal reports whether no further transitions are allowed
func (s OperationStatus) IsTerminal() bool {
	return s == OperationReplayed || s == OperationAbandoned
}

// CanTransitionTo reports whether the status may change to next
func (s OperationStatus) CanTransitionTo(next OperationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OfflineOperation представляет правку, сделанную без связи с сервером.
// BaseVersion фиксируется в момент локальной правки и никогда не переписывается.
type OfflineOperation struct {
	QueuedAt        time.Time       `json:"queued_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ID              string          `json:"id"`
	EntityID        string          `json:"entity_id"`
	Actor           string          `json:"actor"`
	Status          OperationStatus `json:"status"`
	ConflictID      string          `json:"conflict_id,omitempty"` // ConflictID конфликт, ожидающий разрешения
	Reason          string          `json:"reason,omitempty"`      // Reason причина отказа от операции
	ProposedPayload []byte          `json:"proposed_payload"`
	BaseVersion     int64           `json:"base_version"`
	Seq             uint64          `json:"seq"` // Seq порядковый номер в журнале очереди
}

// Intent converts the operation into a write intent against its original base version
func (o *OfflineOperation) Intent() WriteIntent {
	return WriteIntent{
		EntityID:        o.EntityID,
		BaseVersion:     o.BaseVersion,
		ProposedPayload: o.ProposedPayload,
		Actor:           o.Actor,
	}
}
