package models

import "time"

// VersionedEntity представляет документ (play), находящийся под оптимистичной блокировкой.
// Version начинается с 1 при создании и увеличивается ровно на 1 при каждом успешном коммите.
type VersionedEntity struct {
	LastModifiedAt time.Time `json:"last_modified_at"` // LastModifiedAt время последнего коммита
	CreatedAt      time.Time `json:"created_at"`       // CreatedAt время создания
	ID             string    `json:"id"`               // ID стабильный идентификатор сущности
	LastModifiedBy string    `json:"last_modified_by"` // LastModifiedBy актор последнего коммита
	Payload        []byte    `json:"payload"`          // Payload непрозрачное содержимое документа
	Version        int64     `json:"version"`          // Version текущая версия
}

// WriteIntent описывает изменение, которое редактор пытается закоммитить.
// BaseVersion - версия, которую редактор считал текущей в момент начала правки.
type WriteIntent struct {
	EntityID        string `json:"entity_id"`
	Actor           string `json:"actor"`
	ProposedPayload []byte `json:"proposed_payload"`
	BaseVersion     int64  `json:"base_version"`
}

// SaveResult is the outcome of a write or a resolution commit.
// Exactly one of Entity and Conflict is set.
type SaveResult struct {
	Entity   *VersionedEntity `json:"entity,omitempty"`
	Conflict *ConflictRecord  `json:"conflict,omitempty"`
}

// Saved reports whether the write was committed.
func (r *SaveResult) Saved() bool {
	return r != nil && r.Conflict == nil && r.Entity != nil
}

// CommitEvent описывает успешный коммит, публикуется подписчикам движка
type CommitEvent struct {
	At       time.Time `json:"at"`
	EntityID string    `json:"entity_id"`
	Actor    string    `json:"actor"`
	Version  int64     `json:"version"`
}
