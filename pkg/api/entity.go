package api

import (
	"time"

	"github.com/iudanet/playsync/internal/models"
)

// EntityResponse представляет сущность (play) в ответе сервера
type EntityResponse struct {
	LastModifiedAt time.Time `json:"last_modified_at"`
	CreatedAt      time.Time `json:"created_at"`
	ID             string    `json:"id"`
	LastModifiedBy string    `json:"last_modified_by"`
	Payload        []byte    `json:"payload"` // base64 в JSON
	Version        int64     `json:"version"`
}

// CreateEntityRequest представляет запрос на создание сущности
type CreateEntityRequest struct {
	ID      string `json:"id"`
	Payload []byte `json:"payload"`
}

// SaveRequest представляет запрос на запись под оптимистичной блокировкой
type SaveRequest struct {
	Actor       string `json:"actor,omitempty"` // должен совпадать с актором токена
	Payload     []byte `json:"payload"`
	BaseVersion int64  `json:"base_version"`
}

// Save statuses
const (
	StatusSaved    = "saved"
	StatusConflict = "conflict"
)

// SaveResponse представляет результат записи или разрешения конфликта.
// Заполнено ровно одно из полей Entity и Conflict.
type SaveResponse struct {
	Entity   *EntityResponse   `json:"entity,omitempty"`
	Conflict *ConflictResponse `json:"conflict,omitempty"`
	Status   string            `json:"status"`
}

// EntityFromModel converts a versioned entity into its wire form
func EntityFromModel(e *models.VersionedEntity) *EntityResponse {
	if e == nil {
		return nil
	}
	return &EntityResponse{
		ID:             e.ID,
		Version:        e.Version,
		Payload:        e.Payload,
		LastModifiedBy: e.LastModifiedBy,
		LastModifiedAt: e.LastModifiedAt,
		CreatedAt:      e.CreatedAt,
	}
}

// Model converts the wire form back into a versioned entity
func (r *EntityResponse) Model() *models.VersionedEntity {
	if r == nil {
		return nil
	}
	return &models.VersionedEntity{
		ID:             r.ID,
		Version:        r.Version,
		Payload:        r.Payload,
		LastModifiedBy: r.LastModifiedBy,
		LastModifiedAt: r.LastModifiedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// SaveResponseFromModel converts a save result into its wire form
func SaveResponseFromModel(result *models.SaveResult) SaveResponse {
	if result.Saved() {
		return SaveResponse{Status: StatusSaved, Entity: EntityFromModel(result.Entity)}
	}
	return SaveResponse{Status: StatusConflict, Conflict: ConflictFromModel(result.Conflict)}
}

// Model converts the wire form back into a save result
func (r *SaveResponse) Model() *models.SaveResult {
	return &models.SaveResult{
		Entity:   r.Entity.Model(),
		Conflict: r.Conflict.Model(),
	}
}
