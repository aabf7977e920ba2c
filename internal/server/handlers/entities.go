package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

// Engine определяет операции движка, доступные по HTTP
type Engine interface {
	CreateEntity(ctx context.Context, id string, payload []byte, actor string) (*models.VersionedEntity, error)
	GetEntity(ctx context.Context, id string) (*models.VersionedEntity, error)
	ListEntities(ctx context.Context) ([]*models.VersionedEntity, error)
	SaveEntity(ctx context.Context, intent models.WriteIntent) (*models.SaveResult, error)
	ResolveConflict(
		ctx context.Context,
		conflictID string,
		strategy models.Strategy,
		payload []byte,
		actor string,
	) (*models.SaveResult, error)
	GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error)
	GetConflictHistory(ctx context.Context, entityID string) ([]*models.ConflictRecord, error)
	GetConflictAnalytics(ctx context.Context, timeRange models.TimeRange) (*models.ConflictAnalytics, error)
}

// EntityHandler обрабатывает запросы к сущностям (plays)
type EntityHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewEntityHandler создает новый handler для сущностей
func NewEntityHandler(logger *slog.Logger, engine Engine) *EntityHandler {
	return &EntityHandler{
		logger: logger,
		engine: engine,
	}
}

// Create обрабатывает POST /api/v1/entities
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateEntityRequest
	if err := decodeBody(r, w, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	actor, ok := requestActor(h.logger, w, r, "")
	if !ok {
		return
	}

	entity, err := h.engine.CreateEntity(ctx, req.ID, req.Payload, actor)
	if err != nil {
		sendEngineError(h.logger, r, w, "create entity", err)
		return
	}

	h.logger.InfoContext(ctx, "entity created",
		slog.String("entity_id", entity.ID),
		slog.String("actor", actor),
	)

	writeJSON(h.logger, w, http.StatusCreated, api.EntityFromModel(entity))
}

// List обрабатывает GET /api/v1/entities
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.engine.ListEntities(r.Context())
	if err != nil {
		sendEngineError(h.logger, r, w, "list entities", err)
		return
	}

	resp := make([]*api.EntityResponse, 0, len(entities))
	for _, e := range entities {
		resp = append(resp, api.EntityFromModel(e))
	}

	writeJSON(h.logger, w, http.StatusOK, resp)
}

// Get обрабатывает GET /api/v1/entities/{id}
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.engine.GetEntity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendEngineError(h.logger, r, w, "get entity", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, api.EntityFromModel(entity))
}

// Save обрабатывает PUT /api/v1/entities/{id}.
// Коммит отвечает 200, конфликт отвечает 409 с записью о конфликте.
func (h *EntityHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SaveRequest
	if err := decodeBody(r, w, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode save request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	actor, ok := requestActor(h.logger, w, r, req.Actor)
	if !ok {
		return
	}

	intent := models.WriteIntent{
		EntityID:        chi.URLParam(r, "id"),
		BaseVersion:     req.BaseVersion,
		ProposedPayload: req.Payload,
		Actor:           actor,
	}

	result, err := h.engine.SaveEntity(ctx, intent)
	if err != nil {
		sendEngineError(h.logger, r, w, "save entity", err)
		return
	}

	sendSaveResult(h.logger, w, result)
}

// History обрабатывает GET /api/v1/entities/{id}/conflicts
func (h *EntityHandler) History(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	records, err := h.engine.GetConflictHistory(r.Context(), entityID)
	if err != nil {
		sendEngineError(h.logger, r, w, "get conflict history", err)
		return
	}

	resp := api.ConflictHistoryResponse{
		EntityID:  entityID,
		Conflicts: make([]api.ConflictResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Conflicts = append(resp.Conflicts, *api.ConflictFromModel(rec))
	}

	writeJSON(h.logger, w, http.StatusOK, resp)
}
