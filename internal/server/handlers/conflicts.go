package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

// ConflictHandler обрабатывает запросы к журналу конфликтов
type ConflictHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewConflictHandler создает новый handler для конфликтов
func NewConflictHandler(logger *slog.Logger, engine Engine) *ConflictHandler {
	return &ConflictHandler{
		logger: logger,
		engine: engine,
	}
}

// Get обрабатывает GET /api/v1/conflicts/{id}
func (h *ConflictHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetConflict(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendEngineError(h.logger, r, w, "get conflict", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, api.ConflictFromModel(record))
}

// Resolve обрабатывает POST /api/v1/conflicts/{id}/resolve
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conflictID := chi.URLParam(r, "id")

	var req api.ResolveRequest
	if err := decodeBody(r, w, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode resolve request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	actor, ok := requestActor(h.logger, w, r, req.Actor)
	if !ok {
		return
	}

	strategy, err := models.ParseStrategy(req.Strategy)
	if err != nil {
		sendEngineError(h.logger, r, w, "resolve conflict", err)
		return
	}

	result, err := h.engine.ResolveConflict(ctx, conflictID, strategy, req.Payload, actor)
	switch {
	case errors.Is(err, models.ErrLedgerStale) && result.Saved():
		// коммит уже виден остальным клиентам, отстала только история конфликтов
		h.logger.ErrorContext(ctx, "conflict ledger is stale after resolution",
			slog.String("conflict_id", conflictID),
			slog.Any("error", err),
		)
	case err != nil:
		sendEngineError(h.logger, r, w, "resolve conflict", err)
		return
	}

	h.logger.InfoContext(ctx, "conflict resolution attempted",
		slog.String("conflict_id", conflictID),
		slog.String("strategy", string(strategy)),
		slog.String("actor", actor),
		slog.Bool("committed", result.Saved()),
	)

	sendSaveResult(h.logger, w, result)
}

// Analytics обрабатывает GET /api/v1/analytics/conflicts?from=RFC3339&to=RFC3339
func (h *ConflictHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	var timeRange models.TimeRange

	query := r.URL.Query()
	for _, p := range []struct {
		dst  *time.Time
		name string
	}{
		{&timeRange.From, "from"},
		{&timeRange.To, "to"},
	} {
		value := query.Get(p.name)
		if value == "" {
			continue
		}

		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			h.logger.WarnContext(r.Context(), "invalid time parameter",
				slog.String("param", p.name),
				slog.String("value", value),
			)
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid "+p.name+" parameter")
			return
		}
		*p.dst = parsed
	}

	analytics, err := h.engine.GetConflictAnalytics(r.Context(), timeRange)
	if err != nil {
		sendEngineError(h.logger, r, w, "get conflict analytics", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, api.AnalyticsFromModel(analytics))
}
