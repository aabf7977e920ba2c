package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/playsync/pkg/api"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	pinger Pinger
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, pinger Pinger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		pinger: pinger,
	}
}

// Health обрабатывает GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "store ping failed", slog.Any("error", err))
		sendError(h.logger, w, http.StatusServiceUnavailable, api.CodeStoreUnavailable, "store unavailable")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
