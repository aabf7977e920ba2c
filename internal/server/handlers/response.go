package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

// maxBodySize ограничивает тело запроса: payload до 1 MiB плюс base64 и обертка
const maxBodySize = 2 << 20

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func sendError(logger *slog.Logger, w http.ResponseWriter, status int, code, message string) {
	writeJSON(logger, w, status, api.ErrorResponse{Error: code, Message: message})
}

func decodeBody(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// errorMapping сопоставляет ошибки движка с HTTP статусами и кодами ответа.
// Порядок важен: ErrConflictNotFound проверяется раньше ErrNotFound.
var errorMapping = []struct {
	err    error
	code   string
	status int
}{
	{models.ErrConflictNotFound, api.CodeConflictNotFound, http.StatusNotFound},
	{models.ErrNotFound, api.CodeNotFound, http.StatusNotFound},
	{models.ErrAlreadyExists, api.CodeAlreadyExists, http.StatusConflict},
	{models.ErrInvalidResolution, api.CodeInvalidResolution, http.StatusBadRequest},
	{models.ErrInvalidIntent, api.CodeInvalidRequest, http.StatusBadRequest},
	{models.ErrAlreadyResolved, api.CodeAlreadyResolved, http.StatusUnprocessableEntity},
	{models.ErrStoreUnavailable, api.CodeStoreUnavailable, http.StatusServiceUnavailable},
}

// sendEngineError переводит ошибку движка в ответ; неизвестные ошибки скрываются за 500
func sendEngineError(logger *slog.Logger, r *http.Request, w http.ResponseWriter, op string, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			level := slog.LevelWarn
			if m.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, op+" failed", slog.Any("error", err))
			sendError(logger, w, m.status, m.code, err.Error())
			return
		}
	}

	logger.ErrorContext(r.Context(), op+" failed", slog.Any("error", err))
	sendError(logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
}

// sendSaveResult отвечает 200 при коммите и 409 при конфликте
func sendSaveResult(logger *slog.Logger, w http.ResponseWriter, result *models.SaveResult) {
	status := http.StatusOK
	if !result.Saved() {
		status = http.StatusConflict
	}
	writeJSON(logger, w, status, api.SaveResponseFromModel(result))
}

// requestActor возвращает актора запроса.
// Актор в теле допускается только если он совпадает с актором токена.
func requestActor(logger *slog.Logger, w http.ResponseWriter, r *http.Request, bodyActor string) (string, bool) {
	actor, ok := GetActor(r.Context())
	if !ok {
		sendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "actor not found in context")
		return "", false
	}

	if bodyActor != "" && bodyActor != actor {
		logger.WarnContext(r.Context(), "actor mismatch",
			slog.String("token_actor", actor),
			slog.String("body_actor", bodyActor),
		)
		sendError(logger, w, http.StatusForbidden, api.CodeForbidden, "actor does not match token")
		return "", false
	}

	return actor, true
}
