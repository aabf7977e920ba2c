package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/playsync/pkg/api"
)

// RecoveryMiddleware перехватывает panic в обработчике, пишет стек в лог и отвечает 500.
// Детали паники клиенту не отдаются, только id запроса.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("Panic recovered",
					"panic", rec,
					"request_id", chimw.GetReqID(r.Context()),
					"method", r.Method,
					"route", routePattern(r),
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				writeError(w, r, http.StatusInternalServerError, api.CodeInternal, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
