package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// statusRecorder запоминает статус и размер ответа для access-лога
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

// Hijack нужен для upgrade на WebSocket
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// outcome classifies a response for the access log.
// A version conflict is a normal result of a write, so it is logged at info level.
func outcome(status int) (string, slog.Level) {
	switch {
	case status >= http.StatusInternalServerError:
		return "failed", slog.LevelError
	case status == http.StatusConflict:
		return "conflict", slog.LevelInfo
	case status == http.StatusSwitchingProtocols:
		return "session", slog.LevelInfo
	case status >= http.StatusBadRequest:
		return "rejected", slog.LevelWarn
	default:
		return "ok", slog.LevelInfo
	}
}

// RequestLogger пишет одну запись на запрос. Пути из skip не логируются.
// Заголовок Authorization и тела запросов в лог не попадают.
func RequestLogger(logger *slog.Logger, skip ...string) func(http.Handler) http.Handler {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skipped[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			result, level := outcome(rec.status)
			logger.Log(r.Context(), level, "HTTP request",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"status", rec.status,
				"outcome", result,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes_written", rec.written,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// routePattern возвращает шаблон маршрута chi, например /api/v1/entities/{id}
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
