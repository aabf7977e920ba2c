package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/playsync/internal/server/handlers"
	"github.com/iudanet/playsync/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Актор из токена кладется в контекст запроса.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				unauthorized(w, r, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.Warn("Invalid Authorization header format")
				unauthorized(w, r, "invalid token format")
				return
			}

			claims, err := handlers.ValidateToken(jwtConfig, parts[1])
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				unauthorized(w, r, "invalid token")
				return
			}

			logger.Debug("Actor authenticated", "actor", claims.Actor)

			next.ServeHTTP(w, r.WithContext(handlers.WithActor(r.Context(), claims.Actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, message)
}
