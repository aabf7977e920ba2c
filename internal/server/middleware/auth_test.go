package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/playsync/internal/server/handlers"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:   []byte("test-secret-key"),
		TokenTTL: 15 * time.Minute,
	}
}

func mustNotBeCalled(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
}

func TestAuthMiddleware_Success(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := handlers.GenerateToken(cfg, "coach-alice")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := handlers.GetActor(r.Context())
		require.True(t, ok, "actor should be in context")
		assert.Equal(t, "coach-alice", actor)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cfg := testJWTConfig()

	otherSecret, _, err := handlers.GenerateToken(handlers.JWTConfig{Secret: []byte("other")}, "coach-alice")
	require.NoError(t, err)

	// Токен без актора подписан верным секретом, но не проходит проверку claims
	noActor, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "playsync",
		Subject: "coach-alice",
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing header", header: "", message: "missing token"},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", message: "invalid token format"},
		{name: "no token", header: "Bearer ", message: "invalid token format"},
		{name: "malformed token", header: "Bearer invalid.token.here", message: "invalid token"},
		{name: "wrong secret", header: "Bearer " + otherSecret, message: "invalid token"},
		{name: "missing actor claim", header: "Bearer " + noActor, message: "invalid token"},
	}

	handler := AuthMiddleware(setupTestLogger(), cfg)(mustNotBeCalled(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/entities", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.TokenTTL = time.Nanosecond

	token, _, err := handlers.GenerateToken(cfg, "coach-alice")
	require.NoError(t, err)

	// Срок действия округляется до секунды
	time.Sleep(10 * time.Millisecond)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	AuthMiddleware(setupTestLogger(), cfg)(mustNotBeCalled(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}
