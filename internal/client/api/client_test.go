package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)

	client = NewClient("http://localhost:8080", WithTimeout(5*time.Second), WithToken("tok"))
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, "tok", client.Token())
}

func TestClient_SessionURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{name: "http", baseURL: "http://localhost:8080", want: "ws://localhost:8080/api/v1/session"},
		{name: "https", baseURL: "https://plays.example.com", want: "wss://plays.example.com/api/v1/session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.baseURL).SessionURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_SaveEntity_Saved(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/entities/play-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1), req.BaseVersion)
		assert.Equal(t, []byte("formation B"), req.Payload)
		assert.Equal(t, "alice", req.Actor)

		writeJSON(t, w, http.StatusOK, api.SaveResponse{
			Status: api.StatusSaved,
			Entity: &api.EntityResponse{
				ID:             "play-1",
				Version:        2,
				Payload:        []byte("formation B"),
				LastModifiedBy: "alice",
				LastModifiedAt: now,
				CreatedAt:      now,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("test-token"))
	result, err := client.SaveEntity(context.Background(), models.WriteIntent{
		EntityID:        "play-1",
		BaseVersion:     1,
		ProposedPayload: []byte("formation B"),
		Actor:           "alice",
	})
	require.NoError(t, err)
	require.True(t, result.Saved())
	assert.Equal(t, int64(2), result.Entity.Version)
	assert.Equal(t, now, result.Entity.LastModifiedAt)
	assert.Nil(t, result.Conflict)
}

func TestClient_SaveEntity_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, api.SaveResponse{
			Status: api.StatusConflict,
			Conflict: &api.ConflictResponse{
				ID:            "c-1",
				EntityID:      "play-1",
				BaseVersion:   1,
				ServerVersion: 2,
				ClientPayload: []byte("mine"),
				ServerPayload: []byte("theirs"),
				DetectedBy:    "bob",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.SaveEntity(context.Background(), models.WriteIntent{
		EntityID:        "play-1",
		BaseVersion:     1,
		ProposedPayload: []byte("mine"),
		Actor:           "bob",
	})
	require.NoError(t, err)
	assert.False(t, result.Saved())
	require.NotNil(t, result.Conflict)
	assert.Equal(t, "c-1", result.Conflict.ID)
	assert.Equal(t, int64(2), result.Conflict.ServerVersion)
	assert.Equal(t, []byte("theirs"), result.Conflict.ServerPayload)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		body   any
		want   error
		name   string
		status int
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   api.ErrorResponse{Error: api.CodeNotFound},
			want:   models.ErrNotFound,
		},
		{
			name:   "invalid request",
			status: http.StatusBadRequest,
			body:   api.ErrorResponse{Error: api.CodeInvalidRequest, Message: "base version must be >= 1"},
			want:   models.ErrInvalidIntent,
		},
		{
			name:   "store unavailable",
			status: http.StatusServiceUnavailable,
			body:   api.ErrorResponse{Error: api.CodeStoreUnavailable},
			want:   models.ErrStoreUnavailable,
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   api.ErrorResponse{Error: api.CodeUnauthorized},
			want:   ErrUnauthorized,
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   api.ErrorResponse{Error: api.CodeForbidden},
			want:   ErrForbidden,
		},
		{
			name:   "rate limited pauses replay",
			status: http.StatusTooManyRequests,
			body:   api.ErrorResponse{Error: api.CodeRateLimited, RequestID: "req-1"},
			want:   models.ErrStoreUnavailable,
		},
		{
			name:   "bad gateway without body",
			status: http.StatusBadGateway,
			body:   nil,
			want:   models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).SaveEntity(context.Background(), models.WriteIntent{
				EntityID:        "play-1",
				BaseVersion:     1,
				ProposedPayload: []byte("x"),
				Actor:           "alice",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).GetEntity(context.Background(), "play-1")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).GetEntity(ctx, "play-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestClient_CreateEntity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/entities", r.URL.Path)

		var req api.CreateEntityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.ID == "dup" {
			writeJSON(t, w, http.StatusConflict, api.ErrorResponse{Error: api.CodeAlreadyExists})
			return
		}

		writeJSON(t, w, http.StatusCreated, api.EntityResponse{
			ID:             req.ID,
			Version:        1,
			Payload:        req.Payload,
			LastModifiedBy: "alice",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	entity, err := client.CreateEntity(context.Background(), "play-1", []byte("formation A"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), entity.Version)
	assert.Equal(t, []byte("formation A"), entity.Payload)

	_, err = client.CreateEntity(context.Background(), "dup", []byte("x"))
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestClient_ResolveConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req api.ResolveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch r.URL.Path {
		case "/api/v1/conflicts/c-1/resolve":
			assert.Equal(t, "merge", req.Strategy)
			assert.Equal(t, []byte("merged"), req.Payload)
			writeJSON(t, w, http.StatusOK, api.SaveResponse{
				Status: api.StatusSaved,
				Entity: &api.EntityResponse{ID: "play-1", Version: 3, Payload: []byte("merged")},
			})
		case "/api/v1/conflicts/c-2/resolve":
			writeJSON(t, w, http.StatusUnprocessableEntity, api.ErrorResponse{Error: api.CodeAlreadyResolved})
		default:
			writeJSON(t, w, http.StatusNotFound, api.ErrorResponse{Error: api.CodeConflictNotFound})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.ResolveConflict(ctx, "c-1", models.StrategyMerge, []byte("merged"), "alice")
	require.NoError(t, err)
	require.True(t, result.Saved())
	assert.Equal(t, int64(3), result.Entity.Version)

	_, err = client.ResolveConflict(ctx, "c-2", models.StrategyServerWins, nil, "alice")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)

	_, err = client.ResolveConflict(ctx, "missing", models.StrategyServerWins, nil, "alice")
	assert.ErrorIs(t, err, models.ErrConflictNotFound)
}

func TestClient_GetConflictHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/entities/play-1/conflicts", r.URL.Path)
		writeJSON(t, w, http.StatusOK, api.ConflictHistoryResponse{
			EntityID: "play-1",
			Conflicts: []api.ConflictResponse{
				{ID: "c-1", EntityID: "play-1", Strategy: "server_wins"},
				{ID: "c-2", EntityID: "play-1"},
			},
		})
	}))
	defer server.Close()

	records, err := NewClient(server.URL).GetConflictHistory(context.Background(), "play-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c-1", records[0].ID)
	assert.Equal(t, models.StrategyServerWins, records[0].Strategy)
	assert.Equal(t, "c-2", records[1].ID)
}

func TestClient_GetConflictAnalytics(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/conflicts", r.URL.Path)
		assert.Equal(t, "2026-01-01T00:00:00Z", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-01-02T00:00:00Z", r.URL.Query().Get("to"))

		writeJSON(t, w, http.StatusOK, api.AnalyticsResponse{
			From:                 &from,
			To:                   &to,
			TotalConflicts:       4,
			ResolvedCount:        3,
			ResolutionRate:       0.75,
			StrategyDistribution: map[string]int{"server_wins": 2, "client_wins": 1, "merge": 0},
		})
	}))
	defer server.Close()

	analytics, err := NewClient(server.URL).GetConflictAnalytics(
		context.Background(),
		models.TimeRange{From: from, To: to},
	)
	require.NoError(t, err)
	assert.Equal(t, 4, analytics.TotalConflicts)
	assert.Equal(t, 3, analytics.ResolvedCount)
	assert.InDelta(t, 0.75, analytics.ResolutionRate, 1e-9)
	assert.Equal(t, 2, analytics.StrategyDistribution[models.StrategyServerWins])
}

func TestClient_Health(t *testing.T) {
	var unhealthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !unhealthy.Load() {
			writeJSON(t, w, http.StatusOK, api.HealthResponse{Status: "ok"})
			return
		}
		writeJSON(t, w, http.StatusServiceUnavailable, api.ErrorResponse{Error: api.CodeStoreUnavailable})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.Health(context.Background()))

	unhealthy.Store(true)
	assert.ErrorIs(t, client.Health(context.Background()), models.ErrStoreUnavailable)
}
