package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/playsync/internal/client/api"
	"github.com/iudanet/playsync/internal/client/iocli"
	"github.com/iudanet/playsync/internal/client/sync"
	"github.com/iudanet/playsync/internal/engine"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server"
	"github.com/iudanet/playsync/internal/server/handlers"
	"github.com/iudanet/playsync/internal/server/storage/sqlite"
	wire "github.com/iudanet/playsync/pkg/api"
)

var testJWT = handlers.JWTConfig{Secret: []byte("cli-test-secret"), TokenTTL: time.Hour}

type testEnv struct {
	engine *engine.Engine
	url    string
	dbPath string
	dir    string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(store, store, logger)
	srv := server.New(server.Config{JWT: testJWT, ShutdownTimeout: time.Second}, eng, store, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	dir := t.TempDir()
	return &testEnv{
		engine: eng,
		url:    "http://" + ln.Addr().String(),
		dbPath: filepath.Join(dir, "client.db"),
		dir:    dir,
	}
}

func (e *testEnv) options(input string, out io.Writer) *RootOptions {
	return &RootOptions{
		IO:        iocli.NewStreams(strings.NewReader(input), out),
		LogOutput: io.Discard,
		LookupEnv: func(string) (string, bool) { return "", false },
	}
}

// runWith выполняет команду с заданными опциями и закрывает локальную базу
func (e *testEnv) runWith(ctx context.Context, opts *RootOptions, args ...string) error {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(append([]string{"--server", e.url, "--db", e.dbPath}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := e.runWith(context.Background(), e.options("", &out), args...)
	return out.String(), err
}

func (e *testEnv) login(t *testing.T, actor string) {
	t.Helper()

	token, _, err := handlers.GenerateToken(testJWT, actor)
	require.NoError(t, err)

	out, err := e.run(t, "login", "--token", token)
	require.NoError(t, err)
	require.Contains(t, out, "✓ Logged in as "+actor)
}

func (e *testEnv) writePlay(t *testing.T, name, formation string) string {
	t.Helper()

	payload := fmt.Sprintf(`{"name":%q,"formation":%q,`+
		`"positions":[{"player":"QB","x":50,"y":10}],`+
		`"routes":[{"player":"WR1","waypoints":[{"x":10,"y":30},{"x":40,"y":45}]}]}`, name, formation)

	path := filepath.Join(e.dir, strings.ReplaceAll(name, " ", "-")+".json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0600))
	return path
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCommands_RequireLogin(t *testing.T) {
	env := setupTestEnv(t)

	for _, args := range [][]string{
		{"list"},
		{"get", "flood-right"},
		{"sync"},
		{"history", "flood-right"},
		{"analytics"},
	} {
		_, err := env.run(t, args...)
		assert.ErrorIs(t, err, ErrNotAuthenticated, args)
	}
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("malformed token", func(t *testing.T) {
		_, err := env.run(t, "login", "--token", "not-a-jwt")
		assert.ErrorContains(t, err, "invalid token")
	})

	t.Run("missing token without terminal", func(t *testing.T) {
		_, err := env.run(t, "login")
		assert.ErrorContains(t, err, "--token is required")
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		token, _, err := handlers.GenerateToken(handlers.JWTConfig{Secret: []byte("other")}, "coach-alice")
		require.NoError(t, err)

		_, err = env.run(t, "login", "--token", token)
		assert.ErrorIs(t, err, api.ErrUnauthorized)

		out, err := env.run(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "not authenticated")
	})

	t.Run("configured actor must match", func(t *testing.T) {
		token, _, err := handlers.GenerateToken(testJWT, "coach-alice")
		require.NoError(t, err)

		_, err = env.run(t, "--actor", "coach-bob", "login", "--token", token)
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("valid token", func(t *testing.T) {
		env.login(t, "coach-alice")

		out, err := env.run(t, "--format", "json", "status")
		require.NoError(t, err)

		status := decodeJSON[statusView](t, out)
		assert.True(t, status.Authenticated)
		assert.Equal(t, "coach-alice", status.Actor)
		assert.Equal(t, "idle", status.State)
		assert.NotNil(t, status.ExpiresAt)
		assert.Empty(t, status.ServerError)
	})

	t.Run("logout", func(t *testing.T) {
		// Токен другого сервера хранится отдельно
		token, _, err := handlers.GenerateToken(testJWT, "coach-alice")
		require.NoError(t, err)
		_, err = env.run(t, "--offline", "--server", "http://staging.local:9090", "login", "--token", token)
		require.NoError(t, err)

		out, err := env.run(t, "logout")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Logged out of "+env.url)

		_, err = env.run(t, "list")
		assert.ErrorIs(t, err, ErrNotAuthenticated)

		_, err = env.run(t, "logout")
		assert.ErrorIs(t, err, ErrNotAuthenticated)

		out, err = env.run(t, "logout", "--all")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Logged out of http://staging.local:9090")
	})
}

func TestParseToken(t *testing.T) {
	now := time.Now()

	token, expiresAt, err := handlers.GenerateToken(testJWT, "coach-alice")
	require.NoError(t, err)

	claims, err := parseToken(token, now)
	require.NoError(t, err)
	assert.Equal(t, "coach-alice", claims.Actor)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())

	_, err = parseToken(token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = parseToken("a.b.c", now)
	assert.ErrorContains(t, err, "invalid token")
}

func TestEntityCommands(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	play := env.writePlay(t, "Flood Right", "shotgun")

	out, err := env.run(t, "create", "flood-right", "--file", play)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created flood-right at version 1")

	_, err = env.run(t, "create", "flood-right", "--file", play)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name":"no formation"}`), 0600))
	_, err = env.run(t, "create", "other", "--file", bad)
	assert.ErrorContains(t, err, "formation is required")

	out, err = env.run(t, "get", "flood-right")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Play flood-right ===")
	assert.Contains(t, out, "Version:       1")
	assert.Contains(t, out, `"formation": "shotgun"`)

	_, err = env.run(t, "get", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	out, err = env.run(t, "save", "flood-right", "--base", "1", "--file", env.writePlay(t, "Flood Right", "trips"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved flood-right at version 2")

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "flood-right")
	assert.Contains(t, out, "Flood Right")
	assert.Contains(t, out, "coach-alice")

	out, err = env.run(t, "--format", "json", "list")
	require.NoError(t, err)
	list := decodeJSON[[]wire.EntityResponse](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].Version)
}

func TestSave_ConflictAndResolve(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	_, err := env.run(t, "create", "flood-right", "--file", env.writePlay(t, "Flood Right", "shotgun"))
	require.NoError(t, err)

	// Другой тренер успел сохранить версию 2
	_, err = env.engine.SaveEntity(ctx, models.WriteIntent{
		EntityID: "flood-right", BaseVersion: 1, ProposedPayload: []byte(`{"by":"bob"}`), Actor: "coach-bob",
	})
	require.NoError(t, err)

	out, err := env.run(t, "--format", "json", "save", "flood-right", "--base", "1",
		"--file", env.writePlay(t, "Flood Right", "empty"))
	require.ErrorIs(t, err, ErrUnresolvedConflict)

	saved := decodeJSON[wire.SaveResponse](t, out)
	require.NotNil(t, saved.Conflict)
	assert.Equal(t, int64(2), saved.Conflict.ServerVersion)
	conflictID := saved.Conflict.ID

	t.Run("merge requires a file", func(t *testing.T) {
		_, err := env.run(t, "resolve", conflictID, "--strategy", "merge")
		assert.ErrorContains(t, err, "--file is required")
	})

	t.Run("file only with merge", func(t *testing.T) {
		_, err := env.run(t, "resolve", conflictID, "--strategy", "server", "--file", "x.json")
		assert.ErrorContains(t, err, "only used with the merge strategy")
	})

	t.Run("strategy required without terminal", func(t *testing.T) {
		_, err := env.run(t, "resolve", conflictID)
		assert.ErrorContains(t, err, "--strategy is required")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := env.run(t, "resolve", conflictID, "--strategy", "coin_flip")
		assert.ErrorIs(t, err, models.ErrInvalidResolution)
	})

	out, err = env.run(t, "resolve", conflictID, "--strategy", "client")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Resolved conflict "+conflictID+" with client_wins: flood-right is at version 3")

	entity, err := env.engine.GetEntity(ctx, "flood-right")
	require.NoError(t, err)
	assert.Equal(t, int64(3), entity.Version)
	assert.Contains(t, string(entity.Payload), `"empty"`)

	_, err = env.run(t, "resolve", conflictID, "--strategy", "server")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)

	out, err = env.run(t, "history", "flood-right")
	require.NoError(t, err)
	assert.Contains(t, out, conflictID)
	assert.Contains(t, out, "client_wins")
	assert.Contains(t, out, "v3")

	out, err = env.run(t, "history", "flood-right", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Conflict "+conflictID+" ===")
	assert.Contains(t, out, "Resolved by:    coach-alice")

	out, err = env.run(t, "--format", "json", "analytics", "--from", "1h")
	require.NoError(t, err)
	analytics := decodeJSON[wire.AnalyticsResponse](t, out)
	assert.Equal(t, 1, analytics.TotalConflicts)
	assert.Equal(t, 1, analytics.ResolvedCount)
	assert.Equal(t, 1, analytics.StrategyDistribution["client_wins"])

	out, err = env.run(t, "analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "Total conflicts: 1")
	assert.Contains(t, out, "Resolved:        1 (100.0%)")
}

func TestOfflineQueue_SyncAndResolve(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	for _, id := range []string{"flood-right", "slant-left"} {
		_, err := env.run(t, "create", id, "--file", env.writePlay(t, id, "shotgun"))
		require.NoError(t, err)
	}

	// Правки без связи
	out, err := env.run(t, "--offline", "save", "flood-right", "--base", "1", "--file", env.writePlay(t, "flood offline", "trips"))
	require.NoError(t, err)
	assert.Contains(t, out, "offline mode")

	_, err = env.run(t, "--offline", "save", "slant-left", "--base", "1", "--file", env.writePlay(t, "slant offline", "bunch"))
	require.NoError(t, err)

	// Пока очередь по flood-right не пуста, онлайн-правка встает за ней
	out, err = env.run(t, "save", "flood-right", "--base", "2", "--file", env.writePlay(t, "flood follow-up", "trips"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 earlier edit(s) of flood-right are queued")

	// Тем временем flood-right изменили на сервере
	_, err = env.engine.SaveEntity(ctx, models.WriteIntent{
		EntityID: "flood-right", BaseVersion: 1, ProposedPayload: []byte(`{"by":"bob"}`), Actor: "coach-bob",
	})
	require.NoError(t, err)

	_, err = env.run(t, "--offline", "sync")
	assert.ErrorContains(t, err, "offline mode")

	out, err = env.run(t, "sync")
	require.ErrorIs(t, err, ErrUnresolvedConflict)
	assert.Contains(t, out, "Committed:      1 edit(s)")
	assert.Contains(t, out, "✗ Conflict on flood-right")

	out, err = env.run(t, "--format", "json", "queue")
	require.NoError(t, err)
	ops := decodeJSON[[]models.OfflineOperation](t, out)
	require.Len(t, ops, 2)
	assert.Equal(t, models.OperationConflictPendingResolution, ops[0].Status)
	assert.NotEmpty(t, ops[0].ConflictID)
	assert.Equal(t, models.OperationPending, ops[1].Status)

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "awaiting_conflict_resolution")
	assert.Contains(t, out, "1 committed, 1 conflict(s)")

	// client_wins коммитит v3, следующая правка (base 2) снова конфликтует
	out, err = env.run(t, "resolve", ops[0].ID, "--strategy", "client")
	require.ErrorIs(t, err, ErrUnresolvedConflict)
	assert.Contains(t, out, "✓ Resolved conflict "+ops[0].ConflictID)
	assert.Contains(t, out, "edit "+ops[1].ID+" was based on version 2")

	out, err = env.run(t, "abandon", ops[1].ID, "--reason", "superseded")
	require.NoError(t, err)
	assert.Contains(t, out, "superseded")

	out, err = env.run(t, "queue")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ No queued edits")

	out, err = env.run(t, "--format", "json", "queue", "--all")
	require.NoError(t, err)
	all := decodeJSON[[]models.OfflineOperation](t, out)
	require.Len(t, all, 3)

	out, err = env.run(t, "queue", "compact")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 finished edit(s)")

	out, err = env.run(t, "queue", "compact", "--older-than", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 finished edit(s)")

	_, err = env.run(t, "queue", "compact", "--older-than", "-1h")
	assert.ErrorContains(t, err, "must not be negative")

	entity, err := env.engine.GetEntity(ctx, "flood-right")
	require.NoError(t, err)
	assert.Equal(t, int64(3), entity.Version)
	assert.Contains(t, string(entity.Payload), "flood offline")

	slant, err := env.engine.GetEntity(ctx, "slant-left")
	require.NoError(t, err)
	assert.Equal(t, int64(2), slant.Version)
}

func TestResolve_QueuedEditResolvedElsewhere(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	_, err := env.run(t, "create", "flood-right", "--file", env.writePlay(t, "Flood Right", "shotgun"))
	require.NoError(t, err)
	_, err = env.run(t, "--offline", "save", "flood-right", "--base", "1", "--file", env.writePlay(t, "flood offline", "trips"))
	require.NoError(t, err)

	_, err = env.engine.SaveEntity(ctx, models.WriteIntent{
		EntityID: "flood-right", BaseVersion: 1, ProposedPayload: []byte(`{"by":"bob"}`), Actor: "coach-bob",
	})
	require.NoError(t, err)

	_, err = env.run(t, "sync")
	require.ErrorIs(t, err, ErrUnresolvedConflict)

	out, err := env.run(t, "--format", "json", "queue")
	require.NoError(t, err)
	ops := decodeJSON[[]models.OfflineOperation](t, out)
	require.Len(t, ops, 1)

	// bob разрешил конфликт раньше
	_, err = env.engine.ResolveConflict(ctx, ops[0].ConflictID, models.StrategyServerWins, nil, "coach-bob")
	require.NoError(t, err)

	out, err = env.run(t, "resolve", ops[0].ID, "--strategy", "client")
	require.ErrorIs(t, err, sync.ErrResolvedElsewhere)
	assert.Contains(t, out, "resolved by coach-bob with server_wins")
	assert.Contains(t, out, "playsync abandon "+ops[0].ID)
	assert.NotContains(t, out, "✓ Resolved")

	out, err = env.run(t, "--format", "json", "queue")
	require.NoError(t, err)
	ops = decodeJSON[[]models.OfflineOperation](t, out)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OperationConflictPendingResolution, ops[0].Status)

	entity, err := env.engine.GetEntity(ctx, "flood-right")
	require.NoError(t, err)
	assert.Equal(t, int64(3), entity.Version)
	assert.JSONEq(t, `{"by":"bob"}`, string(entity.Payload))
}

func TestSave_QueuesWhenServerIsDown(t *testing.T) {
	env := setupTestEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	env.url = "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	token, _, err := handlers.GenerateToken(testJWT, "coach-alice")
	require.NoError(t, err)

	out, err := env.run(t, "login", "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, "Token was not verified")

	out, err = env.run(t, "save", "flood-right", "--base", "3", "--file", env.writePlay(t, "Flood Right", "shotgun"))
	require.NoError(t, err)
	assert.Contains(t, out, "server unavailable")

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "Pending sync: 1 edit(s)")
}

func TestResolve_InteractivePrompt(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	_, err := env.engine.CreateEntity(ctx, "flood-right", []byte(`{"v":1}`), "coach-bob")
	require.NoError(t, err)
	_, err = env.engine.SaveEntity(ctx, models.WriteIntent{
		EntityID: "flood-right", BaseVersion: 1, ProposedPayload: []byte(`{"v":2}`), Actor: "coach-bob",
	})
	require.NoError(t, err)
	result, err := env.engine.SaveEntity(ctx, models.WriteIntent{
		EntityID: "flood-right", BaseVersion: 1, ProposedPayload: []byte(`{"v":"alice"}`), Actor: "coach-alice",
	})
	require.NoError(t, err)
	require.False(t, result.Saved())

	var out bytes.Buffer
	answers := []string{"maybe", "1"}
	mockIO := &iocli.IOMock{
		IsInteractiveFunc: func() bool { return true },
		PrintfFunc:        func(format string, a ...any) { fmt.Fprintf(&out, format, a...) },
		PrintlnFunc:       func(a ...any) { fmt.Fprintln(&out, a...) },
		WriteFunc:         out.Write,
		ReadInputFunc: func(prompt string) (string, error) {
			answer := answers[0]
			answers = answers[1:]
			return answer, nil
		},
	}

	opts := &RootOptions{
		IO:        mockIO,
		LogOutput: io.Discard,
		LookupEnv: func(string) (string, bool) { return "", false },
	}
	require.NoError(t, env.runWith(ctx, opts, "resolve", result.Conflict.ID))

	require.Len(t, mockIO.ReadInputCalls(), 2)
	assert.Equal(t, "Strategy [1-3]: ", mockIO.ReadInputCalls()[1].Prompt)
	assert.Contains(t, out.String(), "=== Conflict "+result.Conflict.ID+" ===")
	assert.Contains(t, out.String(), "Unknown strategy")
	assert.Contains(t, out.String(), "with server_wins")

	entity, err := env.engine.GetEntity(ctx, "flood-right")
	require.NoError(t, err)
	assert.Equal(t, int64(3), entity.Version)
	assert.JSONEq(t, `{"v":2}`, string(entity.Payload))
}

func TestWatch_ReplaysQueueOnConnect(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	_, err := env.run(t, "create", "flood-right", "--file", env.writePlay(t, "Flood Right", "shotgun"))
	require.NoError(t, err)
	_, err = env.run(t, "--offline", "save", "flood-right", "--base", "1", "--file", env.writePlay(t, "Flood Right", "trips"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- env.runWith(ctx, env.options("", &out), "watch", "--min-backoff", "10ms")
	}()

	require.Eventually(t, func() bool {
		entity, err := env.engine.GetEntity(context.Background(), "flood-right")
		return err == nil && entity.Version == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	assert.Contains(t, out.String(), "✓ Connected to "+env.url)
	assert.Contains(t, out.String(), "Committed:      1 edit(s)")
}

func TestRoot_InvalidFormat(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "--format", "yaml", "status")
	assert.ErrorContains(t, err, "invalid format")
}

func TestRoot_ConfigFile(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, "coach-alice")

	path := filepath.Join(env.dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actor: coach-bob\nparallelism: 2\n"), 0600))

	_, err := env.run(t, "--config", path, "list")
	assert.ErrorContains(t, err, `configured actor "coach-bob" does not match token actor "coach-alice"`)

	require.NoError(t, os.WriteFile(path, []byte("parallelism: 0\n"), 0600))
	_, err = env.run(t, "--config", path, "list")
	assert.ErrorContains(t, err, "parallelism")
}

func TestParseBound(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := parseBound("", now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseBound("24h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), got)

	got, err = parseBound("2026-03-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseBound("yesterday", now)
	assert.Error(t, err)

	_, err = parseBound("-1h", now)
	assert.Error(t, err)
}
