package conflict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/playsync/internal/history"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/server/storage"
)

// conflictOn создает конфликт: alice коммитит v2, bob пишет со старой базой
func conflictOn(t *testing.T, env *testEnv, id string) *models.ConflictRecord {
	t.Helper()
	ctx := context.Background()

	env.createEntity(t, id, "v1")
	_, err := env.detector.AttemptWrite(ctx, models.WriteIntent{
		EntityID: id, BaseVersion: 1, ProposedPayload: []byte("alice-v2"), Actor: "alice",
	})
	require.NoError(t, err)

	result, err := env.detector.AttemptWrite(ctx, models.WriteIntent{
		EntityID: id, BaseVersion: 1, ProposedPayload: []byte("bob-v2"), Actor: "bob",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Conflict)

	return result.Conflict
}

func TestResolver_Strategies(t *testing.T) {
	tests := []struct {
		name        string
		strategy    models.Strategy
		merged      []byte
		wantPayload []byte
	}{
		{
			name:        "server wins keeps the server payload",
			strategy:    models.StrategyServerWins,
			wantPayload: []byte("alice-v2"),
		},
		{
			name:        "client wins keeps the losing payload",
			strategy:    models.StrategyClientWins,
			wantPayload: []byte("bob-v2"),
		},
		{
			name:        "merge commits the supplied payload",
			strategy:    models.StrategyMerge,
			merged:      []byte("merged-v3"),
			wantPayload: []byte("merged-v3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := setupTestEnv(t)
			record := conflictOn(t, env, "play-1")

			result, err := env.resolver.Resolve(ctx, record, tt.strategy, tt.merged, "bob")
			require.NoError(t, err)
			require.True(t, result.Saved())
			assert.Equal(t, int64(3), result.Entity.Version)
			assert.Equal(t, tt.wantPayload, result.Entity.Payload)

			stored, err := env.ledger.Get(ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, stored.Strategy)
			assert.Equal(t, tt.wantPayload, stored.ResolvedPayload)
			assert.Equal(t, "bob", stored.ResolvedBy)
			assert.Equal(t, int64(3), stored.ResultingVersion)
			assert.NotNil(t, stored.ResolvedAt)

			// запись в памяти тоже обновлена
			assert.True(t, record.IsResolved())
		})
	}
}

func TestResolver_InvalidResolution(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	record := conflictOn(t, env, "play-1")

	_, err := env.resolver.Resolve(ctx, record, models.StrategyMerge, nil, "bob")
	assert.ErrorIs(t, err, models.ErrInvalidResolution)

	_, err = env.resolver.Resolve(ctx, record, models.StrategyMerge, []byte{}, "bob")
	assert.ErrorIs(t, err, models.ErrInvalidResolution)

	_, err = env.resolver.Resolve(ctx, record, models.Strategy("coin_flip"), []byte("x"), "bob")
	assert.ErrorIs(t, err, models.ErrInvalidResolution)

	// ничего не закоммичено, запись не разрешена
	current, err := env.store.GetEntity(ctx, "play-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Version)

	stored, err := env.ledger.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsResolved())
}

func TestResolver_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	record := conflictOn(t, env, "play-1")

	_, err := env.resolver.Resolve(ctx, record, models.StrategyServerWins, nil, "bob")
	require.NoError(t, err)

	_, err = env.resolver.Resolve(ctx, record, models.StrategyClientWins, nil, "bob")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)
}

func TestResolver_ServerWinsScenario(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	// E на версии 2, B пишет с baseVersion=1, разрешает через ServerWins
	record := conflictOn(t, env, "play-1")
	assert.Equal(t, int64(2), record.ServerVersion)

	result, err := env.resolver.Resolve(ctx, record, models.StrategyServerWins, nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Entity.Version)

	stored, err := env.ledger.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyServerWins, stored.Strategy)
	assert.Equal(t, int64(3), stored.ResultingVersion)
}

func TestResolver_SimultaneousResolutionsOneWinner(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	record := conflictOn(t, env, "play-1")

	// оба резолвера держат один и тот же снимок неразрешенной записи
	first := *record
	second := *record

	var (
		wg      sync.WaitGroup
		results [2]*models.SaveResult
		errs    [2]error
	)
	for i, snapshot := range []*models.ConflictRecord{&first, &second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = env.resolver.Resolve(ctx, snapshot, models.StrategyServerWins, nil, "bob")
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	saved, conflicted := 0, 0
	var newConflict *models.ConflictRecord
	for _, result := range results {
		if result.Saved() {
			saved++
			assert.Equal(t, int64(3), result.Entity.Version)
			continue
		}
		conflicted++
		newConflict = result.Conflict
	}
	assert.Equal(t, 1, saved)
	assert.Equal(t, 1, conflicted)

	require.NotNil(t, newConflict)
	assert.NotEqual(t, record.ID, newConflict.ID)
	assert.Equal(t, int64(2), newConflict.BaseVersion)
	assert.Equal(t, int64(3), newConflict.ServerVersion)

	current, err := env.store.GetEntity(ctx, "play-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), current.Version)

	records, err := env.ledger.ListByEntity(ctx, "play-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestResolver_RaceProducesNewConflict(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	record := conflictOn(t, env, "play-1")

	// третий писатель успевает закоммитить до разрешения
	_, err := env.detector.AttemptWrite(ctx, models.WriteIntent{
		EntityID: "play-1", BaseVersion: 2, ProposedPayload: []byte("carol-v3"), Actor: "carol",
	})
	require.NoError(t, err)

	result, err := env.resolver.Resolve(ctx, record, models.StrategyClientWins, nil, "bob")
	require.NoError(t, err)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, []byte("bob-v2"), result.Conflict.ClientPayload)
	assert.Equal(t, []byte("carol-v3"), result.Conflict.ServerPayload)
	assert.Equal(t, int64(3), result.Conflict.ServerVersion)
	assert.Equal(t, models.ConflictUnresolved, record.State())

	stored, err := env.ledger.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsResolved(), "original record must stay unresolved")

	current, err := env.store.GetEntity(ctx, "play-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("carol-v3"), current.Payload)
}

// newLedgerFailureResolver собирает резолвер, у которого коммит всегда проходит,
// а запись в журнал отвечает markErrs по очереди (nil после их окончания)
func newLedgerFailureResolver(markErrs ...error) (*Resolver, *storage.EntityStorageMock, *storage.ConflictStorageMock) {
	committed := &models.VersionedEntity{ID: "play-1", Version: 3, Payload: []byte("server")}
	store := &storage.EntityStorageMock{
		ConditionalWriteFunc: func(ctx context.Context, id string, expectedVersion int64, payload []byte, actor string) (*models.VersionedEntity, error) {
			return committed, nil
		},
	}

	var calls int
	conflicts := &storage.ConflictStorageMock{
		MarkConflictResolvedFunc: func(ctx context.Context, id string, resolution models.ConflictResolution) error {
			calls++
			if calls <= len(markErrs) {
				return markErrs[calls-1]
			}
			return nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := NewResolver(store, history.NewLedger(conflicts, logger), logger)
	resolver.ledgerBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond))
	}

	return resolver, store, conflicts
}

func unresolvedRecord() *models.ConflictRecord {
	return &models.ConflictRecord{
		ID:            "c-1",
		EntityID:      "play-1",
		BaseVersion:   1,
		ServerVersion: 2,
		ClientPayload: []byte("client"),
		ServerPayload: []byte("server"),
	}
}

func TestResolver_LedgerUpdateFailureKeepsCommit(t *testing.T) {
	offline := errors.New("ledger offline")
	resolver, store, conflicts := newLedgerFailureResolver(offline, offline, offline, offline)

	record := unresolvedRecord()
	result, err := resolver.Resolve(context.Background(), record, models.StrategyServerWins, nil, "bob")
	require.ErrorIs(t, err, models.ErrLedgerStale)
	assert.ErrorIs(t, err, offline)

	// коммит состоялся, результат возвращается вместе с ошибкой
	require.True(t, result.Saved())
	assert.Equal(t, int64(3), result.Entity.Version)

	assert.False(t, record.IsResolved())
	assert.Equal(t, models.ConflictStrategyChosen, record.State())

	calls := store.ConditionalWriteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(2), calls[0].ExpectedVersion)
	assert.Len(t, conflicts.MarkConflictResolvedCalls(), 4)
}

func TestResolver_LedgerUpdateRetried(t *testing.T) {
	t.Run("transient failure", func(t *testing.T) {
		busy := errors.New("database is locked")
		resolver, _, conflicts := newLedgerFailureResolver(busy, busy)

		record := unresolvedRecord()
		result, err := resolver.Resolve(context.Background(), record, models.StrategyClientWins, nil, "bob")
		require.NoError(t, err)
		assert.True(t, result.Saved())
		assert.True(t, record.IsResolved())
		assert.Equal(t, models.ConflictCommitted, record.State())
		assert.Len(t, conflicts.MarkConflictResolvedCalls(), 3)
	})

	t.Run("first attempt landed", func(t *testing.T) {
		resolver, _, conflicts := newLedgerFailureResolver(
			errors.New("connection reset"),
			models.ErrAlreadyResolved,
		)

		record := unresolvedRecord()
		_, err := resolver.Resolve(context.Background(), record, models.StrategyServerWins, nil, "bob")
		require.NoError(t, err)
		assert.True(t, record.IsResolved())
		assert.Len(t, conflicts.MarkConflictResolvedCalls(), 2)
	})

	t.Run("missing record is not retried", func(t *testing.T) {
		resolver, _, conflicts := newLedgerFailureResolver(models.ErrConflictNotFound)

		result, err := resolver.Resolve(context.Background(), unresolvedRecord(), models.StrategyServerWins, nil, "bob")
		require.ErrorIs(t, err, models.ErrLedgerStale)
		assert.ErrorIs(t, err, models.ErrConflictNotFound)
		assert.True(t, result.Saved())
		assert.Len(t, conflicts.MarkConflictResolvedCalls(), 1)
	})
}

func TestResolvedPayload(t *testing.T) {
	record := &models.ConflictRecord{ClientPayload: []byte("client"), ServerPayload: []byte("server")}

	payload, err := ResolvedPayload(record, models.StrategyServerWins, []byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, []byte("server"), payload)

	payload, err = ResolvedPayload(record, models.StrategyClientWins, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("client"), payload)

	_, err = ResolvedPayload(record, "", nil)
	assert.ErrorIs(t, err, models.ErrInvalidResolution)
}
