package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/playsync/internal/models"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	resolvedAt := base.Add(time.Minute)

	resolved := func(at time.Time, strategy models.Strategy) *models.ConflictRecord {
		return &models.ConflictRecord{DetectedAt: at, ResolvedAt: &resolvedAt, Strategy: strategy}
	}
	unresolved := func(at time.Time) *models.ConflictRecord {
		return &models.ConflictRecord{DetectedAt: at}
	}

	tests := []struct {
		name         string
		records      []*models.ConflictRecord
		timeRange    models.TimeRange
		wantDist     map[models.Strategy]int
		wantTotal    int
		wantResolved int
		wantRate     float64
	}{
		{
			name:     "no conflicts yields zero rate",
			wantDist: map[models.Strategy]int{},
		},
		{
			name: "mixed strategies",
			records: []*models.ConflictRecord{
				resolved(base, models.StrategyServerWins),
				resolved(base.Add(time.Hour), models.StrategyClientWins),
				resolved(base.Add(2*time.Hour), models.StrategyClientWins),
				unresolved(base.Add(3 * time.Hour)),
			},
			wantTotal:    4,
			wantResolved: 3,
			wantRate:     0.75,
			wantDist: map[models.Strategy]int{
				models.StrategyServerWins: 1,
				models.StrategyClientWins: 2,
			},
		},
		{
			name: "half-open range excludes upper bound",
			records: []*models.ConflictRecord{
				resolved(base, models.StrategyMerge),
				unresolved(base.Add(time.Hour)),
			},
			timeRange:    models.TimeRange{From: base, To: base.Add(time.Hour)},
			wantTotal:    1,
			wantResolved: 1,
			wantRate:     1,
			wantDist:     map[models.Strategy]int{models.StrategyMerge: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.records, tt.timeRange)

			assert.Equal(t, tt.wantTotal, got.TotalConflicts)
			assert.Equal(t, tt.wantResolved, got.ResolvedCount)
			assert.InDelta(t, tt.wantRate, got.ResolutionRate, 1e-9)
			for _, strategy := range models.Strategies {
				assert.Equal(t, tt.wantDist[strategy], got.StrategyDistribution[strategy], "strategy %s", strategy)
			}
		})
	}
}
