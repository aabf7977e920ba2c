package history

import "github.com/iudanet/playsync/internal/models"

// Summarize aggregates the records that fall into the range.
// ResolutionRate is 0 when there are no conflicts.
func Summarize(records []*models.ConflictRecord, timeRange models.TimeRange) *models.ConflictAnalytics {
	analytics := &models.ConflictAnalytics{
		Range:                timeRange,
		StrategyDistribution: make(map[models.Strategy]int, len(models.Strategies)),
	}

	for _, strategy := range models.Strategies {
		analytics.StrategyDistribution[strategy] = 0
	}

	for _, record := range records {
		if !timeRange.Contains(record.DetectedAt) {
			continue
		}

		analytics.TotalConflicts++
		if record.IsResolved() {
			analytics.ResolvedCount++
			analytics.StrategyDistribution[record.Strategy]++
		}
	}

	if analytics.TotalConflicts > 0 {
		analytics.ResolutionRate = float64(analytics.ResolvedCount) / float64(analytics.TotalConflicts)
	}

	return analytics
}
