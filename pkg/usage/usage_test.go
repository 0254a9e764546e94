package usage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docupy/internal/models"
	"docupy/pkg/usage"
)

func TestTrackerAccumulates(t *testing.T) {
	tracker := usage.NewTracker()

	tracker.Record(models.QueryResult{TotalTokens: 100, TotalCostUSD: 0.002})
	tracker.Record(models.QueryResult{TotalTokens: 50, TotalCostUSD: 0.001})

	totals := tracker.SessionTotals()
	assert.Equal(t, 150, totals.TotalTokens)
	assert.InDelta(t, 0.003, totals.TotalCostUSD, 1e-9)
}

func TestTrackerLastQueryOverwritten(t *testing.T) {
	tracker := usage.NewTracker()

	tracker.Record(models.QueryResult{TotalTokens: 100, TotalCostUSD: 0.002})
	tracker.Record(models.QueryResult{TotalTokens: 50, TotalCostUSD: 0.001})

	last := tracker.LastQuery()
	assert.Equal(t, 50, last.TotalTokens)
	assert.InDelta(t, 0.001, last.TotalCostUSD, 1e-9)
}

func TestTrackerZeroedDegradedResult(t *testing.T) {
	tracker := usage.NewTracker()

	tracker.Record(models.QueryResult{TotalTokens: 100, TotalCostUSD: 0.002})
	tracker.Record(models.QueryResult{Answer: "fallback"}) // degraded, all usage zero

	totals := tracker.SessionTotals()
	assert.Equal(t, 100, totals.TotalTokens)
	assert.InDelta(t, 0.002, totals.TotalCostUSD, 1e-9)
	assert.Zero(t, tracker.LastQuery().TotalTokens)
}

func TestTrackerStartsEmpty(t *testing.T) {
	tracker := usage.NewTracker()

	assert.Zero(t, tracker.SessionTotals().TotalTokens)
	assert.Zero(t, tracker.SessionTotals().TotalCostUSD)
	assert.Zero(t, tracker.LastQuery().TotalTokens)
}
