package usage

import (
	"sync"

	"docupy/internal/models"
)

// Tracker accumulates token and cost totals across a session and keeps a
// snapshot of the most recent query. Totals only ever grow; the snapshot
// is overwritten on every call.
type Tracker struct {
	mu     sync.Mutex
	totals models.Usage
	last   models.QueryResult
}

func NewTracker() *Tracker { return &Tracker{} }

// Record folds one query's usage into the session totals and replaces the
// last-query snapshot.
func (t *Tracker) Record(result models.QueryResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals.TotalTokens += result.TotalTokens
	t.totals.TotalCostUSD += result.TotalCostUSD
	t.last = result
}

// SessionTotals returns the running totals for the session.
func (t *Tracker) SessionTotals() models.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals
}

// LastQuery returns the usage of the most recent query.
func (t *Tracker) LastQuery() models.QueryResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
