package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QuotaState tracks whether the upstream API has reported quota
// exhaustion. It is shared across runs so one tripped run fails the rest
// fast instead of burning retries. After the cooldown elapses the flag
// clears itself on the next check.
type QuotaState struct {
	mu        sync.Mutex
	exhausted bool
	trippedAt time.Time
	lastQuery string
}

var sharedQuota QuotaState

// SharedQuota is the process-wide quota state used by default.
func SharedQuota() *QuotaState { return &sharedQuota }

// Trip marks the quota as exhausted. query is the search that hit the wall,
// kept for diagnostics.
func (q *QuotaState) Trip(query string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.exhausted {
		IncrQuotaTrip()
		slog.Warn("quota exhausted", "query", query)
	}
	q.exhausted = true
	q.trippedAt = time.Now()
	q.lastQuery = query
}

// Exhausted reports the tripped flag, clearing it automatically once the
// configured cooldown has passed.
func (q *QuotaState) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.exhausted && time.Since(q.trippedAt) >= Cfg.QuotaCooldown {
		q.exhausted = false
		slog.Info("quota cooldown elapsed, state reset")
	}
	return q.exhausted
}

// Reset clears the tripped flag explicitly.
func (q *QuotaState) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.exhausted = false
	q.lastQuery = ""
}

// Err builds the error for the current tripped state.
func (q *QuotaState) Err() *QuotaExhaustedError {
	q.mu.Lock()
	defer q.mu.Unlock()
	return &QuotaExhaustedError{
		Query:   q.lastQuery,
		At:      q.trippedAt,
		ResetAt: NextQuotaReset(q.trippedAt),
	}
}

// RunContext identifies one discovery run and carries its abort state.
// Abort is sticky: once set, every subsequent CheckQuota fails.
type RunContext struct {
	ID        string
	StartedAt time.Time
	Quota     *QuotaState

	mu      sync.Mutex
	aborted bool
}

// NewRun creates a run bound to the shared quota state.
func NewRun() *RunContext {
	return &RunContext{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Quota:     SharedQuota(),
	}
}

// Abort marks the run as cancelled.
func (r *RunContext) Abort() {
	r.mu.Lock()
	r.aborted = true
	r.mu.Unlock()
}

// Aborted reports whether Abort was called.
func (r *RunContext) Aborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// CheckQuota returns a QuotaExhaustedError if the run is aborted or the
// shared quota is tripped. Callers check this before every upstream call.
func (r *RunContext) CheckQuota() error {
	if r.Aborted() || r.Quota.Exhausted() {
		return r.Quota.Err()
	}
	return nil
}
