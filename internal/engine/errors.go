package engine

import (
	"fmt"
	"strings"
	"time"
)

// QuotaExhaustedError means the YouTube Data API rejected a call with a
// quotaExceeded reason. Once raised, the run's quota state stays tripped
// until reset.
type QuotaExhaustedError struct {
	Query   string
	At      time.Time
	ResetAt time.Time
}

func (e *QuotaExhaustedError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("youtube quota exhausted (query %q), resets at %s", e.Query, e.ResetAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("youtube quota exhausted, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// RequestError is a non-quota upstream API failure.
type RequestError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("youtube %s: status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// CompetitorNotFoundError reports an unknown competitor ID along with the
// registry's known IDs so callers can self-correct.
type CompetitorNotFoundError struct {
	ID        string
	Available []string
}

func (e *CompetitorNotFoundError) Error() string {
	return fmt.Sprintf("unknown competitor %q (available: %s)", e.ID, strings.Join(e.Available, ", "))
}

// NextQuotaReset returns the next midnight UTC after t, which is when the
// Data API daily quota replenishes.
func NextQuotaReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
