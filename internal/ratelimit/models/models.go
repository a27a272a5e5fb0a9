package models

import (
	"time"
)

// Record is the fixed-window state of one client key.
type Record struct {
	Key     string
	Count   int
	ResetAt time.Time
}

// Expired reports whether the window has ended. The boundary instant itself
// still belongs to the window.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ResetAt)
}

// Decision is the limiter's answer for one request.
type Decision struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed

	// Degraded is set when the store failed and the request was let through
	// without a counter.
	Degraded bool `json:"-"`
}

// NewDecision builds a decision from the count after this request was applied.
func NewDecision(allowed bool, count, limit int, resetAt, now time.Time) *Decision {
	d := &Decision{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		d.Remaining = 0
		d.RetryAfter = RetryAfterSeconds(resetAt, now)
	}
	return d
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, minimum 1.
func RetryAfterSeconds(resetAt, now time.Time) int {
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return 1
	}
	secs := int((wait + time.Second - 1) / time.Second)
	return max(secs, 1)
}
