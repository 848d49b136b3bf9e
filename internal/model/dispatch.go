// Package model defines the dispatch journal data types.
package model

import "time"

// Dispatch status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusDiscarded = "discarded"
)

// Dispatch records one compute request issued by a session.
type Dispatch struct {
	ID         string     `json:"id"`
	Session    string     `json:"session"`
	Seq        uint64     `json:"seq"`
	InputD6    string     `json:"input_d6"`
	InputLv    string     `json:"input_lv"`
	Valid      bool       `json:"valid"`
	Status     string     `json:"status"`
	Result     string     `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	DurationMS int64      `json:"duration_ms,omitempty"`
}

// ValidStatuses are the allowed dispatch statuses.
var ValidStatuses = map[string]bool{
	StatusPending:   true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusDiscarded: true,
}
