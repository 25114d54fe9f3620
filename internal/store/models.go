package store

import "time"

// Session represents one WebSocket connection's lifetime.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	RunCount  int        `json:"run_count,omitempty"`
}

// Analysis is one append-only log row for a pipeline run.
type Analysis struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Filename       string    `json:"filename,omitempty"`
	PredictionType string    `json:"prediction_type"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	DurationMs     float64   `json:"duration_ms,omitempty"`
}

// Terminal analysis statuses.
const (
	StatusRunning   = "running"
	StatusOK        = "ok"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)
