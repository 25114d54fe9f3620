package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const maxErrLen = 500

type recordMsg struct {
	kind string // "session_start", "session_end", "analysis_start", "analysis_finish"
	// session fields
	sessionID string
	// analysis fields
	analysisID     string
	filename       string
	predictionType string
	status         string
	errMsg         string
	durationMs     float64
}

// Recorder writes the analysis log asynchronously via a buffered channel so
// persistence never blocks the event path. All methods are nil-safe (no-op
// on nil receiver), which is how the gateway runs without a DATABASE_URL.
type Recorder struct {
	store *Store
	ch    chan recordMsg
	done  chan struct{}
}

// NewRecorder creates a recorder over the store. Must call Close when done.
func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store: store,
		ch:    make(chan recordMsg, 64),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for msg := range r.ch {
		r.handle(msg)
	}
}

func (r *Recorder) handle(m recordMsg) {
	handlers := map[string]func() error{
		"session_start":   func() error { return r.store.CreateSession(m.sessionID) },
		"session_end":     func() error { return r.store.EndSession(m.sessionID) },
		"analysis_start":  func() error { return r.store.CreateAnalysis(m.analysisID, m.sessionID, m.filename, m.predictionType) },
		"analysis_finish": func() error { return r.store.FinishAnalysis(m.analysisID, m.status, m.errMsg, m.durationMs) },
	}
	fn, ok := handlers[m.kind]
	if !ok {
		return
	}
	if err := fn(); err != nil {
		slog.Warn("analysis log write failed", "kind", m.kind, "error", err)
	}
}

// StartSession records a newly accepted session.
func (r *Recorder) StartSession(sessionID string) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{kind: "session_start", sessionID: sessionID}
}

// EndSession records session teardown.
func (r *Recorder) EndSession(sessionID string) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{kind: "session_end", sessionID: sessionID}
}

// StartAnalysis records an accepted analysis request and returns its id.
func (r *Recorder) StartAnalysis(sessionID, filename, predictionType string) string {
	if r == nil {
		return ""
	}
	id := uuid.NewString()
	r.ch <- recordMsg{
		kind:           "analysis_start",
		analysisID:     id,
		sessionID:      sessionID,
		filename:       filename,
		predictionType: predictionType,
	}
	return id
}

// FinishAnalysis records the terminal status of an analysis.
func (r *Recorder) FinishAnalysis(analysisID, status, errMsg string, elapsed time.Duration) {
	if r == nil || analysisID == "" {
		return
	}
	r.ch <- recordMsg{
		kind:       "analysis_finish",
		analysisID: analysisID,
		status:     status,
		errMsg:     truncate(errMsg, maxErrLen),
		durationMs: float64(elapsed.Milliseconds()),
	}
}

// Close drains pending writes and shuts down the background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.ch)
	<-r.done
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
