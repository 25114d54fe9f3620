package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/musimo/gateway/internal/analysis"
	"github.com/musimo/gateway/internal/metrics"
	"github.com/musimo/gateway/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerConfig holds the shared collaborators for all analysis sessions.
type HandlerConfig struct {
	Runner         *analysis.Runner
	Recorder       *store.Recorder
	MaxConcurrent  int
	MaxUploadBytes int64
	IdleTimeout    time.Duration
}

// Handler manages WebSocket analysis sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a WebSocket handler with shared collaborators and a
// concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, cfg.MaxConcurrent),
	}
}

// ServeHTTP upgrades the connection and runs the analysis session.
// Returns 503 if at max concurrent session capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.Inc()
	defer metrics.SessionsActive.Dec()

	h.runSession(conn)
}

// session owns one connection's state: at most one in-flight analysis run,
// a serialized event sender, and the close latch that guarantees no events
// are written after teardown.
type session struct {
	id   string
	conn *websocket.Conn
	h    *Handler

	writeMu sync.Mutex
	closed  bool

	runMu   sync.Mutex
	active  bool
	cancel  context.CancelFunc
	runDone chan struct{}
}

func (h *Handler) runSession(conn *websocket.Conn) {
	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		h:    h,
	}

	// base64 inflates the payload by 4/3; leave room for the JSON envelope.
	conn.SetReadLimit(h.cfg.MaxUploadBytes*4/3 + 16384)

	h.cfg.Recorder.StartSession(s.id)
	defer h.cfg.Recorder.EndSession(s.id)
	defer s.shutdown()

	slog.Info("session started", "session_id", s.id)
	s.send(analysis.Event{
		Type:      analysis.EventConnected,
		SessionID: s.id,
		Message:   "WebSocket connection established",
	})

	for {
		conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Abrupt disconnect or idle expiry: implicit cancel, no event
			// since the channel is gone (or about to be).
			slog.Info("connection closed", "session_id", s.id, "error", err)
			return
		}

		var cmd analysis.Command
		if err = json.Unmarshal(data, &cmd); err != nil {
			s.sendError(&analysis.ValidationError{Field: "payload", Reason: "not valid JSON"})
			return
		}

		switch cmd.Action {
		case analysis.ActionAnalyze:
			if err = s.startAnalysis(cmd); err != nil {
				s.sendError(err)
				var ise *analysis.InvalidStateError
				if errors.As(err, &ise) {
					continue // session otherwise unaffected
				}
				return
			}

		case analysis.ActionCancel:
			if s.cancelRun() {
				slog.Info("analysis cancelled by client", "session_id", s.id)
			}
			s.send(analysis.Event{
				Type:      analysis.EventCancelled,
				SessionID: s.id,
				Message:   "Analysis cancelled by user",
			})
			return

		default:
			s.sendError(&analysis.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", cmd.Action)})
			return
		}
	}
}

// startAnalysis validates the command and hands it to the runner on its own
// goroutine, leaving the read loop free for cancel commands. Returns a
// typed error for invalid commands; the caller decides whether the session
// survives.
func (s *session) startAnalysis(cmd analysis.Command) error {
	s.runMu.Lock()
	active := s.active
	s.runMu.Unlock()
	if active {
		return &analysis.InvalidStateError{Reason: "analysis already in progress for this session"}
	}

	pt, err := analysis.ParsePredictionType(cmd.PredictionType)
	if err != nil {
		return err
	}
	if cmd.FileData == "" {
		return &analysis.ValidationError{Field: "file_data", Reason: "required"}
	}
	raw, err := base64.StdEncoding.DecodeString(cmd.FileData)
	if err != nil {
		return &analysis.ValidationError{Field: "file_data", Reason: "invalid base64"}
	}
	if int64(len(raw)) > s.h.cfg.MaxUploadBytes {
		return &analysis.ValidationError{Field: "file_data", Reason: "exceeds upload size limit"}
	}

	filename := cmd.Filename
	if filename == "" {
		filename = "audio_" + s.id + ".wav"
	}

	req := &analysis.Request{
		SessionID:      s.id,
		Audio:          raw,
		Filename:       filename,
		PredictionType: pt,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.runMu.Lock()
	s.active = true
	s.cancel = cancel
	s.runDone = done
	s.runMu.Unlock()

	slog.Info("analysis started", "session_id", s.id, "filename", filename,
		"prediction_type", pt, "bytes", len(raw))
	s.send(analysis.Event{
		Type:           analysis.EventAnalysisStarted,
		SessionID:      s.id,
		Filename:       filename,
		PredictionType: string(pt),
	})

	logID := s.h.cfg.Recorder.StartAnalysis(s.id, filename, string(pt))

	go func() {
		defer close(done)
		start := time.Now()

		runErr := s.h.cfg.Runner.Run(ctx, req, s.send)

		status, errMsg := store.StatusOK, ""
		switch {
		case ctx.Err() != nil:
			status = store.StatusCancelled
		case runErr != nil:
			status, errMsg = store.StatusError, runErr.Error()
		}
		s.h.cfg.Recorder.FinishAnalysis(logID, status, errMsg, time.Since(start))

		s.runMu.Lock()
		s.active = false
		s.cancel = nil
		s.runMu.Unlock()
		cancel()

		// A terminal outcome ends the session. On cancellation the read
		// loop owns teardown so the ack goes out first.
		if status != store.StatusCancelled {
			s.close()
		}
	}()

	return nil
}

// cancelRun signals cooperative cancellation and waits for the runner to
// stop. Reports whether a run was active.
func (s *session) cancelRun() bool {
	s.runMu.Lock()
	active, cancel, done := s.active, s.cancel, s.runDone
	s.runMu.Unlock()
	if !active || cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// send serializes one event onto the wire. Events are written in call
// order; nothing is written after close.
func (s *session) send(ev analysis.Event) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err = s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("write event", "session_id", s.id, "type", ev.Type, "error", err)
	}
}

func (s *session) sendError(err error) {
	s.send(analysis.Event{
		Type:      analysis.EventError,
		SessionID: s.id,
		Error:     err.Error(),
		ErrorType: analysis.ErrorType(err),
	})
}

// close sends a close frame and tears down the connection exactly once.
func (s *session) close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	deadline := time.Now().Add(time.Second)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	s.conn.Close()
}

// shutdown releases session state on every exit path: cancels any active
// run, then closes the connection.
func (s *session) shutdown() {
	s.cancelRun()
	s.close()
	slog.Info("session ended", "session_id", s.id)
}
