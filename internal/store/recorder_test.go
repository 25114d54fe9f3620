package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder

	// a gateway without DATABASE_URL runs with a nil recorder; every call
	// must be a no-op
	r.StartSession("s1")
	r.EndSession("s1")
	id := r.StartAnalysis("s1", "clip.wav", "both")
	assert.Empty(t, id)
	r.FinishAnalysis(id, StatusOK, "", time.Second)
	r.Close()
}

func TestRecorder_FinishWithoutStartIgnored(t *testing.T) {
	r := &Recorder{ch: make(chan recordMsg, 4), done: make(chan struct{})}
	go r.drain()

	r.FinishAnalysis("", StatusError, "boom", time.Second)
	r.Close()
	// nothing enqueued for an empty analysis id; Close returning proves the
	// drain goroutine exited cleanly
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxErrLen+100)
	assert.Len(t, truncate(long, maxErrLen), maxErrLen)
	assert.Equal(t, "short", truncate("short", maxErrLen))
}
