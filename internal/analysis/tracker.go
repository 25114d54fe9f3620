package analysis

import "time"

// Tracker tracks one run through its fixed step plan and emits lifecycle
// events through the sink. It is used by a single goroutine per run.
//
// Overall progress is (completed steps + current step fraction) / total
// steps × 100 and is clamped to never decrease across a run.
type Tracker struct {
	sessionID string
	steps     []Step
	index     map[string]int
	started   map[string]time.Time
	sink      EventSink
	overall   float64
	startTime time.Time
}

// NewTracker creates a tracker over the given step plan.
func NewTracker(sessionID string, steps []Step, sink EventSink) *Tracker {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		index[s.ID] = i
	}
	return &Tracker{
		sessionID: sessionID,
		steps:     steps,
		index:     index,
		started:   make(map[string]time.Time, len(steps)),
		sink:      sink,
		startTime: time.Now(),
	}
}

// Steps returns a snapshot of the full step plan.
func (t *Tracker) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// StartStep marks a pending step in_progress and emits step_started.
func (t *Tracker) StartStep(id, message string) {
	i, ok := t.index[id]
	if !ok || t.steps[i].Status != StepPending {
		return
	}
	t.steps[i].Status = StepInProgress
	t.steps[i].Progress = 0
	t.steps[i].Message = message
	t.started[id] = time.Now()
	t.emit(EventStepStarted, i)
}

// UpdateProgress records intra-step progress (0-100) and emits
// progress_update. Progress within a step never moves backward.
func (t *Tracker) UpdateProgress(id string, progress float64, message string) {
	i, ok := t.index[id]
	if !ok || t.steps[i].Status != StepInProgress {
		return
	}
	progress = max(0, min(100, progress))
	if progress > t.steps[i].Progress {
		t.steps[i].Progress = progress
	}
	if message != "" {
		t.steps[i].Message = message
	}
	t.emit(EventProgressUpdate, i)
}

// CompleteStep marks an in_progress step completed, records its elapsed
// duration, and emits step_completed.
func (t *Tracker) CompleteStep(id string) {
	i, ok := t.index[id]
	if !ok || t.steps[i].Status != StepInProgress {
		return
	}
	t.steps[i].Status = StepCompleted
	t.steps[i].Progress = 100
	if startedAt, ok := t.started[id]; ok {
		t.steps[i].Duration = time.Since(startedAt).Seconds()
	}
	t.emit(EventStepCompleted, i)
}

// FailStep marks a step failed with the error message. No event is emitted
// here; the runner follows up with a single pipeline_failed.
func (t *Tracker) FailStep(id, errMsg string) {
	i, ok := t.index[id]
	if !ok || t.steps[i].Status == StepCompleted || t.steps[i].Status == StepFailed {
		return
	}
	t.steps[i].Status = StepFailed
	t.steps[i].Message = errMsg
	if startedAt, ok := t.started[id]; ok {
		t.steps[i].Duration = time.Since(startedAt).Seconds()
	}
}

// CompletePipeline forces overall progress to 100 and emits pipeline_completed.
func (t *Tracker) CompletePipeline() {
	t.overall = 100
	overall := t.overall
	total := time.Since(t.startTime).Seconds()
	t.sink(Event{
		Type:            EventPipelineCompleted,
		SessionID:       t.sessionID,
		OverallProgress: &overall,
		TotalDuration:   &total,
		AllSteps:        t.Steps(),
	})
}

// FailPipeline emits pipeline_failed with the final step list.
func (t *Tracker) FailPipeline(err error) {
	total := time.Since(t.startTime).Seconds()
	t.sink(Event{
		Type:          EventPipelineFailed,
		SessionID:     t.sessionID,
		Error:         err.Error(),
		ErrorType:     ErrorType(err),
		TotalDuration: &total,
		AllSteps:      t.Steps(),
	})
}

func (t *Tracker) emit(eventType string, i int) {
	completed := 0
	for _, s := range t.steps {
		if s.Status == StepCompleted {
			completed++
		}
	}
	current := t.steps[i].Progress / 100
	if t.steps[i].Status == StepCompleted {
		current = 0 // already counted above
	}
	overall := (float64(completed) + current) / float64(len(t.steps)) * 100
	if overall > t.overall {
		t.overall = overall
	}

	step := t.steps[i]
	overallOut := t.overall
	total := time.Since(t.startTime).Seconds()
	t.sink(Event{
		Type:            eventType,
		SessionID:       t.sessionID,
		OverallProgress: &overallOut,
		TotalDuration:   &total,
		Step:            &step,
		AllSteps:        t.Steps(),
	})
}
