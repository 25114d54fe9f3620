package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectSink(events *[]Event) EventSink {
	return func(ev Event) { *events = append(*events, ev) }
}

func TestTracker_StepLifecycle(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-1", PlanSteps(PredictStatic), collectSink(&events))

	tr.StartStep(StepDecodeAudio, "decoding")
	tr.UpdateProgress(StepDecodeAudio, 50, "halfway")
	tr.CompleteStep(StepDecodeAudio)

	require.Len(t, events, 3)
	assert.Equal(t, EventStepStarted, events[0].Type)
	assert.Equal(t, EventProgressUpdate, events[1].Type)
	assert.Equal(t, EventStepCompleted, events[2].Type)

	for _, ev := range events {
		assert.Equal(t, "sess-1", ev.SessionID)
		require.NotNil(t, ev.Step)
		assert.Equal(t, StepDecodeAudio, ev.Step.ID)
		assert.Len(t, ev.AllSteps, 3)
	}

	assert.Equal(t, StepInProgress, events[1].Step.Status)
	assert.InDelta(t, 50.0, events[1].Step.Progress, 0.001)
	assert.Equal(t, "halfway", events[1].Step.Message)

	done := events[2].Step
	assert.Equal(t, StepCompleted, done.Status)
	assert.GreaterOrEqual(t, done.Duration, 0.0)
}

func TestTracker_OverallProgressMonotonic(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-2", PlanSteps(PredictBoth), collectSink(&events))

	for _, id := range []string{StepDecodeAudio, StepExtractFeatures, StepStaticInference, StepDynamicInference} {
		tr.StartStep(id, "")
		tr.UpdateProgress(id, 80, "")
		tr.UpdateProgress(id, 30, "") // must not move backward
		tr.CompleteStep(id)
	}
	tr.CompletePipeline()

	prev := -1.0
	for _, ev := range events {
		require.NotNil(t, ev.OverallProgress, "event %s missing overall_progress", ev.Type)
		assert.GreaterOrEqual(t, *ev.OverallProgress, prev)
		prev = *ev.OverallProgress
	}
	assert.Equal(t, 100.0, prev)
}

func TestTracker_OverallProgressMath(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-3", PlanSteps(PredictStatic), collectSink(&events)) // 3 steps

	tr.StartStep(StepDecodeAudio, "")
	tr.CompleteStep(StepDecodeAudio)
	assert.InDelta(t, 100.0/3, *events[len(events)-1].OverallProgress, 0.001)

	tr.StartStep(StepExtractFeatures, "")
	tr.UpdateProgress(StepExtractFeatures, 50, "")
	assert.InDelta(t, 1.5/3*100, *events[len(events)-1].OverallProgress, 0.001)
}

func TestTracker_ForwardOnlyTransitions(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-4", PlanSteps(PredictStatic), collectSink(&events))

	tr.StartStep(StepDecodeAudio, "")
	tr.CompleteStep(StepDecodeAudio)

	n := len(events)
	tr.StartStep(StepDecodeAudio, "again")     // completed → in_progress forbidden
	tr.UpdateProgress(StepDecodeAudio, 10, "") // not in_progress
	tr.CompleteStep(StepDecodeAudio)           // already completed
	tr.FailStep(StepDecodeAudio, "boom")       // completed → failed forbidden
	assert.Len(t, events, n, "no events for rejected transitions")

	steps := tr.Steps()
	assert.Equal(t, StepCompleted, steps[0].Status)

	// completing a step that never started is also rejected
	tr.CompleteStep(StepStaticInference)
	assert.Equal(t, StepPending, tr.Steps()[2].Status)
}

func TestTracker_FailPipeline(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-5", PlanSteps(PredictDynamic), collectSink(&events))

	tr.StartStep(StepDecodeAudio, "")
	tr.FailStep(StepDecodeAudio, "bad header")
	tr.FailPipeline(&StepError{Step: StepDecodeAudio, Err: errors.New("bad header")})

	last := events[len(events)-1]
	assert.Equal(t, EventPipelineFailed, last.Type)
	assert.Equal(t, "PipelineStepError", last.ErrorType)
	assert.Contains(t, last.Error, "bad header")
	require.Len(t, last.AllSteps, 3)
	assert.Equal(t, StepFailed, last.AllSteps[0].Status)
	assert.Equal(t, StepPending, last.AllSteps[1].Status)
}

func TestTracker_UnknownStepIgnored(t *testing.T) {
	var events []Event
	tr := NewTracker("sess-6", PlanSteps(PredictStatic), collectSink(&events))

	tr.StartStep("no_such_step", "")
	tr.UpdateProgress("no_such_step", 50, "")
	assert.Empty(t, events)
}
