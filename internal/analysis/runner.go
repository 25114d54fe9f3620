package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/musimo/gateway/internal/audio"
	"github.com/musimo/gateway/internal/metrics"
)

// Request is one accepted analysis request. Immutable once handed to the
// runner.
type Request struct {
	SessionID      string
	Audio          []byte
	Filename       string
	PredictionType PredictionType
}

// RunnerConfig holds the shared collaborators for all runs.
type RunnerConfig struct {
	Predictor      EmotionPredictor
	SegmentSeconds float64
}

// Runner executes the fixed step sequence for one request at a time,
// reporting lifecycle events through the sink in production order and
// producing exactly one terminal outcome unless cancelled first.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner creates a runner with the shared inference backend.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.SegmentSeconds <= 0 {
		cfg.SegmentSeconds = 5
	}
	return &Runner{cfg: cfg}
}

// Run executes the step plan for the request. Cancellation is cooperative:
// it is observed at step boundaries (and inside inference via the context);
// once observed, no further events are emitted. On step failure the run
// terminates with a single pipeline_failed and no partial result.
func (r *Runner) Run(ctx context.Context, req *Request, sink EventSink) error {
	start := time.Now()
	tracker := NewTracker(req.SessionID, PlanSteps(req.PredictionType), sink)

	result, err := r.runSteps(ctx, req, tracker)
	if err != nil {
		if ctx.Err() != nil {
			metrics.AnalysesTotal.WithLabelValues(string(req.PredictionType), "cancelled").Inc()
			slog.Info("analysis cancelled", "session_id", req.SessionID)
			return ctx.Err()
		}
		tracker.FailPipeline(err)
		metrics.AnalysesTotal.WithLabelValues(string(req.PredictionType), "error").Inc()
		slog.Error("analysis failed", "session_id", req.SessionID, "error", err)
		return err
	}

	tracker.CompletePipeline()
	sink(Event{
		Type:      EventAnalysisComplete,
		SessionID: req.SessionID,
		Result:    result,
	})

	elapsed := time.Since(start)
	metrics.AnalysesTotal.WithLabelValues(string(req.PredictionType), "ok").Inc()
	metrics.RunDuration.Observe(elapsed.Seconds())
	slog.Info("analysis complete", "session_id", req.SessionID,
		"prediction_type", req.PredictionType, "duration_ms", elapsed.Milliseconds())
	return nil
}

func (r *Runner) runSteps(ctx context.Context, req *Request, tracker *Tracker) (*Result, error) {
	clip, err := runStep(ctx, tracker, StepDecodeAudio, "Decoding uploaded audio", func(onProgress ProgressFunc) (*audio.Clip, error) {
		c, decErr := audio.DecodeWAV(req.Audio)
		if decErr != nil {
			return nil, decErr
		}
		onProgress(100, "Audio decoded")
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.UploadBytes.Add(float64(len(req.Audio)))

	features, err := runStep(ctx, tracker, StepExtractFeatures, "Segmenting audio", func(onProgress ProgressFunc) (*audio.Features, error) {
		f := audio.Extract(clip, r.cfg.SegmentSeconds)
		onProgress(100, "Features extracted")
		return f, nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}

	if req.PredictionType == PredictStatic || req.PredictionType == PredictBoth {
		result.Static, err = runStep(ctx, tracker, StepStaticInference, "Computing whole-clip emotions", func(onProgress ProgressFunc) (*StaticPrediction, error) {
			return r.cfg.Predictor.PredictStatic(ctx, features, onProgress)
		})
		if err != nil {
			return nil, err
		}
	}

	if req.PredictionType == PredictDynamic || req.PredictionType == PredictBoth {
		result.Dynamic, err = runStep(ctx, tracker, StepDynamicInference, "Computing time-segmented emotions", func(onProgress ProgressFunc) (*DynamicPrediction, error) {
			return r.cfg.Predictor.PredictDynamic(ctx, features, onProgress)
		})
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// runStep wraps one step execution with the cancellation check, lifecycle
// events, failure marking, and the per-step duration metric.
func runStep[T any](ctx context.Context, tracker *Tracker, id, startMsg string, fn func(ProgressFunc) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tracker.StartStep(id, startMsg)
	start := time.Now()

	out, err := fn(func(progress float64, message string) {
		if ctx.Err() == nil {
			tracker.UpdateProgress(id, progress, message)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		tracker.FailStep(id, err.Error())
		metrics.Errors.WithLabelValues(id, "step").Inc()
		return zero, &StepError{Step: id, Err: err}
	}

	tracker.CompleteStep(id)
	metrics.StepDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
	return out, nil
}
