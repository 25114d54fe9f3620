package analysis

import (
	"context"
	"math"

	"github.com/musimo/gateway/internal/audio"
)

// ProgressFunc reports intra-step progress (0-100) with a display message.
type ProgressFunc func(progress float64, message string)

// EmotionPredictor is the opaque inference capability behind the pipeline's
// inference steps. Implementations may fail; they never emit events
// themselves, only report progress through the callback.
type EmotionPredictor interface {
	PredictStatic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*StaticPrediction, error)
	PredictDynamic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*DynamicPrediction, error)
}

// BuiltinPredictor derives emotion distributions from per-segment signal
// statistics. Deterministic and dependency-free; the default backend when
// no model server is configured.
type BuiltinPredictor struct{}

// NewBuiltinPredictor creates the heuristic backend.
func NewBuiltinPredictor() *BuiltinPredictor {
	return &BuiltinPredictor{}
}

// emotionWeights maps each GEMS-9 label to coefficients over
// (rms, zero-crossing rate, centroid), in EmotionNames order.
var emotionWeights = [][3]float64{
	{0.8, 1.2, 2.0},   // Wonder
	{-0.5, 0.4, 1.6},  // Transcendence
	{-1.2, -0.8, 0.6}, // Tenderness
	{-0.9, -0.4, 0.2}, // Nostalgia
	{-1.6, -1.0, 0.4}, // Peacefulness
	{2.2, 0.6, -0.4},  // Power
	{1.8, 1.4, 0.8},   // Joyful Activation
	{1.4, 2.0, -0.8},  // Tension
	{-1.4, -0.6, -1.0}, // Sadness
}

// PredictStatic averages per-segment distributions into one whole-clip
// distribution.
func (p *BuiltinPredictor) PredictStatic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*StaticPrediction, error) {
	sums := make([]float64, len(EmotionNames))
	for i, seg := range f.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for k, v := range segmentScores(seg) {
			sums[k] += v
		}
		if onProgress != nil {
			onProgress(float64(i+1)/float64(len(f.Segments))*100, "Scoring segments")
		}
	}

	emotions := make(map[string]float64, len(EmotionNames))
	for k, name := range EmotionNames {
		emotions[name] = sums[k] / float64(len(f.Segments))
	}

	return &StaticPrediction{
		Emotions:        normalize(emotions),
		DurationSeconds: f.Duration,
		NumSegments:     len(f.Segments),
		ModelVersion:    ModelVersion,
	}, nil
}

// PredictDynamic produces one distribution per segment timestamp.
func (p *BuiltinPredictor) PredictDynamic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*DynamicPrediction, error) {
	timestamps := make([]float64, len(f.Segments))
	series := make(map[string][]float64, len(EmotionNames))
	for _, name := range EmotionNames {
		series[name] = make([]float64, len(f.Segments))
	}

	for i, seg := range f.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		timestamps[i] = seg.Start
		scores := segmentScores(seg)
		for k, name := range EmotionNames {
			series[name][i] = scores[k]
		}
		if onProgress != nil {
			onProgress(float64(i+1)/float64(len(f.Segments))*100, "Scoring segments")
		}
	}

	return &DynamicPrediction{
		Timestamps:      timestamps,
		Emotions:        series,
		DurationSeconds: f.Duration,
		SegmentDuration: f.SegmentDuration,
	}, nil
}

// segmentScores returns a probability vector over EmotionNames for one
// segment, summing to 1.
func segmentScores(seg audio.Segment) []float64 {
	scores := make([]float64, len(emotionWeights))
	var sum float64
	for k, w := range emotionWeights {
		s := math.Exp(w[0]*seg.RMS*4 + w[1]*seg.ZeroRate*10 + w[2]*seg.Centroid*2)
		scores[k] = s
		sum += s
	}
	for k := range scores {
		scores[k] /= sum
	}
	return scores
}

func normalize(emotions map[string]float64) map[string]float64 {
	var sum float64
	for _, v := range emotions {
		sum += v
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(emotions))
		for k := range emotions {
			emotions[k] = uniform
		}
		return emotions
	}
	for k, v := range emotions {
		emotions[k] = v / sum
	}
	return emotions
}
