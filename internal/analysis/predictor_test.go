package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musimo/gateway/internal/audio"
)

func testFeatures(t *testing.T, seconds float64) *audio.Features {
	t.Helper()
	samples := make([]float32, int(seconds*8000))
	for i := range samples {
		samples[i] = float32(0.4 * math.Sin(2*math.Pi*330*float64(i)/8000))
	}
	clip := &audio.Clip{Samples: samples, SampleRate: 8000}
	return audio.Extract(clip, 2.0)
}

func TestBuiltinPredictStatic(t *testing.T) {
	f := testFeatures(t, 6.0)
	p := NewBuiltinPredictor()

	var updates int
	pred, err := p.PredictStatic(context.Background(), f, func(progress float64, message string) {
		updates++
	})
	require.NoError(t, err)

	assert.Equal(t, ModelVersion, pred.ModelVersion)
	assert.InDelta(t, 6.0, pred.DurationSeconds, 0.01)
	assert.Equal(t, len(f.Segments), pred.NumSegments)
	assert.Greater(t, updates, 0)

	require.Len(t, pred.Emotions, len(EmotionNames))
	var sum float64
	for _, name := range EmotionNames {
		v, ok := pred.Emotions[name]
		require.True(t, ok, "missing label %s", name)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestBuiltinPredictDynamic(t *testing.T) {
	f := testFeatures(t, 6.0)
	p := NewBuiltinPredictor()

	pred, err := p.PredictDynamic(context.Background(), f, nil)
	require.NoError(t, err)

	assert.InDelta(t, 6.0, pred.DurationSeconds, 0.01)
	assert.Equal(t, 2.0, pred.SegmentDuration)
	require.Len(t, pred.Timestamps, len(f.Segments))
	assert.True(t, sortedAscending(pred.Timestamps))

	require.Len(t, pred.Emotions, len(EmotionNames))
	for i := range pred.Timestamps {
		var sum float64
		for _, name := range EmotionNames {
			require.Len(t, pred.Emotions[name], len(pred.Timestamps))
			sum += pred.Emotions[name][i]
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "timestamp %d", i)
	}
}

func TestBuiltinPredictDeterministic(t *testing.T) {
	f := testFeatures(t, 4.0)
	p := NewBuiltinPredictor()

	a, err := p.PredictStatic(context.Background(), f, nil)
	require.NoError(t, err)
	b, err := p.PredictStatic(context.Background(), f, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Emotions, b.Emotions)
}

func TestBuiltinPredictCancelled(t *testing.T) {
	f := testFeatures(t, 4.0)
	p := NewBuiltinPredictor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.PredictStatic(ctx, f, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.PredictDynamic(ctx, f, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func sortedAscending(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}
