package analysis

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musimo/gateway/internal/audio"
)

func modelFeatures(t *testing.T) *audio.Features {
	t.Helper()
	samples := make([]float32, 16000)
	for i := range samples {
		samples[i] = float32(0.3 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	return audio.Extract(&audio.Clip{Samples: samples, SampleRate: 16000}, 1.0)
}

func TestModelClient_PredictStatic(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(10<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "audio.wav", header.Filename)

		json.NewEncoder(w).Encode(StaticPrediction{
			Emotions:        map[string]float64{"Wonder": 1.0},
			DurationSeconds: 1.0,
			NumSegments:     1,
		})
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, 2)
	pred, err := c.PredictStatic(context.Background(), modelFeatures(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "/predict/static", gotPath)
	assert.Equal(t, 1.0, pred.Emotions["Wonder"])
	assert.Equal(t, ModelVersion, pred.ModelVersion, "model_version filled when server omits it")
}

func TestModelClient_PredictDynamic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/dynamic", r.URL.Path)
		json.NewEncoder(w).Encode(DynamicPrediction{
			Timestamps:      []float64{0, 1},
			Emotions:        map[string][]float64{"Tension": {0.5, 0.7}},
			DurationSeconds: 2.0,
			SegmentDuration: 1.0,
		})
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, 2)
	pred, err := c.PredictDynamic(context.Background(), modelFeatures(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, pred.Timestamps)
}

func TestModelClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, 2)
	_, err := c.PredictStatic(context.Background(), modelFeatures(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
