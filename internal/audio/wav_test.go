package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, seconds float64, rate int) []float32 {
	n := int(seconds * float64(rate))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestDecodeWAV_RoundTrip(t *testing.T) {
	samples := sine(440, 1.0, 8000)
	data := EncodeWAV(samples, 8000)

	clip, err := DecodeWAV(data)
	require.NoError(t, err)

	assert.Equal(t, 8000, clip.SampleRate)
	assert.Len(t, clip.Samples, len(samples))
	assert.InDelta(t, 1.0, clip.Duration(), 0.001)

	// 16-bit quantization noise only
	for i := 0; i < len(samples); i += 100 {
		assert.InDelta(t, samples[i], clip.Samples[i], 0.001)
	}
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	_, err := DecodeWAV([]byte("definitely not a RIFF container"))
	require.Error(t, err)

	_, err = DecodeWAV(nil)
	require.Error(t, err)
}

func TestDecodeWAV_RejectsTruncatedHeader(t *testing.T) {
	data := EncodeWAV(sine(440, 0.5, 8000), 8000)
	_, err := DecodeWAV(data[:20])
	require.Error(t, err)
}
