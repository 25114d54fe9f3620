package audio

import "math"

// FeatureRate is the sample rate all clips are normalized to before
// segmentation, matching what the inference backends expect.
const FeatureRate = 16000

// Features holds the per-clip representation handed to inference backends.
type Features struct {
	Samples         []float32 // mono, FeatureRate
	SampleRate      int
	Duration        float64 // seconds, of the original clip
	Segments        []Segment
	SegmentDuration float64 // seconds per segment
}

// Segment is one fixed-length analysis window with summary statistics.
type Segment struct {
	Start    float64 // seconds
	RMS      float64
	ZeroRate float64 // zero crossings per sample
	Centroid float64 // crude spectral centroid proxy in [0,1]
}

// Extract resamples a clip to FeatureRate and slices it into
// segmentSeconds windows. The trailing partial window is kept if it is
// at least half a segment long.
func Extract(clip *Clip, segmentSeconds float64) *Features {
	samples := Resample(clip.Samples, clip.SampleRate, FeatureRate)
	segLen := int(segmentSeconds * FeatureRate)
	if segLen <= 0 {
		segLen = FeatureRate
	}

	var segments []Segment
	for off := 0; off < len(samples); off += segLen {
		end := min(off+segLen, len(samples))
		if end-off < segLen/2 && len(segments) > 0 {
			break
		}
		segments = append(segments, summarize(samples[off:end], float64(off)/FeatureRate))
	}
	if len(segments) == 0 {
		segments = append(segments, summarize(samples, 0))
	}

	return &Features{
		Samples:         samples,
		SampleRate:      FeatureRate,
		Duration:        clip.Duration(),
		Segments:        segments,
		SegmentDuration: segmentSeconds,
	}
}

func summarize(window []float32, start float64) Segment {
	if len(window) == 0 {
		return Segment{Start: start}
	}

	var sumSq float64
	crossings := 0
	var weighted, total float64
	for i, s := range window {
		sumSq += float64(s) * float64(s)
		if i > 0 && (s >= 0) != (window[i-1] >= 0) {
			crossings++
		}
		mag := math.Abs(float64(s))
		weighted += mag * float64(i)
		total += mag
	}

	centroid := 0.0
	if total > 0 {
		centroid = weighted / total / float64(len(window))
	}

	return Segment{
		Start:    start,
		RMS:      math.Sqrt(sumSq / float64(len(window))),
		ZeroRate: float64(crossings) / float64(len(window)),
		Centroid: centroid,
	}
}
