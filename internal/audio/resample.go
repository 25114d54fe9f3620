package audio

// Resample converts samples from srcRate to dstRate using linear
// interpolation. Returns the input unchanged if the rates already match.
// Good enough for the coarse energy features used downstream; no
// anti-aliasing filter is applied.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float32, outLen)

	for i := range outLen {
		srcIdx := float64(i) * ratio
		idx := int(srcIdx)
		frac := float32(srcIdx - float64(idx))
		if idx+1 >= len(samples) {
			out[i] = samples[len(samples)-1]
			continue
		}
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}

	return out
}
