package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-audio/wav"
)

// Clip holds decoded mono PCM audio.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// DecodeWAV parses a WAV payload into mono float32 samples.
// Multi-channel input is downmixed by averaging.
func DecodeWAV(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("missing format chunk")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := float32(math.Pow(2, float64(bitDepth-1)))

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("empty audio data")
	}

	samples := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return &Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// EncodeWAV encodes float32 PCM samples as a 16-bit mono WAV byte slice.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	totalLen := 44 + dataLen

	buf := make([]byte, totalLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(totalLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		val := int16(clamped * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(val))
	}

	return buf
}
