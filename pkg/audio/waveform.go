package audio

import (
	"fmt"
	"math"
	"time"
)

// Waveform is mono floating point audio at a fixed sample rate with
// amplitudes in [-1, 1]. An empty waveform is valid: it is what remains of
// a silent recording after trimming.
type Waveform struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// IsEmpty reports whether the waveform holds no samples
func (w *Waveform) IsEmpty() bool {
	return w == nil || len(w.Samples) == 0
}

// Duration returns the playback length of the waveform
func (w *Waveform) Duration() time.Duration {
	if w.IsEmpty() || w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Peak returns the largest absolute sample value
func (w *Waveform) Peak() float64 {
	if w == nil {
		return 0
	}
	peak := 0.0
	for _, s := range w.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// PCM16 quantizes the waveform to 16-bit mono PCM
func (w *Waveform) PCM16() *PCM {
	if w == nil {
		return nil
	}
	const fullScale = 1 << 15
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		v := int(math.Round(s * fullScale))
		data[i] = max(-fullScale, min(fullScale-1, v))
	}
	return &PCM{
		Data:       data,
		Channels:   1,
		SampleRate: w.SampleRate,
		BitDepth:   16,
	}
}

// PCM is decoder output before normalization: interleaved integer samples
// at the source sample rate, channel count and bit depth.
type PCM struct {
	Data       []int `json:"-"`
	Channels   int   `json:"channels"`
	SampleRate int   `json:"sample_rate"`
	BitDepth   int   `json:"bit_depth"`
}

// Frames returns the number of complete multi-channel frames
func (p *PCM) Frames() int {
	if p == nil || p.Channels <= 0 {
		return 0
	}
	return len(p.Data) / p.Channels
}

func (p *PCM) validate() error {
	if p == nil {
		return fmt.Errorf("decoder returned no audio")
	}
	if p.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", p.Channels)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", p.SampleRate)
	}
	if p.BitDepth <= 0 || p.BitDepth > 32 {
		return fmt.Errorf("unsupported bit depth %d", p.BitDepth)
	}
	return nil
}
