package audio

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
	"gonum.org/v1/gonum/floats"
)

// ToMono converts interleaved PCM to mono floats in [-1, 1]. Channels are
// averaged per frame and the result divided by the full-scale value implied
// by the source bit depth. A trailing partial frame is dropped.
func ToMono(pcm *PCM) ([]float64, error) {
	if err := pcm.validate(); err != nil {
		return nil, err
	}

	fullScale := float64(int64(1) << (pcm.BitDepth - 1))
	channels := pcm.Channels
	frames := pcm.Frames()

	mono := make([]float64, frames)
	for i := range frames {
		base := i * channels
		sum := 0.0
		for c := range channels {
			sum += float64(pcm.Data[base+c])
		}
		mono[i] = sum / float64(channels) / fullScale
	}

	return mono, nil
}

// Resample converts mono samples from one rate to another. The output has
// ceil(len(samples) * to / from) samples and output sample i lines up with
// input time i/to, so onsets do not move.
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	lead := resampleLeadIn(from, to)
	offset, err := resampleOffset(from, to, lead)
	if err != nil {
		return nil, err
	}

	// Zeros on both sides keep the filter's warm-up and tail off the signal.
	padded := make([]float64, lead+len(samples)+from/10+1)
	copy(padded[lead:], samples)

	output, err := runResampler(padded, from, to)
	if err != nil {
		return nil, err
	}

	expected := int(math.Ceil(float64(len(samples)) * float64(to) / float64(from)))
	aligned := make([]float64, expected)
	if offset < len(output) {
		copy(aligned, output[offset:])
	}
	return aligned, nil
}

var resampleOffsets sync.Map

// resampleLeadIn is the zero padding placed before the signal: at least
// 100 ms, rounded up to a whole resampling period so the first input sample
// always meets the filter at the same phase.
func resampleLeadIn(from, to int) int {
	period := from / gcd(from, to)
	n := from / 10
	return (n + period - 1) / period * period
}

// resampleOffset returns the output index where input sample lead appears,
// found by passing an impulse through the same pipeline. The result depends
// only on the rates and is cached.
func resampleOffset(from, to, lead int) (int, error) {
	key := [2]int{from, to}
	if cached, ok := resampleOffsets.Load(key); ok {
		return cached.(int), nil
	}

	impulse := make([]float64, 2*lead+1)
	impulse[lead] = 1

	response, err := runResampler(impulse, from, to)
	if err != nil {
		return 0, err
	}
	if len(response) == 0 {
		return 0, fmt.Errorf("resampler produced no output for %d -> %d", from, to)
	}

	offset := floats.MaxIdx(response)
	resampleOffsets.Store(key, offset)
	return offset, nil
}

func runResampler(input []float64, from, to int) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush error: %w", err)
	}
	return append(output, tail...), nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
