package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, amp float64, rate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFramePowerFrameCount(t *testing.T) {
	power := FramePower(make([]float64, 10000), 2048, 512)
	assert.Len(t, power, 1+10000/512)

	assert.Nil(t, FramePower(nil, 2048, 512))
	assert.Nil(t, FramePower([]float64{1}, 0, 512))
}

func TestFramePowerConstantSignal(t *testing.T) {
	samples := make([]float64, 8192)
	for i := range samples {
		samples[i] = 0.5
	}

	power := FramePower(samples, 2048, 512)
	require.NotEmpty(t, power)

	// Interior frames are fully covered by signal.
	assert.InDelta(t, 0.25, power[4], 1e-12)
	// Edge frames are half padding.
	assert.InDelta(t, 0.125, power[0], 1e-12)
}

func TestTrimSilenceRemovesLeadingAndTrailingSilence(t *testing.T) {
	const rate = 16000
	tone := sine(rate, 220, 0.5, rate)
	samples := concat(make([]float64, rate/2), tone, make([]float64, rate/2))

	trimmed := TrimSilence(samples, 30, 2048, 512)

	assert.GreaterOrEqual(t, len(trimmed), len(tone))
	assert.LessOrEqual(t, len(trimmed), len(tone)+2*2048)
	assert.Less(t, len(trimmed), len(samples))
}

func TestTrimSilenceDropsQuietTail(t *testing.T) {
	const rate = 16000
	loud := sine(rate, 220, 0.5, rate)
	quiet := sine(rate, 220, 0.005, rate)

	trimmed := TrimSilence(concat(loud, quiet), 30, 2048, 512)

	assert.LessOrEqual(t, len(trimmed), len(loud)+2048)
}

func TestTrimSilenceKeepsSignalWithinRange(t *testing.T) {
	const rate = 16000
	loud := sine(rate, 220, 0.5, rate)
	softer := sine(rate, 220, 0.1, rate)

	trimmed := TrimSilence(concat(loud, softer), 30, 2048, 512)

	assert.Equal(t, 2*rate, len(trimmed))
}

func TestTrimSilenceSilentInput(t *testing.T) {
	assert.Empty(t, TrimSilence(make([]float64, 32000), 30, 2048, 512))
	assert.Empty(t, TrimSilence(nil, 30, 2048, 512))
	assert.Empty(t, TrimSilence([]float64{}, 30, 2048, 512))
}
