package analyzers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannWindowIsPeriodic(t *testing.T) {
	wg := NewWindowGenerator()

	window, err := wg.Generate(WindowHann, 8)
	require.NoError(t, err)

	expected := []float64{0, 0.1464466, 0.5, 0.8535534, 1, 0.8535534, 0.5, 0.1464466}
	assert.InDeltaSlice(t, expected, window, 1e-6)

	cached, err := wg.Generate(WindowHann, 8)
	require.NoError(t, err)
	assert.Equal(t, &window[0], &cached[0])

	_, err = wg.Generate(WindowHann, 0)
	assert.Error(t, err)
}

func TestComputeSTFTShape(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	signal := make([]float64, 16000)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 16000)
	}

	result, err := sa.ComputeSTFT(signal, 2048, 512, WindowHann)
	require.NoError(t, err)

	assert.Equal(t, 1+16000/512, result.TimeFrames)
	assert.Equal(t, 1025, result.FreqBins)
	assert.Len(t, result.Magnitude, result.TimeFrames)
	assert.Len(t, result.Magnitude[0], result.FreqBins)
	assert.InDelta(t, 7.8125, result.FreqResolution, 1e-9)

	// A 1 kHz tone peaks at bin 128 in a fully covered frame.
	frame := result.Magnitude[result.TimeFrames/2]
	peakBin := 0
	for f, mag := range frame {
		if mag > frame[peakBin] {
			peakBin = f
		}
	}
	assert.Equal(t, 128, peakBin)
}

func TestComputeSTFTShortSignal(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)

	result, err := sa.ComputeSTFT([]float64{0.5, -0.5, 0.25}, 2048, 512, WindowHann)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TimeFrames)

	_, err = sa.ComputeSTFT(nil, 2048, 512, WindowHann)
	assert.Error(t, err)
}

func TestComputePowerSpectrum(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	spec := &SpectrogramResult{
		Magnitude:  [][]float64{{1, 2}, {3, 0.5}},
		TimeFrames: 2,
		FreqBins:   2,
	}

	assert.Equal(t, [][]float64{{1, 4}, {9, 0.25}}, sa.ComputePowerSpectrum(spec))
}

func TestMelScale(t *testing.T) {
	assert.InDelta(t, 15.0, HzToMel(1000), 1e-12)
	assert.InDelta(t, 3.0, HzToMel(200), 1e-12)

	for _, hz := range []float64{0, 440, 1000, 4000, 8000} {
		assert.InDelta(t, hz, MelToHz(HzToMel(hz)), 1e-9)
	}
}

func TestMelFilterBank(t *testing.T) {
	bank, err := NewMelFilterBank(16000, 2048, 128, 0, 8000)
	require.NoError(t, err)

	assert.Equal(t, 128, bank.NumMels)
	assert.Equal(t, 1025, bank.FreqBins)

	for m, filter := range bank.Weights {
		nonZero := 0
		for _, w := range filter {
			assert.GreaterOrEqual(t, w, 0.0)
			if w > 0 {
				nonZero++
			}
		}
		assert.Positive(t, nonZero, "filter %d is empty", m)
	}

	bands, err := bank.Apply(make([]float64, 1025))
	require.NoError(t, err)
	assert.Len(t, bands, 128)

	_, err = bank.Apply(make([]float64, 10))
	assert.Error(t, err)

	_, err = NewMelFilterBank(16000, 2048, 128, 4000, 4000)
	assert.Error(t, err)
}

func TestPowerToDB(t *testing.T) {
	power := [][]float64{{1, 0.1, 0}, {1e-12, 100, 1e-3}}

	db := PowerToDB(power, 1e-10, 80)

	assert.InDelta(t, 0, db[0][0], 1e-9)
	assert.InDelta(t, -10, db[0][1], 1e-9)
	assert.InDelta(t, 20, db[1][1], 1e-9)
	assert.InDelta(t, -30, db[1][2], 1e-9)
	// Clipped to 80 dB below the 20 dB peak.
	assert.InDelta(t, -60, db[0][2], 1e-9)
	assert.InDelta(t, -60, db[1][0], 1e-9)

	// Input is not modified.
	assert.Equal(t, 0.0, power[0][2])

	unclipped := PowerToDB(power, 1e-10, 0)
	assert.InDelta(t, -100, unclipped[0][2], 1e-9)
}

func TestDCTOrthonormal(t *testing.T) {
	dct := NewDCT(4, 4)

	constant := dct.Transform([]float64{1, 1, 1, 1})
	assert.InDeltaSlice(t, []float64{2, 0, 0, 0}, constant, 1e-12)

	// Orthonormal transforms preserve energy.
	x := []float64{0.3, -1.2, 2.5, 0.7}
	y := dct.Transform(x)
	energyX, energyY := 0.0, 0.0
	for i := range x {
		energyX += x[i] * x[i]
		energyY += y[i] * y[i]
	}
	assert.InDelta(t, energyX, energyY, 1e-12)

	truncated := NewDCT(128, 13).Transform(make([]float64, 128))
	assert.Len(t, truncated, 13)
}
