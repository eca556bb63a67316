package analyzers

import (
	"fmt"
	"math"
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3
	melLogStartHz = 1000.0
	melLogStart   = melLogStartHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27

// HzToMel converts a frequency to the Slaney mel scale
func HzToMel(hz float64) float64 {
	if hz < melLogStartHz {
		return hz / melLinearStep
	}
	return melLogStart + math.Log(hz/melLogStartHz)/melLogStep
}

// MelToHz converts a Slaney mel value back to Hz
func MelToHz(mel float64) float64 {
	if mel < melLogStart {
		return mel * melLinearStep
	}
	return melLogStartHz * math.Exp(melLogStep*(mel-melLogStart))
}

// MelFilterBank is a set of triangular filters over the bins of a one-sided
// spectrum, each normalized to unit area in Hz.
type MelFilterBank struct {
	Weights  [][]float64
	NumMels  int
	FreqBins int
}

// NewMelFilterBank builds numMels Slaney-normalized triangular filters for an
// fftSize-point transform at sampleRate, spanning fmin to fmax.
func NewMelFilterBank(sampleRate, fftSize, numMels int, fmin, fmax float64) (*MelFilterBank, error) {
	if sampleRate <= 0 || fftSize <= 0 || numMels <= 0 {
		return nil, fmt.Errorf("invalid mel filter bank parameters (sr=%d, n_fft=%d, n_mels=%d)", sampleRate, fftSize, numMels)
	}
	if fmax <= fmin {
		return nil, fmt.Errorf("fmax (%g) must exceed fmin (%g)", fmax, fmin)
	}

	freqBins := fftSize/2 + 1
	fftFreqs := make([]float64, freqBins)
	for i := range freqBins {
		fftFreqs[i] = float64(i) * float64(sampleRate) / float64(fftSize)
	}

	// numMels+2 points evenly spaced in mel give each filter its edges.
	minMel, maxMel := HzToMel(fmin), HzToMel(fmax)
	melFreqs := make([]float64, numMels+2)
	for i := range melFreqs {
		melFreqs[i] = MelToHz(minMel + (maxMel-minMel)*float64(i)/float64(numMels+1))
	}

	weights := make([][]float64, numMels)
	for m := range numMels {
		lowerWidth := melFreqs[m+1] - melFreqs[m]
		upperWidth := melFreqs[m+2] - melFreqs[m+1]
		norm := 2 / (melFreqs[m+2] - melFreqs[m])

		weights[m] = make([]float64, freqBins)
		for k, f := range fftFreqs {
			lower := (f - melFreqs[m]) / lowerWidth
			upper := (melFreqs[m+2] - f) / upperWidth
			weights[m][k] = math.Max(0, math.Min(lower, upper)) * norm
		}
	}

	return &MelFilterBank{
		Weights:  weights,
		NumMels:  numMels,
		FreqBins: freqBins,
	}, nil
}

// Apply projects one power spectrum frame onto the mel bands
func (mb *MelFilterBank) Apply(power []float64) ([]float64, error) {
	if len(power) != mb.FreqBins {
		return nil, fmt.Errorf("spectrum has %d bins, filter bank expects %d", len(power), mb.FreqBins)
	}

	bands := make([]float64, mb.NumMels)
	for m, filter := range mb.Weights {
		sum := 0.0
		for k, w := range filter {
			if w != 0 {
				sum += w * power[k]
			}
		}
		bands[m] = sum
	}
	return bands, nil
}
