package analyzers

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/mjibson/go-dsp/fft"
)

// SpectralAnalyzer provides core FFT and STFT functionality
type SpectralAnalyzer struct {
	windowGenerator *WindowGenerator
	sampleRate      int
	logger          logging.Logger
}

// SpectrogramResult holds the result of STFT analysis
type SpectrogramResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		windowGenerator: NewWindowGenerator(),
		sampleRate:      sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// SampleRate returns the rate the analyzer was created for
func (sa *SpectralAnalyzer) SampleRate() int {
	return sa.sampleRate
}

// FFT computes the Fast Fourier Transform of a real signal using mjibson/go-dsp
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeSTFT computes a centered short-time Fourier transform. The signal is
// zero padded by windowSize/2 on both sides so frame t is centered on sample
// t*hopSize, giving 1 + len(signal)/hopSize frames of windowSize/2+1 bins.
func (sa *SpectralAnalyzer) ComputeSTFT(signal []float64, windowSize, hopSize int, windowType WindowType) (*SpectrogramResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid STFT parameters (window=%d, hop=%d)", windowSize, hopSize)
	}

	window, err := sa.windowGenerator.Generate(windowType, windowSize)
	if err != nil {
		return nil, err
	}

	half := windowSize / 2
	padded := make([]float64, len(signal)+2*half)
	copy(padded[half:], signal)

	numFrames := 1 + (len(padded)-windowSize)/hopSize
	freqBins := windowSize/2 + 1

	logger := sa.logger.WithFields(logging.Fields{
		"function":      "ComputeSTFT",
		"signal_length": len(signal),
		"window":        windowType.String(),
	})
	logger.Debug("Computing STFT", logging.Fields{
		"window_size": windowSize,
		"hop_size":    hopSize,
		"frames":      numFrames,
	})

	magnitude := make([][]float64, numFrames)
	frame := make([]float64, windowSize)
	for t := range numFrames {
		start := t * hopSize
		for i := range windowSize {
			frame[i] = padded[start+i] * window[i]
		}

		spectrum := sa.FFT(frame)
		magnitude[t] = make([]float64, freqBins)
		for f := range freqBins {
			magnitude[t][f] = cmplx.Abs(spectrum[f])
		}
	}

	return &SpectrogramResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sa.sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sa.sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sa.sampleRate),
	}, nil
}

// ComputePowerSpectrum squares the magnitude of every bin
func (sa *SpectralAnalyzer) ComputePowerSpectrum(spectrogram *SpectrogramResult) [][]float64 {
	power := make([][]float64, spectrogram.TimeFrames)

	for t := range spectrogram.TimeFrames {
		power[t] = make([]float64, spectrogram.FreqBins)
		for f := range spectrogram.FreqBins {
			mag := spectrogram.Magnitude[t][f]
			power[t][f] = mag * mag
		}
	}

	return power
}
