package config

import "fmt"

// Backend selects the implementation that turns STFT frames into cepstral
// coefficients.
type Backend string

const (
	// BackendNative computes mel bands, decibels and the DCT in this module
	BackendNative Backend = "native"
	// BackendSonar delegates per-frame coefficients to sonido-sonar
	BackendSonar Backend = "sonar"
)

// Default feature extraction parameters
const (
	DefaultNumCoefficients = 13
	DefaultFFTSize         = 2048
	DefaultHopSize         = 512
	DefaultNumMels         = 128
	DefaultTopDB           = 80.0
	DefaultAmin            = 1e-10
)

// FeatureConfig controls MFCC extraction. A zero FMax means half the sample rate.
type FeatureConfig struct {
	NumCoefficients int     `json:"n_mfcc" yaml:"n_mfcc"`
	FFTSize         int     `json:"n_fft" yaml:"n_fft"`
	HopSize         int     `json:"hop_length" yaml:"hop_length"`
	NumMels         int     `json:"n_mels" yaml:"n_mels"`
	FMin            float64 `json:"fmin" yaml:"fmin"`
	FMax            float64 `json:"fmax" yaml:"fmax"`
	TopDB           float64 `json:"top_db" yaml:"top_db"`
	Backend         Backend `json:"backend" yaml:"backend"`
}

// DefaultFeatureConfig returns the extraction parameters shared by training and scoring
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		NumCoefficients: DefaultNumCoefficients,
		FFTSize:         DefaultFFTSize,
		HopSize:         DefaultHopSize,
		NumMels:         DefaultNumMels,
		FMin:            0,
		FMax:            0,
		TopDB:           DefaultTopDB,
		Backend:         BackendNative,
	}
}

// Validate rejects parameter combinations the extractor cannot honor
func (c FeatureConfig) Validate() error {
	if c.NumCoefficients < 1 {
		return fmt.Errorf("n_mfcc must be at least 1, got %d", c.NumCoefficients)
	}
	if c.NumMels < 1 {
		return fmt.Errorf("n_mels must be at least 1, got %d", c.NumMels)
	}
	if c.NumCoefficients > c.NumMels {
		return fmt.Errorf("n_mfcc (%d) cannot exceed n_mels (%d)", c.NumCoefficients, c.NumMels)
	}
	if c.FFTSize <= 0 {
		return fmt.Errorf("n_fft must be positive, got %d", c.FFTSize)
	}
	if c.HopSize < 1 {
		return fmt.Errorf("hop_length must be at least 1, got %d", c.HopSize)
	}
	if c.FMin < 0 {
		return fmt.Errorf("fmin must not be negative, got %g", c.FMin)
	}
	if c.FMax != 0 && c.FMax <= c.FMin {
		return fmt.Errorf("fmax (%g) must exceed fmin (%g)", c.FMax, c.FMin)
	}
	if c.TopDB < 0 {
		return fmt.Errorf("top_db must not be negative, got %g", c.TopDB)
	}
	switch c.Backend {
	case BackendNative, BackendSonar, "":
	default:
		return fmt.Errorf("unknown feature backend %q", c.Backend)
	}
	return nil
}

// MaxFrequency resolves FMax against the sample rate
func (c FeatureConfig) MaxFrequency(sampleRate int) float64 {
	if c.FMax > 0 {
		return c.FMax
	}
	return float64(sampleRate) / 2
}
