package extractors

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/floats"

	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/config"
	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint/analyzers"
)

// SpeechFeatureExtractor summarizes an utterance as its mean MFCC vector.
// It holds no mutable state after construction and is safe for concurrent use.
type SpeechFeatureExtractor struct {
	config     config.FeatureConfig
	sampleRate int
	analyzer   *analyzers.SpectralAnalyzer
	backend    cepstralBackend
	logger     logging.Logger
}

// NewSpeechFeatureExtractor creates an extractor for waveforms at sampleRate
func NewSpeechFeatureExtractor(sampleRate int, cfg config.FeatureConfig) (*SpeechFeatureExtractor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature configuration: %w", err)
	}
	if cfg.Backend == "" {
		cfg.Backend = config.BackendNative
	}

	backend, err := newBackend(sampleRate, cfg)
	if err != nil {
		return nil, err
	}

	return &SpeechFeatureExtractor{
		config:     cfg,
		sampleRate: sampleRate,
		analyzer:   analyzers.NewSpectralAnalyzer(sampleRate),
		backend:    backend,
		logger: logging.WithFields(logging.Fields{
			"component": "speech_feature_extractor",
			"backend":   backend.Name(),
		}),
	}, nil
}

// Dimension returns the length of every vector this extractor produces
func (s *SpeechFeatureExtractor) Dimension() int {
	return s.config.NumCoefficients
}

// Config returns the extraction parameters
func (s *SpeechFeatureExtractor) Config() config.FeatureConfig {
	return s.config
}

// Extract returns the mean MFCC vector of a waveform. An empty waveform
// yields the zero vector.
func (s *SpeechFeatureExtractor) Extract(waveform *audio.Waveform) (FeatureVector, error) {
	features, err := s.ExtractFeatures(waveform)
	if err != nil {
		return nil, err
	}
	return features.Vector, nil
}

// ExtractFeatures returns the per-frame coefficients and their mean
func (s *SpeechFeatureExtractor) ExtractFeatures(waveform *audio.Waveform) (*ExtractedFeatures, error) {
	features := &ExtractedFeatures{
		Vector: make(FeatureVector, s.config.NumCoefficients),
		ExtractionMetadata: map[string]any{
			"extractor_type": "speech_mfcc",
			"backend":        s.backend.Name(),
			"n_mfcc":         s.config.NumCoefficients,
			"sample_rate":    s.sampleRate,
		},
	}

	if waveform.IsEmpty() {
		s.logger.Debug("Empty waveform, returning zero vector")
		features.ExtractionMetadata["frames"] = 0
		return features, nil
	}
	if waveform.SampleRate != s.sampleRate {
		return nil, fmt.Errorf("waveform sample rate %d does not match extractor rate %d", waveform.SampleRate, s.sampleRate)
	}

	logger := s.logger.WithFields(logging.Fields{
		"function": "ExtractFeatures",
		"samples":  len(waveform.Samples),
	})

	spectrogram, err := s.analyzer.ComputeSTFT(waveform.Samples, s.config.FFTSize, s.config.HopSize, analyzers.WindowHann)
	if err != nil {
		return nil, fmt.Errorf("failed to compute spectrogram: %w", err)
	}

	frames, err := s.backend.ComputeFrames(spectrogram.Magnitude)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cepstral coefficients: %w", err)
	}

	features.Frames = frames
	features.Vector = meanFrames(frames, s.config.NumCoefficients)
	features.ExtractionMetadata["frames"] = len(frames)
	features.ExtractionMetadata["rms_energy"] = calculateRMSEnergy(waveform.Samples)
	features.ExtractionMetadata["zero_crossing_rate"] = calculateZeroCrossingRate(waveform.Samples)

	if !features.Vector.IsFinite() {
		return nil, fmt.Errorf("feature vector contains non-finite values")
	}

	logger.Debug("Speech feature extraction completed", logging.Fields{
		"frames": len(frames),
	})
	return features, nil
}

// meanFrames averages coefficient frames along the time axis
func meanFrames(frames [][]float64, dimension int) FeatureVector {
	mean := make(FeatureVector, dimension)
	if len(frames) == 0 {
		return mean
	}

	for _, frame := range frames {
		floats.Add(mean, frame[:dimension])
	}
	floats.Scale(1/float64(len(frames)), mean)
	return mean
}
