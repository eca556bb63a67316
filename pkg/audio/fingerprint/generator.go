package fingerprint

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/google/uuid"

	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/config"
	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint/extractors"
)

// FingerprintGenerator runs the one pipeline shared by training and scoring:
// decode and normalize, then extract the mean MFCC vector.
type FingerprintGenerator struct {
	normalizer *audio.Normalizer
	extractor  *extractors.SpeechFeatureExtractor
	logger     logging.Logger
}

// NewFingerprintGenerator builds the normalizer and extractor from their configurations
func NewFingerprintGenerator(audioCfg audio.Config, featureCfg config.FeatureConfig, opts ...audio.NormalizerOption) (*FingerprintGenerator, error) {
	normalizer, err := audio.NewNormalizer(audioCfg, opts...)
	if err != nil {
		return nil, err
	}

	extractor, err := extractors.NewSpeechFeatureExtractor(audioCfg.SampleRate, featureCfg)
	if err != nil {
		return nil, err
	}

	return &FingerprintGenerator{
		normalizer: normalizer,
		extractor:  extractor,
		logger: logging.WithFields(logging.Fields{
			"component": "fingerprint_generator",
		}),
	}, nil
}

// Dimension returns the length of the vectors the generator produces
func (g *FingerprintGenerator) Dimension() int {
	return g.extractor.Dimension()
}

// SampleRate returns the rate audio is normalized to before extraction
func (g *FingerprintGenerator) SampleRate() int {
	return g.normalizer.Config().SampleRate
}

// Backend returns the configured cepstral backend
func (g *FingerprintGenerator) Backend() config.Backend {
	return g.extractor.Config().Backend
}

// Normalizer exposes the decoding stage on its own
func (g *FingerprintGenerator) Normalizer() *audio.Normalizer {
	return g.normalizer
}

// FromFile fingerprints an audio file
func (g *FingerprintGenerator) FromFile(ctx context.Context, path string) (*AudioFingerprint, error) {
	waveform, err := g.normalizer.NormalizeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return g.FromWaveform(path, waveform)
}

// FromBytes fingerprints an in-memory recording. hint names the container
// format when the caller knows it, for example "webm" for browser captures.
func (g *FingerprintGenerator) FromBytes(ctx context.Context, data []byte, hint string) (*AudioFingerprint, error) {
	waveform, err := g.normalizer.NormalizeBytes(ctx, data, hint)
	if err != nil {
		return nil, err
	}
	return g.FromWaveform("audio buffer", waveform)
}

// FromWaveform fingerprints audio that is already normalized
func (g *FingerprintGenerator) FromWaveform(source string, waveform *audio.Waveform) (*AudioFingerprint, error) {
	start := time.Now()

	features, err := g.extractor.ExtractFeatures(waveform)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed for %s: %w", source, err)
	}

	fp := &AudioFingerprint{
		ID:         uuid.NewString(),
		Source:     source,
		Timestamp:  start,
		Duration:   waveform.Duration(),
		SampleRate: g.SampleRate(),
		Vector:     features.Vector,
		Empty:      waveform.IsEmpty(),
		Hash:       hashVector(features.Vector),
		Metadata:   features.ExtractionMetadata,
	}

	g.logger.Debug("Fingerprint generated", logging.Fields{
		"source":        source,
		"empty":         fp.Empty,
		"duration":      fp.Duration.String(),
		"extraction_ms": time.Since(start).Milliseconds(),
	})

	return fp, nil
}
