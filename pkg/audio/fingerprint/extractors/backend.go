package extractors

import (
	"fmt"

	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"

	"github.com/kim210603/accent-recognition/pkg/audio/config"
	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint/analyzers"
)

// cepstralBackend turns an STFT magnitude matrix (time x bin) into per-frame
// cepstral coefficients (time x coefficient).
type cepstralBackend interface {
	Name() string
	ComputeFrames(magnitude [][]float64) ([][]float64, error)
}

func newBackend(sampleRate int, cfg config.FeatureConfig) (cepstralBackend, error) {
	switch cfg.Backend {
	case config.BackendNative, "":
		return newNativeBackend(sampleRate, cfg)
	case config.BackendSonar:
		return &sonarBackend{
			mfcc:      spectral.NewMFCC(sampleRate, cfg.NumCoefficients),
			numCoeffs: cfg.NumCoefficients,
		}, nil
	default:
		return nil, fmt.Errorf("unknown feature backend %q", cfg.Backend)
	}
}

// nativeBackend follows the librosa pipeline: power spectrum, Slaney mel
// bands, decibels clipped to topDB below the peak, orthonormal DCT-II.
type nativeBackend struct {
	filterBank *analyzers.MelFilterBank
	dct        *analyzers.DCT
	topDB      float64
}

func newNativeBackend(sampleRate int, cfg config.FeatureConfig) (*nativeBackend, error) {
	filterBank, err := analyzers.NewMelFilterBank(sampleRate, cfg.FFTSize, cfg.NumMels, cfg.FMin, cfg.MaxFrequency(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to build mel filter bank: %w", err)
	}

	return &nativeBackend{
		filterBank: filterBank,
		dct:        analyzers.NewDCT(cfg.NumMels, cfg.NumCoefficients),
		topDB:      cfg.TopDB,
	}, nil
}

func (n *nativeBackend) Name() string {
	return string(config.BackendNative)
}

func (n *nativeBackend) ComputeFrames(magnitude [][]float64) ([][]float64, error) {
	melPower := make([][]float64, len(magnitude))
	power := make([]float64, n.filterBank.FreqBins)

	for t, frame := range magnitude {
		if len(frame) != n.filterBank.FreqBins {
			return nil, fmt.Errorf("frame %d has %d bins, expected %d", t, len(frame), n.filterBank.FreqBins)
		}
		for f, mag := range frame {
			power[f] = mag * mag
		}

		bands, err := n.filterBank.Apply(power)
		if err != nil {
			return nil, err
		}
		melPower[t] = bands
	}

	// The decibel floor depends on the loudest band of the whole utterance,
	// so the conversion runs over the complete matrix.
	melDB := analyzers.PowerToDB(melPower, config.DefaultAmin, n.topDB)

	coefficients := make([][]float64, len(melDB))
	for t, bands := range melDB {
		coefficients[t] = n.dct.Transform(bands)
	}
	return coefficients, nil
}

// sonarBackend delegates to the sonido-sonar MFCC implementation, which uses
// its own filter bank and log compression.
type sonarBackend struct {
	mfcc      *spectral.MFCC
	numCoeffs int
}

func (s *sonarBackend) Name() string {
	return string(config.BackendSonar)
}

func (s *sonarBackend) ComputeFrames(magnitude [][]float64) ([][]float64, error) {
	frames, err := s.mfcc.ComputeFrames(magnitude)
	if err != nil {
		return nil, fmt.Errorf("MFCC computation failed: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no MFCC features extracted")
	}

	for t, frame := range frames {
		if len(frame) < s.numCoeffs {
			return nil, fmt.Errorf("frame %d has %d coefficients, expected %d", t, len(frame), s.numCoeffs)
		}
		frames[t] = frame[:s.numCoeffs]
	}
	return frames, nil
}
