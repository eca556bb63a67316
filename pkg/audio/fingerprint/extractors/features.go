package extractors

import (
	"math"
	"slices"
)

// FeatureVector is the fixed-length fingerprint of an utterance: the time
// average of each cepstral coefficient.
type FeatureVector []float64

// Dimension returns the number of coefficients
func (v FeatureVector) Dimension() int {
	return len(v)
}

// Clone returns an independent copy of the vector
func (v FeatureVector) Clone() FeatureVector {
	return slices.Clone(v)
}

// IsZero reports whether every coefficient is exactly zero
func (v FeatureVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// IsFinite reports whether the vector is free of NaN and infinite values
func (v FeatureVector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ExtractedFeatures holds the per-frame coefficients an extraction produced
// alongside the summarized vector.
type ExtractedFeatures struct {
	// Frames is time x coefficient; empty for silent input
	Frames [][]float64 `json:"frames,omitempty"`

	// Vector is the per-coefficient mean over Frames
	Vector FeatureVector `json:"vector"`

	// Extraction metadata
	ExtractionMetadata map[string]any `json:"extraction_metadata,omitempty"`
}

// calculateRMSEnergy computes root-mean-square energy
func calculateRMSEnergy(pcm []float64) float64 {
	if len(pcm) == 0 {
		return 0
	}
	sum := 0.0
	for _, sample := range pcm {
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(len(pcm)))
}

// calculateZeroCrossingRate computes the fraction of adjacent samples that change sign
func calculateZeroCrossingRate(pcm []float64) float64 {
	if len(pcm) <= 1 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(pcm); i++ {
		if (pcm[i-1] >= 0) != (pcm[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(pcm)-1)
}
