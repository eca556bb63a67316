package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint/extractors"
)

// AudioFingerprint is the feature vector of one utterance together with
// where it came from.
type AudioFingerprint struct {
	ID         string                   `json:"id"`
	Source     string                   `json:"source"`
	Timestamp  time.Time                `json:"timestamp"`
	Duration   time.Duration            `json:"duration"`
	SampleRate int                      `json:"sample_rate"`
	Vector     extractors.FeatureVector `json:"vector"`
	Empty      bool                     `json:"empty"`
	Hash       string                   `json:"hash"`
	Metadata   map[string]any           `json:"metadata,omitempty"`
}

// hashVector returns a stable hex digest of the vector's bit pattern
func hashVector(vector extractors.FeatureVector) string {
	h := sha256.New()
	var buf [8]byte
	for _, x := range vector {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
