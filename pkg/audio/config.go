package audio

import (
	"fmt"
	"strings"
	"time"
)

// Default normalization parameters. The trim frame/hop pair matches the
// analysis framing used by the feature extractor.
const (
	DefaultSampleRate    = 16000
	DefaultTopDB         = 30.0
	DefaultFrameLength   = 2048
	DefaultHopLength     = 512
	DefaultDecodeTimeout = 15 * time.Second
)

// DefaultFallbackFormats is the ordered list of container formats tried when a
// byte buffer cannot be decoded directly.
var DefaultFallbackFormats = []string{"wav", "webm", "ogg", "mp3", "m4a"}

// Config controls decoding and normalization of input audio
type Config struct {
	SampleRate      int           `json:"sample_rate"`
	TopDB           float64       `json:"top_db"`
	FrameLength     int           `json:"frame_length"`
	HopLength       int           `json:"hop_length"`
	DecodeTimeout   time.Duration `json:"decode_timeout"`
	FFmpegPath      string        `json:"ffmpeg_path"`
	FallbackFormats []string      `json:"fallback_formats"`
}

// DefaultConfig returns the normalizer configuration used for both training and scoring
func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		TopDB:           DefaultTopDB,
		FrameLength:     DefaultFrameLength,
		HopLength:       DefaultHopLength,
		DecodeTimeout:   DefaultDecodeTimeout,
		FFmpegPath:      "ffmpeg",
		FallbackFormats: append([]string(nil), DefaultFallbackFormats...),
	}
}

// Validate checks the configuration for values the normalizer cannot work with
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.TopDB <= 0 {
		return fmt.Errorf("top_db must be positive, got %g", c.TopDB)
	}
	if c.FrameLength <= 0 || c.HopLength <= 0 {
		return fmt.Errorf("trim frame and hop length must be positive (frame=%d, hop=%d)", c.FrameLength, c.HopLength)
	}
	if c.HopLength > c.FrameLength {
		return fmt.Errorf("trim hop length %d exceeds frame length %d", c.HopLength, c.FrameLength)
	}
	for _, format := range c.FallbackFormats {
		if strings.TrimSpace(format) == "" {
			return fmt.Errorf("fallback formats must not contain empty entries")
		}
	}
	return nil
}

// orderedFormats returns the fallback formats with hint moved to the front
func orderedFormats(formats []string, hint string) []string {
	hint = normalizeFormat(hint)
	ordered := make([]string, 0, len(formats)+1)
	if hint != "" {
		ordered = append(ordered, hint)
	}
	for _, format := range formats {
		format = normalizeFormat(format)
		if format == "" || format == hint {
			continue
		}
		ordered = append(ordered, format)
	}
	return ordered
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
