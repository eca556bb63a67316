package audio

import (
	"context"
	"fmt"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Normalizer decodes encoded audio into a mono, fixed-rate, silence-trimmed
// Waveform. It is stateless after construction and safe for concurrent use.
type Normalizer struct {
	config   Config
	primary  []Decoder
	fallback []Decoder
	logger   logging.Logger
}

// NormalizerOption configures a Normalizer
type NormalizerOption func(*Normalizer)

// WithPrimaryDecoders replaces the direct decoding strategies
func WithPrimaryDecoders(decoders ...Decoder) NormalizerOption {
	return func(n *Normalizer) {
		n.primary = decoders
	}
}

// WithFallbackDecoders replaces the format-guessing strategies used for byte buffers
func WithFallbackDecoders(decoders ...Decoder) NormalizerOption {
	return func(n *Normalizer) {
		n.fallback = decoders
	}
}

// WithLogger sets the logger used for decode diagnostics
func WithLogger(logger logging.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer creates a normalizer. By default the primary path decodes WAV
// in process and then lets ffmpeg probe the input; the fallback path forces
// each of cfg.FallbackFormats through ffmpeg in order.
func NewNormalizer(cfg Config, opts ...NormalizerOption) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio configuration: %w", err)
	}

	n := &Normalizer{
		config: cfg,
		primary: []Decoder{
			WAVDecoder{},
			NewFFmpegDecoder("", cfg.FFmpegPath, cfg.DecodeTimeout),
		},
		logger: logging.WithFields(logging.Fields{
			"component":   "audio_normalizer",
			"sample_rate": cfg.SampleRate,
		}),
	}
	for _, format := range orderedFormats(cfg.FallbackFormats, "") {
		n.fallback = append(n.fallback, NewFFmpegDecoder(format, cfg.FFmpegPath, cfg.DecodeTimeout))
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Config returns the normalizer configuration
func (n *Normalizer) Config() Config {
	return n.config
}

// NormalizeFile decodes an audio file through the primary path only
func (n *Normalizer) NormalizeFile(ctx context.Context, path string) (*Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDecodeError(path, ErrCodeRead, "failed to read audio file", err)
	}
	if len(data) == 0 {
		return nil, NewDecodeError(path, ErrCodeEmptyInput, "audio file is empty", nil)
	}

	pcm, attempts, err := decodeChain(ctx, data, n.primary, n.logger)
	if err != nil {
		return nil, err
	}
	if pcm == nil {
		decodeErr := NewDecodeError(path, ErrCodeDecoding, "could not decode audio file", nil)
		decodeErr.Attempts = attempts
		return nil, decodeErr
	}

	return n.finish(path, pcm)
}

// NormalizeBytes decodes an in-memory buffer. If the primary path fails, the
// fallback formats are tried in order, starting with hint when it is set.
func (n *Normalizer) NormalizeBytes(ctx context.Context, data []byte, hint string) (*Waveform, error) {
	const source = "audio buffer"
	if len(data) == 0 {
		return nil, NewDecodeError(source, ErrCodeEmptyInput, "audio buffer is empty", nil)
	}

	pcm, attempts, err := decodeChain(ctx, data, n.primary, n.logger)
	if err != nil {
		return nil, err
	}

	if pcm == nil {
		n.logger.Debug("Direct decode failed, trying fallback formats", logging.Fields{
			"hint":      hint,
			"attempted": attempts,
		})

		var fallbackAttempts []string
		pcm, fallbackAttempts, err = decodeChain(ctx, data, n.fallbackFor(hint), n.logger)
		attempts = append(attempts, fallbackAttempts...)
		if err != nil {
			return nil, err
		}
	}

	if pcm == nil {
		decodeErr := NewDecodeError(source, ErrCodeDecoding, "could not decode audio", nil)
		decodeErr.Attempts = attempts
		return nil, decodeErr
	}

	return n.finish(source, pcm)
}

// fallbackFor orders the fallback chain so the decoder for hint goes first.
// A hint with no matching decoder gets an ffmpeg decoder of its own.
func (n *Normalizer) fallbackFor(hint string) []Decoder {
	hint = normalizeFormat(hint)
	if hint == "" {
		return n.fallback
	}

	ordered := make([]Decoder, 0, len(n.fallback)+1)
	var rest []Decoder
	for _, decoder := range n.fallback {
		if decoderFormat(decoder) == hint {
			ordered = append(ordered, decoder)
			continue
		}
		rest = append(rest, decoder)
	}
	if len(ordered) == 0 {
		ordered = append(ordered, NewFFmpegDecoder(hint, n.config.FFmpegPath, n.config.DecodeTimeout))
	}
	return append(ordered, rest...)
}

func decoderFormat(decoder Decoder) string {
	if ff, ok := decoder.(*FFmpegDecoder); ok {
		return ff.Format
	}
	return normalizeFormat(decoder.Name())
}

func (n *Normalizer) finish(source string, pcm *PCM) (*Waveform, error) {
	mono, err := ToMono(pcm)
	if err != nil {
		return nil, NewDecodeError(source, ErrCodeInvalidFormat, "decoded audio is unusable", err)
	}

	resampled, err := Resample(mono, pcm.SampleRate, n.config.SampleRate)
	if err != nil {
		return nil, NewDecodeError(source, ErrCodeResample, "failed to resample audio", err)
	}

	trimmed := TrimSilence(resampled, n.config.TopDB, n.config.FrameLength, n.config.HopLength)

	logger := n.logger.WithFields(logging.Fields{
		"source": source,
	})
	if len(trimmed) == 0 {
		logger.Warn("Audio is silent after trimming", logging.Fields{
			"decoded_samples": len(resampled),
		})
	} else {
		logger.Debug("Audio normalized", logging.Fields{
			"source_rate":     pcm.SampleRate,
			"source_channels": pcm.Channels,
			"samples":         len(trimmed),
			"trimmed_samples": len(resampled) - len(trimmed),
		})
	}

	return &Waveform{
		Samples:    trimmed,
		SampleRate: n.config.SampleRate,
	}, nil
}
