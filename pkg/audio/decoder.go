package audio

import (
	"context"
	"errors"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Decoder turns encoded audio bytes into PCM. Implementations must not keep
// references to data and must not write to disk.
type Decoder interface {
	Name() string
	Decode(ctx context.Context, data []byte) (*PCM, error)
}

// DecoderFunc adapts a plain function to the Decoder interface
type DecoderFunc struct {
	Label string
	Fn    func(ctx context.Context, data []byte) (*PCM, error)
}

// NewDecoderFunc creates a named Decoder from fn
func NewDecoderFunc(name string, fn func(ctx context.Context, data []byte) (*PCM, error)) DecoderFunc {
	return DecoderFunc{Label: name, Fn: fn}
}

func (d DecoderFunc) Name() string {
	return d.Label
}

func (d DecoderFunc) Decode(ctx context.Context, data []byte) (*PCM, error) {
	if d.Fn == nil {
		return nil, errors.New("decoder has no implementation")
	}
	return d.Fn(ctx, data)
}

// decodeChain tries each decoder in order and returns the first valid PCM.
// Failures of individual strategies are expected and only logged at debug
// level; a nil PCM with a nil error means every strategy failed.
func decodeChain(ctx context.Context, data []byte, decoders []Decoder, logger logging.Logger) (*PCM, []string, error) {
	attempts := make([]string, 0, len(decoders))

	for _, decoder := range decoders {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		attempts = append(attempts, decoder.Name())
		pcm, err := decoder.Decode(ctx, data)
		if err == nil {
			err = pcm.validate()
		}
		if err != nil {
			logger.Debug("Decoder attempt failed", logging.Fields{
				"decoder": decoder.Name(),
				"error":   err.Error(),
			})
			continue
		}

		logger.Debug("Decoder attempt succeeded", logging.Fields{
			"decoder":     decoder.Name(),
			"channels":    pcm.Channels,
			"sample_rate": pcm.SampleRate,
			"bit_depth":   pcm.BitDepth,
			"frames":      pcm.Frames(),
		})
		return pcm, attempts, nil
	}

	return nil, attempts, nil
}
