package audio_test

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/audiotest"
)

// wavOnlyNormalizer decodes with the in-process WAV decoder and nothing else
func wavOnlyNormalizer(t *testing.T) *audio.Normalizer {
	t.Helper()
	normalizer, err := audio.NewNormalizer(audio.DefaultConfig(),
		audio.WithPrimaryDecoders(audio.WAVDecoder{}),
		audio.WithFallbackDecoders(),
	)
	require.NoError(t, err)
	return normalizer
}

func TestWAVDecoderRecentersEightBit(t *testing.T) {
	data := audiotest.RawWAV(audiotest.FormatPCM, 1, 8000, 8, []byte{128, 255, 0, 192})

	pcm, err := audio.WAVDecoder{}.Decode(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 8, pcm.BitDepth)
	assert.Equal(t, []int{0, 127, -128, 64}, pcm.Data)

	mono, err := audio.ToMono(pcm)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, mono[2], 1e-12)
	assert.InDelta(t, 0.5, mono[3], 1e-12)
}

func TestWAVDecoderEightBitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip8.wav")
	pcm := &audio.PCM{Data: []int{0, 100, -100, -128, 127}, Channels: 1, SampleRate: 8000, BitDepth: 8}
	require.NoError(t, audio.WriteWAV(path, pcm))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := audio.WAVDecoder{}.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, pcm.Data, decoded.Data)
}

func TestWAVDecoderConvertsFloat(t *testing.T) {
	values := []float32{0, 0.5, -0.25, 1.5}
	payload := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(v))
	}
	data := audiotest.RawWAV(audiotest.FormatFloat, 1, 16000, 32, payload)

	pcm, err := audio.WAVDecoder{}.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 32, pcm.BitDepth)

	mono, err := audio.ToMono(pcm)
	require.NoError(t, err)
	require.Len(t, mono, 4)
	assert.InDelta(t, 0.0, mono[0], 1e-9)
	assert.InDelta(t, 0.5, mono[1], 1e-9)
	assert.InDelta(t, -0.25, mono[2], 1e-9)
	assert.InDelta(t, 1.0, mono[3], 1e-9, "values past full scale clip")
}

func TestWAVDecoderRejectsOtherEncodings(t *testing.T) {
	tests := []struct {
		name     string
		format   uint16
		bitDepth int
	}{
		{"extensible", audiotest.FormatExtensible, 16},
		{"double float", audiotest.FormatFloat, 64},
		{"a-law", 6, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := audiotest.RawWAV(tt.format, 1, 16000, tt.bitDepth, make([]byte, 1600*tt.bitDepth/8))

			_, err := audio.WAVDecoder{}.Decode(context.Background(), data)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeBytesEightBitSilenceIsEmpty(t *testing.T) {
	data := audiotest.Unsigned8WAV(16000, audiotest.Silence(1))

	waveform, err := wavOnlyNormalizer(t).NormalizeBytes(context.Background(), data, "")
	require.NoError(t, err)
	assert.True(t, waveform.IsEmpty())
}

func TestNormalizeBytesEightBitTonePeak(t *testing.T) {
	data := audiotest.Unsigned8WAV(16000, audiotest.Silence(0.25), audiotest.Tone(300, 0.5, 0.5))

	waveform, err := wavOnlyNormalizer(t).NormalizeBytes(context.Background(), data, "")
	require.NoError(t, err)
	assert.False(t, waveform.IsEmpty())
	assert.InDelta(t, 0.5, waveform.Peak(), 0.02)
}

func TestNormalizeBytesFloatPreservesPeak(t *testing.T) {
	data := audiotest.Float32WAV(16000, audiotest.Tone(440, 0.5, 1))

	waveform, err := wavOnlyNormalizer(t).NormalizeBytes(context.Background(), data, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, waveform.Peak(), 0.01)
}

func TestExtensibleWAVFallsThroughToNextDecoder(t *testing.T) {
	var calls []string
	tone := audiotest.PCM(16000, 1, audiotest.Tone(200, 0.5, 1))

	normalizer, err := audio.NewNormalizer(audio.DefaultConfig(),
		audio.WithPrimaryDecoders(
			audio.WAVDecoder{},
			recordingDecoder{name: "ffmpeg", calls: &calls, pcm: tone},
		),
	)
	require.NoError(t, err)

	data := audiotest.RawWAV(audiotest.FormatExtensible, 1, 16000, 16, make([]byte, 3200))
	waveform, err := normalizer.NormalizeBytes(context.Background(), data, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"ffmpeg"}, calls)
	assert.InDelta(t, 0.5, waveform.Peak(), 0.01)
}
