package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// WAVDecoder decodes RIFF/WAVE in process without any external tools. It
// handles integer PCM and 32-bit IEEE float; other encodings, including
// WAVE_FORMAT_EXTENSIBLE, are rejected so the next decoder can take them.
type WAVDecoder struct{}

func (WAVDecoder) Name() string {
	return "wav"
}

func (WAVDecoder) Decode(ctx context.Context, data []byte) (*PCM, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasWAVMagic(data) {
		return nil, errors.New("missing RIFF/WAVE header")
	}

	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid or unsupported wav stream")
	}

	format := decoder.WavAudioFormat
	isFloat := format == wavFormatFloat && decoder.BitDepth == 32
	if format != wavFormatPCM && !isFloat {
		return nil, fmt.Errorf("unsupported wav encoding (format %d, %d bits)", format, decoder.BitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav samples: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, errors.New("wav stream has no format information")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}

	samples := buf.Data
	switch {
	case isFloat:
		floatToInt32(samples)
		bitDepth = 32
	case bitDepth == 8:
		// 8-bit WAV samples are unsigned with silence at 128.
		for i, v := range samples {
			samples[i] = v - 128
		}
	}

	return &PCM{
		Data:       samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
		BitDepth:   bitDepth,
	}, nil
}

// floatToInt32 reinterprets samples holding raw float32 bit patterns and
// rescales them to signed 32-bit full scale, clipping at +/-1.
func floatToInt32(data []int) {
	const fullScale = float64(1 << 31)
	for i, v := range data {
		f := float64(math.Float32frombits(uint32(v)))
		switch {
		case math.IsNaN(f):
			f = 0
		case f > 1:
			f = 1
		case f < -1:
			f = -1
		}
		data[i] = int(math.Max(math.Min(math.Round(f*fullScale), fullScale-1), -fullScale))
	}
}

func hasWAVMagic(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// fixWAVHeader rewrites the RIFF and data chunk sizes of a WAV stream written
// to a pipe, where the encoder could not seek back to fill them in.
func fixWAVHeader(data []byte) []byte {
	if !hasWAVMagic(data) {
		return data
	}

	binary.LittleEndian.PutUint32(data[4:8], uint32(len(data)-8))

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		if chunkID == "data" {
			binary.LittleEndian.PutUint32(data[offset+4:offset+8], uint32(len(data)-offset-8))
			break
		}

		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		next := offset + 8 + chunkSize + chunkSize%2
		if chunkSize < 0 || next <= offset || next > len(data) {
			break
		}
		offset = next
	}

	return data
}

// WriteWAV encodes PCM as an uncompressed WAV file at path
func WriteWAV(path string, pcm *PCM) error {
	if err := pcm.validate(); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer file.Close()

	data := pcm.Data
	if pcm.BitDepth == 8 {
		data = make([]int, len(pcm.Data))
		for i, v := range pcm.Data {
			data[i] = v + 128
		}
	}

	encoder := wav.NewEncoder(file, pcm.SampleRate, pcm.BitDepth, pcm.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: pcm.Channels,
			SampleRate:  pcm.SampleRate,
		},
		Data:           data,
		SourceBitDepth: pcm.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return file.Close()
}
