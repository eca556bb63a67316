// Package audiotest generates synthetic recordings for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/kim210603/accent-recognition/pkg/audio"
)

// Segment is one piece of a synthetic recording. A zero Frequency is silence.
type Segment struct {
	Frequency float64
	Amplitude float64
	Seconds   float64
}

// Tone returns a single sine segment
func Tone(frequency, amplitude, seconds float64) Segment {
	return Segment{Frequency: frequency, Amplitude: amplitude, Seconds: seconds}
}

// Silence returns a silent segment
func Silence(seconds float64) Segment {
	return Segment{Seconds: seconds}
}

// Samples renders segments as float samples at sampleRate
func Samples(sampleRate int, segments ...Segment) []float64 {
	var out []float64
	for _, seg := range segments {
		n := int(seg.Seconds * float64(sampleRate))
		for i := range n {
			t := float64(i) / float64(sampleRate)
			out = append(out, seg.Amplitude*math.Sin(2*math.Pi*seg.Frequency*t))
		}
	}
	return out
}

// PCM renders segments as 16-bit PCM, duplicating the signal on every channel
func PCM(sampleRate, channels int, segments ...Segment) *audio.PCM {
	samples := Samples(sampleRate, segments...)
	data := make([]int, 0, len(samples)*channels)
	for _, s := range samples {
		v := int(math.Round(s * 32767))
		for range channels {
			data = append(data, v)
		}
	}
	return &audio.PCM{
		Data:       data,
		Channels:   channels,
		SampleRate: sampleRate,
		BitDepth:   16,
	}
}

// WriteWAV writes segments to name inside dir and returns the file path
func WriteWAV(t testing.TB, dir, name string, sampleRate, channels int, segments ...Segment) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := audio.WriteWAV(path, PCM(sampleRate, channels, segments...)); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WAV format tags used by RawWAV
const (
	FormatPCM        = 1
	FormatFloat      = 3
	FormatExtensible = 0xFFFE
)

// RawWAV assembles a minimal RIFF/WAVE stream around payload without
// interpreting it, so tests can build encodings the encoder does not write.
func RawWAV(format uint16, channels, sampleRate, bitDepth int, payload []byte) []byte {
	blockAlign := channels * bitDepth / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(payload)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// Float32WAV renders segments as a mono 32-bit IEEE float WAV
func Float32WAV(sampleRate int, segments ...Segment) []byte {
	samples := Samples(sampleRate, segments...)
	payload := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(float32(s)))
	}
	return RawWAV(FormatFloat, 1, sampleRate, 32, payload)
}

// Unsigned8WAV renders segments as a mono 8-bit WAV, where silence is 128
func Unsigned8WAV(sampleRate int, segments ...Segment) []byte {
	samples := Samples(sampleRate, segments...)
	payload := make([]byte, len(samples))
	for i, s := range samples {
		payload[i] = byte(128 + int(math.Round(s*127)))
	}
	return RawWAV(FormatPCM, 1, sampleRate, 8, payload)
}
