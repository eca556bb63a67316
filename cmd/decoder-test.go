package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kim210603/accent-recognition/internal/app"
	"github.com/kim210603/accent-recognition/pkg/audio"
)

var (
	decoderTimeout      time.Duration
	decoderFormat       string
	decoderRecording    bool
	decoderWrite        string
	decoderValidateOnly bool
)

var decoderCmd = &cobra.Command{
	Use:   "decoder-test [audio-file | -]",
	Short: "Decode and normalize a clip without scoring it",
	Long: `Run only the audio normalizer: decode, downmix, resample and trim silence.

This command checks that ffmpeg is available and shows what the feature
extractor would receive for a given input. The normalized audio can be saved
as a 16-bit WAV for listening.

Examples:
  # Check decoder availability and configuration
  accentid decoder-test --validate-only

  # Normalize a file and save the result
  accentid decoder-test sample.m4a --write /tmp/normalized.wav

  # Exercise the fallback path for a browser recording
  cat recording.webm | accentid decoder-test - --format webm`,
	Args: func(cmd *cobra.Command, args []string) error {
		if decoderValidateOnly {
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("requires exactly one file path, or - for stdin")
		}
		return nil
	},
	RunE: runDecoderTest,
}

func init() {
	rootCmd.AddCommand(decoderCmd)

	decoderCmd.Flags().DurationVar(&decoderTimeout, "timeout", 30*time.Second,
		"operation timeout")
	decoderCmd.Flags().StringVarP(&decoderFormat, "format", "f", "",
		"container format hint for recordings")
	decoderCmd.Flags().BoolVar(&decoderRecording, "recording", false,
		"treat the file as a recording and allow fallback decoding")
	decoderCmd.Flags().StringVar(&decoderWrite, "write", "",
		"save the normalized audio to this WAV file")
	decoderCmd.Flags().BoolVar(&decoderValidateOnly, "validate-only", false,
		"only validate decoder availability")
	decoderCmd.Flags().Int("sample-rate", 0,
		"target sample rate (default 16000)")
	decoderCmd.Flags().Float64("top-db", 0,
		"silence threshold in dB below peak (default 30)")
	decoderCmd.Flags().String("ffmpeg", "",
		"ffmpeg binary (default ffmpeg on PATH)")
}

func runDecoderTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context(), decoderTimeout)
	defer cancel()

	timer := NewPerformanceTimer()

	timer.StartEvent("config_validation")
	printSectionHeader("Decoder Configuration and Validation")

	application, err := newApplication("decoder-test")
	if err != nil {
		return err
	}
	printSuccess("Application configuration loaded")

	normalizer := application.Generator().Normalizer()
	cfg := normalizer.Config()
	printInfo("Target sample rate: %d Hz", cfg.SampleRate)
	printInfo("Silence threshold: %.1f dB below peak", cfg.TopDB)
	printInfo("Trim framing: %d samples, hop %d", cfg.FrameLength, cfg.HopLength)
	printInfo("Fallback formats: %s", strings.Join(cfg.FallbackFormats, ", "))

	ffmpegAvailable := checkFFmpeg(cfg.FFmpegPath)
	timer.EndEvent("config_validation")

	if decoderValidateOnly {
		printResult("Configuration", true)
		printResult("FFmpeg", ffmpegAvailable)
		if !ffmpegAvailable {
			return fmt.Errorf("ffmpeg not found; only WAV input can be decoded")
		}
		return nil
	}

	timer.StartEvent("decoding")
	printSectionHeader("Decoding")
	waveform, source, err := decodeInput(ctx, normalizer, args[0])
	timer.EndEvent("decoding")
	if err != nil {
		printResult("Decoding", false)
		var decodeErr *audio.DecodeError
		if errors.As(err, &decodeErr) && len(decodeErr.Attempts) > 0 {
			printInfo("Attempted decoders: %s", strings.Join(decodeErr.Attempts, ", "))
		}
		return err
	}
	printResult("Decoding", true)
	if waveform.IsEmpty() {
		printWarning("Audio is silent after trimming")
	}

	if decoderWrite != "" {
		timer.StartEvent("writing")
		if err := audio.WriteWAV(decoderWrite, waveform.PCM16()); err != nil {
			return fmt.Errorf("failed to save normalized audio: %w", err)
		}
		timer.EndEvent("writing")
		printSuccess("Normalized audio written to %s", decoderWrite)
	}

	if err := application.OutputWaveform(source, waveform); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	displayDecoderPerformanceSummary(timer)
	return nil
}

func decodeInput(ctx context.Context, normalizer *audio.Normalizer, input string) (*audio.Waveform, string, error) {
	if input != "-" && !decoderRecording {
		waveform, err := normalizer.NormalizeFile(ctx, input)
		return waveform, input, err
	}

	data, err := readInput(input)
	if err != nil {
		return nil, "", err
	}
	source := input
	if input == "-" {
		source = "stdin"
	}
	waveform, err := normalizer.NormalizeBytes(ctx, data, decoderFormat)
	return waveform, source, err
}

func checkFFmpeg(path string) bool {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		printWarning("FFmpeg not found (%s): only WAV input can be decoded", path)
		return false
	}
	printSuccess("FFmpeg available at %s", resolved)
	return true
}

func displayDecoderPerformanceSummary(timer *PerformanceTimer) {
	printInfo("Performance Breakdown:")
	for _, event := range timer.Events() {
		printInfo("  %s: %v", app.DisplayLabel(event), timer.GetDuration(event).Round(time.Microsecond))
	}
	if event, duration := timer.Slowest(); event != "" {
		printInfo("Slowest step: %s (%v)", app.DisplayLabel(event), duration.Round(time.Microsecond))
	}
	printInfo("Total: %v", timer.GetTotalDuration().Round(time.Microsecond))
}
