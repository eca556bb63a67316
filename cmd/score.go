package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kim210603/accent-recognition/internal/app"
)

var (
	scoreFormat    string
	scoreRecording bool
	scoreTimeout   time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score <audio-file | ->",
	Short: "Score a recording against the trained accents",
	Long: `Score a speech recording against every trained accent prototype.

A file argument is decoded directly, as an uploaded file would be. Passing "-"
reads a recording from stdin; recordings that fail direct decoding are retried
with each configured fallback format (wav, webm, ogg, mp3, m4a by default),
starting with --format when given.

Examples:
  # Score an uploaded file
  accentid score sample.wav

  # Score a browser recording piped from another tool
  cat recording.webm | accentid score - --format webm

  # JSON output with the per-accent breakdown
  accentid score sample.mp3 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "",
		"container format hint for recordings (webm, ogg, mp3, m4a, wav)")
	scoreCmd.Flags().BoolVar(&scoreRecording, "recording", false,
		"treat the file as a recording and allow fallback decoding")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 2*time.Minute,
		"abort scoring after this long (0 means no limit)")
}

func runScore(cmd *cobra.Command, args []string) error {
	application, err := newApplication("score")
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd.Context(), scoreTimeout)
	defer cancel()

	input := args[0]
	var report *app.ScoreReport
	if input == "-" || scoreRecording {
		data, err := readInput(input)
		if err != nil {
			return err
		}
		hint := scoreFormat
		if hint == "" && input != "-" {
			hint = strings.TrimPrefix(filepath.Ext(input), ".")
		}
		report, err = application.ScoreBytes(ctx, data, hint)
		if err != nil {
			return err
		}
	} else {
		report, err = application.ScoreFile(ctx, input)
		if err != nil {
			return err
		}
	}

	if report.Result.Empty {
		printWarning("no speech detected after trimming silence; scores are for a silent input")
	}

	if err := application.OutputScore(report); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}
	return nil
}
