package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint"
)

var (
	featuresFormat  string
	featuresTimeout time.Duration
)

var featuresCmd = &cobra.Command{
	Use:   "features <audio-file | ->",
	Short: "Print the MFCC feature vector of a clip",
	Long: `Run a clip through the same pipeline used for training and scoring and
print its mean MFCC vector. Useful for checking why a clip scores the way it
does, or for comparing extraction backends.

Examples:
  accentid features sample.wav
  accentid features sample.wav --backend sonar -o json
  cat recording.webm | accentid features - --format webm`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVarP(&featuresFormat, "format", "f", "",
		"container format hint for stdin input")
	featuresCmd.Flags().String("backend", "",
		"MFCC backend (native, sonar)")
	featuresCmd.Flags().Int("n-mfcc", 0,
		"number of coefficients (default 13)")
	featuresCmd.Flags().DurationVar(&featuresTimeout, "timeout", time.Minute,
		"abort extraction after this long (0 means no limit)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	application, err := newApplication("features")
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd.Context(), featuresTimeout)
	defer cancel()

	generator := application.Generator()

	var fp *fingerprint.AudioFingerprint
	if args[0] == "-" {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		fp, err = generator.FromBytes(ctx, data, featuresFormat)
		if err != nil {
			return err
		}
	} else {
		fp, err = generator.FromFile(ctx, args[0])
		if err != nil {
			return err
		}
	}

	if err := application.OutputFingerprint(fp); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}
	return nil
}
