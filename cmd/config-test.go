package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kim210603/accent-recognition/configs"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration from the config file, ACCENTID_*
environment variables and flags, and displays the merged result.

Examples:
  # Test with default config file
  accentid config-test

  # Test with specific config file
  accentid --config /path/to/accentid.yaml config-test`,
	Args: cobra.NoArgs,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("ACCENTID CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Log File", valueOr(config.LogFile, "(stderr only)"))

	printSection("AUDIO CONFIGURATION")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Audio.SampleRate))
	printKeyValue("Silence Threshold", fmt.Sprintf("%.1f dB", config.Audio.TopDB))
	printKeyValue("Trim Frame Length", fmt.Sprintf("%d", config.Audio.TrimFrameLength))
	printKeyValue("Trim Hop Length", fmt.Sprintf("%d", config.Audio.TrimHopLength))
	printKeyValue("Decode Timeout", config.Audio.DecodeTimeout.String())
	printKeyValue("FFmpeg Path", valueOr(config.Audio.FFmpegPath, "ffmpeg"))
	printKeyValue("Fallback Formats", fmt.Sprintf("(%d) %v", len(config.Audio.FallbackFormats), config.Audio.FallbackFormats))

	printSection("FEATURE CONFIGURATION")
	printKeyValue("Backend", config.Features.Backend)
	printKeyValue("MFCC Coefficients", fmt.Sprintf("%d", config.Features.NMFCC))
	printKeyValue("FFT Size", fmt.Sprintf("%d", config.Features.NFFT))
	printKeyValue("Hop Length", fmt.Sprintf("%d", config.Features.HopLength))
	printKeyValue("Mel Bands", fmt.Sprintf("%d", config.Features.NMels))
	fmax := "Nyquist"
	if config.Features.FMax > 0 {
		fmax = fmt.Sprintf("%.0f Hz", config.Features.FMax)
	}
	printKeyValue("Frequency Range", fmt.Sprintf("%.0f Hz - %s", config.Features.FMin, fmax))
	printKeyValue("Dynamic Range", fmt.Sprintf("%.1f dB", config.Features.TopDB))

	printSection("MODEL CONFIGURATION")
	printKeyValue("Model Path", config.Model.Path)
	printKeyValue("Corpus Directory", config.Model.CorpusDir)

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Format", config.Output.Format)
	printKeyValue("Precision", fmt.Sprintf("%d", config.Output.Precision))
	printKeyValue("Colors", fmt.Sprintf("%t", config.Output.Colors))
	printKeyValue("Progress", fmt.Sprintf("%t", config.Output.Progress))
	printKeyValue("Metrics", fmt.Sprintf("%t", config.Output.Metrics))

	fmt.Println()
	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", valueOr(viper.ConfigFileUsed(), "(none, using defaults)"))
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
