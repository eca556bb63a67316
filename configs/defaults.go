package configs

import (
	"io"
	"slices"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/config"
)

// DefaultModelPath is where train writes and score reads prototypes
const DefaultModelPath = "models/prototypes.msgpack"

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()

	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", defaults.Verbose)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", defaults.LogLevel)
	}
	if !v.IsSet("log_file") {
		v.SetDefault("log_file", defaults.LogFile)
	}

	// Audio defaults
	if !v.IsSet("audio.sample_rate") {
		v.SetDefault("audio.sample_rate", defaults.Audio.SampleRate)
	}
	if !v.IsSet("audio.top_db") {
		v.SetDefault("audio.top_db", defaults.Audio.TopDB)
	}
	if !v.IsSet("audio.trim_frame_length") {
		v.SetDefault("audio.trim_frame_length", defaults.Audio.TrimFrameLength)
	}
	if !v.IsSet("audio.trim_hop_length") {
		v.SetDefault("audio.trim_hop_length", defaults.Audio.TrimHopLength)
	}
	if !v.IsSet("audio.decode_timeout") {
		v.SetDefault("audio.decode_timeout", defaults.Audio.DecodeTimeout)
	}
	if !v.IsSet("audio.ffmpeg_path") {
		v.SetDefault("audio.ffmpeg_path", defaults.Audio.FFmpegPath)
	}
	if !v.IsSet("audio.fallback_formats") {
		v.SetDefault("audio.fallback_formats", defaults.Audio.FallbackFormats)
	}

	// Feature defaults
	if !v.IsSet("features.n_mfcc") {
		v.SetDefault("features.n_mfcc", defaults.Features.NMFCC)
	}
	if !v.IsSet("features.n_fft") {
		v.SetDefault("features.n_fft", defaults.Features.NFFT)
	}
	if !v.IsSet("features.hop_length") {
		v.SetDefault("features.hop_length", defaults.Features.HopLength)
	}
	if !v.IsSet("features.n_mels") {
		v.SetDefault("features.n_mels", defaults.Features.NMels)
	}
	if !v.IsSet("features.fmin") {
		v.SetDefault("features.fmin", defaults.Features.FMin)
	}
	if !v.IsSet("features.fmax") {
		v.SetDefault("features.fmax", defaults.Features.FMax)
	}
	if !v.IsSet("features.top_db") {
		v.SetDefault("features.top_db", defaults.Features.TopDB)
	}
	if !v.IsSet("features.backend") {
		v.SetDefault("features.backend", defaults.Features.Backend)
	}

	// Model defaults
	if !v.IsSet("model.path") {
		v.SetDefault("model.path", defaults.Model.Path)
	}
	if !v.IsSet("model.corpus_dir") {
		v.SetDefault("model.corpus_dir", defaults.Model.CorpusDir)
	}

	// Output defaults
	if !v.IsSet("output.format") {
		v.SetDefault("output.format", defaults.Output.Format)
	}
	if !v.IsSet("output.precision") {
		v.SetDefault("output.precision", defaults.Output.Precision)
	}
	if !v.IsSet("output.colors") {
		v.SetDefault("output.colors", defaults.Output.Colors)
	}
	if !v.IsSet("output.progress") {
		v.SetDefault("output.progress", defaults.Output.Progress)
	}
	if !v.IsSet("output.metrics") {
		v.SetDefault("output.metrics", defaults.Output.Metrics)
	}
}

// GetDefaultConfig returns a complete configuration with default values
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:  false,
		LogLevel: "info",
		Audio:    GetDefaultAudioConfig(),
		Features: GetDefaultFeatureConfig(),
		Model: ModelConfig{
			Path:      DefaultModelPath,
			CorpusDir: "data/accents",
		},
		Output: GetDefaultOutputConfig(),
	}
}

// GetDefaultAudioConfig returns the default decoding settings
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:      audio.DefaultSampleRate,
		TopDB:           audio.DefaultTopDB,
		TrimFrameLength: audio.DefaultFrameLength,
		TrimHopLength:   audio.DefaultHopLength,
		DecodeTimeout:   audio.DefaultDecodeTimeout,
		FFmpegPath:      "ffmpeg",
		FallbackFormats: slices.Clone(audio.DefaultFallbackFormats),
	}
}

// GetDefaultFeatureConfig returns the default MFCC settings
func GetDefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		NMFCC:     config.DefaultNumCoefficients,
		NFFT:      config.DefaultFFTSize,
		HopLength: config.DefaultHopSize,
		NMels:     config.DefaultNumMels,
		TopDB:     config.DefaultTopDB,
		Backend:   string(config.BackendNative),
	}
}

// GetDefaultOutputConfig returns the default output settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Format:    "table",
		Precision: 2,
		Colors:    true,
		Progress:  true,
	}
}

// WriteExample writes the default configuration as YAML
func WriteExample(w io.Writer) error {
	defaults := GetDefaultConfig()

	// Durations are written the way viper reads them back.
	doc := map[string]any{
		"verbose":   defaults.Verbose,
		"log_level": defaults.LogLevel,
		"log_file":  defaults.LogFile,
		"audio": map[string]any{
			"sample_rate":       defaults.Audio.SampleRate,
			"top_db":            defaults.Audio.TopDB,
			"trim_frame_length": defaults.Audio.TrimFrameLength,
			"trim_hop_length":   defaults.Audio.TrimHopLength,
			"decode_timeout":    defaults.Audio.DecodeTimeout.String(),
			"ffmpeg_path":       defaults.Audio.FFmpegPath,
			"fallback_formats":  defaults.Audio.FallbackFormats,
		},
		"features": defaults.Features,
		"model":    defaults.Model,
		"output":   defaults.Output,
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}
