package configs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/config"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	// Decoding and normalization
	Audio AudioConfig `mapstructure:"audio" yaml:"audio"`

	// Feature extraction
	Features FeatureConfig `mapstructure:"features" yaml:"features"`

	// Prototype model location
	Model ModelConfig `mapstructure:"model" yaml:"model"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// AudioConfig contains audio decoding settings
type AudioConfig struct {
	SampleRate      int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	TopDB           float64       `mapstructure:"top_db" yaml:"top_db"`
	TrimFrameLength int           `mapstructure:"trim_frame_length" yaml:"trim_frame_length"`
	TrimHopLength   int           `mapstructure:"trim_hop_length" yaml:"trim_hop_length"`
	DecodeTimeout   time.Duration `mapstructure:"decode_timeout" yaml:"decode_timeout"`
	FFmpegPath      string        `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	FallbackFormats []string      `mapstructure:"fallback_formats" yaml:"fallback_formats"`
}

// FeatureConfig contains MFCC extraction settings
type FeatureConfig struct {
	NMFCC     int     `mapstructure:"n_mfcc" yaml:"n_mfcc"`
	NFFT      int     `mapstructure:"n_fft" yaml:"n_fft"`
	HopLength int     `mapstructure:"hop_length" yaml:"hop_length"`
	NMels     int     `mapstructure:"n_mels" yaml:"n_mels"`
	FMin      float64 `mapstructure:"fmin" yaml:"fmin"`
	FMax      float64 `mapstructure:"fmax" yaml:"fmax"`
	TopDB     float64 `mapstructure:"top_db" yaml:"top_db"`
	Backend   string  `mapstructure:"backend" yaml:"backend"`
}

// ModelConfig locates the trained prototypes and the corpus they come from
type ModelConfig struct {
	Path      string `mapstructure:"path" yaml:"path"`
	CorpusDir string `mapstructure:"corpus_dir" yaml:"corpus_dir"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Precision int    `mapstructure:"precision" yaml:"precision"`
	Colors    bool   `mapstructure:"colors" yaml:"colors"`
	Progress  bool   `mapstructure:"progress" yaml:"progress"`
	Metrics   bool   `mapstructure:"metrics" yaml:"metrics"`
}

// OutputFormats lists the accepted values of output.format
var OutputFormats = []string{"table", "json", "yaml", "csv"}

// LoadConfig fills in defaults, decodes the configuration held by v and validates it
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	setDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if err := config.AudioSettings().Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	if err := config.FeatureSettings().Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}

	if strings.TrimSpace(config.Model.Path) == "" {
		return fmt.Errorf("model path must not be empty")
	}

	if !slices.Contains(OutputFormats, config.Output.Format) {
		return fmt.Errorf("unsupported output format %q (expected one of %s)", config.Output.Format, strings.Join(OutputFormats, ", "))
	}

	if config.Output.Precision < 0 || config.Output.Precision > 12 {
		return fmt.Errorf("output precision must be between 0 and 12")
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("unsupported log level %q", config.LogLevel)
	}

	return nil
}

// AudioSettings converts the audio section to normalizer settings
func (c *Config) AudioSettings() audio.Config {
	return audio.Config{
		SampleRate:      c.Audio.SampleRate,
		TopDB:           c.Audio.TopDB,
		FrameLength:     c.Audio.TrimFrameLength,
		HopLength:       c.Audio.TrimHopLength,
		DecodeTimeout:   c.Audio.DecodeTimeout,
		FFmpegPath:      c.Audio.FFmpegPath,
		FallbackFormats: slices.Clone(c.Audio.FallbackFormats),
	}
}

// FeatureSettings converts the features section to extractor settings
func (c *Config) FeatureSettings() config.FeatureConfig {
	return config.FeatureConfig{
		NumCoefficients: c.Features.NMFCC,
		FFTSize:         c.Features.NFFT,
		HopSize:         c.Features.HopLength,
		NumMels:         c.Features.NMels,
		FMin:            c.Features.FMin,
		FMax:            c.Features.FMax,
		TopDB:           c.Features.TopDB,
		Backend:         config.Backend(c.Features.Backend),
	}
}
