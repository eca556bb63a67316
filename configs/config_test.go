package configs

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), config)
	assert.Equal(t, 16000, config.Audio.SampleRate)
	assert.Equal(t, 30.0, config.Audio.TopDB)
	assert.Equal(t, 13, config.Features.NMFCC)
	assert.Equal(t, []string{"wav", "webm", "ogg", "mp3", "m4a"}, config.Audio.FallbackFormats)
	assert.Equal(t, DefaultModelPath, config.Model.Path)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("features.n_mfcc", 20)
	v.Set("audio.decode_timeout", "3s")
	v.Set("output.format", "json")

	config, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 20, config.Features.NMFCC)
	assert.Equal(t, 3*time.Second, config.Audio.DecodeTimeout)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, 20, config.FeatureSettings().NumCoefficients)
	assert.Equal(t, 3*time.Second, config.AudioSettings().DecodeTimeout)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"zero sample rate", "audio.sample_rate", 0},
		{"no coefficients", "features.n_mfcc", 0},
		{"unknown backend", "features.backend", "torch"},
		{"unknown output format", "output.format", "xml"},
		{"empty model path", "model.path", " "},
		{"unknown log level", "log_level", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := LoadConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestWriteExampleRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExample(&buf))
	assert.Contains(t, buf.String(), "decode_timeout: 15s")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(&buf))

	config, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}
