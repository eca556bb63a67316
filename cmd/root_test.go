package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "model.path", configKey("model"))
	assert.Equal(t, "features.n_mfcc", configKey("n-mfcc"))
	assert.Equal(t, "output.format", configKey("output"))
	assert.Equal(t, "output_file", configKey("output-file"))
	assert.Equal(t, "timeout", configKey("timeout"))
}

func TestBindFlags(t *testing.T) {
	command := &cobra.Command{Use: "test"}
	command.Flags().String("model", "", "")
	command.Flags().Int("n-mfcc", 0, "")
	command.Flags().String("backend", "", "")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
model:
  path: from-config.msgpack
features:
  backend: native
`)))

	require.NoError(t, command.Flags().Parse([]string{"--n-mfcc", "20", "--backend", "sonar"}))
	require.NoError(t, bindFlags(command, v))

	model, err := command.Flags().GetString("model")
	require.NoError(t, err)
	assert.Equal(t, "from-config.msgpack", model, "unset flag picks up the configured value")

	assert.Equal(t, 20, v.GetInt("features.n_mfcc"))
	assert.Equal(t, "sonar", v.GetString("features.backend"), "explicit flag wins over config")
}

func TestPerformanceTimer(t *testing.T) {
	timer := NewPerformanceTimer()

	timer.StartEvent("decoding")
	time.Sleep(2 * time.Millisecond)
	timer.EndEvent("decoding")

	timer.StartEvent("writing")
	timer.EndEvent("writing")

	timer.StartEvent("unfinished")
	timer.EndEvent("never-started")

	assert.Equal(t, []string{"decoding", "writing"}, timer.Events())
	assert.GreaterOrEqual(t, timer.GetDuration("decoding"), 2*time.Millisecond)
	assert.Zero(t, timer.GetDuration("unfinished"))

	slowest, duration := timer.Slowest()
	assert.Equal(t, "decoding", slowest)
	assert.Equal(t, timer.GetDuration("decoding"), duration)
	assert.GreaterOrEqual(t, timer.GetTotalDuration(), duration)
}

func TestConfigInitWritesExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "accentid.yaml")

	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "audio")
	assert.Contains(t, decoded, "features")
	assert.Contains(t, decoded, "model")

	rootCmd.SetArgs([]string{"config", "init", path})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestReadInputMissingFile(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
