package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ACCENTID"

var (
	configFile   string
	verbose      bool
	logLevel     string
	logFile      string
	outputFormat string
	outputFile   string
	modelPath    string
)

// flagKeys maps flag names to the configuration keys they override.
// Flags not listed here bind to their own name.
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"log-level":   "log_level",
	"log-file":    "log_file",
	"output":      "output.format",
	"model":       "model.path",
	"corpus":      "model.corpus_dir",
	"precision":   "output.precision",
	"colors":      "output.colors",
	"progress":    "output.progress",
	"metrics":     "output.metrics",
	"backend":     "features.backend",
	"n-mfcc":      "features.n_mfcc",
	"sample-rate": "audio.sample_rate",
	"top-db":      "audio.top_db",
	"ffmpeg":      "audio.ffmpeg_path",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "accentid",
	Short: "Accent similarity engine",
	Long: `Score how closely a speech recording matches a set of trained accents.

Prototypes are trained from a corpus laid out as one directory per accent:

  data/accents/
    irish/      clip1.wav clip2.mp3 ...
    scottish/   ...

Every clip is decoded, resampled to mono 16 kHz, trimmed of leading and
trailing silence, and summarized as its mean MFCC vector. Each accent's
prototype is the mean of its clips. A query is scored by its Euclidean
distance to every prototype and reported as a confidence percentage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/accentid/accentid.yaml)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to this file (reopened on SIGHUP)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (table, json, yaml, csv)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "",
		"write results to this file instead of stdout")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "",
		"prototype model file (default is models/prototypes.msgpack)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("model.path", rootCmd.PersistentFlags().Lookup("model"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "accentid"))
		viper.AddConfigPath("/etc/accentid")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("accentid")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each cobra flag to its configuration key. A flag the user
// did not set picks up the configured value so commands can read either.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := configKey(f.Name)
		envVarSuffix := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))

		if !f.Changed && v.IsSet(key) {
			val := v.Get(key)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(key, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func configKey(flagName string) string {
	if key, ok := flagKeys[flagName]; ok {
		return key
	}
	return strings.ReplaceAll(flagName, "-", "_")
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
