package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/viper"

	"github.com/kim210603/accent-recognition/configs"
	"github.com/kim210603/accent-recognition/internal/app"
)

// newApplication loads the merged configuration and builds the app for one
// command invocation.
func newApplication(command string) (*app.App, error) {
	cfg, err := configs.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := app.ConfigureLogging(cfg); err != nil {
		return nil, err
	}
	if !cfg.Output.Colors {
		disableColors()
	}

	return app.NewApp(&app.Context{
		OutputFile: outputFile,
		Colors:     cfg.Output.Colors && app.ShouldColorize(os.Stdout),
		Config:     cfg,
		Logger: logging.WithFields(logging.Fields{
			"component": "cli",
			"command":   command,
		}),
	})
}

// commandContext is cancelled on interrupt and, when timeout is positive,
// after timeout.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// readInput reads a whole recording from path, or from stdin when path is "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read recording from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
