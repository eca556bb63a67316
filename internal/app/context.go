package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/kim210603/accent-recognition/configs"
	"github.com/kim210603/accent-recognition/internal/prototype"
	"github.com/kim210603/accent-recognition/internal/similarity"
	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint"
)

// Context holds the per-invocation settings a command hands to the app
type Context struct {
	// CLI arguments
	OutputFile   string
	OutputFormat string
	Colors       bool
	Out          io.Writer

	// Runtime context
	Config *configs.Config
	Logger logging.Logger
}

// App wires the fingerprint pipeline, the prototype store and the scorer.
// The prototype table is loaded at most once per App and shared by every
// score request after that.
type App struct {
	ctx       *Context
	config    *configs.Config
	generator *fingerprint.FingerprintGenerator
	store     *prototype.Store
	logger    logging.Logger

	mu     sync.Mutex
	model  *prototype.Model
	scorer *similarity.Scorer
}

// TrainingSummary is what a training run produced and where it was saved
type TrainingSummary struct {
	ModelPath string                  `json:"model_path" yaml:"model_path"`
	Corpus    string                  `json:"corpus" yaml:"corpus"`
	Metadata  prototype.Metadata      `json:"metadata" yaml:"metadata"`
	Labels    []prototype.LabelReport `json:"labels" yaml:"labels"`
	Omitted   []string                `json:"omitted,omitempty" yaml:"omitted,omitempty"`
	Duration  time.Duration           `json:"duration" yaml:"duration"`
}

// ScoreReport is a scored query together with the fingerprint it came from
type ScoreReport struct {
	Source      string                        `json:"source" yaml:"source"`
	Fingerprint *fingerprint.AudioFingerprint `json:"-" yaml:"-"`
	Result      *similarity.Result            `json:"result" yaml:"result"`
}

// NewApp creates an application from a loaded configuration. Normalizer
// options are passed through to the fingerprint generator.
func NewApp(ctx *Context, opts ...audio.NormalizerOption) (*App, error) {
	if ctx == nil || ctx.Config == nil {
		return nil, fmt.Errorf("application context requires a configuration")
	}
	if ctx.Logger == nil {
		ctx.Logger = logging.WithFields(logging.Fields{
			"component": "app",
		})
	}
	if ctx.OutputFormat == "" {
		ctx.OutputFormat = ctx.Config.Output.Format
	}
	if ctx.Out == nil {
		ctx.Out = os.Stdout
	}

	generator, err := fingerprint.NewFingerprintGenerator(ctx.Config.AudioSettings(), ctx.Config.FeatureSettings(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprint generator: %w", err)
	}

	ctx.Logger.Debug("Application initialized", logging.Fields{
		"model_path":    ctx.Config.Model.Path,
		"output_format": ctx.OutputFormat,
		"sample_rate":   generator.SampleRate(),
		"n_mfcc":        generator.Dimension(),
		"backend":       string(generator.Backend()),
	})

	return &App{
		ctx:       ctx,
		config:    ctx.Config,
		generator: generator,
		store:     prototype.NewStore(ctx.Config.Model.Path),
		logger:    ctx.Logger,
	}, nil
}

// ConfigureLogging applies the configured level and, when a log file is
// set, points the root logger at it so the file can be rotated with SIGHUP.
func ConfigureLogging(cfg *configs.Config) error {
	level := strings.ToLower(cfg.LogLevel)
	if cfg.Verbose {
		level = "debug"
	}

	switch level {
	case "debug":
		logging.SetLevel(logging.DebugLevel)
	case "error":
		logging.SetLevel(logging.ErrorLevel)
	default:
		logging.SetLevel(logging.InfoLevel)
	}

	if cfg.LogFile == "" {
		return nil
	}

	if err := rootlogger.Configure(logger.LogOptions{
		Out:          cfg.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	}); err != nil {
		return fmt.Errorf("failed configuring log file %s: %w", cfg.LogFile, err)
	}
	return nil
}

// Config returns the application configuration
func (a *App) Config() *configs.Config {
	return a.config
}

// Generator returns the fingerprint pipeline used for training and scoring
func (a *App) Generator() *fingerprint.FingerprintGenerator {
	return a.generator
}

// Store returns the prototype store
func (a *App) Store() *prototype.Store {
	return a.store
}

// Train builds prototypes from the corpus at corpusDir and saves them,
// replacing any previous model. An empty corpusDir uses the configured one.
func (a *App) Train(ctx context.Context, corpusDir string, progress func(prototype.Progress)) (*TrainingSummary, error) {
	if corpusDir == "" {
		corpusDir = a.config.Model.CorpusDir
	}
	start := time.Now()

	corpus, err := prototype.NewDirCorpus(corpusDir)
	if err != nil {
		return nil, err
	}

	builder := prototype.NewBuilder(a.generator,
		prototype.WithProgress(progress),
		prototype.WithBuilderLogger(a.logger.WithFields(logging.Fields{
			"component": "prototype_builder",
			"corpus":    corpusDir,
		})),
	)

	table, report, err := builder.Build(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	model := &prototype.Model{
		Table: table,
		Metadata: prototype.Metadata{
			SampleRate:      a.generator.SampleRate(),
			NumCoefficients: a.generator.Dimension(),
			Backend:         string(a.generator.Backend()),
			CreatedAt:       time.Now().UTC(),
		},
	}
	if err := a.store.Save(model); err != nil {
		return nil, fmt.Errorf("failed to save prototypes: %w", err)
	}

	if err := a.setModel(model); err != nil {
		return nil, err
	}

	summary := &TrainingSummary{
		ModelPath: a.store.Path(),
		Corpus:    corpus.Root(),
		Metadata:  model.Metadata,
		Labels:    report.Labels,
		Omitted:   report.Omitted,
		Duration:  time.Since(start),
	}

	a.logger.Info("Training completed", logging.Fields{
		"model_path": summary.ModelPath,
		"labels":     table.Len(),
		"omitted":    len(report.Omitted),
		"duration":   summary.Duration.String(),
	})
	a.emitTrainingMetrics(summary)

	return summary, nil
}

// Model returns the prototype model, loading it from the store on first use.
// A failed load is not cached, so a later call retries.
func (a *App) Model() (*prototype.Model, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model != nil {
		return a.model, nil
	}

	model, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if err := a.installLocked(model); err != nil {
		return nil, err
	}
	return model, nil
}

// Scorer returns the scorer over the loaded prototypes
func (a *App) Scorer() (*similarity.Scorer, error) {
	if _, err := a.Model(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scorer, nil
}

// ScoreFile scores an audio file. Files take the direct decode path only.
func (a *App) ScoreFile(ctx context.Context, path string) (*ScoreReport, error) {
	scorer, err := a.Scorer()
	if err != nil {
		return nil, err
	}

	fp, err := a.generator.FromFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return a.score(scorer, path, fp)
}

// ScoreBytes scores an in-memory recording, falling back to forced container
// formats when direct decoding fails. hint names the most likely format.
func (a *App) ScoreBytes(ctx context.Context, data []byte, hint string) (*ScoreReport, error) {
	scorer, err := a.Scorer()
	if err != nil {
		return nil, err
	}

	fp, err := a.generator.FromBytes(ctx, data, hint)
	if err != nil {
		return nil, err
	}
	return a.score(scorer, "recording", fp)
}

func (a *App) score(scorer *similarity.Scorer, source string, fp *fingerprint.AudioFingerprint) (*ScoreReport, error) {
	var (
		result *similarity.Result
		err    error
	)
	if fp.Empty {
		result, err = scorer.ScoreEmpty()
	} else {
		result, err = scorer.Score(fp.Vector)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to score %s: %w", source, err)
	}

	report := &ScoreReport{
		Source:      source,
		Fingerprint: fp,
		Result:      result,
	}
	a.emitScoreMetrics(report)
	return report, nil
}

func (a *App) setModel(model *prototype.Model) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.installLocked(model)
}

// installLocked checks that model was trained the way the generator extracts
// features and builds its scorer. Vectors from different settings are not
// comparable, so a mismatch is treated like a missing model.
func (a *App) installLocked(model *prototype.Model) error {
	meta := model.Metadata
	var problems []string
	if model.Table.Dimension() != a.generator.Dimension() {
		problems = append(problems, fmt.Sprintf("dimension %d, extractor produces %d", model.Table.Dimension(), a.generator.Dimension()))
	}
	if meta.SampleRate != 0 && meta.SampleRate != a.generator.SampleRate() {
		problems = append(problems, fmt.Sprintf("sample rate %d, normalizer uses %d", meta.SampleRate, a.generator.SampleRate()))
	}
	if meta.Backend != "" && meta.Backend != string(a.generator.Backend()) {
		problems = append(problems, fmt.Sprintf("backend %s, extractor uses %s", meta.Backend, a.generator.Backend()))
	}
	if len(problems) > 0 {
		return prototype.NewMissingModelError(a.store.Path(), prototype.ErrCodeModelIncompatible,
			"model was trained with "+strings.Join(problems, "; ")+"; retrain it", nil)
	}

	scorer, err := similarity.NewScorer(model.Table)
	if err != nil {
		return err
	}
	a.model = model
	a.scorer = scorer
	return nil
}
