package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/kim210603/accent-recognition/configs"
	"github.com/kim210603/accent-recognition/internal/prototype"
	"github.com/kim210603/accent-recognition/pkg/audio/audiotest"
)

type AppTestSuite struct {
	suite.Suite
	corpus string
	query  string
}

func (s *AppTestSuite) SetupSuite() {
	s.corpus = s.T().TempDir()

	low := filepath.Join(s.corpus, "north_east")
	high := filepath.Join(s.corpus, "irish")
	s.Require().NoError(os.Mkdir(low, 0755))
	s.Require().NoError(os.Mkdir(high, 0755))

	for i, freq := range []float64{140, 160} {
		audiotest.WriteWAV(s.T(), low, "clip"+string(rune('a'+i))+".wav", 16000, 1,
			audiotest.Tone(freq, 0.5, 0.5))
	}
	for i, freq := range []float64{900, 1000} {
		audiotest.WriteWAV(s.T(), high, "clip"+string(rune('a'+i))+".wav", 16000, 1,
			audiotest.Tone(freq, 0.5, 0.5))
	}

	s.query = audiotest.WriteWAV(s.T(), s.T().TempDir(), "query.wav", 16000, 1,
		audiotest.Silence(0.2), audiotest.Tone(950, 0.5, 0.5))
}

func (s *AppTestSuite) newApp(format string, out *bytes.Buffer) *App {
	cfg := configs.GetDefaultConfig()
	cfg.Model.Path = filepath.Join(s.T().TempDir(), "prototypes.msgpack")
	cfg.Model.CorpusDir = s.corpus

	app, err := NewApp(&Context{
		Config:       cfg,
		OutputFormat: format,
		Out:          out,
	})
	s.Require().NoError(err)
	return app
}

func (s *AppTestSuite) TestScoreBeforeTrainingIsMissingModel() {
	app := s.newApp("table", &bytes.Buffer{})

	_, err := app.ScoreFile(context.Background(), s.query)
	s.Require().Error(err)
	s.True(prototype.IsMissingModel(err))
}

func (s *AppTestSuite) TestTrainThenScore() {
	out := &bytes.Buffer{}
	app := s.newApp("table", out)

	summary, err := app.Train(context.Background(), "", nil)
	s.Require().NoError(err)
	s.Equal(app.Store().Path(), summary.ModelPath)
	s.Len(summary.Labels, 2)
	s.Equal(13, summary.Metadata.NumCoefficients)
	s.Equal(16000, summary.Metadata.SampleRate)
	s.FileExists(summary.ModelPath)

	report, err := app.ScoreFile(context.Background(), s.query)
	s.Require().NoError(err)
	s.Equal("irish", report.Result.Best)
	s.False(report.Result.Empty)

	s.Require().NoError(app.OutputScore(report))
	s.Contains(out.String(), "Best match: Irish")
	s.Contains(out.String(), "North East")
}

func (s *AppTestSuite) TestSecondAppLoadsSavedModel() {
	trainer := s.newApp("table", &bytes.Buffer{})
	_, err := trainer.Train(context.Background(), "", nil)
	s.Require().NoError(err)

	out := &bytes.Buffer{}
	cfg := *trainer.Config()
	scorerApp, err := NewApp(&Context{Config: &cfg, OutputFormat: "json", Out: out})
	s.Require().NoError(err)

	model, err := scorerApp.Model()
	s.Require().NoError(err)
	s.Equal([]string{"irish", "north_east"}, model.Table.Labels())

	again, err := scorerApp.Model()
	s.Require().NoError(err)
	s.Same(model, again)

	data, err := os.ReadFile(s.query)
	s.Require().NoError(err)
	report, err := scorerApp.ScoreBytes(context.Background(), data, "")
	s.Require().NoError(err)
	s.Equal("recording", report.Source)

	s.Require().NoError(scorerApp.OutputScore(report))
	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(out.Bytes(), &decoded))
	s.Equal("irish", decoded["best"])
	s.Equal("Irish", decoded["best_display"])
}

func (s *AppTestSuite) TestSilentQueryIsFlaggedEmpty() {
	app := s.newApp("table", &bytes.Buffer{})
	_, err := app.Train(context.Background(), "", nil)
	s.Require().NoError(err)

	silent := audiotest.WriteWAV(s.T(), s.T().TempDir(), "silent.wav", 16000, 1, audiotest.Silence(0.5))
	report, err := app.ScoreFile(context.Background(), silent)
	s.Require().NoError(err)
	s.True(report.Result.Empty)
	s.Len(report.Result.Ranking, 2)
}

func (s *AppTestSuite) TestIncompatibleModelIsRejected() {
	trainer := s.newApp("table", &bytes.Buffer{})
	_, err := trainer.Train(context.Background(), "", nil)
	s.Require().NoError(err)

	cfg := *trainer.Config()
	cfg.Features.NMFCC = 20
	other, err := NewApp(&Context{Config: &cfg, Out: &bytes.Buffer{}})
	s.Require().NoError(err)

	_, err = other.Model()
	s.Require().Error(err)

	var missing *prototype.MissingModelError
	s.Require().True(errors.As(err, &missing))
	s.Equal(prototype.ErrCodeModelIncompatible, missing.Code)
}

func (s *AppTestSuite) TestTrainOnMissingCorpus() {
	app := s.newApp("table", &bytes.Buffer{})

	_, err := app.Train(context.Background(), filepath.Join(s.T().TempDir(), "nope"), nil)
	s.Require().Error(err)
	s.True(prototype.IsCorpusError(err))
	s.NoFileExists(app.Store().Path())
}

func (s *AppTestSuite) TestOutputToFile() {
	app := s.newApp("yaml", &bytes.Buffer{})
	app.ctx.OutputFile = filepath.Join(s.T().TempDir(), "reports", "train.yaml")

	summary, err := app.Train(context.Background(), "", nil)
	s.Require().NoError(err)
	s.Require().NoError(app.OutputTraining(summary))

	data, err := os.ReadFile(app.ctx.OutputFile)
	s.Require().NoError(err)
	s.Contains(string(data), "model_path")
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Irish", DisplayLabel("irish"))
	assert.Equal(t, "North East", DisplayLabel("north_east"))
	assert.Equal(t, "South West", DisplayLabel("south-west"))
}

func TestRoundUsesConfiguredPrecision(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	cfg.Output.Precision = 1

	app, err := NewApp(&Context{Config: cfg, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.Equal(t, 12.3, app.round(12.345))
	assert.Equal(t, "12.3", app.formatFloat(12.345))
	assert.Equal(t, []float64{1.0, -0.5}, app.roundAll([]float64{0.96, -0.49}))
}

func TestNewAppRequiresConfig(t *testing.T) {
	_, err := NewApp(&Context{})
	assert.Error(t, err)
}
