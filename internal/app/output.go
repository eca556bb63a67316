package app

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/floats"

	"github.com/kim210603/accent-recognition/internal/prototype"
	"github.com/kim210603/accent-recognition/pkg/audio"
	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint"
)

var labelCaser = cases.Title(language.English)

var bestColors = text.Colors{text.Bold, text.FgGreen}

// DisplayLabel turns a corpus directory name such as "north_east" into
// "North East".
func DisplayLabel(label string) string {
	spaced := strings.NewReplacer("_", " ", "-", " ").Replace(label)
	return labelCaser.String(spaced)
}

// ShouldColorize reports whether writer is a terminal
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// OutputScore writes a score report in the configured format
func (a *App) OutputScore(report *ScoreReport) error {
	result := report.Result

	ranking := make([]map[string]any, 0, len(result.Ranking))
	confidences := make(map[string]any, len(result.Ranking))
	for _, row := range result.Ranking {
		ranking = append(ranking, map[string]any{
			"label":      row.Label,
			"display":    DisplayLabel(row.Label),
			"confidence": a.round(row.Confidence),
			"distance":   a.round(row.Distance),
		})
		confidences[row.Label] = a.round(row.Confidence)
	}

	data := map[string]any{
		"id":              result.ID,
		"source":          report.Source,
		"best":            result.Best,
		"best_display":    DisplayLabel(result.Best),
		"best_confidence": a.round(result.BestConfidence),
		"confidences":     confidences,
		"ranking":         ranking,
		"empty":           result.Empty,
		"timestamp":       time.Now().UTC(),
	}
	if report.Fingerprint != nil {
		data["duration_seconds"] = a.round(report.Fingerprint.Duration.Seconds())
	}

	return a.outputResults(data, func() string {
		return a.scoreTable(report)
	})
}

// OutputTraining writes a training summary in the configured format
func (a *App) OutputTraining(summary *TrainingSummary) error {
	data := map[string]any{
		"model_path":       summary.ModelPath,
		"corpus":           summary.Corpus,
		"labels":           summary.Labels,
		"omitted":          summary.Omitted,
		"sample_rate":      summary.Metadata.SampleRate,
		"n_mfcc":           summary.Metadata.NumCoefficients,
		"backend":          summary.Metadata.Backend,
		"created_at":       summary.Metadata.CreatedAt,
		"duration_seconds": a.round(summary.Duration.Seconds()),
	}

	return a.outputResults(data, func() string {
		return a.trainingTable(summary)
	})
}

// OutputModel writes the prototypes of a loaded model
func (a *App) OutputModel(model *prototype.Model) error {
	entries := model.Table.Entries()
	prototypes := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		prototypes = append(prototypes, map[string]any{
			"label":    entry.Label,
			"display":  DisplayLabel(entry.Label),
			"clips":    entry.Clips,
			"norm":     a.round(floats.Norm(entry.Centroid, 2)),
			"centroid": a.roundAll(entry.Centroid),
		})
	}

	data := map[string]any{
		"model_path": a.store.Path(),
		"dimension":  model.Table.Dimension(),
		"metadata":   model.Metadata,
		"prototypes": prototypes,
	}

	return a.outputResults(data, func() string {
		return a.modelTable(model)
	})
}

// OutputFingerprint writes the feature vector of one clip
func (a *App) OutputFingerprint(fp *fingerprint.AudioFingerprint) error {
	data := map[string]any{
		"id":               fp.ID,
		"source":           fp.Source,
		"sample_rate":      fp.SampleRate,
		"duration_seconds": a.round(fp.Duration.Seconds()),
		"empty":            fp.Empty,
		"hash":             fp.Hash,
		"vector":           a.roundAll(fp.Vector),
	}

	return a.outputResults(data, func() string {
		tw := a.newTable()
		tw.SetTitle(fmt.Sprintf("%s (%.2fs, hash %s)", fp.Source, fp.Duration.Seconds(), fp.Hash))
		tw.AppendHeader(table.Row{"Coefficient", "Value"})
		for i, value := range fp.Vector {
			tw.AppendRow(table.Row{i, a.formatFloat(value)})
		}
		if fp.Empty {
			tw.AppendFooter(table.Row{"", "silent input, zero vector"})
		}
		return tw.Render()
	})
}

// OutputWaveform describes a normalized waveform
func (a *App) OutputWaveform(source string, waveform *audio.Waveform) error {
	data := map[string]any{
		"source":           source,
		"sample_rate":      waveform.SampleRate,
		"samples":          len(waveform.Samples),
		"duration_seconds": a.round(waveform.Duration().Seconds()),
		"peak":             a.round(waveform.Peak()),
		"empty":            waveform.IsEmpty(),
	}

	return a.outputResults(data, func() string {
		tw := a.newTable()
		tw.SetTitle(source)
		tw.AppendHeader(table.Row{"Property", "Value"})
		tw.AppendRows([]table.Row{
			{"Sample rate", fmt.Sprintf("%d Hz", waveform.SampleRate)},
			{"Samples", len(waveform.Samples)},
			{"Duration", fmt.Sprintf("%.3fs", waveform.Duration().Seconds())},
			{"Peak", a.formatFloat(waveform.Peak())},
			{"Silent", waveform.IsEmpty()},
		})
		return tw.Render()
	})
}

// outputResults formats data for the structured formats, or renders the
// table built by tableFn, and writes the result to the output file or stream.
func (a *App) outputResults(data map[string]any, tableFn func() string) error {
	var formatted []byte

	var formatter output.Formatter
	switch a.ctx.OutputFormat {
	case "json":
		formatter = &output.JSONFormatter{}
	case "yaml":
		formatter = &output.YAMLFormatter{}
	case "csv":
		formatter = &output.CSVFormatter{}
	}

	if formatter != nil {
		var err error
		formatted, err = formatter.Format(data, true)
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	} else {
		formatted = []byte(tableFn() + "\n")
	}

	if a.ctx.OutputFile != "" {
		return a.writeToFile(formatted)
	}

	_, err := a.ctx.Out.Write(formatted)
	return err
}

func (a *App) scoreTable(report *ScoreReport) string {
	result := report.Result

	tw := a.newTable()
	best := fmt.Sprintf("Best match: %s (%s%%)", DisplayLabel(result.Best), a.formatFloat(result.BestConfidence))
	if a.ctx.Colors {
		best = bestColors.Sprint(best)
	}
	tw.SetTitle(best)
	tw.AppendHeader(table.Row{"#", "Accent", "Confidence", "Distance"})

	for i, row := range result.Ranking {
		label := DisplayLabel(row.Label)
		if a.ctx.Colors && row.Label == result.Best {
			label = bestColors.Sprint(label)
		}
		tw.AppendRow(table.Row{
			i + 1,
			label,
			a.formatFloat(row.Confidence) + "%",
			a.formatFloat(row.Distance),
		})
	}
	if result.Empty {
		tw.AppendFooter(table.Row{"", "no speech detected", "", ""})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

func (a *App) trainingTable(summary *TrainingSummary) string {
	tw := a.newTable()
	tw.SetTitle(fmt.Sprintf("Saved prototypes to %s", summary.ModelPath))
	tw.AppendHeader(table.Row{"Accent", "Clips", "Used", "Skipped"})

	for _, label := range summary.Labels {
		status := strconv.Itoa(len(label.Skipped))
		if label.Used == 0 {
			status = "omitted"
		}
		tw.AppendRow(table.Row{DisplayLabel(label.Label), label.Clips, label.Used, status})
	}
	tw.AppendFooter(table.Row{
		"",
		"",
		fmt.Sprintf("%d labels", len(summary.Labels)-len(summary.Omitted)),
		fmt.Sprintf("%.1fs", summary.Duration.Seconds()),
	})
	return tw.Render()
}

func (a *App) modelTable(model *prototype.Model) string {
	meta := model.Metadata

	tw := a.newTable()
	tw.SetTitle(fmt.Sprintf("%s (%d Hz, %d coefficients, %s backend)",
		a.store.Path(), meta.SampleRate, model.Table.Dimension(), meta.Backend))
	tw.AppendHeader(table.Row{"Accent", "Clips", "Centroid norm"})

	model.Table.Each(func(label string, centroid []float64) {
		tw.AppendRow(table.Row{
			DisplayLabel(label),
			model.Table.ClipCount(label),
			a.formatFloat(floats.Norm(centroid, 2)),
		})
	})
	if !meta.CreatedAt.IsZero() {
		tw.AppendFooter(table.Row{"Trained", meta.CreatedAt.Format(time.RFC3339), ""})
	}
	return tw.Render()
}

func (a *App) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func (a *App) formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', a.config.Output.Precision, 64)
}

func (a *App) round(x float64) float64 {
	scale := math.Pow(10, float64(a.config.Output.Precision))
	return math.Round(x*scale) / scale
}

func (a *App) roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = a.round(x)
	}
	return out
}

// writeToFile writes data to the configured output file
func (a *App) writeToFile(data []byte) error {
	dir := filepath.Dir(a.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(a.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	a.logger.Debug("Results written to file", logging.Fields{
		"output_file": a.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// emitScoreMetrics sends the best confidence to rootcollector when metrics
// are enabled. Confidence is reported in hundredths of a percent.
func (a *App) emitScoreMetrics(report *ScoreReport) {
	if !a.config.Output.Metrics {
		return
	}

	result := report.Result
	tags := []string{
		"best:" + result.Best,
		"empty:" + strconv.FormatBool(result.Empty),
	}
	rootcollector.Metric("accentid.score.confidence", int64(math.Round(result.BestConfidence*100)), tags)

	if report.Fingerprint != nil {
		rootcollector.Metric("accentid.score.audio.milliseconds", report.Fingerprint.Duration.Milliseconds(), tags)
	}
}

// emitTrainingMetrics sends per-label clip counts and the run time
func (a *App) emitTrainingMetrics(summary *TrainingSummary) {
	if !a.config.Output.Metrics {
		return
	}

	for _, label := range summary.Labels {
		tags := []string{"label:" + label.Label}
		rootcollector.Metric("accentid.train.clips.used", int64(label.Used), tags)
		rootcollector.Metric("accentid.train.clips.skipped", int64(len(label.Skipped)), tags)
	}
	rootcollector.Metric("accentid.train.duration.milliseconds", summary.Duration.Milliseconds(), []string{
		"backend:" + summary.Metadata.Backend,
	})
}
