package prototype

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/floats"

	"github.com/kim210603/accent-recognition/pkg/audio/fingerprint"
)

// Fingerprinter turns a clip on disk into a feature vector
type Fingerprinter interface {
	FromFile(ctx context.Context, path string) (*fingerprint.AudioFingerprint, error)
	Dimension() int
}

// Progress describes one processed clip
type Progress struct {
	Label   string
	Clip    string
	Done    int
	Total   int
	Skipped bool
}

// SkippedClip records a clip left out of its centroid
type SkippedClip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LabelReport summarizes training for one label
type LabelReport struct {
	Label   string        `json:"label"`
	Clips   int           `json:"clips"`
	Used    int           `json:"used"`
	Skipped []SkippedClip `json:"skipped,omitempty"`
}

// BuildReport summarizes a training run. Omitted lists labels that had no
// usable clip and therefore no prototype.
type BuildReport struct {
	Labels  []LabelReport `json:"labels"`
	Omitted []string      `json:"omitted,omitempty"`
}

// Builder computes one centroid per corpus label
type Builder struct {
	fingerprinter Fingerprinter
	progress      func(Progress)
	logger        logging.Logger
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithProgress registers a callback invoked after every clip
func WithProgress(fn func(Progress)) BuilderOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// WithBuilderLogger sets the builder's logger
func WithBuilderLogger(logger logging.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a prototype builder using fp for every clip
func NewBuilder(fp Fingerprinter, opts ...BuilderOption) *Builder {
	b := &Builder{
		fingerprinter: fp,
		logger: logging.WithFields(logging.Fields{
			"component": "prototype_builder",
		}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build fingerprints every clip of every label and averages each label's
// vectors into its centroid. Clips that fail to decode or are silent are
// skipped. Labels left without clips are omitted, and a corpus where every
// label is omitted is a CorpusError.
func (b *Builder) Build(ctx context.Context, corpus Corpus) (*Table, *BuildReport, error) {
	labels, err := corpus.Labels()
	if err != nil {
		return nil, nil, err
	}

	clipsByLabel := make(map[string][]string, len(labels))
	total := 0
	for _, label := range labels {
		clips, err := corpus.Clips(label)
		if err != nil {
			return nil, nil, NewCorpusError(corpus.Root(), ErrCodeCorpusInvalid, "failed to list clips", err)
		}
		clipsByLabel[label] = clips
		total += len(clips)
	}

	b.logger.Info("Building prototypes", logging.Fields{
		"corpus": corpus.Root(),
		"labels": len(labels),
		"clips":  total,
	})

	report := &BuildReport{}
	entries := make([]Entry, 0, len(labels))
	done := 0

	for _, label := range labels {
		clips := clipsByLabel[label]
		labelReport := LabelReport{Label: label, Clips: len(clips)}
		logger := b.logger.WithFields(logging.Fields{"label": label})

		var sum []float64
		for _, clip := range clips {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			vector, reason := b.fingerprintClip(ctx, clip)
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			done++
			if reason != "" {
				logger.Warn("Skipping clip", logging.Fields{
					"clip":   clip,
					"reason": reason,
				})
				labelReport.Skipped = append(labelReport.Skipped, SkippedClip{Path: clip, Reason: reason})
				b.report(Progress{Label: label, Clip: clip, Done: done, Total: total, Skipped: true})
				continue
			}

			if sum == nil {
				sum = make([]float64, len(vector))
			}
			floats.Add(sum, vector)
			labelReport.Used++
			b.report(Progress{Label: label, Clip: clip, Done: done, Total: total})
		}

		report.Labels = append(report.Labels, labelReport)

		if labelReport.Used == 0 {
			logger.Warn("No usable clips, omitting label", logging.Fields{
				"clips": len(clips),
			})
			report.Omitted = append(report.Omitted, label)
			continue
		}

		floats.Scale(1/float64(labelReport.Used), sum)
		entries = append(entries, Entry{Label: label, Centroid: sum, Clips: labelReport.Used})

		logger.Info("Prototype computed", logging.Fields{
			"used":    labelReport.Used,
			"skipped": len(labelReport.Skipped),
		})
	}

	if len(entries) == 0 {
		return nil, report, NewCorpusError(corpus.Root(), ErrCodeNoUsableClips, "no label has a usable clip", nil)
	}

	table, err := NewTable(entries)
	if err != nil {
		return nil, report, fmt.Errorf("failed to assemble prototype table: %w", err)
	}

	return table, report, nil
}

// fingerprintClip returns the clip's vector, or a reason it cannot be used
func (b *Builder) fingerprintClip(ctx context.Context, clip string) ([]float64, string) {
	fp, err := b.fingerprinter.FromFile(ctx, clip)
	if err != nil {
		return nil, err.Error()
	}
	if fp.Empty {
		return nil, "silent after trimming"
	}
	if len(fp.Vector) != b.fingerprinter.Dimension() {
		return nil, fmt.Sprintf("vector has dimension %d, expected %d", len(fp.Vector), b.fingerprinter.Dimension())
	}
	return fp.Vector, ""
}

func (b *Builder) report(p Progress) {
	if b.progress != nil {
		b.progress(p)
	}
}
