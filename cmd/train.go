package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kim210603/accent-recognition/internal/prototype"
)

var (
	trainCorpus   string
	trainProgress bool
	trainTimeout  time.Duration
)

var trainCmd = &cobra.Command{
	Use:   "train [corpus-dir]",
	Short: "Build accent prototypes from a labeled corpus",
	Long: `Build one prototype per accent from a corpus directory and save them,
replacing any previously trained model.

Each subdirectory of the corpus is an accent label and every audio file in it
(wav, mp3, m4a, ogg, webm, flac) is a training clip. Clips that cannot be
decoded or contain only silence are skipped. Accents left without a usable
clip get no prototype.

Examples:
  # Train from the configured corpus (model.corpus_dir)
  accentid train

  # Train from a specific directory into a specific model file
  accentid train ./data/accents --model ./models/uk.msgpack

  # Machine-readable training report
  accentid train -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainCorpus, "corpus", "",
		"corpus directory (default is data/accents)")
	trainCmd.Flags().BoolVar(&trainProgress, "progress", true,
		"show a progress bar when stderr is a terminal")
	trainCmd.Flags().DurationVar(&trainTimeout, "timeout", 0,
		"abort training after this long (0 means no limit)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	application, err := newApplication("train")
	if err != nil {
		return err
	}

	corpus := application.Config().Model.CorpusDir
	if len(args) == 1 {
		corpus = args[0]
	}

	ctx, cancel := commandContext(cmd.Context(), trainTimeout)
	defer cancel()

	var bar *progressbar.ProgressBar
	progress := func(p prototype.Progress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("training"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(fmt.Sprintf("%-12s %s", p.Label, filepath.Base(p.Clip)))
		_ = bar.Set(p.Done)
	}
	if !application.Config().Output.Progress || !stderrIsTerminal() {
		progress = nil
	}

	summary, err := application.Train(ctx, corpus, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	for _, label := range summary.Labels {
		for _, skipped := range label.Skipped {
			printWarning("skipped %s: %s", skipped.Path, skipped.Reason)
		}
	}
	for _, label := range summary.Omitted {
		printWarning("no usable clips for %q, label omitted", label)
	}

	if err := application.OutputTraining(summary); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	printSuccess("Saved %d prototypes to %s", len(summary.Labels)-len(summary.Omitted), summary.ModelPath)
	return nil
}
