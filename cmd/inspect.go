package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the trained accent prototypes",
	Long: `Load the prototype model and list each accent with the number of clips
behind it. Structured output formats include the full centroid vectors.

Examples:
  accentid inspect
  accentid inspect --model ./models/uk.msgpack -o yaml`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	application, err := newApplication("inspect")
	if err != nil {
		return err
	}

	model, err := application.Model()
	if err != nil {
		return err
	}

	if err := application.OutputModel(model); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}
	return nil
}
