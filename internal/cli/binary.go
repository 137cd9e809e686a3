package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/thermoparam/internal/pipeline"
)

// binaryCmd represents the binary command
var binaryCmd = &cobra.Command{
	Use:   "binary <library>",
	Short: "Load every binary interaction record of a library",
	Long: `Binary loads all binary records (id1, id2, model_record) of a library in
library order. No matching is done.

Example:
  thermoparam binary params/gross2001_binary.json -f text`,
	Args: cobra.ExactArgs(1),
	RunE: runBinary,
}

func init() {
	rootCmd.AddCommand(binaryCmd)

	binaryCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write records to this file instead of stdout")
}

func runBinary(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	start := time.Now()
	records, err := a.pipeline.LoadBinary(ctx, args[0])
	if err != nil {
		return err
	}

	if err := emit(cmd, a.renderer, pipeline.Stringers(records)); err != nil {
		return err
	}
	if a.cfg.Output.Verbose {
		a.renderer.RenderSummary(os.Stderr, pipeline.Summary{
			Title:     "Loaded",
			Libraries: 1,
			Records:   len(records),
			Elapsed:   time.Since(start),
		})
	}
	return nil
}
