package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/thermoparam/internal/pipeline"
)

var (
	aggregateModel          string
	aggregateChemicals      string
	aggregateSegments       string
	aggregateBinarySegments string
)

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate substance...",
	Short: "Build records from segment (group contribution) libraries",
	Long: `Aggregate looks up the segment composition of each substance in a chemical
record library, resolves the segments in a segment library and combines them
with the model's group contribution rule. With --binary-segments, binary
records are built for every pair of substances as well.

Example:
  thermoparam aggregate --model pcsaft --chemicals sauer2014_chemicals.json \
      --segments sauer2014_homo.json propane butane
  thermoparam aggregate --model pcsaft --chemicals chem.json --segments seg.json \
      --binary-segments sauer2014_binary.json propane ethanol`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().StringVar(&aggregateModel, "model", "pcsaft", fmt.Sprintf("parameter model (%s)", strings.Join(pipeline.Models, ", ")))
	aggregateCmd.Flags().StringVar(&aggregateChemicals, "chemicals", "", "chemical record library (required)")
	aggregateCmd.Flags().StringVar(&aggregateSegments, "segments", "", "segment record library (required)")
	aggregateCmd.Flags().StringVar(&aggregateBinarySegments, "binary-segments", "", "segment interaction library")
	aggregateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write records to this file instead of stdout")
	_ = aggregateCmd.MarkFlagRequired("chemicals")
	_ = aggregateCmd.MarkFlagRequired("segments")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	start := time.Now()
	out, err := a.pipeline.Aggregate(ctx, pipeline.AggregateRequest{
		Model:          aggregateModel,
		Chemicals:      aggregateChemicals,
		Segments:       aggregateSegments,
		BinarySegments: aggregateBinarySegments,
		Substances:     args,
		Scheme:         a.scheme,
	})
	if err != nil {
		return err
	}

	if err := emit(cmd, a.renderer, out); err != nil {
		return err
	}
	if a.cfg.Output.Verbose {
		libraries := 2
		if aggregateBinarySegments != "" {
			libraries++
		}
		a.renderer.RenderSummary(os.Stderr, pipeline.Summary{
			Title:     "Aggregated",
			Libraries: libraries,
			Records:   len(out.Pure) + len(out.Binary),
			Elapsed:   time.Since(start),
		})
	}
	return nil
}
