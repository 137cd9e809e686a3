package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ppiankov/thermoparam/internal/pipeline"
	"github.com/ppiankov/thermoparam/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <jobs.yaml>",
	Short: "Run many resolve jobs from a jobs file in parallel",
	Long: `Batch runs the resolve jobs listed in a YAML jobs file concurrently and
writes one output file per job, named after the job.

Jobs file:
  jobs:
    - name: light alkanes
      scheme: cas                # optional, defaults to --scheme
      sources:
        - location: params/gross2001.json
          substances: [74-82-8, 74-84-0]

Example:
  thermoparam batch jobs.yaml
  thermoparam batch jobs.yaml --concurrency 8 --output-dir ./records -f yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent jobs (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./thermoparam-records", "output directory for job results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	a.log.Info("Starting batch")
	a.log.Sugar().Debugw("Batch settings",
		"file", file,
		"workers", workers,
		"output_dir", outputDir,
		"timeout", batchTimeout)

	start := time.Now()
	processor := worker.NewBatchProcessor(a.pipeline, workers, a.scheme, a.log)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	var failures error
	records, libraries := 0, 0
	for _, result := range results {
		libraries += result.Libraries
		if result.Error != nil {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", result.Name, result.Error))
			_, _ = bad.Fprintf(os.Stderr, "✗ %s: %v\n", result.Name, result.Error)
			continue
		}

		path := filepath.Join(outputDir, slug.Make(result.Name)+a.renderer.Ext())
		if err := a.renderer.RenderFile(pipeline.Stringers(result.Records), path); err != nil {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", result.Name, err))
			_, _ = bad.Fprintf(os.Stderr, "✗ %s: failed to write output: %v\n", result.Name, err)
			continue
		}

		records += len(result.Records)
		_, _ = ok.Fprintf(os.Stderr, "✓ %s (%d records) → %s\n", result.Name, len(result.Records), path)
	}

	failed := len(multierr.Errors(failures))
	a.renderer.RenderSummary(os.Stderr, pipeline.Summary{
		Title:     fmt.Sprintf("Batch complete: %d jobs", len(results)),
		Libraries: libraries,
		Records:   records,
		Failed:    failed,
		Elapsed:   time.Since(start),
	})

	if failures != nil {
		return fmt.Errorf("%d of %d jobs failed: %w", failed, len(results), failures)
	}
	return nil
}
