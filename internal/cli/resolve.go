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
	resolveSources []string
	outputPath     string
	resolveTimeout time.Duration
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [library substance...]",
	Short: "Select pure records for substances from parameter libraries",
	Long: `Resolve selects exactly one pure record per requested substance.

The first record whose identifier matches wins; the library is read only until
every substance is found. Records are printed in request order. Requesting a
substance twice, or a substance no library contains, is an error.

Example:
  thermoparam resolve params/gross2001.json methane ethane
  thermoparam resolve --scheme cas params/gross2001.json 74-82-8
  thermoparam resolve --source params/alkanes.json=methane,ethane \
      --source s3://params/alcohols.yaml.zst=ethanol -f yaml`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringArrayVar(&resolveSources, "source", nil, "library and substances as location=a,b,c (repeatable)")
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write records to this file instead of stdout")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 5*time.Minute, "total timeout")
}

func parseSources(args, flags []string) ([]pipeline.Source, error) {
	var sources []pipeline.Source
	if len(args) > 0 {
		if len(args) < 2 {
			return nil, fmt.Errorf("library %s given without substances", args[0])
		}
		sources = append(sources, pipeline.Source{Location: args[0], Substances: args[1:]})
	}

	for _, raw := range flags {
		// split on the last '=' so locations may carry a query
		i := strings.LastIndexByte(raw, '=')
		if i <= 0 || i == len(raw)-1 {
			return nil, fmt.Errorf("invalid source %q (expected location=substance,...)", raw)
		}
		var substances []string
		for _, s := range strings.Split(raw[i+1:], ",") {
			if s = strings.TrimSpace(s); s != "" {
				substances = append(substances, s)
			}
		}
		sources = append(sources, pipeline.Source{Location: raw[:i], Substances: substances})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no library given")
	}
	return sources, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	sources, err := parseSources(args, resolveSources)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	start := time.Now()
	records, err := a.pipeline.Resolve(ctx, pipeline.Request{Sources: sources, Scheme: a.scheme})
	if err != nil {
		return err
	}

	if err := emit(cmd, a.renderer, pipeline.Stringers(records)); err != nil {
		return err
	}
	if a.cfg.Output.Verbose {
		a.renderer.RenderSummary(os.Stderr, pipeline.Summary{
			Title:     "Resolved",
			Libraries: len(sources),
			Records:   len(records),
			Elapsed:   time.Since(start),
		})
	}
	return nil
}

// emit writes v to --output or stdout
func emit(cmd *cobra.Command, r *pipeline.Renderer, v any) error {
	if outputPath != "" {
		return r.RenderFile(v, outputPath)
	}
	return r.Render(cmd.OutOrStdout(), v)
}
