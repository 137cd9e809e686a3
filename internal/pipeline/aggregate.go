package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/thermoparam/internal/library"
	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/models/joback"
	"github.com/ppiankov/thermoparam/internal/models/pcsaft"
	"github.com/ppiankov/thermoparam/internal/resolve"
	"github.com/ppiankov/thermoparam/internal/segment"
)

// Models lists the parameter models that support group contribution
var Models = []string{"pcsaft", "joback"}

// AggregateRequest asks for pure (and optionally binary) records built from
// segment libraries. Chemical records are matched with Scheme; their segment
// names are matched against segment identifiers by name.
type AggregateRequest struct {
	Model          string
	Chemicals      string // chemical record library
	Segments       string // segment record library
	BinarySegments string // optional segment interaction library
	Substances     []string
	Scheme         model.Scheme
}

// Aggregated holds the records built by Aggregate
type Aggregated struct {
	Pure   []fmt.Stringer `json:"pure" yaml:"pure"`
	Binary []fmt.Stringer `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// Aggregate builds parameter records for the requested substances from their
// segment composition.
func (p *Pipeline) Aggregate(ctx context.Context, req AggregateRequest) (*Aggregated, error) {
	switch strings.ToLower(strings.ReplaceAll(req.Model, "-", "")) {
	case "pcsaft":
		return aggregate(ctx, p, req, pcsaft.Combiner[model.Integral](), pcsaft.BinaryCombiner[model.Integral]())
	case "joback":
		return aggregate[joback.Record, struct{}](ctx, p, req, joback.Combiner[model.Integral](), nil)
	default:
		return nil, fmt.Errorf("unknown model %q (expected one of %s)", req.Model, strings.Join(Models, ", "))
	}
}

func aggregate[M, B any](ctx context.Context, p *Pipeline, req AggregateRequest, pure segment.Combiner[M, model.Integral], binary segment.BinaryCombiner[B, model.Integral]) (*Aggregated, error) {
	start := time.Now()
	if req.BinarySegments != "" && binary == nil {
		return nil, fmt.Errorf("model %s has no binary parameters", req.Model)
	}
	if err := resolve.CheckDuplicates(req.Substances); err != nil {
		return nil, err
	}

	var (
		chems          []segment.ChemicalRecord
		segments       []model.SegmentRecord[M]
		binarySegments []segment.BinarySegmentRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.loaders)
	g.Go(func() error {
		var err error
		chems, err = resolve.ResolveSeq(req.Substances, library.Chemicals(gctx, p.loader, req.Chemicals), req.Scheme)
		if err != nil {
			return fmt.Errorf("%s: %w", req.Chemicals, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		segments, err = library.Collect(library.Segments[M](gctx, p.loader, req.Segments))
		return err
	})
	if req.BinarySegments != "" {
		g.Go(func() error {
			var err error
			binarySegments, err = library.Collect(library.BinarySegments(gctx, p.loader, req.BinarySegments))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records, err := segment.FromChemicalRecords(chems, segments, model.SchemeName, pure)
	if err != nil {
		return nil, err
	}
	out := &Aggregated{Pure: Stringers(records)}

	if req.BinarySegments != "" {
		binaries, err := segment.BinaryRecordsFromChemicals(chems, binarySegments, binary)
		if err != nil {
			return nil, err
		}
		out.Binary = Stringers(binaries)
	}

	p.log.Info("Aggregated substances",
		zap.String("model", req.Model),
		zap.Int("pure", len(out.Pure)),
		zap.Int("binary", len(out.Binary)),
		zap.Int("segments", len(segments)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Stringers converts records for rendering
func Stringers[T fmt.Stringer](records []T) []fmt.Stringer {
	out := make([]fmt.Stringer, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
