package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/thermoparam/internal/cache"
	"github.com/ppiankov/thermoparam/internal/library"
	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/resolve"
)

// Pipeline loads parameter libraries and resolves substances against them
type Pipeline struct {
	loader  *library.Loader
	loaders int
	log     *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration. limiter
// may be nil.
func NewPipeline(cfg *model.Config, log *zap.Logger, limiter RateLimiter) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).
		WithRetries(cfg.HTTP.MaxRetries).
		WithLogger(log)
	if limiter != nil {
		fetcher.WithLimiter(limiter)
	}
	if cfg.Cache.Enabled {
		// ttl 0 lets each cache layer apply its own expiry
		fetcher.WithCache(cache.New(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL), 0)
	}

	opts := library.Options{Fetcher: fetcher, Logger: log}
	if cfg.S3.Endpoint != "" {
		store, err := library.NewMinioStore(cfg.S3)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	return NewPipelineWithLoader(library.NewLoader(opts), cfg.Concurrency.Loaders, log), nil
}

// NewPipelineWithLoader creates a pipeline around an existing loader reading
// at most loaders libraries at once.
func NewPipelineWithLoader(loader *library.Loader, loaders int, log *zap.Logger) *Pipeline {
	if loaders <= 0 {
		loaders = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		loader:  loader,
		loaders: loaders,
		log:     log.Named("pipeline"),
	}
}

// Source is one library and the substances requested from it
type Source struct {
	Location   string   `json:"location" yaml:"location"`
	Substances []string `json:"substances" yaml:"substances"`
}

// Request asks for pure records from one or more libraries
type Request struct {
	Sources []Source
	Scheme  model.Scheme
}

func (r Request) substances() []string {
	var all []string
	for _, src := range r.Sources {
		all = append(all, src.Substances...)
	}
	return all
}

// Resolve returns one pure record per requested substance, in request order
// across all sources. A substance may be requested from one source only.
func (p *Pipeline) Resolve(ctx context.Context, req Request) ([]model.PureRecord[Params], error) {
	start := time.Now()

	// checked up front so no library is opened for a malformed request
	if err := resolve.CheckDuplicates(req.substances()); err != nil {
		return nil, err
	}

	results := make([][]model.PureRecord[Params], len(req.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.loaders)
	for i, src := range req.Sources {
		g.Go(func() error {
			records, err := resolve.ResolveSeq(src.Substances, library.Pure[Params](gctx, p.loader, src.Location), req.Scheme)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Location, err)
			}
			results[i] = records
			p.log.Debug("Resolved library",
				zap.String("location", src.Location),
				zap.Int("substances", len(records)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.PureRecord[Params]
	for _, records := range results {
		out = append(out, records...)
	}

	p.log.Info("Resolved substances",
		zap.Int("substances", len(out)),
		zap.Int("libraries", len(req.Sources)),
		zap.Stringer("scheme", req.Scheme),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// LoadBinary returns every binary record stored at location
func (p *Pipeline) LoadBinary(ctx context.Context, location string) ([]model.BinaryRecord[Params], error) {
	start := time.Now()
	records, err := library.Binary[Params](ctx, p.loader, location)
	if err != nil {
		return nil, err
	}
	p.log.Info("Loaded binary records",
		zap.String("location", location),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records, nil
}
