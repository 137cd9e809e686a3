package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/thermoparam/internal/logging"
	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/pipeline"
	"github.com/ppiankov/thermoparam/internal/worker"
)

// app holds what every command needs
type app struct {
	cfg      *model.Config
	scheme   model.Scheme
	log      *zap.Logger
	release  func() error
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	scheme, err := model.ParseScheme(cfg.Resolve.Scheme)
	if err != nil {
		return nil, err
	}
	renderer, err := pipeline.NewRenderer(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	log, release, err := logging.New(cfg.Logging, cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	p, err := pipeline.NewPipeline(cfg, log, limiter)
	if err != nil {
		_ = release()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		scheme:   scheme,
		log:      log,
		release:  release,
		pipeline: p,
		renderer: renderer,
	}, nil
}

func (a *app) Close() error {
	return a.release()
}
