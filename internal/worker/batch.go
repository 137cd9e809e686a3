package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/pipeline"
)

// Resolver resolves one request against its libraries
type Resolver interface {
	Resolve(ctx context.Context, req pipeline.Request) ([]model.PureRecord[pipeline.Params], error)
}

// JobSpec is one entry of a jobs file
type JobSpec struct {
	Name    string            `yaml:"name"`
	Scheme  string            `yaml:"scheme,omitempty"`
	Sources []pipeline.Source `yaml:"sources"`
}

// JobsFile is the document read by ReadJobsFile
type JobsFile struct {
	Jobs []JobSpec `yaml:"jobs"`
}

// ResolveJob resolves the substances of one JobSpec
type ResolveJob struct {
	Spec     JobSpec
	Scheme   model.Scheme
	Resolver Resolver
}

// Execute executes the resolve job
func (j *ResolveJob) Execute(ctx context.Context) *ResolveResult {
	records, err := j.Resolver.Resolve(ctx, pipeline.Request{
		Sources: j.Spec.Sources,
		Scheme:  j.Scheme,
	})
	return &ResolveResult{
		Name:      j.Spec.Name,
		Libraries: len(j.Spec.Sources),
		Records:   records,
		Error:     err,
	}
}

// ResolveResult represents the result of a resolve job
type ResolveResult struct {
	Name      string
	Libraries int
	Records   []model.PureRecord[pipeline.Params]
	Error     error
}

// GetError returns the error from the resolve result
func (r *ResolveResult) GetError() error {
	return r.Error
}

// BatchProcessor runs resolve jobs concurrently
type BatchProcessor struct {
	resolver      Resolver
	concurrency   int
	defaultScheme model.Scheme
	log           *zap.Logger
}

// NewBatchProcessor creates a new batch processor. Jobs without a scheme use
// defaultScheme.
func NewBatchProcessor(resolver Resolver, concurrency int, defaultScheme model.Scheme, log *zap.Logger) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchProcessor{
		resolver:      resolver,
		concurrency:   concurrency,
		defaultScheme: defaultScheme,
		log:           log.Named("batch"),
	}
}

// ProcessJobs runs every job and returns one result per job in job order. A
// job with an invalid scheme fails without being run, and so does every job
// not started before ctx is done.
func (b *BatchProcessor) ProcessJobs(ctx context.Context, specs []JobSpec) []*ResolveResult {
	if len(specs) == 0 {
		return []*ResolveResult{}
	}

	pool := NewPool[*ResolveResult](ctx, b.concurrency)
	pool.Start()

	for _, spec := range specs {
		scheme := b.defaultScheme
		var schemeErr error
		if spec.Scheme != "" {
			scheme, schemeErr = model.ParseScheme(spec.Scheme)
		}
		if schemeErr != nil {
			pool.Submit(failedJob{spec: spec, err: schemeErr})
			continue
		}
		pool.Submit(&ResolveJob{Spec: spec, Scheme: scheme, Resolver: b.resolver})
	}

	results := pool.Wait()
	for i, res := range results {
		if res == nil {
			res = notRun(ctx, specs[i])
			results[i] = res
		}
		if res.Error != nil {
			b.log.Warn("Job failed", zap.String("job", res.Name), zap.Error(res.Error))
		} else {
			b.log.Debug("Job done", zap.String("job", res.Name), zap.Int("records", len(res.Records)))
		}
	}
	return results
}

// ProcessFile reads a jobs file and processes its jobs concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResolveResult, error) {
	specs, err := ReadJobsFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}

	return b.ProcessJobs(ctx, specs), nil
}

type failedJob struct {
	spec JobSpec
	err  error
}

func (j failedJob) Execute(context.Context) *ResolveResult {
	return &ResolveResult{Name: j.spec.Name, Libraries: len(j.spec.Sources), Error: j.err}
}

func notRun(ctx context.Context, spec JobSpec) *ResolveResult {
	err := ctx.Err()
	if err == nil {
		err = errors.New("job abandoned")
	}
	return &ResolveResult{
		Name:      spec.Name,
		Libraries: len(spec.Sources),
		Error:     fmt.Errorf("not run: %w", err),
	}
}

// ReadJobsFile reads and validates a YAML jobs file
func ReadJobsFile(filePath string) ([]JobSpec, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var doc JobsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}

	seen := make(map[string]bool)
	for i, spec := range doc.Jobs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("job %d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("job name %q used twice", name)
		}
		seen[name] = true
		if len(spec.Sources) == 0 {
			return nil, fmt.Errorf("job %q has no sources", name)
		}
		for _, src := range spec.Sources {
			if src.Location == "" {
				return nil, fmt.Errorf("job %q has a source without location", name)
			}
		}
		doc.Jobs[i].Name = name
	}

	return doc.Jobs, nil
}
