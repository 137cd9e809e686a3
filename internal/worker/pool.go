package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing R
type Job[R Result] interface {
	Execute(ctx context.Context) R
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queued[R Result] struct {
	index int
	job   Job[R]
}

type done[R Result] struct {
	index  int
	result R
}

// Pool runs jobs on a fixed number of workers. Wait returns one entry per
// submitted job in submission order regardless of completion order.
type Pool[R Result] struct {
	workers    int
	submitted  int
	jobQueue   chan queued[R]
	results    chan done[R]
	wg         sync.WaitGroup
	collected  chan []done[R]
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool whose jobs run under ctx
func NewPool[R Result](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers:    workers,
		jobQueue:   make(chan queued[R], workers*2),
		results:    make(chan done[R], workers*2),
		collected:  make(chan []done[R], 1),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool[R]) collect() {
	var all []done[R]
	for d := range p.results {
		all = append(all, d)
	}
	p.collected <- all
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			// the collector drains results until every worker has returned
			p.results <- done[R]{index: q.index, result: q.job.Execute(p.ctx)}
		}
	}
}

// Submit queues a job. It must not be called concurrently with itself or
// Wait. A job submitted once the pool context is done is never run but still
// takes its place in the results of Wait.
func (p *Pool[R]) Submit(job Job[R]) {
	q := queued[R]{index: p.submitted, job: job}
	p.submitted++
	if p.ctx.Err() != nil {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- q:
	}
}

// Wait waits for all submitted jobs and returns their results in submission
// order. The result has one entry per Submit call; jobs that never ran
// because the pool context was done are left as the zero value of R.
func (p *Pool[R]) Wait() []R {
	close(p.jobQueue)
	p.wg.Wait()
	p.cancelFunc()
	p.closeResults()

	out := make([]R, p.submitted)
	for _, d := range <-p.collected {
		out[d.index] = d.result
	}
	return out
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
