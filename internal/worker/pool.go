package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing a value of type R
type Job[R any] interface {
	Execute(ctx context.Context) R
}

// JobFunc adapts a function to the Job interface
type JobFunc[R any] func(ctx context.Context) R

// Execute calls f
func (f JobFunc[R]) Execute(ctx context.Context) R {
	return f(ctx)
}

type queued[R any] struct {
	index int
	job   Job[R]
}

type completed[R any] struct {
	index  int
	result R
}

// Pool runs jobs on a fixed number of workers.
// Wait returns results in submission order regardless of completion order.
type Pool[R any] struct {
	workers    int
	jobQueue   chan queued[R]
	results    chan completed[R]
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	submitted  int

	collected     []completed[R]
	collectorDone chan struct{}
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers.
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers:       workers,
		jobQueue:      make(chan queued[R], workers*2),
		results:       make(chan completed[R], workers*2),
		ctx:           ctx,
		cancelFunc:    cancel,
		collectorDone: make(chan struct{}),
	}
}

// Start launches the workers and the result collector
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

// collect drains results as they arrive so workers never block on a full channel
func (p *Pool[R]) collect() {
	defer close(p.collectorDone)
	for c := range p.results {
		p.collected = append(p.collected, c)
	}
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
			out := completed[R]{index: q.index, result: q.job.Execute(p.ctx)}
			select {
			case p.results <- out:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false when the pool has been shut down.
// Submit and Wait must be called from the same goroutine.
func (p *Pool[R]) Submit(job Job[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queued[R]{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for every submitted job and returns the
// results in submission order. Jobs dropped by cancellation leave the
// zero value of R in their slot.
func (p *Pool[R]) Wait() []R {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectorDone

	results := make([]R, p.submitted)
	for _, c := range p.collected {
		results[c.index] = c.result
	}

	p.cancelFunc()
	return results
}

// Shutdown stops the pool immediately
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
