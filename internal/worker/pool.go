package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Run after Close
var ErrPoolClosed = errors.New("worker pool closed")

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type task struct {
	ctx   context.Context
	job   Job
	index int
	out   chan<- indexed
}

type indexed struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed set of workers. Concurrent Run calls share the
// workers, so the worker count bounds the total number of jobs in flight.
type Pool struct {
	workers  int
	jobQueue chan task
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool creates and starts a pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		workers:  workers,
		jobQueue: make(chan task, workers*2),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the number of workers
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for t := range p.jobQueue {
		t.out <- indexed{index: t.index, result: t.job.Execute(t.ctx)}
	}
}

// Run executes jobs and returns their results in submission order. When ctx
// is cancelled before every job was handed to a worker, the remaining slots
// stay nil and ctx.Err() is returned alongside the partial results.
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return results, ErrPoolClosed
	}

	// Buffered to len(jobs) so workers never block on delivery
	out := make(chan indexed, len(jobs))
	submitted := 0
	var err error
submit:
	for i, job := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break submit
		case p.jobQueue <- task{ctx: ctx, job: job, index: i, out: out}:
			submitted++
		}
	}
	p.mu.RUnlock()

	for i := 0; i < submitted; i++ {
		r := <-out
		results[r.index] = r.result
	}
	return results, err
}

// Close stops the workers after queued jobs finish. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
}
