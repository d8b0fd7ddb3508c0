package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
	active    *int32
	peak      *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.active != nil {
		n := atomic.AddInt32(j.active, 1)
		defer atomic.AddInt32(j.active, -1)
		for {
			p := atomic.LoadInt32(j.peak)
			if n <= p || atomic.CompareAndSwapInt32(j.peak, p, n) {
				break
			}
		}
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	defer p1.Close()
	if p1.Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", p1.Workers())
	}

	p2 := NewPool(0)
	defer p2.Close()
	if p2.Workers() != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.Workers())
	}

	p3 := NewPool(-1)
	defer p3.Close()
	if p3.Workers() != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.Workers())
	}
}

func TestPool_RunKeepsOrder(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	var executed int32
	count := 50
	jobs := make([]Job, count)
	for i := range jobs {
		// later jobs finish first
		jobs[i] = &mockJob{id: i, executed: &executed, duration: time.Duration(count-i) * 100 * time.Microsecond}
	}

	results, err := pool.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
	for i, r := range results {
		if r.(*mockResult).id != i {
			t.Errorf("result %d belongs to job %d", i, r.(*mockResult).id)
		}
	}
}

func TestPool_MoreJobsThanQueue(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = &mockJob{id: i}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		results, _ := pool.Run(context.Background(), jobs)
		if len(results) != 100 {
			t.Errorf("expected 100 results, got %d", len(results))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not complete; pool deadlocked")
	}
}

func TestPool_ErrorsAreResults(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	jobs := []Job{
		&mockJob{id: 0},
		&mockJob{id: 1, shouldErr: true},
		&mockJob{id: 2},
	}
	results, err := pool.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("job errors must not fail the batch: %v", err)
	}

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed job, got %d", failed)
	}
}

func TestPool_SharedAcrossRunsBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var active, peak int32
	var wg sync.WaitGroup
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs := make([]Job, 5)
			for i := range jobs {
				jobs[i] = &mockJob{id: i, duration: 5 * time.Millisecond, active: &active, peak: &peak}
			}
			if _, err := pool.Run(context.Background(), jobs); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", p)
	}
}

func TestPool_CancelledContext(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = &mockJob{id: i, duration: time.Second}
	}

	start := time.Now()
	_, err := pool.Run(ctx, jobs)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled run did not return promptly")
	}
}

func TestPool_RunAfterClose(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close()

	_, err := pool.Run(context.Background(), []Job{&mockJob{}})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_EmptyRun(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	results, err := pool.Run(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("expected empty result, got %v, %v", results, err)
	}
}
