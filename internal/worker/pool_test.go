package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// indexResult implements Result and remembers which job produced it
type indexResult struct {
	index int
	err   error
}

func (r *indexResult) GetError() error {
	return r.err
}

// indexJob sleeps for delay, honouring ctx, then reports its index
type indexJob struct {
	index     int
	delay     time.Duration
	shouldErr bool
	executed  *int32
}

func (j *indexJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &indexResult{index: j.index, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &indexResult{index: j.index, err: errors.New("job error")}
	}
	return &indexResult{index: j.index}
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		if got := NewPool(tt.in).workers; got != tt.want {
			t.Errorf("NewPool(%d).workers = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPool_RunKeepsJobOrder(t *testing.T) {
	var executed int32
	jobs := make([]Job, 40)
	for i := range jobs {
		// later jobs finish first
		jobs[i] = &indexJob{index: i, delay: time.Duration(len(jobs)-i) * time.Millisecond, executed: &executed, shouldErr: i%10 == 0}
	}

	results := NewPool(8).Run(context.Background(), jobs)

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	failed := 0
	for i, r := range results {
		if got := r.(*indexResult).index; got != i {
			t.Errorf("result %d came from job %d", i, got)
		}
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 4 {
		t.Errorf("expected 4 failures, got %d", failed)
	}
	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("expected all jobs executed, got %d", executed)
	}
}

// gateJob tracks how many jobs run at once
type gateJob struct {
	current *int32
	max     *int32
}

func (j *gateJob) Execute(ctx context.Context) Result {
	n := atomic.AddInt32(j.current, 1)
	for {
		m := atomic.LoadInt32(j.max)
		if n <= m || atomic.CompareAndSwapInt32(j.max, m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(j.current, -1)
	return &indexResult{}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 4
	var current, max int32

	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = &gateJob{current: &current, max: &max}
	}

	NewPool(workers).Run(context.Background(), jobs)

	if got := atomic.LoadInt32(&max); got > workers {
		t.Errorf("max concurrency %d exceeded workers %d", got, workers)
	}
}

func TestPool_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{
		&indexJob{index: 0, delay: time.Second},
		&indexJob{index: 1, delay: time.Second},
	}

	done := make(chan []Result)
	go func() { done <- NewPool(1).Run(ctx, jobs) }()

	select {
	case results := <-done:
		for i, r := range results {
			if !errors.Is(r.GetError(), context.Canceled) {
				t.Errorf("job %d: expected context.Canceled, got %v", i, r.GetError())
			}
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestPool_RunEmpty(t *testing.T) {
	if got := NewPool(2).Run(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
