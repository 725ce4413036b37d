package task

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllSubmittedJobs(t *testing.T) {
	p := NewPool(4, 16, 2, nil)
	defer p.Close()

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()

	if n.Load() != 100 {
		t.Fatalf("jobs run = %d, want 100", n.Load())
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := NewPool(2, 4, 1, nil)
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	p.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait() // must not crash the test process

	var ranAfter atomic.Bool
	var wg2 sync.WaitGroup
	wg2.Add(1)
	p.Submit(func() {
		defer wg2.Done()
		ranAfter.Store(true)
	})
	wg2.Wait()

	if !ranAfter.Load() {
		t.Fatalf("pool should keep accepting work after a panicking task")
	}
}

func TestPoolCloseStopsAcceptingWork(t *testing.T) {
	p := NewPool(1, 1, 1, nil)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}

	done := make(chan struct{})
	go func() {
		p.Submit(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Submit after Close should return promptly, not block forever")
	}
}
