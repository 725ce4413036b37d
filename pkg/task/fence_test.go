package task

import (
	"testing"
	"time"
)

func TestFenceWaitReturnsImmediatelyWithNoPending(t *testing.T) {
	f := NewFence(time.Second, nil)
	f.BeginFrame()
	f.WaitForCritical() // must not block
}

func TestFenceWaitUnblocksOnLastCompletion(t *testing.T) {
	f := NewFence(time.Second, nil)
	f.BeginFrame()
	f.RegisterCritical()
	f.RegisterCritical()

	done := make(chan struct{})
	go func() {
		f.WaitForCritical()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("WaitForCritical returned before any critical task completed")
	case <-time.After(20 * time.Millisecond):
	}

	f.CompleteCritical()
	select {
	case <-done:
		t.Fatalf("WaitForCritical returned after only one of two completions")
	case <-time.After(20 * time.Millisecond):
	}

	f.CompleteCritical()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("WaitForCritical did not return after all completions")
	}
}

func TestFenceWaitTimesOut(t *testing.T) {
	f := NewFence(20*time.Millisecond, nil)
	f.BeginFrame()
	f.RegisterCritical() // never completed

	done := make(chan struct{})
	go func() {
		f.WaitForCritical()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("WaitForCritical did not honor its timeout")
	}
}

func TestFenceBeginFrameResetsPending(t *testing.T) {
	f := NewFence(time.Second, nil)
	f.BeginFrame()
	f.RegisterCritical()
	frame := f.BeginFrame() // new frame clears the stale pending count
	if frame != 2 {
		t.Fatalf("BeginFrame() second call = %d, want 2", frame)
	}
	f.WaitForCritical() // must not block: pending was reset
}
