package task

import (
	"runtime"
	"testing"
)

func TestTokenCancelPropagatesToChildren(t *testing.T) {
	root := NewRoot("root")
	child := root.Child("planet")
	grandchild := child.Child("chunk")

	if root.IsCancelled() || child.IsCancelled() || grandchild.IsCancelled() {
		t.Fatalf("freshly created tokens should not be cancelled")
	}

	root.Cancel()

	if !child.IsCancelled() {
		t.Fatalf("direct child should be cancelled after parent.Cancel()")
	}
	if !grandchild.IsCancelled() {
		t.Fatalf("grandchild should be cancelled after root.Cancel()")
	}
}

func TestTokenChildBornCancelledUnderCancelledParent(t *testing.T) {
	root := NewRoot("root")
	root.Cancel()

	child := root.Child("late")
	if !child.IsCancelled() {
		t.Fatalf("child created under an already-cancelled parent must be born cancelled")
	}
}

func TestTokenPruneChildrenDropsCollected(t *testing.T) {
	root := NewRoot("root")

	keep := root.Child("kept")
	func() {
		// Created in a nested scope so the only reference is the weak one
		// root holds; once this function returns, it becomes collectible.
		_ = root.Child("transient")
	}()

	runtime.GC()
	runtime.GC()
	root.PruneChildren()

	if root.ChildCount() != 1 {
		t.Fatalf("ChildCount() after PruneChildren = %d, want 1 (only the kept child)", root.ChildCount())
	}
	if keep.IsCancelled() {
		t.Fatalf("kept child should not be cancelled")
	}
}

func TestTokenLabel(t *testing.T) {
	tok := NewRoot("shutdown")
	if tok.Label() != "shutdown" {
		t.Fatalf("Label() = %q, want %q", tok.Label(), "shutdown")
	}
}
