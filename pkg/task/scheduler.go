package task

// scheduler.go implements the four-tier priority queue and per-frame
// dispatch budget of spec.md §4.I: Submit enqueues by priority,
// DispatchFrame pops nearest-priority-first (FIFO within a tier) and
// hands work to a Pool until the queue drains or a wall-clock budget is
// spent, except that Critical work always dispatches regardless of
// budget.

import (
	"container/heap"
	"sync"
	"time"
)

// Priority is one of the four scheduling tiers. Higher values run
// first; within a tier, submission order is preserved.
type Priority int

const (
	Low Priority = iota
	Normal
	High
	Critical
)

// Func is a unit of scheduled work. It receives the cancellation token
// it was submitted with, and returns a result delivered via the
// Scheduler's completion callback.
type Func func(tok *Token) (any, error)

// Scheduler owns the priority queue and drives a Pool from it.
type Scheduler struct {
	mu     sync.Mutex
	queue  taskHeap
	seq    uint64
	pool   *Pool
	budget time.Duration
}

type scheduledTask struct {
	priority Priority
	seq      uint64
	token    *Token
	fn       Func
	frame    uint64
	deliver  func(result any, err error, frame uint64)
}

// NewScheduler builds a Scheduler dispatching onto pool, spending at
// most budget of wall-clock time on non-critical work per
// DispatchFrame call. A zero budget means "no limit".
func NewScheduler(pool *Pool, budget time.Duration) *Scheduler {
	return &Scheduler{pool: pool, budget: budget}
}

// Submit enqueues fn at the given priority. deliver, if non-nil, is
// called with the task's result once it has run. tok may be nil, in
// which case the task observes no cancellation.
func (s *Scheduler) Submit(priority Priority, tok *Token, fn Func, deliver func(result any, err error, frame uint64)) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, &scheduledTask{
		priority: priority,
		seq:      s.seq,
		token:    tok,
		fn:       fn,
		deliver:  deliver,
	})
	s.mu.Unlock()
}

// Pending returns the number of tasks still waiting to be dispatched.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// DispatchFrame pops ready tasks in priority order (Critical first,
// then High, Normal, Low; FIFO within a tier) and submits each to the
// pool, tagging it with frame. Once the budget is spent, any remaining
// non-Critical task is pushed back for the next frame; Critical tasks
// always dispatch.
func (s *Scheduler) DispatchFrame(frame uint64) {
	start := time.Now()

	for {
		s.mu.Lock()
		if s.queue.Len() == 0 {
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.queue).(*scheduledTask)
		s.mu.Unlock()

		if s.budget > 0 && t.priority != Critical && time.Since(start) >= s.budget {
			s.mu.Lock()
			heap.Push(&s.queue, t)
			s.mu.Unlock()
			return
		}

		t.frame = frame
		s.pool.SubmitPriority(t.priority, func() { s.run(t) })
	}
}

func (s *Scheduler) run(t *scheduledTask) {
	result, err := t.fn(t.token)
	if t.deliver != nil {
		t.deliver(result, err, t.frame)
	}
}

/* ---------------- taskHeap: max-heap by (priority, seq) ---------------- */

type taskHeap []*scheduledTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*scheduledTask)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
