package world

import (
	"sync"

	"github.com/Voskan/voxelcore/pkg/chunk"
)

// EventRing is the double-buffered event stream of spec.md §4.H: events
// published in tick N stay visible to readers through tick N+1, then are
// discarded. Single-writer (the interactive thread that owns mutation);
// many readers, each tracking its own last-seen tick.
//
// Generalised from the teacher's internal/genring.Ring generation-index
// idea: instead of ring-buffering arena generations, this buffers two
// ticks' worth of events, rotating (and clearing) the older slot every
// BeginTick.
type EventRing struct {
	mu      sync.RWMutex
	tick    uint64
	events  [2][]taggedEvent
	batches [2][]taggedBatch
}

type taggedEvent struct {
	tick uint64
	ev   chunk.Event
}

type taggedBatch struct {
	tick uint64
	ev   chunk.BatchEvent
}

// NewEventRing returns a ring starting at tick 0.
func NewEventRing() *EventRing {
	return &EventRing{}
}

// Tick returns the current tick number.
func (r *EventRing) Tick() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tick
}

// Publish records a per-voxel mutation event in the current tick's buffer.
func (r *EventRing) Publish(ev chunk.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.tick % 2
	r.events[slot] = append(r.events[slot], taggedEvent{tick: r.tick, ev: ev})
}

// PublishBatch records a coarse per-chunk batch event in the current
// tick's buffer.
func (r *EventRing) PublishBatch(ev chunk.BatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.tick % 2
	r.batches[slot] = append(r.batches[slot], taggedBatch{tick: r.tick, ev: ev})
}

// BeginTick advances the ring to a new tick, clearing the buffer slot that
// is about to be reused (the one holding tick-2's events, now two ticks
// stale) and returns the new tick number.
func (r *EventRing) BeginTick() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick++
	slot := r.tick % 2
	r.events[slot] = r.events[slot][:0]
	r.batches[slot] = r.batches[slot][:0]
	return r.tick
}

// Read returns every event and batch event published strictly after
// sinceTick, in chronological order, along with the ring's current tick
// (pass that back as sinceTick on the reader's next call). A reader that
// calls Read at least once per tick never misses an event, per the ring's
// two-tick retention window.
func (r *EventRing) Read(sinceTick uint64) (events []chunk.Event, batches []chunk.BatchEvent, tick uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tick = r.tick
	if tick > 0 {
		prevTick := tick - 1
		r.appendSlotLocked(&events, &batches, prevTick%2, prevTick, sinceTick)
	}
	r.appendSlotLocked(&events, &batches, tick%2, tick, sinceTick)
	return events, batches, tick
}

func (r *EventRing) appendSlotLocked(events *[]chunk.Event, batches *[]chunk.BatchEvent, slot uint64, wantTick, sinceTick uint64) {
	for _, te := range r.events[slot] {
		if te.tick == wantTick && te.tick > sinceTick {
			*events = append(*events, te.ev)
		}
	}
	for _, tb := range r.batches[slot] {
		if tb.tick == wantTick && tb.tick > sinceTick {
			*batches = append(*batches, tb.ev)
		}
	}
}
