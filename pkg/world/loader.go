package world

// loader.go implements the radius-hysteresis loader of spec.md §4.G: a
// scan of the load sphere, a min-heap priority queue keyed by squared
// distance (nearest-first, oldest-in-queue-first tie break), per-tick
// load/unload budgets, and bounded-retry failure handling.
//
// Dispatch is decoupled from a concrete task system via the Dispatcher
// interface, the same way the teacher decouples loading from storage via
// LoaderFunc (pkg/loaderfunc.go): pkg/task.Pool implements Dispatcher, but
// the loader itself only depends on the one-method interface below.

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Voskan/voxelcore/pkg/chunk"
	"github.com/Voskan/voxelcore/pkg/space"
)

// Source produces or reads the chunk at addr, on the generation or disk
// path. Implementations must be safe for concurrent use across addresses.
type Source interface {
	Load(ctx context.Context, addr chunk.Address) (*chunk.Chunk, error)
}

// Persister saves a dirty chunk before it is unloaded.
type Persister interface {
	Save(ctx context.Context, c *chunk.Chunk) error
}

// Dispatcher hands off a unit of work to be run asynchronously, e.g. onto
// a work-stealing pool (pkg/task.Pool). DirectDispatcher runs fn on a new
// goroutine, suitable until the task system is wired in.
type Dispatcher interface {
	Submit(fn func())
}

// DirectDispatcher runs every submitted job on its own goroutine.
type DirectDispatcher struct{}

// Submit implements Dispatcher.
func (DirectDispatcher) Submit(fn func()) { go fn() }

// Loader scans around a moving viewpoint, requesting loads for newly
// nearby chunks and unloading chunks that have drifted out of range,
// within the hysteresis band between LoadRadiusMM and UnloadRadiusMM
// (spec.md §4.G).
type Loader struct {
	manager    *Manager
	ring       *EventRing
	source     Source
	persister  Persister
	dispatcher Dispatcher
	cfg        LoaderConfig
	logger     *zap.Logger
	metrics    metricsSink

	mu      sync.Mutex
	pending map[chunk.Address]*pendingEntry
	queue   addressHeap
	seq     uint64
	group   singleflight.Group

	resultsMu sync.Mutex
	results   []loadResult
}

type pendingEntry struct {
	addr        chunk.Address
	distHi      uint64
	distLo      uint64
	seq         uint64
	heapIndex   int
	attempts    int
	nextAttempt time.Time
	backoff     *backoff.ExponentialBackOff
}

type loadResult struct {
	addr chunk.Address
	c    *chunk.Chunk
	err  error
}

// NewLoader constructs a Loader. cfg is validated immediately.
func NewLoader(manager *Manager, ring *EventRing, source Source, persister Persister, dispatcher Dispatcher, cfg LoaderConfig, opts ...Option) (*Loader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(o)
	}
	if dispatcher == nil {
		dispatcher = DirectDispatcher{}
	}
	return &Loader{
		manager:    manager,
		ring:       ring,
		source:     source,
		persister:  persister,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     o.logger,
		metrics:    newMetricsSink(o.registry),
		pending:    make(map[chunk.Address]*pendingEntry),
	}, nil
}

// Tick runs one loader pass: drains completed loads, scans the load
// sphere for new candidates, dispatches up to LoadsPerTick loads, and
// unloads up to UnloadsPerTick out-of-range chunks.
func (l *Loader) Tick(ctx context.Context, camera space.UniverseSpace) {
	l.drainResults()
	l.scanForLoads(camera)
	l.dispatchLoads(ctx)
	l.scanForUnloads(ctx, camera)
}

// scanForLoads enumerates chunk addresses within LoadRadiusMM of the
// camera's chunk and enqueues the ones that are neither loaded nor
// already pending (spec.md §4.G step 2).
func (l *Loader) scanForLoads(camera space.UniverseSpace) {
	cameraChunk := AddressOf(camera)
	cx, cy, cz := centerMM(cameraChunk)
	radiusHi, radiusLo := squareMM(l.cfg.LoadRadiusMM)
	reach := l.cfg.LoadRadiusMM/space.ChunkSizeMM + 1

	l.mu.Lock()
	defer l.mu.Unlock()

	for dz := -reach; dz <= reach; dz++ {
		for dy := -reach; dy <= reach; dy++ {
			for dx := -reach; dx <= reach; dx++ {
				addr := chunk.Address{
					X: cameraChunk.X + dx, Y: cameraChunk.Y + dy, Z: cameraChunk.Z + dz,
					Face: cameraChunk.Face,
				}
				if _, loaded := l.manager.Get(addr); loaded {
					continue
				}
				if _, isPending := l.pending[addr]; isPending {
					continue
				}
				ax, ay, az := centerMM(addr)
				hi, lo := squaredDistanceMM(cx, cy, cz, ax, ay, az)
				if !lessEq128(hi, lo, radiusHi, radiusLo) {
					continue
				}
				l.seq++
				entry := &pendingEntry{addr: addr, distHi: hi, distLo: lo, seq: l.seq}
				l.pending[addr] = entry
				heap.Push(&l.queue, entry)
			}
		}
	}
	l.metrics.setPending(len(l.pending))
}

// dispatchLoads pops up to LoadsPerTick ready entries (nearest-first,
// oldest-first tie break) and submits them to the dispatcher.
func (l *Loader) dispatchLoads(ctx context.Context) {
	l.mu.Lock()
	var ready []*pendingEntry
	now := time.Now()
	var notYet []*pendingEntry
	for len(ready) < l.cfg.LoadsPerTick && l.queue.Len() > 0 {
		entry := heap.Pop(&l.queue).(*pendingEntry)
		if !entry.nextAttempt.IsZero() && entry.nextAttempt.After(now) {
			notYet = append(notYet, entry)
			continue
		}
		ready = append(ready, entry)
	}
	for _, entry := range notYet {
		heap.Push(&l.queue, entry)
	}
	l.mu.Unlock()

	for _, entry := range ready {
		l.metrics.incLoadDispatched()
		l.dispatcher.Submit(func() {
			v, err, _ := l.group.Do(addressKey(entry.addr), func() (any, error) {
				return l.source.Load(ctx, entry.addr)
			})
			var c *chunk.Chunk
			if err == nil {
				c = v.(*chunk.Chunk)
			}
			l.resultsMu.Lock()
			l.results = append(l.results, loadResult{addr: entry.addr, c: c, err: err})
			l.resultsMu.Unlock()
		})
	}
}

// drainResults processes every load result delivered since the last
// tick. Safe regardless of whether the Dispatcher runs work synchronously
// or on background goroutines.
func (l *Loader) drainResults() {
	l.resultsMu.Lock()
	batch := l.results
	l.results = nil
	l.resultsMu.Unlock()

	for _, res := range batch {
		l.handleResult(res)
	}
}

func (l *Loader) handleResult(res loadResult) {
	l.mu.Lock()
	entry, ok := l.pending[res.addr]
	l.mu.Unlock()
	if !ok {
		return
	}

	if res.err == nil {
		l.manager.Load(res.c)
		l.ring.PublishBatch(chunk.BatchEvent{ChunkAddr: res.addr, Count: chunk.Volume})
		l.metrics.incLoadSucceeded()
		l.mu.Lock()
		delete(l.pending, res.addr)
		l.metrics.setPending(len(l.pending))
		l.mu.Unlock()
		return
	}

	l.metrics.incLoadFailed()
	l.mu.Lock()
	entry.attempts++
	if entry.attempts > l.cfg.MaxRetries {
		delete(l.pending, res.addr)
		l.metrics.setPending(len(l.pending))
		l.mu.Unlock()
		l.metrics.incLoadGivenUp()
		l.logger.Warn("chunk load exhausted retries", zap.Any("address", res.addr), zap.Error(res.err))
		return
	}
	if entry.backoff == nil {
		entry.backoff = backoff.NewExponentialBackOff()
		entry.backoff.InitialInterval = l.cfg.InitialBackoff
		entry.backoff.MaxInterval = l.cfg.MaxBackoff
		entry.backoff.MaxElapsedTime = 0 // bounded by MaxRetries, not elapsed time
	}
	entry.nextAttempt = time.Now().Add(entry.backoff.NextBackOff())
	heap.Push(&l.queue, entry)
	l.mu.Unlock()
}

// scanForUnloads evicts every loaded chunk whose squared distance to the
// camera exceeds UnloadRadiusMM^2, up to UnloadsPerTick per tick
// (spec.md §4.G steps 4-5).
func (l *Loader) scanForUnloads(ctx context.Context, camera space.UniverseSpace) {
	cameraChunk := AddressOf(camera)
	cx, cy, cz := centerMM(cameraChunk)
	radiusHi, radiusLo := squareMM(l.cfg.UnloadRadiusMM)

	var candidates []*chunk.Chunk
	l.manager.Iter(func(c *chunk.Chunk) {
		ax, ay, az := centerMM(c.Addr)
		hi, lo := squaredDistanceMM(cx, cy, cz, ax, ay, az)
		if !lessEq128(hi, lo, radiusHi, radiusLo) {
			candidates = append(candidates, c)
		}
	})

	n := l.cfg.UnloadsPerTick
	if n > len(candidates) {
		n = len(candidates)
	}
	for _, c := range candidates[:n] {
		if c.Dirty()&chunk.DirtySave != 0 && l.persister != nil {
			if err := l.persister.Save(ctx, c); err != nil {
				l.logger.Warn("save-dirty chunk failed to persist before unload", zap.Any("address", c.Addr), zap.Error(err))
				continue
			}
			c.ClearDirty(chunk.DirtySave)
		}
		l.manager.Unload(c.Addr)
		l.metrics.incUnloaded()
	}
}

func squareMM(radiusMM int64) (hi, lo uint64) {
	return squaredDistanceMM(0, 0, 0, radiusMM, 0, 0)
}

func addressKey(addr chunk.Address) string {
	buf := make([]byte, 0, 32)
	buf = appendInt(buf, addr.X)
	buf = append(buf, ',')
	buf = appendInt(buf, addr.Y)
	buf = append(buf, ',')
	buf = appendInt(buf, addr.Z)
	buf = append(buf, ',')
	buf = append(buf, addr.Face)
	return string(buf)
}

func appendInt(buf []byte, v int64) []byte {
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}
	if v == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

/* ---------------- addressHeap: min-heap by (distance, seq) ---------------- */

type addressHeap []*pendingEntry

func (h addressHeap) Len() int { return len(h) }

func (h addressHeap) Less(i, j int) bool {
	if h[i].distHi != h[j].distHi {
		return h[i].distHi < h[j].distHi
	}
	if h[i].distLo != h[j].distLo {
		return h[i].distLo < h[j].distLo
	}
	return h[i].seq < h[j].seq
}

func (h addressHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *addressHeap) Push(x any) {
	entry := x.(*pendingEntry)
	entry.heapIndex = len(*h)
	*h = append(*h, entry)
}

func (h *addressHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}
