package world

import (
	"context"
	"errors"
	"testing"

	"github.com/Voskan/voxelcore/pkg/chunk"
	"github.com/Voskan/voxelcore/pkg/space"
)

var errLoadFailed = errors.New("world: simulated load failure")

// syncDispatcher runs submitted work synchronously, making loader tests
// deterministic without needing to poll a channel across goroutines.
type syncDispatcher struct{}

func (syncDispatcher) Submit(fn func()) { fn() }

type fakeSource struct{ fail map[chunk.Address]int }

func (s *fakeSource) Load(_ context.Context, addr chunk.Address) (*chunk.Chunk, error) {
	if s.fail != nil && s.fail[addr] > 0 {
		s.fail[addr]--
		return nil, errLoadFailed
	}
	return chunk.New(addr), nil
}

type fakePersister struct{ saved []chunk.Address }

func (p *fakePersister) Save(_ context.Context, c *chunk.Chunk) error {
	p.saved = append(p.saved, c.Addr)
	return nil
}

func originCamera() space.UniverseSpace {
	return space.UniverseSpace{
		X: space.Int128FromInt64(0),
		Y: space.Int128FromInt64(0),
		Z: space.Int128FromInt64(0),
	}
}

func TestLoaderLoadsWithinRadius(t *testing.T) {
	mgr := NewManager()
	ring := NewEventRing()
	src := &fakeSource{}
	cfg := DefaultLoaderConfig()
	cfg.LoadsPerTick = 100000
	loader, err := NewLoader(mgr, ring, src, nil, syncDispatcher{}, cfg)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	loader.Tick(context.Background(), originCamera())
	loader.Tick(context.Background(), originCamera()) // drains results dispatched synchronously above

	if mgr.Count() == 0 {
		t.Fatalf("expected chunks to be loaded around the camera")
	}
	if _, ok := mgr.Get(chunk.Address{X: 0, Y: 0, Z: 0, Face: chunk.FaceNonPlanetary}); !ok {
		t.Fatalf("camera's own chunk should be loaded")
	}
}

// TestLoaderHysteresisBand covers property P8 / scenario 5: a chunk at
// distance 9 (between load_radius=8 and unload_radius=10) stays loaded,
// neither reloaded nor unloaded.
func TestLoaderHysteresisBand(t *testing.T) {
	mgr := NewManager()
	ring := NewEventRing()
	src := &fakeSource{}
	cfg := DefaultLoaderConfig() // load=8 chunks, unload=10 chunks
	cfg.LoadsPerTick = 1 << 20
	cfg.UnloadsPerTick = 1 << 20
	loader, err := NewLoader(mgr, ring, src, nil, syncDispatcher{}, cfg)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	addr := chunk.Address{X: 8, Y: 0, Z: 0, Face: chunk.FaceNonPlanetary}
	mgr.Load(chunk.New(addr))

	cameraAt := func(chunkX int64) space.UniverseSpace {
		mm := chunkX*space.ChunkSizeMM + space.ChunkSizeMM/2
		return space.UniverseSpace{
			X: space.Int128FromInt64(mm),
			Y: space.Int128FromInt64(0),
			Z: space.Int128FromInt64(0),
		}
	}

	// Camera moves to chunk 1: distance from camera chunk 1 to addr chunk 8
	// is 7 chunks, inside load radius already; our chunk stays loaded.
	loader.Tick(context.Background(), cameraAt(1))
	loader.Tick(context.Background(), cameraAt(1))
	if _, ok := mgr.Get(addr); !ok {
		t.Fatalf("chunk unexpectedly unloaded at distance 7")
	}

	// Camera at chunk -1: distance 9, inside the hysteresis band.
	loader.Tick(context.Background(), cameraAt(-1))
	loader.Tick(context.Background(), cameraAt(-1))
	if _, ok := mgr.Get(addr); !ok {
		t.Fatalf("chunk unexpectedly unloaded at distance 9")
	}

	// Camera moves away so distance is 11 (> unload_radius=10): unload.
	far := -3 * space.ChunkSizeMM
	loader.Tick(context.Background(), space.UniverseSpace{
		X: space.Int128FromInt64(far + space.ChunkSizeMM/2),
		Y: space.Int128FromInt64(0),
		Z: space.Int128FromInt64(0),
	})
	if _, ok := mgr.Get(addr); ok {
		t.Fatalf("chunk should have been unloaded once distance exceeded unload_radius")
	}
}

func TestLoaderSavesDirtyBeforeUnload(t *testing.T) {
	mgr := NewManager()
	ring := NewEventRing()
	src := &fakeSource{}
	persister := &fakePersister{}
	cfg := DefaultLoaderConfig()
	cfg.UnloadsPerTick = 1 << 20
	loader, err := NewLoader(mgr, ring, src, persister, syncDispatcher{}, cfg)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	addr := chunk.Address{X: 100, Y: 100, Z: 100, Face: chunk.FaceNonPlanetary}
	c := chunk.New(addr)
	c.Set(0, 0, 0, 1) // marks save-dirty
	mgr.Load(c)

	loader.Tick(context.Background(), originCamera())

	if len(persister.saved) != 1 || persister.saved[0] != addr {
		t.Fatalf("persister.saved = %v, want [%v]", persister.saved, addr)
	}
	if _, ok := mgr.Get(addr); ok {
		t.Fatalf("chunk should have been unloaded after saving")
	}
}
