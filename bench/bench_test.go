// Package bench provides reproducible micro-benchmarks for voxelcore.
// Run via:  go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// The benchmarks intentionally isolate four hot paths that drive the
// engine's per-frame budget:
//   1. Chunk.Set/Get   - palette write/read, exercising bit-pack tiers
//   2. Serialize        - the wire codec's adaptive raw-vs-RLE cost
//   3. Scheduler+Pool    - per-frame task dispatch overhead
//   4. asyncio.Submit    - async I/O runtime handoff cost
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
package bench

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"testing"

	"github.com/Voskan/voxelcore/pkg/asyncio"
	"github.com/Voskan/voxelcore/pkg/chunk"
	"github.com/Voskan/voxelcore/pkg/task"
	"github.com/Voskan/voxelcore/pkg/voxel"
)

func init() {
	runtime.GOMAXPROCS(runtime.NumCPU())
}

func testAddr(i int) chunk.Address {
	return chunk.Address{X: int64(i), Y: 0, Z: 0, Face: chunk.FaceNonPlanetary}
}

// ds is a reused set of voxel coordinates, built once, matching the
// shape of a dense chunk write pattern.
var ds = func() [][3]int {
	rnd := rand.New(rand.NewSource(42))
	coords := make([][3]int, chunk.Volume)
	for i := range coords {
		coords[i] = [3]int{rnd.Intn(chunk.Size), rnd.Intn(chunk.Size), rnd.Intn(chunk.Size)}
	}
	return coords
}()

func BenchmarkChunkSet(b *testing.B) {
	c := chunk.New(testAddr(0))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coord := ds[i&(len(ds)-1)]
		c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%15))
	}
}

func BenchmarkChunkGet(b *testing.B) {
	c := chunk.New(testAddr(0))
	for i, coord := range ds {
		c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%15))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coord := ds[i&(len(ds)-1)]
		_ = c.Get(coord[0], coord[1], coord[2])
	}
}

func BenchmarkChunkSetParallel(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		c := chunk.New(testAddr(0))
		i := 0
		for pb.Next() {
			coord := ds[i&(len(ds)-1)]
			c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%15))
			i++
		}
	})
}

func BenchmarkSerializeSparse(b *testing.B) {
	c := chunk.New(testAddr(0))
	for i := 0; i < 64; i++ {
		coord := ds[i]
		c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%4))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = chunk.Serialize(c)
	}
}

func BenchmarkSerializeDense(b *testing.B) {
	c := chunk.New(testAddr(0))
	for i, coord := range ds {
		c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%200))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = chunk.Serialize(c)
	}
}

func BenchmarkDeserialize(b *testing.B) {
	c := chunk.New(testAddr(0))
	for i, coord := range ds {
		c.Set(coord[0], coord[1], coord[2], voxel.ID(1+i%200))
	}
	buf := chunk.Serialize(c)
	addr := testAddr(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := chunk.Deserialize(addr, buf)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSchedulerDispatch measures the per-frame dispatch loop's
// overhead: pushing N normal-priority no-op tasks and draining them
// through a four-worker pool.
func BenchmarkSchedulerDispatch(b *testing.B) {
	pool := task.NewPool(4, 1024, 2, nil)
	defer pool.Close()
	sched := task.NewScheduler(pool, 0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		wg.Add(1)
		sched.Submit(task.Normal, nil, func(tok *task.Token) (any, error) {
			return nil, nil
		}, func(any, error, uint64) { wg.Done() })
		sched.DispatchFrame(uint64(i))
		wg.Wait()
	}
}

// BenchmarkPoolSubmit measures raw pool throughput without the priority
// heap in front of it.
func BenchmarkPoolSubmit(b *testing.B) {
	pool := task.NewPool(runtime.NumCPU(), 4096, 2, nil)
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	var wg sync.WaitGroup
	wg.Add(b.N)
	for i := 0; i < b.N; i++ {
		pool.Submit(func() { wg.Done() })
	}
	wg.Wait()
}

// BenchmarkAsyncRuntimeSubmit measures the cost of the two-case-select
// handoff shape: a job result racing against an already-background
// context, the same path real disk/network loads go through.
func BenchmarkAsyncRuntimeSubmit(b *testing.B) {
	rt := asyncio.NewRuntime(4, 1024, 0, nil)
	defer rt.Shutdown()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ch := asyncio.Submit(rt, ctx, func(context.Context) (int, error) {
			return 0, nil
		})
		<-ch
	}
}
