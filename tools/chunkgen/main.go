package main

// main.go is a tiny helper utility to generate a deterministic set of
// synthetic chunks for standalone benchmarking and load-testing of the
// storage and loader layers outside `go test`. It fills each chunk with a
// reproducible pseudo-random voxel pattern and writes the serialized wire
// form to a directory, one file per chunk address.
//
// Usage:
//   go run tools/chunkgen/main.go -n 4096 -fill=sparse -seed=42 -out ./chunks
//
// Flags:
//   -n       number of chunks to generate (default 4096)
//   -fill    fill pattern: "sparse", "dense", or "uniform" (default sparse)
//   -seed    RNG seed (default current time)
//   -out     output directory (created if missing)

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/Voskan/voxelcore/pkg/chunk"
	"github.com/Voskan/voxelcore/pkg/voxel"
)

func main() {
	var (
		n       = flag.Int("n", 4096, "number of chunks to generate")
		fill    = flag.String("fill", "sparse", "fill pattern: sparse, dense, or uniform")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outDir  = flag.String("out", "./chunks", "output directory")
	)
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var genFn func(rnd *rand.Rand, c *chunk.Chunk)
	switch *fill {
	case "sparse":
		genFn = fillSparse
	case "dense":
		genFn = fillDense
	case "uniform":
		genFn = fillUniform
	default:
		fmt.Fprintln(os.Stderr, "unknown fill:", *fill)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "cannot create output dir:", err)
		os.Exit(1)
	}

	for i := 0; i < *n; i++ {
		addr := chunk.Address{
			X:    int64(rnd.Intn(1 << 20)),
			Y:    int64(rnd.Intn(1 << 10)),
			Z:    int64(rnd.Intn(1 << 20)),
			Face: chunk.FaceNonPlanetary,
		}
		c := chunk.New(addr)
		genFn(rnd, c)

		buf := chunk.Serialize(c)
		path := filepath.Join(*outDir, fmt.Sprintf("%d_%d_%d_%d.chunk", addr.X, addr.Y, addr.Z, addr.Face))
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write failed:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("wrote %d chunks (fill=%s, seed=%d) to %s\n", *n, *fill, *seedVal, *outDir)
}

// fillSparse writes a handful of scattered non-air voxels, typical of a
// mostly-empty chunk near the surface boundary.
func fillSparse(rnd *rand.Rand, c *chunk.Chunk) {
	count := 8 + rnd.Intn(64)
	for i := 0; i < count; i++ {
		x, y, z := rnd.Intn(chunk.Size), rnd.Intn(chunk.Size), rnd.Intn(chunk.Size)
		c.Set(x, y, z, voxel.ID(1+rnd.Intn(4)))
	}
}

// fillDense assigns every voxel a value from a small palette, exercising the
// wider bit-pack tiers.
func fillDense(rnd *rand.Rand, c *chunk.Chunk) {
	palette := []voxel.ID{1, 2, 3, 4, 5, 6, 7, 8}
	for x := 0; x < chunk.Size; x++ {
		for y := 0; y < chunk.Size; y++ {
			for z := 0; z < chunk.Size; z++ {
				c.Set(x, y, z, palette[rnd.Intn(len(palette))])
			}
		}
	}
}

// fillUniform sets every voxel to the same non-air ID, the cheapest
// non-trivial case for the palette compressor (a single extra entry).
func fillUniform(rnd *rand.Rand, c *chunk.Chunk) {
	id := voxel.ID(1 + rnd.Intn(255))
	for x := 0; x < chunk.Size; x++ {
		for y := 0; y < chunk.Size; y++ {
			for z := 0; z < chunk.Size; z++ {
				c.Set(x, y, z, id)
			}
		}
	}
}
