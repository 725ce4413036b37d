package chunk

import "github.com/Voskan/voxelcore/pkg/voxel"

// Address identifies one 32^3-voxel cell at 1mm resolution (spec.md §4.C).
// Face discriminates cubesphere faces for planetary chunks, or flags
// non-planetary chunks (e.g. a free-floating station) with a sentinel.
type Address struct {
	X, Y, Z int64
	Face    uint8
}

// FaceNonPlanetary flags an Address that does not belong to any cubesphere
// face (a free-floating or purely synthetic chunk, e.g. in tests).
const FaceNonPlanetary uint8 = 0xFF

// LocalPos is a voxel's position within its chunk, each axis in [0,32).
type LocalPos struct{ X, Y, Z uint8 }

// Event is emitted for every voxel mutation where the id actually changes
// (spec.md §4: "emitted only when old_id != new_id").
type Event struct {
	ChunkAddr Address
	Local     LocalPos
	OldID     voxel.ID
	NewID     voxel.ID
}

// BatchEvent is a coarse per-chunk notification accompanying bulk
// mutations such as Fill, for subscribers that don't need per-voxel detail.
type BatchEvent struct {
	ChunkAddr Address
	Count     int
}
