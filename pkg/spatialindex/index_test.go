package spatialindex

import (
	"testing"

	"github.com/Voskan/voxelcore/pkg/space"
)

func pos(x, y, z int64) space.UniverseSpace {
	return space.UniverseSpace{
		X: space.Int128FromInt64(x),
		Y: space.Int128FromInt64(y),
		Z: space.Int128FromInt64(z),
	}
}

func TestInsertAndQuerySector(t *testing.T) {
	idx := New[string]()
	idx.Insert(1, pos(0, 0, 0), "a")
	idx.Insert(2, pos(10, 10, 10), "b")

	key := sectorKeyOf(pos(0, 0, 0))
	got := idx.QuerySector(key)
	if len(got) != 2 {
		t.Fatalf("QuerySector returned %d entries, want 2", len(got))
	}
}

func TestInsertMovesExistingID(t *testing.T) {
	idx := New[string]()
	idx.Insert(1, pos(0, 0, 0), "a")
	// Move far enough to land in a different sector.
	far := pos(1<<40, 0, 0)
	idx.Insert(1, far, "a")

	if len(idx.QuerySector(sectorKeyOf(pos(0, 0, 0)))) != 0 {
		t.Fatalf("old bucket should be empty (and deleted) after move")
	}
	got := idx.QuerySector(sectorKeyOf(far))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("new bucket = %+v, want single entry id=1", got)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (moving must not duplicate)", idx.Len())
	}
}

func TestRemoveDeletesEmptyBucket(t *testing.T) {
	idx := New[string]()
	idx.Insert(1, pos(0, 0, 0), "a")
	if !idx.Remove(1) {
		t.Fatalf("Remove reported id not found")
	}
	if idx.Remove(1) {
		t.Fatalf("second Remove reported found")
	}
	if got := idx.QuerySector(sectorKeyOf(pos(0, 0, 0))); got != nil {
		t.Fatalf("bucket not deleted after removing its last entry: %+v", got)
	}
}

func TestUpdatePositionInPlace(t *testing.T) {
	idx := New[int]()
	idx.Insert(1, pos(0, 0, 0), 100)
	if !idx.UpdatePosition(1, pos(1, 2, 3)) {
		t.Fatalf("UpdatePosition reported id not found")
	}
	got := idx.QuerySector(sectorKeyOf(pos(0, 0, 0)))
	if len(got) != 1 || got[0].Value != 100 || got[0].Position != pos(1, 2, 3) {
		t.Fatalf("in-sector update lost value/position: %+v", got)
	}
}

func TestUpdatePositionAcrossSectors(t *testing.T) {
	idx := New[int]()
	idx.Insert(1, pos(0, 0, 0), 7)
	far := pos(1<<40, 1<<40, 1<<40)
	if !idx.UpdatePosition(1, far) {
		t.Fatalf("UpdatePosition reported id not found")
	}
	if len(idx.QuerySector(sectorKeyOf(pos(0, 0, 0)))) != 0 {
		t.Fatalf("old sector bucket not vacated")
	}
	got := idx.QuerySector(sectorKeyOf(far))
	if len(got) != 1 || got[0].Value != 7 {
		t.Fatalf("new sector bucket missing moved entry: %+v", got)
	}
}

func TestQueryRadiusFindsNearbyOnly(t *testing.T) {
	idx := New[string]()
	idx.Insert(1, pos(0, 0, 0), "near")
	idx.Insert(2, pos(100_000_000, 0, 0), "far") // 100,000 m away

	results := idx.QueryRadius(pos(0, 0, 0), 1_000_000) // 1,000 m radius
	if len(results) != 1 || results[0].ID != 1 {
		t.Fatalf("QueryRadius = %+v, want only id=1", results)
	}
}

func TestQueryRadiusCrossesSectorBoundary(t *testing.T) {
	idx := New[string]()
	// Sector boundary sits at axis value 2^32 (mm). Place one entity just
	// below the boundary and query from just above it, within radius.
	boundary := int64(1) << 32
	idx.Insert(1, pos(boundary-10, 0, 0), "edge")

	results := idx.QueryRadius(pos(boundary+10, 0, 0), 100)
	if len(results) != 1 || results[0].ID != 1 {
		t.Fatalf("QueryRadius across sector boundary = %+v, want id=1", results)
	}
}

func TestQueryRadiusExcludesBeyondRadius(t *testing.T) {
	idx := New[string]()
	idx.Insert(1, pos(0, 0, 0), "center")
	idx.Insert(2, pos(1000, 0, 0), "just-outside")

	results := idx.QueryRadius(pos(0, 0, 0), 500)
	if len(results) != 1 || results[0].ID != 1 {
		t.Fatalf("QueryRadius = %+v, want only the centered entity", results)
	}
}
