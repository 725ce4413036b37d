// Package spatialindex implements the sector-keyed bucket map of spec.md
// §4.B: O(1) amortised insert/sector-lookup, and a bounded radius query that
// visits only the sectors that could possibly contain a match.
package spatialindex

import (
	"sync"

	"github.com/Voskan/voxelcore/pkg/space"
)

// SectorKey is a sector's bucket key: the three Int96 sector indices of
// space.SectorSpace, with the in-sector offset dropped (entities anywhere
// within a sector share one bucket).
type SectorKey [3]space.Int96

func sectorKeyOf(pos space.UniverseSpace) SectorKey {
	return SectorKey(space.UniverseToSectorCoord(pos).Index)
}

// Entry is one indexed entity: an opaque id, its last-known position, and
// an arbitrary caller payload.
type Entry[T any] struct {
	ID       uint64
	Position space.UniverseSpace
	Value    T
}

// Index is the sector-keyed bucket map plus its companion id->sector
// reverse index (spec.md §4.B). Every method takes the Index's own
// RWMutex (writers exclusive, queries shared), so concurrent calls are
// safe. Insert and QuerySector are O(1) amortised.
//
// The zero value is not usable; construct with New.
type Index[T any] struct {
	mu      sync.RWMutex
	buckets map[SectorKey][]Entry[T]
	reverse map[uint64]SectorKey
}

// New returns an empty Index.
func New[T any]() *Index[T] {
	return &Index[T]{
		buckets: make(map[SectorKey][]Entry[T]),
		reverse: make(map[uint64]SectorKey),
	}
}

// Insert adds or moves entity id to pos. If id is already present, it is
// first removed from its old bucket (spec.md §4.B insert step 1); a
// bucket that becomes empty as a result is deleted.
func (idx *Index[T]) Insert(id uint64, pos space.UniverseSpace, value T) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if oldKey, ok := idx.reverse[id]; ok {
		idx.removeFromBucketLocked(oldKey, id)
	}

	key := sectorKeyOf(pos)
	idx.buckets[key] = append(idx.buckets[key], Entry[T]{ID: id, Position: pos, Value: value})
	idx.reverse[id] = key
}

// QuerySector returns a copy of the bucket at key, O(1) amortised.
func (idx *Index[T]) QuerySector(key SectorKey) []Entry[T] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	bucket := idx.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Entry[T], len(bucket))
	copy(out, bucket)
	return out
}

// QueryRadius returns every entity within radiusMM (millimetres) of center,
// by squared distance (spec.md §4.B). It visits exactly the
// (2*reach+1)^3 sector keys that could contain a match, where
// reach = floor(radiusMM / 2^32) + 1, and never touches any other bucket.
func (idx *Index[T]) QueryRadius(center space.UniverseSpace, radiusMM int64) []Entry[T] {
	if radiusMM < 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	centerKey := sectorKeyOf(center)
	reach := int64(uint64(radiusMM)>>32) + 1
	radiusSq := squareU64(uint64(radiusMM))

	var out []Entry[T]
	for dz := -reach; dz <= reach; dz++ {
		for dy := -reach; dy <= reach; dy++ {
			for dx := -reach; dx <= reach; dx++ {
				key := SectorKey{
					centerKey[0].AddOffset(dx),
					centerKey[1].AddOffset(dy),
					centerKey[2].AddOffset(dz),
				}
				bucket, ok := idx.buckets[key]
				if !ok {
					continue
				}
				for _, e := range bucket {
					d := squaredDistance(center, e.Position)
					if d.lessOrEqual(radiusSq) {
						out = append(out, e)
					}
				}
			}
		}
	}
	return out
}

// UpdatePosition moves id to pos, across buckets if the sector changed, or
// in place if it didn't (spec.md §4.B update_position). Reports whether id
// was present.
func (idx *Index[T]) UpdatePosition(id uint64, pos space.UniverseSpace) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	oldKey, ok := idx.reverse[id]
	if !ok {
		return false
	}

	newKey := sectorKeyOf(pos)
	if newKey == oldKey {
		bucket := idx.buckets[oldKey]
		for i := range bucket {
			if bucket[i].ID == id {
				bucket[i].Position = pos
				return true
			}
		}
		return false
	}

	var value T
	bucket := idx.buckets[oldKey]
	for i := range bucket {
		if bucket[i].ID == id {
			value = bucket[i].Value
			break
		}
	}
	idx.removeFromBucketLocked(oldKey, id)
	idx.buckets[newKey] = append(idx.buckets[newKey], Entry[T]{ID: id, Position: pos, Value: value})
	idx.reverse[id] = newKey
	return true
}

// Remove deletes id from the index, a linear scan within its bucket
// (spec.md §4.B remove). Reports whether id was present. Dropping the
// last entry in a bucket deletes the bucket.
func (idx *Index[T]) Remove(id uint64) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key, ok := idx.reverse[id]
	if !ok {
		return false
	}
	idx.removeFromBucketLocked(key, id)
	delete(idx.reverse, id)
	return true
}

// Len reports the total number of indexed entities.
func (idx *Index[T]) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.reverse)
}

func (idx *Index[T]) removeFromBucketLocked(key SectorKey, id uint64) {
	bucket := idx.buckets[key]
	for i, e := range bucket {
		if e.ID == id {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(idx.buckets, key)
		return
	}
	idx.buckets[key] = bucket
}
