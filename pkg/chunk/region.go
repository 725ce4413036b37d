package chunk

import (
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// RegionStore is the on-disk persistence layer for chunks: a BadgerDB
// key-value store keyed by Address, values zstd-compressed serialized
// payloads (spec.md §4.E/§7 "save-dirty before unload"). This sits outside
// the bit-exact per-chunk wire format: zstd wraps the whole record, the
// chunk codec underneath is untouched, so region compression can change
// independently of the on-wire chunk format's version byte.
type RegionStore struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// OpenRegionStore opens (creating if absent) a BadgerDB-backed region store
// rooted at dir.
func OpenRegionStore(dir string) (*RegionStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("chunk: open region store: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("chunk: init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		enc.Close()
		return nil, fmt.Errorf("chunk: init zstd decoder: %w", err)
	}
	return &RegionStore{db: db, enc: enc, dec: dec}, nil
}

// Close releases the underlying BadgerDB and zstd resources.
func (r *RegionStore) Close() error {
	r.dec.Close()
	r.enc.Close()
	return r.db.Close()
}

// regionKey produces a sortable 25-byte key from an Address: three signed
// 64-bit axes plus the face byte, all big-endian so Badger's own key
// ordering matches spatial locality along each axis.
func regionKey(addr Address) []byte {
	key := make([]byte, 25)
	binary.BigEndian.PutUint64(key[0:8], uint64(addr.X))
	binary.BigEndian.PutUint64(key[8:16], uint64(addr.Y))
	binary.BigEndian.PutUint64(key[16:24], uint64(addr.Z))
	key[24] = addr.Face
	return key
}

// Put persists c, overwriting any prior record at the same address.
func (r *RegionStore) Put(c *Chunk) error {
	payload := Serialize(c)
	compressed := r.enc.EncodeAll(payload, nil)
	key := regionKey(c.Addr)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, compressed)
	})
}

// Get loads the chunk at addr, or badger.ErrKeyNotFound if absent.
func (r *RegionStore) Get(addr Address) (*Chunk, error) {
	key := regionKey(addr)
	var compressed []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			compressed = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	payload, err := r.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("chunk: zstd decode %v: %w", addr, err)
	}
	return Deserialize(addr, payload)
}

// Delete removes any record at addr. Deleting an absent key is not an
// error (idempotent, matching the "unload a never-saved chunk" case).
func (r *RegionStore) Delete(addr Address) error {
	key := regionKey(addr)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}
