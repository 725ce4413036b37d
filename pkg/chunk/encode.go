package chunk

import (
	"encoding/binary"

	"github.com/Voskan/voxelcore/internal/bitpack"
	"github.com/Voskan/voxelcore/internal/rle"
)

// Wire format constants (spec.md §4.E). All multi-byte values little-endian.
var magic = [4]byte{'N', 'V', 'C', 'K'}

const (
	formatVersionRaw = 1 // no RLE ever used in this payload
	formatVersionRLE = 2 // RLE flag may be (but need not be) set

	flagRLE = 1 << 0
)

// Serialize encodes c's current storage and version into the bit-exact
// binary format of spec.md §4.E, adaptively choosing raw or run-length
// encoding for the index stream, whichever is smaller (property P7 holds
// for either choice).
func Serialize(c *Chunk) []byte {
	return serializeStorage(c.storageView(), c.Version())
}

func serializeStorage(s *storage, version uint64) []byte {
	paletteLen := len(s.palette)

	var rawBytes, indexBytes []byte
	formatVersion := byte(formatVersionRaw)
	flags := byte(0)

	if s.bits != 0 {
		rawBytes = s.packed.Bytes()
		runs := rle.Encode(packedValues(s))
		rleBytes := rle.Marshal(runs)
		if len(rleBytes) < len(rawBytes) {
			indexBytes = rleBytes
			flags |= flagRLE
			formatVersion = formatVersionRLE
		} else {
			indexBytes = rawBytes
		}
	}

	size := 4 + 1 + 1 + 2 + 2*paletteLen + 1 + len(indexBytes) + 8
	buf := make([]byte, size)
	off := 0
	off += copy(buf[off:], magic[:])
	buf[off] = formatVersion
	off++
	buf[off] = flags
	off++
	binary.LittleEndian.PutUint16(buf[off:], uint16(paletteLen))
	off += 2
	for _, id := range s.palette {
		binary.LittleEndian.PutUint16(buf[off:], uint16(id))
		off += 2
	}
	buf[off] = byte(s.bits)
	off++
	off += copy(buf[off:], indexBytes)
	binary.LittleEndian.PutUint64(buf[off:], version)
	off += 8

	return buf[:off]
}

// packedValues expands the packed index array into a flat []uint16,
// feedstock for the RLE encoder.
func packedValues(s *storage) []uint16 {
	out := make([]uint16, Volume)
	for i := range out {
		out[i] = s.packed.Get(i)
	}
	return out
}

// byteLenForBits is a small unexported wrapper over bitpack.ByteLen, so
// code in this package (including its tests) can size a raw index stream
// without importing internal/bitpack itself.
func byteLenForBits(bits bitpack.Bits, count int) int { return bitpack.ByteLen(bits, count) }
