package chunk

import (
	"encoding/binary"
	"errors"

	"github.com/Voskan/voxelcore/internal/bitpack"
	"github.com/Voskan/voxelcore/internal/rle"
	"github.com/Voskan/voxelcore/pkg/voxel"
)

// Deserialization errors. All are recoverable: a caller that reads a
// corrupt chunk off disk or network gets one of these back, never a
// panic (spec.md §4.E).
var (
	ErrBadMagic            = errors.New("chunk: bad magic")
	ErrUnsupportedVersion  = errors.New("chunk: unsupported format version")
	ErrTruncated           = errors.New("chunk: truncated payload")
	ErrInvalidBitWidth     = errors.New("chunk: invalid bit width")
	ErrPaletteIndexOutOfRange = errors.New("chunk: packed index out of palette range")
)

// Deserialize parses the §4.E wire format into a fresh *Chunk at addr. The
// wire format carries no address; the caller supplies it (e.g. from the
// region container's own index, or a world-manager load request).
func Deserialize(addr Address, buf []byte) (*Chunk, error) {
	s, version, err := deserializeStorage(buf)
	if err != nil {
		return nil, err
	}
	c := &Chunk{Addr: addr}
	c.backing.Store(&shared{data: s})
	c.backing.Load().refCount.Store(1)
	c.version.Store(version)
	return c, nil
}

func deserializeStorage(buf []byte) (*storage, uint64, error) {
	if len(buf) < 4+1+1+2 {
		return nil, 0, ErrTruncated
	}
	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return nil, 0, ErrBadMagic
	}
	off := 4

	formatVersion := buf[off]
	off++
	if formatVersion != formatVersionRaw && formatVersion != formatVersionRLE {
		return nil, 0, ErrUnsupportedVersion
	}

	flags := buf[off]
	off++
	useRLE := flags&flagRLE != 0
	if useRLE && formatVersion != formatVersionRLE {
		return nil, 0, ErrUnsupportedVersion
	}

	paletteLen := int(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2

	if paletteLen > MaxPaletteLen {
		return nil, 0, ErrPaletteIndexOutOfRange
	}
	if len(buf) < off+2*paletteLen+1 {
		return nil, 0, ErrTruncated
	}

	palette := make([]voxel.ID, paletteLen)
	for i := 0; i < paletteLen; i++ {
		palette[i] = voxel.ID(binary.LittleEndian.Uint16(buf[off : off+2]))
		off += 2
	}

	bitsRaw := buf[off]
	off++
	bits := bitpack.Bits(bitsRaw)
	switch bits {
	case 0, bitpack.Bits2, bitpack.Bits4, bitpack.Bits8, bitpack.Bits16:
	default:
		return nil, 0, ErrInvalidBitWidth
	}

	s := &storage{palette: palette, bits: bits}

	if bits != 0 {
		if useRLE {
			runs, err := rle.Unmarshal(buf[off:])
			if err != nil {
				return nil, 0, ErrTruncated
			}
			off += rle.EncodedByteLen(runs)
			values, err := rle.Decode(runs, Volume)
			if err != nil {
				return nil, 0, err
			}
			packed := bitpack.New(bits, Volume)
			for i, v := range values {
				if int(v) >= paletteLen {
					return nil, 0, ErrPaletteIndexOutOfRange
				}
				packed.Set(i, v)
			}
			s.packed = packed
		} else {
			n := bitpack.ByteLen(bits, Volume)
			if len(buf) < off+n {
				return nil, 0, ErrTruncated
			}
			raw := make([]byte, n)
			copy(raw, buf[off:off+n])
			off += n
			packed := bitpack.FromBytes(bits, Volume, raw)
			for i := 0; i < Volume; i++ {
				if int(packed.Get(i)) >= paletteLen {
					return nil, 0, ErrPaletteIndexOutOfRange
				}
			}
			s.packed = packed
		}
	}

	if len(buf) < off+8 {
		return nil, 0, ErrTruncated
	}
	version := binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8

	return s, version, nil
}
