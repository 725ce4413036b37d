// Package rle implements the adaptive run-length codec used by chunk
// serialization (spec.md §4.E): a sequence of palette-index values packed
// into (count uint16, value uint16) run records, capped at 65535 per run.
package rle

import (
	"encoding/binary"
	"errors"
)

// ErrLengthMismatch is returned by Decode when the decoded run total does
// not equal the expected entry count (spec.md §4.E: "RLE decode length
// mismatch").
var ErrLengthMismatch = errors.New("rle: decoded length mismatch")

// Run is one (count, value) record. Runs never span more than 65535
// repetitions of the same value.
type Run struct {
	Count uint16
	Value uint16
}

// Encode splits values into maximal runs of equal adjacent entries.
func Encode(values []uint16) []Run {
	if len(values) == 0 {
		return nil
	}
	runs := make([]Run, 0, len(values)/2+1)
	cur := values[0]
	count := 1
	flush := func() {
		for count > 0 {
			n := count
			if n > 65535 {
				n = 65535
			}
			runs = append(runs, Run{Count: uint16(n), Value: cur})
			count -= n
		}
	}
	for _, v := range values[1:] {
		if v == cur && count < 65535 {
			count++
			continue
		}
		flush()
		cur = v
		count = 1
	}
	flush()
	return runs
}

// EncodedByteLen returns the wire size of runs: a 4-byte run count followed
// by 4 bytes (count:u16, value:u16) per run.
func EncodedByteLen(runs []Run) int { return 4 + len(runs)*4 }

// Marshal writes runs in the §4.E wire format: u32 run count, then each
// run as little-endian (count:u16, value:u16).
func Marshal(runs []Run) []byte {
	buf := make([]byte, EncodedByteLen(runs))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(runs)))
	off := 4
	for _, r := range runs {
		binary.LittleEndian.PutUint16(buf[off:off+2], r.Count)
		binary.LittleEndian.PutUint16(buf[off+2:off+4], r.Value)
		off += 4
	}
	return buf
}

// Unmarshal parses the §4.E wire format. It returns io.ErrUnexpectedEOF-style
// truncation errors via the plain error return; callers treat all RLE
// errors as recoverable deserialization failures (spec.md §4.E).
func Unmarshal(buf []byte) ([]Run, error) {
	if len(buf) < 4 {
		return nil, errors.New("rle: truncated run count")
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	want := 4 + int(n)*4
	if len(buf) < want {
		return nil, errors.New("rle: truncated run records")
	}
	runs := make([]Run, n)
	off := 4
	for i := range runs {
		runs[i] = Run{
			Count: binary.LittleEndian.Uint16(buf[off : off+2]),
			Value: binary.LittleEndian.Uint16(buf[off+2 : off+4]),
		}
		off += 4
	}
	return runs, nil
}

// Decode expands runs back into a flat value sequence of exactly
// expectedLen entries, returning ErrLengthMismatch otherwise.
func Decode(runs []Run, expectedLen int) ([]uint16, error) {
	out := make([]uint16, 0, expectedLen)
	for _, r := range runs {
		for i := uint16(0); i < r.Count; i++ {
			out = append(out, r.Value)
		}
	}
	if len(out) != expectedLen {
		return nil, ErrLengthMismatch
	}
	return out, nil
}
