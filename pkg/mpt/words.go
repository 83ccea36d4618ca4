// Package mpt turns witness-row streams into circuit assignments: the
// byte/word codec, the Keccak oracle table builder and the row assigner.
package mpt

import (
	"encoding/binary"

	"github.com/yourorg/mptzk/internal/keccak"
)

// Rate is the Keccak-256 sponge rate in bytes.
const Rate = 136

// Pad appends Keccak multi-rate padding so the result is a whole number of
// rate blocks: 0x01, zeros, 0x80, collapsed to a single 0x81 when only one
// byte is missing.
func Pad(input []byte) []byte {
	total := Rate - len(input)%Rate
	out := make([]byte, len(input)+total)
	copy(out, input)
	if total == 1 {
		out[len(input)] = 0x81
		return out
	}
	out[len(input)] = 0x01
	out[len(out)-1] = 0x80
	return out
}

// PackWordsLE splits b into consecutive 8-byte groups, each decoded as a
// little-endian 64-bit word. The caller guarantees len(b) is a multiple of 8
// (via Pad or the fixed 32-byte hash width).
func PackWordsLE(b []byte) []uint64 {
	if len(b)%8 != 0 {
		panic("mpt: word packing needs a multiple of 8 bytes")
	}
	words := make([]uint64, len(b)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return words
}

// UnpackWordsLE is the inverse of PackWordsLE.
func UnpackWordsLE(words []uint64) []byte {
	out := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// Keccak256 returns the legacy Keccak-256 digest of b.
func Keccak256(b []byte) []byte {
	d := keccak.Sum256(b)
	return d[:]
}
