// Package path holds native trie-path helpers: storage-slot key derivation,
// nibble expansion and hex-prefix compaction of leaf key remainders.
package path

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SlotKey returns keccak256( pad32(key) ‖ pad32(slotIndex) ), the storage
// slot a mapping entry lives under.
func SlotKey(key *big.Int, slotIndex uint64) common.Hash {
	var buf [64]byte

	key.FillBytes(buf[:32])

	// slot index big-endian in the last 8 bytes of buf[32:64]
	for i := 0; i < 8; i++ {
		buf[56+i] = byte(slotIndex >> (8 * (7 - i)))
	}

	return crypto.Keccak256Hash(buf[:])
}

// Nibbles expands a 32-byte hash into its 64-nibble trie path, high nibble
// first.
func Nibbles(h common.Hash) []byte {
	out := make([]byte, 2*len(h))
	for i, b := range h {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0f
	}
	return out
}

// Compact hex-prefix encodes a nibble remainder. The high nibble of the
// first byte carries the flags (2 for a leaf, 1 for odd length); an odd
// remainder's first nibble shares that byte, the rest pack two per byte.
func Compact(nibbles []byte, isLeaf bool) []byte {
	flag := byte(0)
	if isLeaf {
		flag = 2
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	if len(nibbles)%2 == 1 {
		out = append(out, (flag|1)<<4|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flag<<4)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}
