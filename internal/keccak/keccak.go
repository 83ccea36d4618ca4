package keccak

import (
	"golang.org/x/crypto/sha3"
)

// Sum256 returns the legacy Keccak-256 digest of data, the pre-NIST padding
// variant Ethereum uses for trie nodes, not SHA3-256.
func Sum256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	h.Sum(out[:0])
	return out
}
