package witness

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/yourorg/mptzk/pkg/mpt"
	"github.com/yourorg/mptzk/pkg/path"
)

// leafNibbles is the key remainder carried by the generated leaf: the
// branch sits above the last 15 nibbles of the 64-nibble path, and the
// nibble before them selects the modified child.
const leafNibbles = 15

// maxValueLen keeps the RLP leaf body inside the row's S half.
const maxValueLen = 23

// Update describes one storage-slot write the circuit is to prove. The
// trie path is the keccak of the key, as in the storage trie.
type Update struct {
	Key      common.Hash
	OldValue []byte
	NewValue []byte
}

// SlotUpdate derives the update's trie key from its mapping coordinates:
// the slot written is keccak(pad32(key) ‖ pad32(slotIndex)), as laid out by
// Solidity mappings.
func SlotUpdate(key *big.Int, slotIndex uint64, oldValue, newValue []byte) Update {
	return Update{
		Key:      path.SlotKey(key, slotIndex),
		OldValue: oldValue,
		NewValue: newValue,
	}
}

// Rows emits the canonical witness stream for the update: a branch init,
// sixteen children (the modified one carrying the S/C leaf hashes, the
// siblings byte-identical on both sides) and the S and C leaf rows.
// Sibling hashes are derived from the key so a stream is reproducible.
func (u Update) Rows() ([]mpt.Row, error) {
	nib := path.Nibbles(crypto.Keccak256Hash(u.Key[:]))
	childKey := nib[len(nib)-leafNibbles-1]
	remainder := nib[len(nib)-leafNibbles:]

	oldLeaf, err := leafBody(remainder, u.OldValue)
	if err != nil {
		return nil, fmt.Errorf("old leaf: %w", err)
	}
	newLeaf, err := leafBody(remainder, u.NewValue)
	if err != nil {
		return nil, fmt.Errorf("new leaf: %w", err)
	}
	sHash := mpt.Keccak256(oldLeaf)
	cHash := mpt.Keccak256(newLeaf)

	raw := make([][]byte, 0, 19)

	init := emptyRow(mpt.TagBranchInit)
	init[0], init[1] = 0xf9, 0x02
	init[mpt.HalfWidth], init[mpt.HalfWidth+1] = 0xf9, 0x02
	init[mpt.KeyOffset] = childKey
	raw = append(raw, init)

	for i := byte(0); i < 16; i++ {
		child := emptyRow(mpt.TagBranchChild)
		child[1] = 0xa0
		child[mpt.HalfWidth+1] = 0xa0
		s, c := siblingHash(u.Key, i), siblingHash(u.Key, i)
		if i == childKey {
			s, c = sHash, cHash
		}
		copy(child[mpt.SStart:], s)
		copy(child[mpt.CStart:], c)
		raw = append(raw, child)
	}

	leafS := emptyRow(mpt.TagCompactLeaf)
	copy(leafS, oldLeaf)
	leafC := emptyRow(mpt.TagCompactLeaf)
	copy(leafC, newLeaf)
	raw = append(raw, leafS, leafC)

	return mpt.ParseRows(raw)
}

func emptyRow(tag mpt.RowTag) []byte {
	row := make([]byte, mpt.RowWidth+1)
	row[mpt.RowWidth] = byte(tag)
	return row
}

func siblingHash(key common.Hash, i byte) []byte {
	return crypto.Keccak256(key[:], []byte{i})
}

// leafBody RLP-encodes [compact(remainder), value] into a full S half; the
// zero fill behind the RLP is part of the hashed bytes on both sides of the
// hash binding.
func leafBody(nibbles []byte, value []byte) ([]byte, error) {
	if len(value) == 0 || len(value) > maxValueLen {
		return nil, fmt.Errorf("leaf value must be 1..%d bytes, got %d", maxValueLen, len(value))
	}
	enc, err := rlp.EncodeToBytes([][]byte{path.Compact(nibbles, true), value})
	if err != nil {
		return nil, err
	}
	if len(enc) > mpt.HalfWidth {
		return nil, fmt.Errorf("leaf body %d bytes exceeds the %d-byte half", len(enc), mpt.HalfWidth)
	}
	out := make([]byte, mpt.HalfWidth)
	copy(out, enc)
	return out, nil
}
