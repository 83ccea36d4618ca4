package mpt

import (
	"fmt"

	"github.com/yourorg/mptzk/circuits"
)

const (
	// LayoutOffset is the number of RLP meta bytes ahead of the 32 hash
	// bytes in each half of a witness row.
	LayoutOffset = 2
	// HalfWidth is the byte width of one trie-state half.
	HalfWidth = LayoutOffset + circuits.HashWidth
	// RowWidth is the fixed payload width of a witness row: the S half
	// followed by the symmetric C half.
	RowWidth = 2 * HalfWidth
	// SStart and CStart index the first hash byte of each half.
	SStart = LayoutOffset
	CStart = HalfWidth + LayoutOffset
	// KeyOffset locates the modified-child index inside a branch-init
	// payload.
	KeyOffset = 4
)

// RowTag is the one-byte type tag trailing every witness row.
type RowTag byte

const (
	TagBranchInit RowTag = iota
	TagBranchChild
	TagCompactLeaf
)

// Row is one immutable witness row: a fixed-width payload plus its tag.
// Rows are consumed read-only; the assigner never mutates them.
type Row struct {
	Payload [RowWidth]byte
	Tag     RowTag
}

// ParseRows validates raw byte rows (payload followed by the tag byte).
// Wrong width and unknown tags are witness-format errors; nothing is
// zero-filled or truncated to make a malformed row fit.
func ParseRows(raw [][]byte) ([]Row, error) {
	rows := make([]Row, len(raw))
	for i, r := range raw {
		if len(r) != RowWidth+1 {
			return nil, fmt.Errorf("row %d: want %d bytes (payload + tag), got %d", i, RowWidth+1, len(r))
		}
		tag := RowTag(r[RowWidth])
		if tag > TagCompactLeaf {
			return nil, fmt.Errorf("row %d: unknown type tag %d", i, tag)
		}
		copy(rows[i].Payload[:], r[:RowWidth])
		rows[i].Tag = tag
	}
	return rows, nil
}

// SHash returns the 32 before-state hash bytes.
func (r *Row) SHash() []byte { return r.Payload[SStart : SStart+circuits.HashWidth] }

// CHash returns the 32 after-state hash bytes.
func (r *Row) CHash() []byte { return r.Payload[CStart : CStart+circuits.HashWidth] }

// LeafBytes returns the S half of the payload, the bytes a compact leaf is
// hashed over.
func (r *Row) LeafBytes() []byte { return r.Payload[:HalfWidth] }

// BranchKey returns the modified-child index recorded in a branch-init row.
func (r *Row) BranchKey() byte { return r.Payload[KeyOffset] }
