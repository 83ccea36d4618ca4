package mpt

import (
	"fmt"

	"github.com/yourorg/mptzk/circuits"
)

// CountRows returns the number of circuit rows a witness stream expands to:
// one per branch row, two per compact leaf (the leaf data row plus its
// synthesized keccak row).
func CountRows(rows []Row) int {
	n := 0
	for i := range rows {
		if rows[i].Tag == TagCompactLeaf {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Preimages collects every compact leaf's hashed bytes in stream order.
// This is exactly the set the Keccak table must be built from before
// assignment.
func Preimages(rows []Row) [][]byte {
	var out [][]byte
	for i := range rows {
		if rows[i].Tag == TagCompactLeaf {
			out = append(out, append([]byte(nil), rows[i].LeafBytes()...))
		}
	}
	return out
}

// Blueprint returns a shape-only circuit for frontend.Compile.
func Blueprint(rows []Row, tableSize int) *circuits.UpdateCircuit {
	return &circuits.UpdateCircuit{
		Rows:        make([]circuits.Row, CountRows(rows)),
		KeccakTable: make([]circuits.TableEntry, tableSize),
	}
}

// Assign walks the witness stream once, writing circuit rows at strictly
// increasing offsets, and returns the populated assignment. The keccak
// table is passed in explicitly so independent proof instances share
// nothing mutable.
//
// A branch init reads the modified-child index from its payload and looks
// ahead key+1 rows to capture that child's S/C hashes into the group
// registers. An out-of-range lookahead is a witness-format error and the
// partial assignment is discarded; a well-formed but semantically wrong
// stream assigns fine and fails at proving time instead.
func Assign(rows []Row, table []circuits.TableEntry) (*circuits.UpdateCircuit, error) {
	out := &circuits.UpdateCircuit{
		Rows:        make([]circuits.Row, 0, CountRows(rows)),
		KeccakTable: table,
	}

	var (
		key      byte
		childIdx byte
		sWords   [circuits.KeccakOutputWidth]uint64
		cWords   [circuits.KeccakOutputWidth]uint64
	)
	for i := range rows {
		row := &rows[i]
		switch row.Tag {
		case TagBranchInit:
			key = row.BranchKey()
			childIdx = 0
			j := i + 1 + int(key)
			if j >= len(rows) {
				return nil, fmt.Errorf("branch init at row %d: modified child %d beyond witness end", i, key)
			}
			copyWords(&sWords, rows[j].SHash())
			copyWords(&cWords, rows[j].CHash())
			out.Rows = append(out.Rows, branchInitRow(row))
		case TagBranchChild:
			out.Rows = append(out.Rows, branchChildRow(row, childIdx, key, sWords, cWords))
			childIdx++
		case TagCompactLeaf:
			data, kec := leafRows(row)
			out.Rows = append(out.Rows, data, kec)
		}
	}
	return out, nil
}

func copyWords(dst *[circuits.KeccakOutputWidth]uint64, hash []byte) {
	words := PackWordsLE(hash)
	for k := range dst {
		dst[k] = words[k]
	}
}

// zeroRow returns a row with every column assigned to zero; the builders
// below overwrite what their row kind needs. gnark rejects nil assignments,
// so every cell is written exactly once per offset.
func zeroRow() circuits.Row {
	var r circuits.Row
	r.IsBranchInit, r.IsBranchChild, r.IsCompactLeaf, r.IsKeccakLeaf = 0, 0, 0, 0
	r.NodeIndex, r.IsModified, r.Key = 0, 0, 0
	r.SRlp1, r.SRlp2, r.CRlp1, r.CRlp2 = 0, 0, 0, 0
	for i := range r.SAdvices {
		r.SAdvices[i] = 0
		r.CAdvices[i] = 0
	}
	for k := range r.SKeccak {
		r.SKeccak[k] = 0
		r.CKeccak[k] = 0
	}
	return r
}

func setPayload(r *circuits.Row, p []byte) {
	r.SRlp1, r.SRlp2 = uint64(p[0]), uint64(p[1])
	r.CRlp1, r.CRlp2 = uint64(p[HalfWidth]), uint64(p[HalfWidth+1])
	for i := 0; i < circuits.HashWidth; i++ {
		r.SAdvices[i] = uint64(p[SStart+i])
		r.CAdvices[i] = uint64(p[CStart+i])
	}
}

func branchInitRow(w *Row) circuits.Row {
	r := zeroRow()
	r.IsBranchInit = 1
	setPayload(&r, w.Payload[:])
	return r
}

func branchChildRow(w *Row, nodeIndex, key byte, sWords, cWords [circuits.KeccakOutputWidth]uint64) circuits.Row {
	r := zeroRow()
	r.IsBranchChild = 1
	r.NodeIndex = uint64(nodeIndex)
	r.Key = uint64(key)
	if nodeIndex == key {
		r.IsModified = 1
	}
	for k := range sWords {
		r.SKeccak[k] = sWords[k]
		r.CKeccak[k] = cWords[k]
	}
	setPayload(&r, w.Payload[:])
	return r
}

// leafRows expands a compact leaf into its data row and the synthesized
// keccak row: the padded pre-image words in the first 17 S byte slots, the
// digest words in the next 4, zeros elsewhere. This is the assigner's only
// Keccak invocation per leaf; the digest is never recomputed.
func leafRows(w *Row) (data, kec circuits.Row) {
	data = zeroRow()
	data.IsCompactLeaf = 1
	setPayload(&data, w.Payload[:])

	kec = zeroRow()
	kec.IsKeccakLeaf = 1
	in := PackWordsLE(Pad(w.LeafBytes()))
	for i, word := range in {
		kec.SAdvices[i] = word
	}
	for k, word := range PackWordsLE(Keccak256(w.LeafBytes())) {
		kec.SAdvices[circuits.KeccakInputWidth+k] = word
	}
	return data, kec
}
