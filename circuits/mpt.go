// Package circuits declares the proof table for a single MPT leaf update:
// the row layout (advice columns) and the polynomial constraints every
// assignment must satisfy. Rows are produced by pkg/mpt's assigner; the
// Keccak oracle table by its table builder.
package circuits

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
)

const (
	// HashWidth is the number of hash byte columns per trie-state half.
	HashWidth = 32
	// KeccakInputWidth is the number of 64-bit words in one padded Keccak
	// rate block (136 bytes).
	KeccakInputWidth = 17
	// KeccakOutputWidth is the number of 64-bit words in a Keccak-256 digest.
	KeccakOutputWidth = 4
)

func Curve() ecc.ID { return ecc.BN254 }

// Row is one row of the proof table. The S columns hold the before-state
// bytes, the C columns the after-state bytes. On a keccak row the first
// 17 S byte columns carry the packed pre-image words and the next 4 the
// packed digest words instead.
type Row struct {
	IsBranchInit  frontend.Variable
	IsBranchChild frontend.Variable
	IsCompactLeaf frontend.Variable
	IsKeccakLeaf  frontend.Variable
	NodeIndex     frontend.Variable
	IsModified    frontend.Variable
	Key           frontend.Variable

	SRlp1 frontend.Variable
	SRlp2 frontend.Variable
	CRlp1 frontend.Variable
	CRlp2 frontend.Variable

	SAdvices [HashWidth]frontend.Variable
	CAdvices [HashWidth]frontend.Variable

	// Per-branch hash registers, replicated across a branch group.
	SKeccak [KeccakOutputWidth]frontend.Variable
	CKeccak [KeccakOutputWidth]frontend.Variable
}

// TableEntry is one row of the Keccak oracle table: a padded pre-image and
// its digest, both packed into little-endian 64-bit words.
type TableEntry struct {
	In  [KeccakInputWidth]frontend.Variable
	Out [KeccakOutputWidth]frontend.Variable
}

// UpdateCircuit proves that a trie leaf changed from its S to its C encoding
// under one path of branch nodes, with every sibling byte-identical on both
// sides and every claimed node hash equal to the Keccak-256 digest of its
// claimed pre-image.
type UpdateCircuit struct {
	Rows        []Row
	KeccakTable []TableEntry
}

func (c *UpdateCircuit) Define(api frontend.API) error {
	if len(c.Rows) == 0 {
		return errors.New("update circuit: empty row region")
	}

	for i := range c.Rows {
		c.generalGate(api, &c.Rows[i])
	}
	for i := 1; i < len(c.Rows); i++ {
		c.branchGate(api, &c.Rows[i-1], &c.Rows[i])
		c.registerGate(api, &c.Rows[i-1], &c.Rows[i])
		c.modifiedChildGate(api, &c.Rows[i])
	}
	for i := 4; i < len(c.Rows); i++ {
		c.digestBindingGate(api, &c.Rows[i], &c.Rows[i-2], &c.Rows[i-4])
	}
	// A keccak row compares against rows -2 and -4, and in any well-formed
	// stream sits behind a full branch group, so it cannot appear before
	// row 4.
	for i := 0; i < 4 && i < len(c.Rows); i++ {
		api.AssertIsEqual(c.Rows[i].IsKeccakLeaf, 0)
	}

	return c.lookupKeccak(api)
}

// generalGate holds on every row: the flag columns are boolean, and on a
// branch-child row the S and C halves agree wherever node_index != key.
// Conditional equality is written as (s-c)*(node_index-key) = 0 so no
// branching is needed.
func (c *UpdateCircuit) generalGate(api frontend.API, row *Row) {
	api.AssertIsBoolean(row.IsBranchInit)
	api.AssertIsBoolean(row.IsBranchChild)
	api.AssertIsBoolean(row.IsCompactLeaf)
	api.AssertIsBoolean(row.IsKeccakLeaf)
	api.AssertIsBoolean(row.IsModified)

	delta := api.Sub(row.NodeIndex, row.Key)

	api.AssertIsEqual(api.Mul(row.IsBranchChild, api.Sub(row.SRlp1, row.CRlp1), delta), 0)
	api.AssertIsEqual(api.Mul(row.IsBranchChild, api.Sub(row.SRlp2, row.CRlp2), delta), 0)
	for i := range row.SAdvices {
		api.AssertIsEqual(api.Mul(row.IsBranchChild, api.Sub(row.SAdvices[i], row.CAdvices[i]), delta), 0)
	}

	// is_modified vanishes wherever node_index != key.
	api.AssertIsEqual(api.Mul(row.IsBranchChild, row.IsModified, delta), 0)
}

// branchGate ties a row to its predecessor: a branch child follows only a
// branch init or another branch child, a branch init opens a group at
// node_index 0, a group closes only after child 15, and node_index steps by
// one with a group-invariant key. The node_index factor skips the checks on
// child 0, whose predecessor belongs to the previous group.
func (c *UpdateCircuit) branchGate(api frontend.API, prev, cur *Row) {
	api.AssertIsEqual(api.Mul(cur.IsBranchChild,
		api.Sub(prev.IsBranchChild, 1),
		api.Sub(prev.IsBranchInit, 1)), 0)

	api.AssertIsEqual(api.Mul(prev.IsBranchInit, api.Sub(cur.IsBranchChild, 1)), 0)
	api.AssertIsEqual(api.Mul(prev.IsBranchInit, cur.NodeIndex), 0)

	api.AssertIsEqual(api.Mul(api.Sub(1, prev.IsBranchInit),
		api.Sub(prev.IsBranchChild, cur.IsBranchChild),
		api.Sub(prev.NodeIndex, 15)), 0)

	api.AssertIsEqual(api.Mul(cur.IsBranchChild, cur.NodeIndex,
		api.Sub(cur.NodeIndex, api.Add(prev.NodeIndex, 1))), 0)

	api.AssertIsEqual(api.Mul(cur.IsBranchChild, cur.NodeIndex,
		api.Sub(cur.Key, prev.Key)), 0)
}

// registerGate propagates s_keccak/c_keccak unchanged across the child rows
// of a branch group, so a later keccak row can reach them at a fixed offset.
func (c *UpdateCircuit) registerGate(api frontend.API, prev, cur *Row) {
	for k := 0; k < KeccakOutputWidth; k++ {
		api.AssertIsEqual(api.Mul(cur.IsBranchChild, cur.NodeIndex,
			api.Sub(cur.SKeccak[k], prev.SKeccak[k])), 0)
		api.AssertIsEqual(api.Mul(cur.IsBranchChild, cur.NodeIndex,
			api.Sub(cur.CKeccak[k], prev.CKeccak[k])), 0)
	}
}

// modifiedChildGate repacks the 32 hash byte columns of the modified child
// into little-endian words and pins them to the branch registers: the hash
// the parent records for the changed slot is the one the registers carry.
func (c *UpdateCircuit) modifiedChildGate(api frontend.API, row *Row) {
	sWords := intoWords(api, row.SAdvices)
	cWords := intoWords(api, row.CAdvices)
	for k := 0; k < KeccakOutputWidth; k++ {
		api.AssertIsEqual(api.Mul(row.IsBranchChild, row.IsModified,
			api.Sub(sWords[k], row.SKeccak[k])), 0)
		api.AssertIsEqual(api.Mul(row.IsBranchChild, row.IsModified,
			api.Sub(cWords[k], row.CKeccak[k])), 0)
	}
}

// digestBindingGate holds on keccak rows: each digest word equals the
// S register two rows up (S leaf placement: leaf row in between) or the
// C register four rows up (C leaf placement: S leaf, S keccak and C leaf
// rows in between). The product form admits exactly those two placements.
func (c *UpdateCircuit) digestBindingGate(api frontend.API, cur, prev2, prev4 *Row) {
	for k := 0; k < KeccakOutputWidth; k++ {
		word := cur.SAdvices[KeccakInputWidth+k]
		api.AssertIsEqual(api.Mul(cur.IsKeccakLeaf,
			api.Sub(word, prev2.SKeccak[k]),
			api.Sub(word, prev4.CKeccak[k])), 0)
	}
}

// intoWords folds 32 hash byte columns into four 64-bit words, least
// significant byte first, weighting each byte by successive powers of 256.
func intoWords(api frontend.API, bytes [HashWidth]frontend.Variable) [KeccakOutputWidth]frontend.Variable {
	var words [KeccakOutputWidth]frontend.Variable
	for i := range words {
		word := frontend.Variable(0)
		coeff := uint64(1)
		for j := 0; j < 8; j++ {
			word = api.Add(word, api.Mul(bytes[i*8+j], coeff))
			coeff <<= 8
		}
		words[i] = word
	}
	return words
}
