package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/multicommit"
)

// tableWidth is the full tuple width of one Keccak oracle row.
const tableWidth = KeccakInputWidth + KeccakOutputWidth

// lookupKeccak constrains every row's pre-image/digest tuple, masked by
// is_keccak_leaf, to be a member of {0} ∪ KeccakTable. This is the only
// place hash correctness is checked against ground truth; everything else
// merely propagates the claimed words.
//
// Tuples are compared through random linear combinations, with the
// combination point drawn from a commitment over every involved value.
// A row with combination q is a member iff q·∏_j(q − t_j) = 0: inactive
// rows query the zero tuple and vanish on the leading factor, and an empty
// table leaves q = 0 as the only satisfiable query.
func (c *UpdateCircuit) lookupKeccak(api frontend.API) error {
	committed := make([]frontend.Variable, 0,
		len(c.Rows)*(tableWidth+1)+len(c.KeccakTable)*tableWidth)
	for i := range c.Rows {
		committed = append(committed, c.Rows[i].IsKeccakLeaf)
		committed = append(committed, c.Rows[i].SAdvices[:tableWidth]...)
	}
	for i := range c.KeccakTable {
		committed = append(committed, c.KeccakTable[i].In[:]...)
		committed = append(committed, c.KeccakTable[i].Out[:]...)
	}

	multicommit.WithCommitment(api, func(api frontend.API, challenge frontend.Variable) error {
		pow := make([]frontend.Variable, tableWidth)
		pow[0] = challenge
		for i := 1; i < tableWidth; i++ {
			pow[i] = api.Mul(pow[i-1], challenge)
		}

		combined := make([]frontend.Variable, len(c.KeccakTable))
		for j := range c.KeccakTable {
			acc := frontend.Variable(0)
			for i, w := range c.KeccakTable[j].In {
				acc = api.Add(acc, api.Mul(w, pow[i]))
			}
			for k, w := range c.KeccakTable[j].Out {
				acc = api.Add(acc, api.Mul(w, pow[KeccakInputWidth+k]))
			}
			combined[j] = acc
		}

		for i := range c.Rows {
			acc := frontend.Variable(0)
			for j := 0; j < tableWidth; j++ {
				acc = api.Add(acc, api.Mul(c.Rows[i].SAdvices[j], pow[j]))
			}
			q := api.Mul(c.Rows[i].IsKeccakLeaf, acc)
			prod := q
			for j := range combined {
				prod = api.Mul(prod, api.Sub(q, combined[j]))
			}
			api.AssertIsEqual(prod, 0)
		}
		return nil
	}, committed...)

	return nil
}
