package mpt

import (
	"fmt"

	"github.com/yourorg/mptzk/circuits"
)

// BuildKeccakTable materializes one oracle row per pre-image, preserving
// input order: the padded pre-image and its Keccak-256 digest, both packed
// into little-endian words. It uses the same codec as the row assigner;
// any divergence would make the lookup unsatisfiable.
//
// A pre-image longer than a single rate block cannot fit the table row and
// is rejected as a format error.
func BuildKeccakTable(preimages [][]byte) ([]circuits.TableEntry, error) {
	entries := make([]circuits.TableEntry, len(preimages))
	for i, p := range preimages {
		padded := Pad(p)
		if len(padded) != Rate {
			return nil, fmt.Errorf("pre-image %d: %d bytes pad to %d, beyond a single rate block", i, len(p), len(padded))
		}
		in := PackWordsLE(padded)
		out := PackWordsLE(Keccak256(p))
		for j := range entries[i].In {
			entries[i].In[j] = in[j]
		}
		for j := range entries[i].Out {
			entries[i].Out[j] = out[j]
		}
	}
	return entries, nil
}
