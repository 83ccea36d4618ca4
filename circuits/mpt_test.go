package circuits

import (
	"encoding/binary"
	"testing"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

// repackCircuit pins intoWords against externally computed words.
type repackCircuit struct {
	Bytes [HashWidth]frontend.Variable
	Words [KeccakOutputWidth]frontend.Variable
}

func (c *repackCircuit) Define(api frontend.API) error {
	words := intoWords(api, c.Bytes)
	for k := range words {
		api.AssertIsEqual(words[k], c.Words[k])
	}
	return nil
}

func repackAssignment(raw [HashWidth]byte) *repackCircuit {
	var a repackCircuit
	for i, b := range raw {
		a.Bytes[i] = b
	}
	for k := 0; k < KeccakOutputWidth; k++ {
		a.Words[k] = binary.LittleEndian.Uint64(raw[8*k : 8*k+8])
	}
	return &a
}

func TestIntoWordsMatchesLittleEndian(t *testing.T) {
	assert := test.NewAssert(t)

	var raw [HashWidth]byte
	for i := range raw {
		raw[i] = byte(7*i + 3)
	}

	assert.ProverSucceeded(&repackCircuit{}, repackAssignment(raw),
		test.WithCurves(Curve()))
}

func TestIntoWordsRejectsShuffledBytes(t *testing.T) {
	assert := test.NewAssert(t)

	var raw [HashWidth]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	a := repackAssignment(raw)
	a.Bytes[0], a.Bytes[7] = a.Bytes[7], a.Bytes[0] // big-endian word order

	assert.ProverFailed(&repackCircuit{}, a, test.WithCurves(Curve()))
}

func TestDefineRejectsEmptyRegion(t *testing.T) {
	_, err := frontend.Compile(Curve().ScalarField(), r1cs.NewBuilder, &UpdateCircuit{})
	require.ErrorContains(t, err, "empty row region")
}
