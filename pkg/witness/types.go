package witness

import (
	backendwitness "github.com/consensys/gnark/backend/witness"

	"github.com/yourorg/mptzk/circuits"
)

// Meta describes the circuit shape a proof was produced for, so a verifier
// can check it is holding the matching keys.
type Meta struct {
	NbRows    int `json:"nbRows"`
	NbEntries int `json:"nbKeccakEntries"`
}

// Bundle carries everything one proof instance needs downstream.
type Bundle struct {
	Full       backendwitness.Witness
	Assignment *circuits.UpdateCircuit
	Blueprint  *circuits.UpdateCircuit
	Meta       Meta
}
