// Package witness loads, builds and generates witness streams for the MPT
// update circuit. The circuit core consumes parsed rows only; everything
// here (files, JSON, synthetic streams) stays outside it.
package witness

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark/frontend"

	"github.com/yourorg/mptzk/circuits"
	"github.com/yourorg/mptzk/pkg/mpt"
)

// Load reads a witness stream from the JSON fixture format: an array of
// byte rows, each ending with its type tag.
func Load(path string) ([]mpt.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read witness: %w", err)
	}
	return Decode(data)
}

// Decode parses the JSON row format and validates the rows.
func Decode(data []byte) ([]mpt.Row, error) {
	var raw [][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal witness: %w", err)
	}
	rows := make([][]byte, len(raw))
	for i, r := range raw {
		rows[i] = make([]byte, len(r))
		for j, v := range r {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("row %d: value %d at index %d is not a byte", i, v, j)
			}
			rows[i][j] = byte(v)
		}
	}
	return mpt.ParseRows(rows)
}

// Encode renders rows back into the JSON fixture format.
func Encode(rows []mpt.Row) ([]byte, error) {
	raw := make([][]int, len(rows))
	for i := range rows {
		raw[i] = make([]int, 0, mpt.RowWidth+1)
		for _, b := range rows[i].Payload {
			raw[i] = append(raw[i], int(b))
		}
		raw[i] = append(raw[i], int(rows[i].Tag))
	}
	return json.Marshal(raw)
}

// Build constructs one proof instance from a witness stream: the Keccak
// table is built first from the stream's leaf pre-images, then the rows are
// assigned and wrapped in a gnark witness.
func Build(rows []mpt.Row) (*Bundle, error) {
	table, err := mpt.BuildKeccakTable(mpt.Preimages(rows))
	if err != nil {
		return nil, err
	}
	assignment, err := mpt.Assign(rows, table)
	if err != nil {
		return nil, err
	}
	full, err := frontend.NewWitness(assignment, circuits.Curve().ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	return &Bundle{
		Full:       full,
		Assignment: assignment,
		Blueprint:  mpt.Blueprint(rows, len(table)),
		Meta:       Meta{NbRows: len(assignment.Rows), NbEntries: len(table)},
	}, nil
}
