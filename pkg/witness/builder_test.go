package witness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rows, err := sampleUpdate().Rows()
	require.NoError(t, err)

	data, err := Encode(rows)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, rows, back)
}

func TestDecodeRejectsNonByteValue(t *testing.T) {
	_, err := Decode([]byte(`[[256]]`))
	require.ErrorContains(t, err, "not a byte")

	_, err = Decode([]byte(`[[-1]]`))
	require.ErrorContains(t, err, "not a byte")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"rows": 1}`))
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	rows, err := sampleUpdate().Rows()
	require.NoError(t, err)

	bundle, err := Build(rows)
	require.NoError(t, err)

	require.Equal(t, 21, bundle.Meta.NbRows)
	require.Equal(t, 2, bundle.Meta.NbEntries)
	require.Len(t, bundle.Blueprint.Rows, 21)
	require.Len(t, bundle.Blueprint.KeccakTable, 2)
	require.NotNil(t, bundle.Full)
}

func TestLoad(t *testing.T) {
	rows, err := Update{
		Key:      common.HexToHash("0x2a"),
		OldValue: []byte{0xaa},
		NewValue: []byte{0xbb},
	}.Rows()
	require.NoError(t, err)

	data, err := Encode(rows)
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "witness.json")
	require.NoError(t, os.WriteFile(p, data, 0o644))

	back, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, rows, back)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
