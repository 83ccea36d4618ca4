package witness

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/mptzk/pkg/mpt"
	"github.com/yourorg/mptzk/pkg/path"
)

func sampleUpdate() Update {
	return Update{
		Key:      common.HexToHash("0xdeadbeef"),
		OldValue: []byte{0x01, 0x02},
		NewValue: []byte{0x03},
	}
}

func TestUpdateRowsShape(t *testing.T) {
	rows, err := sampleUpdate().Rows()
	require.NoError(t, err)
	require.Len(t, rows, 19)

	require.Equal(t, mpt.TagBranchInit, rows[0].Tag)
	for i := 1; i <= 16; i++ {
		require.Equal(t, mpt.TagBranchChild, rows[i].Tag, "row %d", i)
	}
	require.Equal(t, mpt.TagCompactLeaf, rows[17].Tag)
	require.Equal(t, mpt.TagCompactLeaf, rows[18].Tag)

	require.Less(t, rows[0].BranchKey(), byte(16))
}

func TestUpdateRowsBindModifiedChild(t *testing.T) {
	rows, err := sampleUpdate().Rows()
	require.NoError(t, err)

	key := rows[0].BranchKey()
	mod := &rows[1+key]

	require.Equal(t, mpt.Keccak256(rows[17].LeafBytes()), mod.SHash())
	require.Equal(t, mpt.Keccak256(rows[18].LeafBytes()), mod.CHash())

	for i := byte(0); i < 16; i++ {
		if i == key {
			continue
		}
		child := &rows[1+i]
		require.True(t, bytes.Equal(child.SHash(), child.CHash()), "sibling %d", i)
	}
}

func TestUpdateRowsDeterministic(t *testing.T) {
	a, err := sampleUpdate().Rows()
	require.NoError(t, err)
	b, err := sampleUpdate().Rows()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSlotUpdateDerivesTrieKey(t *testing.T) {
	u := SlotUpdate(big.NewInt(1), 0, []byte{0x0a}, []byte{0x0b})

	require.Equal(t, path.SlotKey(big.NewInt(1), 0), u.Key)
	// keccak( pad32(1) ‖ pad32(0) )
	require.Equal(t,
		common.HexToHash("0xada5013122d395ba3c54772283fb069b10426056ef8ca54750cb9bb552a59e7d"),
		u.Key)

	rows, err := u.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 19)
}

func TestUpdateRowsRejectsBadValues(t *testing.T) {
	u := sampleUpdate()
	u.NewValue = nil
	_, err := u.Rows()
	require.Error(t, err)

	u = sampleUpdate()
	u.OldValue = make([]byte, maxValueLen+1)
	_, err = u.Rows()
	require.ErrorContains(t, err, "leaf value")
}
