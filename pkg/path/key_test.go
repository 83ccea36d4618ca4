package path

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	cases := []struct {
		name string
		key  *big.Int
		slot uint64
		want string
	}{
		{
			name: "zero key slot zero",
			key:  big.NewInt(0),
			slot: 0,
			want: "0xad3228b676f7d3cd4284a5443f17f1962b36e491b30a40b2405849e597ba5fb5",
		},
		{
			name: "key one slot zero",
			key:  big.NewInt(1),
			slot: 0,
			want: "0xada5013122d395ba3c54772283fb069b10426056ef8ca54750cb9bb552a59e7d",
		},
		{
			name: "max uint256 key slot zero",
			key:  new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
			slot: 0,
			want: "0xbbd6e7dddd4326dd7c827841ab9733c6e3fcdf38a516374bd10feec8f674ea8a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, common.HexToHash(tc.want), SlotKey(tc.key, tc.slot))
		})
	}
}

func TestSlotKeyMatchesManualLayout(t *testing.T) {
	key := big.NewInt(42)
	var buf [64]byte
	key.FillBytes(buf[:32])
	buf[63] = 7
	require.Equal(t, crypto.Keccak256Hash(buf[:]), SlotKey(key, 7))
}

func TestNibbles(t *testing.T) {
	h := common.HexToHash("0xab00000000000000000000000000000000000000000000000000000000000012")
	nib := Nibbles(h)
	require.Len(t, nib, 64)
	require.Equal(t, byte(0xa), nib[0])
	require.Equal(t, byte(0xb), nib[1])
	require.Equal(t, byte(0x1), nib[62])
	require.Equal(t, byte(0x2), nib[63])
}

func TestCompact(t *testing.T) {
	cases := []struct {
		name    string
		nibbles []byte
		isLeaf  bool
		want    []byte
	}{
		{"odd extension", []byte{1, 2, 3, 4, 5}, false, []byte{0x11, 0x23, 0x45}},
		{"even extension", []byte{0, 1, 2, 3, 4, 5}, false, []byte{0x00, 0x01, 0x23, 0x45}},
		{"even leaf", []byte{0, 0xf, 1, 0xc, 0xb, 8}, true, []byte{0x20, 0x0f, 0x1c, 0xb8}},
		{"odd leaf", []byte{0xf, 1, 0xc, 0xb, 8}, true, []byte{0x3f, 0x1c, 0xb8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Compact(tc.nibbles, tc.isLeaf))
		})
	}
}

func TestCompactEmptyLeaf(t *testing.T) {
	require.Equal(t, []byte{0x20}, Compact(nil, true))
}
