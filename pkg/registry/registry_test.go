package registry

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestNewRegistry(t *testing.T) {
	reg, err := New(
		[]common.Address{addrA, addrB},
		[][][]byte{{{0x01}, {0x02}}, {{0x03}}},
		[][]uint{{6, 18}, {0}},
		2, 1,
	)
	require.NoError(t, err)

	require.Equal(t, 2, reg.InputCalls())
	require.Equal(t, 1, reg.OutputCalls())
	require.Equal(t, 3, reg.TotalCalls())

	recs := reg.Records()
	require.Len(t, recs, 2)
	require.Equal(t, addrA, recs[0].Target)
	require.Equal(t, []byte{0x01}, recs[0].Calls[0].Payload)
	require.Equal(t, "1000000", recs[0].Calls[0].Divisor.Dec())
	require.Equal(t, "1000000000000000000", recs[0].Calls[1].Divisor.Dec())
	require.Equal(t, "1", recs[1].Calls[0].Divisor.Dec())
}

func TestNewRegistryLengthChecks(t *testing.T) {
	// Outer arrays disagree.
	_, err := New(
		[]common.Address{addrA, addrB},
		[][][]byte{{{0x01}}},
		[][]uint{{6}, {0}},
		1, 1,
	)
	require.ErrorIs(t, err, ErrLengthMismatch)

	// Per-account payload/decimal lists disagree.
	_, err = New(
		[]common.Address{addrA},
		[][][]byte{{{0x01}, {0x02}}},
		[][]uint{{6}},
		2, 0,
	)
	require.ErrorIs(t, err, ErrLengthMismatch)

	// Total call count does not match the declared split.
	_, err = New(
		[]common.Address{addrA},
		[][][]byte{{{0x01}}},
		[][]uint{{6}},
		1, 1,
	)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = New(nil, nil, nil, -1, 1)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNewRegistryDivisorBound(t *testing.T) {
	// 10^77 still fits a 256-bit word.
	reg, err := New(
		[]common.Address{addrA},
		[][][]byte{{{0x01}}},
		[][]uint{{77}},
		1, 0,
	)
	require.NoError(t, err)
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(77), nil)
	require.Equal(t, want.String(), reg.Records()[0].Calls[0].Divisor.Dec())

	// 10^78 does not.
	_, err = New(
		[]common.Address{addrA},
		[][][]byte{{{0x01}}},
		[][]uint{{78}},
		1, 0,
	)
	require.Error(t, err)
}

func TestRegistryCopiesPayloads(t *testing.T) {
	p := []byte{0x01, 0x02}
	reg, err := New(
		[]common.Address{addrA},
		[][][]byte{{p}},
		[][]uint{{0}},
		1, 0,
	)
	require.NoError(t, err)

	p[0] = 0xff
	require.Equal(t, []byte{0x01, 0x02}, reg.Records()[0].Calls[0].Payload)
}

func TestOutputScaleTable(t *testing.T) {
	table, err := NewOutputScaleTable([]uint{0, 7, 255})
	require.NoError(t, err)
	require.Len(t, table, 3)
	require.Equal(t, "1", table[0].Dec())
	require.Equal(t, "128", table[1].Dec())
	require.Equal(t, new(big.Int).Lsh(big.NewInt(1), 255).String(), table[2].Dec())

	_, err = NewOutputScaleTable([]uint{256})
	require.Error(t, err)
}

func TestCallPayload(t *testing.T) {
	// Selector only.
	p := CallPayload("decimals()")
	require.Equal(t, crypto.Keccak256([]byte("decimals()"))[:4], p)

	// Selector plus one 32-byte word.
	p = CallPayload("getReading(uint256)", big.NewInt(3))
	require.Len(t, p, 36)
	require.Equal(t, crypto.Keccak256([]byte("getReading(uint256)"))[:4], p[:4])
	require.Equal(t, byte(3), p[35])
}
