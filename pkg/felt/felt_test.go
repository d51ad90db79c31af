package felt

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// The BN254 scalar field order pins every artifact the pipeline exchanges
// with provers; a silent change here would invalidate all of them.
const orderDec = "21888242871839275222246405745257275088548364400416034343698204186575808495617"

func TestOrderConstant(t *testing.T) {
	require.Equal(t, orderDec, Order().String())
	// Callers own the returned value.
	o := Order()
	o.SetInt64(0)
	require.Equal(t, orderDec, Order().String())
}

func TestFromSigned(t *testing.T) {
	zero := FromSigned(big.NewInt(0))
	require.True(t, zero.IsZero())

	five := FromSigned(big.NewInt(5))
	require.Equal(t, "5", five.String())

	// Compare through BigInt: fr.Element.String() prints elements above q/2
	// in negative form, which would hide a missed reduction.
	minusOne := FromSigned(big.NewInt(-1))
	wantTop := new(big.Int).Sub(Order(), big.NewInt(1))
	require.Equal(t, wantTop.String(), minusOne.BigInt(new(big.Int)).String())
}

func TestFromSignedRange(t *testing.T) {
	samples := []string{
		"0", "1", "-1", "4096", "-4096",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105727",
	}
	for _, s := range samples {
		x, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		e := FromSigned(x)

		v := e.BigInt(new(big.Int))
		require.True(t, v.Sign() >= 0, "FromSigned(%s) below zero", s)
		require.True(t, v.Cmp(Order()) < 0, "FromSigned(%s) not reduced", s)

		// x and -x must cancel in the field.
		neg := FromSigned(new(big.Int).Neg(x))
		var sum fr.Element
		sum.Add(&e, &neg)
		require.True(t, sum.IsZero(), "FromSigned(%s) and its negation do not cancel", s)
	}
}

func TestFromBigCanonicalOnly(t *testing.T) {
	top := new(big.Int).Sub(Order(), big.NewInt(1))
	e, err := FromBig(top)
	require.NoError(t, err)
	require.Equal(t, top.String(), e.BigInt(new(big.Int)).String())

	_, err = FromBig(Order())
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = FromBig(new(big.Int).Add(Order(), big.NewInt(1)))
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = FromBig(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNonCanonical)
}

func TestFromString(t *testing.T) {
	e, err := FromString("1000000")
	require.NoError(t, err)
	require.Equal(t, "1000000", e.String())

	_, err = FromString(orderDec)
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = FromString("-5")
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = FromString("0x10")
	require.Error(t, err)

	_, err = FromString("")
	require.Error(t, err)
}

func TestVector(t *testing.T) {
	v, err := Vector([]string{"0", "1", "2"})
	require.NoError(t, err)
	require.Len(t, v, 3)
	require.Equal(t, "2", v[2].String())

	_, err = Vector([]string{"0", orderDec})
	require.ErrorIs(t, err, ErrNonCanonical)
	require.ErrorContains(t, err, "element 1")

	v, err = Vector(nil)
	require.NoError(t, err)
	require.Empty(t, v)
}
