// Package fixedpoint implements the exact integer arithmetic used by the
// off-chain quantization pipeline: full-precision multiply-divide over
// 256-bit words and signed fixed-point quantization on top of it.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow reports a value that does not fit the fixed bit width of
	// the pipeline (a 256-bit quotient or a 128-bit quantized magnitude).
	ErrOverflow = errors.New("fixedpoint: overflow")

	// ErrDivisionByZero reports a zero divisor.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
)

// maxUint256 is 2^256-1; reducing the product modulo it recovers the high
// word of the 512-bit product.
var maxUint256 = new(uint256.Int).SetAllOne()

// MulDiv returns floor(x*y/d) computed over the full 512-bit product, so the
// result is exact even when x*y overflows 256 bits. It fails with ErrOverflow
// when the true quotient itself needs more than 256 bits, and with
// ErrDivisionByZero when d is zero.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}

	// 512-bit product [prod1 prod0] = x*y, high word recovered from the
	// difference of the two modular reductions.
	var mm uint256.Int
	mm.MulMod(x, y, maxUint256)
	prod0 := new(uint256.Int).Mul(x, y)
	prod1 := new(uint256.Int).Sub(&mm, prod0)
	if mm.Lt(prod0) {
		prod1.SubUint64(prod1, 1)
	}

	// No high word: a single-width division is exact.
	if prod1.IsZero() {
		return prod0.Div(prod0, d), nil
	}

	// The quotient fits 256 bits only if d > prod1.
	if !d.Gt(prod1) {
		return nil, ErrOverflow
	}

	// Make the 512-bit numerator divisible by d by subtracting the remainder
	// of the same full product.
	rem := new(uint256.Int).MulMod(x, y, d)
	if rem.Gt(prod0) {
		prod1.SubUint64(prod1, 1)
	}
	prod0.Sub(prod0, rem)

	// Factor out the largest power of two dividing d and shift the numerator
	// down by it, pulling the freed bits of prod1 into prod0.
	twos := new(uint256.Int).Neg(d)
	twos.And(twos, d)
	den := new(uint256.Int).Div(d, twos)
	prod0.Div(prod0, twos)
	shift := new(uint256.Int).Neg(twos)
	shift.Div(shift, twos)
	shift.AddUint64(shift, 1)
	prod0.Or(prod0, new(uint256.Int).Mul(prod1, shift))

	// Newton iteration for the inverse of the odd divisor modulo 2^256.
	// The seed is correct to 4 bits; each step doubles the precision, so six
	// steps reach 2^512 which covers the full word.
	inv := new(uint256.Int).Mul(uint256.NewInt(3), den)
	inv.Xor(inv, uint256.NewInt(2))
	two := uint256.NewInt(2)
	t := new(uint256.Int)
	for i := 0; i < 6; i++ {
		t.Mul(den, inv)
		t.Sub(two, t)
		inv.Mul(inv, t)
	}

	// The numerator is divisible by the odd divisor, so multiplying by its
	// inverse recovers the exact quotient.
	return prod0.Mul(prod0, inv), nil
}
