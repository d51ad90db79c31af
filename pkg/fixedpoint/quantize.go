package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// maxQuantized is 2^127-1, the largest magnitude the 128-bit signed
// fixed-point encoding can carry.
var maxQuantized = new(uint256.Int).SubUint64(
	new(uint256.Int).Lsh(uint256.NewInt(1), 127), 1)

// Quantize converts a signed raw value read at decimal precision divisor into
// its fixed-point representation raw*scale/divisor, rounding half away from
// zero. divisor must be positive; scale is the power-of-two multiplier of the
// target precision.
//
// Magnitudes above 2^127-1 fail with ErrOverflow: the off-chain pipeline
// stores quantized values as 128-bit signed integers, and a value that does
// not fit is a precision-parity violation, not something to clamp. The
// function is pure; identical inputs always yield the identical output.
func Quantize(raw *big.Int, divisor, scale *uint256.Int) (*big.Int, error) {
	neg := raw.Sign() < 0
	mag, overflow := uint256.FromBig(new(big.Int).Abs(raw))
	if overflow {
		return nil, fmt.Errorf("%w: raw value wider than 256 bits", ErrOverflow)
	}

	q, err := MulDiv(mag, scale, divisor)
	if err != nil {
		return nil, err
	}

	// Round half up on the remainder of the same full-precision division.
	// Doubling through AddOverflow keeps the comparison exact even when
	// 2*remainder wraps 256 bits.
	rem := new(uint256.Int).MulMod(mag, scale, divisor)
	doubled, carry := new(uint256.Int).AddOverflow(rem, rem)
	if carry || !doubled.Lt(divisor) {
		if _, c := q.AddOverflow(q, uint256.NewInt(1)); c {
			return nil, fmt.Errorf("%w: rounded quotient wider than 256 bits", ErrOverflow)
		}
	}

	if q.Gt(maxQuantized) {
		return nil, fmt.Errorf("%w: quantized magnitude exceeds 128-bit signed range", ErrOverflow)
	}

	out := q.ToBig()
	if neg {
		out.Neg(out)
	}
	return out, nil
}
