// Package felt maps signed fixed-point integers into canonical elements of
// the BN254 scalar field, and parses untrusted field elements strictly.
//
// Canonical means the unique representative in [0, Order). The strictness
// matters: accepting n+Order for n would let two different numbers collide
// under the modular arithmetic of the proof system.
package felt

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrNonCanonical reports a value outside [0, Order).
var ErrNonCanonical = errors.New("felt: value outside canonical field range")

var order = fr.Modulus()

// Order returns the field modulus, the prime just below 2^254 that the proof
// system computes over. The caller owns the returned value.
func Order() *big.Int {
	return new(big.Int).Set(order)
}

// FromSigned maps a signed integer to its canonical field representative,
// (x + Order) mod Order. Negative inputs land in the upper half of the field:
// FromSigned(-1) is Order-1.
func FromSigned(x *big.Int) fr.Element {
	r := new(big.Int).Add(x, order)
	r.Mod(r, order)
	var e fr.Element
	e.SetBigInt(r)
	return e
}

// FromBig converts an untrusted value, failing with ErrNonCanonical unless it
// already is the canonical representative. Unlike fr.Element.SetBytes this
// never reduces silently.
func FromBig(x *big.Int) (fr.Element, error) {
	var e fr.Element
	if x.Sign() < 0 || x.Cmp(order) >= 0 {
		return e, fmt.Errorf("%w: %s", ErrNonCanonical, x)
	}
	e.SetBigInt(x)
	return e, nil
}

// FromString parses a base-10 field element, the format public-input vectors
// travel in, and applies the same canonical check as FromBig.
func FromString(s string) (fr.Element, error) {
	var e fr.Element
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return e, fmt.Errorf("felt: %q is not a base-10 integer", s)
	}
	return FromBig(x)
}

// Vector parses a whole public-input vector of base-10 strings.
func Vector(ss []string) ([]fr.Element, error) {
	out := make([]fr.Element, len(ss))
	for i, s := range ss {
		e, err := FromString(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
