// Package registry holds the immutable description of the external reads an
// attestation pass performs: which targets to call, with what payloads, at
// what decimal precision, and the scale each produced value is quantized to.
package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/yourorg/zkattest/pkg/fixedpoint"
)

// ErrLengthMismatch reports construction arrays that disagree in length, a
// call total different from the declared input+output split, or a
// public-input vector too short for the registry.
var ErrLengthMismatch = errors.New("registry: length mismatch")

// maxDecimals bounds the decimal exponent so 10^d fits a 256-bit word
// (10^78 >= 2^256).
const maxDecimals = 77

// CallDescriptor is a single read: the opaque ABI-encoded call payload plus
// the decimal divisor (10^decimals) the returned value is scaled by at its
// source.
type CallDescriptor struct {
	Payload []byte
	Divisor uint256.Int
}

// AccountCallRecord groups the ordered reads against one target. The order
// of calls, and of records in the registry, fixes the position each value
// occupies in the public-input vector.
type AccountCallRecord struct {
	Target common.Address
	Calls  []CallDescriptor
}

// CallRegistry is the ordered, immutable-after-construction list of reads,
// split into input positions followed by output positions.
type CallRegistry struct {
	records     []AccountCallRecord
	inputCalls  int
	outputCalls int
}

// New builds a registry from parallel per-account arrays: one target address,
// one ordered payload list, and one ordered decimal-exponent list per
// account. Decimal exponents are converted to 10^d divisors here. It fails
// with ErrLengthMismatch when the outer arrays disagree, when an account's
// payload and decimal lists disagree, or when the total call count is not
// inputCalls+outputCalls; a decimal exponent above 77 fails with
// fixedpoint.ErrOverflow.
func New(addresses []common.Address, payloads [][][]byte, decimals [][]uint, inputCalls, outputCalls int) (*CallRegistry, error) {
	if inputCalls < 0 || outputCalls < 0 {
		return nil, fmt.Errorf("%w: negative call counts %d/%d", ErrLengthMismatch, inputCalls, outputCalls)
	}
	if len(addresses) != len(payloads) || len(addresses) != len(decimals) {
		return nil, fmt.Errorf("%w: %d addresses, %d payload lists, %d decimal lists",
			ErrLengthMismatch, len(addresses), len(payloads), len(decimals))
	}

	total := 0
	records := make([]AccountCallRecord, len(addresses))
	for i, addr := range addresses {
		if len(payloads[i]) != len(decimals[i]) {
			return nil, fmt.Errorf("%w: account %d has %d payloads but %d decimals",
				ErrLengthMismatch, i, len(payloads[i]), len(decimals[i]))
		}
		calls := make([]CallDescriptor, len(payloads[i]))
		for j, p := range payloads[i] {
			d := decimals[i][j]
			if d > maxDecimals {
				return nil, fmt.Errorf("%w: account %d call %d: divisor 10^%d does not fit 256 bits",
					fixedpoint.ErrOverflow, i, j, d)
			}
			calls[j].Payload = append([]byte(nil), p...)
			calls[j].Divisor.Exp(uint256.NewInt(10), uint256.NewInt(uint64(d)))
		}
		records[i] = AccountCallRecord{Target: addr, Calls: calls}
		total += len(calls)
	}

	if total != inputCalls+outputCalls {
		return nil, fmt.Errorf("%w: registry has %d calls, declared %d inputs + %d outputs",
			ErrLengthMismatch, total, inputCalls, outputCalls)
	}

	return &CallRegistry{records: records, inputCalls: inputCalls, outputCalls: outputCalls}, nil
}

// Records returns the account records in attestation order. The slice is
// owned by the registry; callers must not modify it.
func (r *CallRegistry) Records() []AccountCallRecord { return r.records }

// InputCalls returns the number of input-position reads.
func (r *CallRegistry) InputCalls() int { return r.inputCalls }

// OutputCalls returns the number of output-position reads.
func (r *CallRegistry) OutputCalls() int { return r.outputCalls }

// TotalCalls returns the number of reads one attestation pass performs.
func (r *CallRegistry) TotalCalls() int { return r.inputCalls + r.outputCalls }

// OutputScaleTable holds one power-of-two scale multiplier per
// output-position read. Input positions always use scale 1.
type OutputScaleTable []uint256.Int

// NewOutputScaleTable converts scale exponents to 2^e multipliers; exponents
// of 256 and above cannot be represented and fail with fixedpoint.ErrOverflow.
func NewOutputScaleTable(exponents []uint) (OutputScaleTable, error) {
	table := make(OutputScaleTable, len(exponents))
	for i, e := range exponents {
		if e >= 256 {
			return nil, fmt.Errorf("%w: scale 2^%d does not fit 256 bits", fixedpoint.ErrOverflow, e)
		}
		table[i].Lsh(uint256.NewInt(1), e)
	}
	return table, nil
}
