package attest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/yourorg/zkattest/pkg/felt"
	"github.com/yourorg/zkattest/pkg/fixedpoint"
	"github.com/yourorg/zkattest/pkg/registry"
)

// int256Return decodes the single signed word every registered read is
// expected to return.
var int256Return = abi.Arguments{{Type: mustABIType("int256")}}

func mustABIType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

// Option configures an Engine or a Gate.
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger attaches a structured logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func applyOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Engine performs the attestation pass over an immutable registry. It holds
// no mutable state; Attest is deterministic for identical reader responses
// and public inputs.
type Engine struct {
	reg    *registry.CallRegistry
	scales registry.OutputScaleTable
	offset int
	log    zerolog.Logger
}

// NewEngine binds the registry, the per-output scale table, and the starting
// offset of this engine's slots within the public-input vector. It fails
// with registry.ErrLengthMismatch when the table does not carry exactly one
// scale per output call, or when the offset is negative.
func NewEngine(reg *registry.CallRegistry, scales registry.OutputScaleTable, instanceOffset int, opts ...Option) (*Engine, error) {
	if len(scales) != reg.OutputCalls() {
		return nil, fmt.Errorf("%w: %d output scales for %d output calls",
			registry.ErrLengthMismatch, len(scales), reg.OutputCalls())
	}
	if instanceOffset < 0 {
		return nil, fmt.Errorf("%w: negative instance offset %d", registry.ErrLengthMismatch, instanceOffset)
	}
	o := applyOptions(opts)
	return &Engine{reg: reg, scales: scales, offset: instanceOffset, log: o.log}, nil
}

// InstanceOffset returns the first public-input index the engine compares.
func (e *Engine) InstanceOffset() int { return e.offset }

// Registry returns the bound call registry.
func (e *Engine) Registry() *registry.CallRegistry { return e.reg }

// Attest runs the single linear pass: for every registered call, in order,
// read through r, decode the returned int256, quantize at the call's divisor
// and the position's scale, map into the field, and compare against the
// expected slot of publicInputs. The first failure of any kind aborts the
// whole pass; there is no partial acceptance.
//
// The full slot range [offset, offset+totalCalls) is validated against
// len(publicInputs) before the first read, so a doomed pass performs no
// reads at all.
func (e *Engine) Attest(ctx context.Context, r Reader, publicInputs []fr.Element) error {
	need := e.offset + e.reg.TotalCalls()
	if len(publicInputs) < need {
		return fmt.Errorf("%w: %d public inputs, need at least %d",
			registry.ErrLengthMismatch, len(publicInputs), need)
	}

	one := uint256.NewInt(1)
	counter := 0
	for _, rec := range e.reg.Records() {
		for ci := range rec.Calls {
			call := &rec.Calls[ci]

			raw, err := e.read(ctx, r, rec.Target, call.Payload)
			if err != nil {
				return fmt.Errorf("slot %d (%s call %d): %w", counter, rec.Target, ci, err)
			}

			scale := one
			if counter >= e.reg.InputCalls() {
				scale = &e.scales[counter-e.reg.InputCalls()]
			}
			q, err := fixedpoint.Quantize(raw, &call.Divisor, scale)
			if err != nil {
				return fmt.Errorf("slot %d (%s call %d): %w", counter, rec.Target, ci, err)
			}

			got := felt.FromSigned(q)
			want := publicInputs[counter+e.offset]
			if !got.Equal(&want) {
				return fmt.Errorf("%w: slot %d (%s call %d): computed %s, expected %s",
					ErrMismatch, counter, rec.Target, ci, got.String(), want.String())
			}

			e.log.Debug().
				Int("slot", counter).
				Stringer("target", rec.Target).
				Str("raw", raw.String()).
				Str("quantized", q.String()).
				Str("element", got.String()).
				Msg("slot attested")
			counter++
		}
	}

	e.log.Info().Int("slots", counter).Msg("attestation passed")
	return nil
}

func (e *Engine) read(ctx context.Context, r Reader, target common.Address, payload []byte) (*big.Int, error) {
	data, err := r.Read(ctx, target, payload)
	if err != nil {
		if !errors.Is(err, ErrCallFailed) {
			err = fmt.Errorf("%w: %v", ErrCallFailed, err)
		}
		return nil, err
	}
	vals, err := int256Return.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode return data: %v", ErrCallFailed, err)
	}
	return vals[0].(*big.Int), nil
}
