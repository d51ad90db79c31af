// Package attest runs the data-attestation pass that gates proof
// verification: every registered on-chain read is quantized, mapped into the
// BN254 scalar field, and compared bit-exact against its slot of the proof's
// public-input vector. Only a fully matching pass lets the proof reach the
// pairing check.
package attest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrCallFailed reports an external read that did not succeed, returned
	// data that does not decode as a single int256 word, or returned nothing
	// from a target with no code.
	ErrCallFailed = errors.New("attest: call failed")

	// ErrMismatch reports a computed field element that differs from its
	// expected public-input slot. The whole attestation is rejected.
	ErrMismatch = errors.New("attest: public input mismatch")
)

// Reader is the injected read-only call capability. Implementations must not
// mutate any state reachable by the read; the attestation contract depends
// on reads being pure observations.
type Reader interface {
	Read(ctx context.Context, target common.Address, payload []byte) ([]byte, error)
}

// EthReader reads through an ethclient eth_call, optionally pinned to a
// block so that one attestation pass observes a single consistent state.
type EthReader struct {
	cli   *ethclient.Client
	block *big.Int
}

// NewEthReader wraps cli; a nil block reads at the latest state.
func NewEthReader(cli *ethclient.Client, block *big.Int) *EthReader {
	return &EthReader{cli: cli, block: block}
}

// Read performs the eth_call. Empty return data is only accepted from a
// target that actually has code; an empty return from a code-less address
// means the call silently hit a non-contract and is classified ErrCallFailed.
func (r *EthReader) Read(ctx context.Context, target common.Address, payload []byte) ([]byte, error) {
	out, err := r.cli.CallContract(ctx, ethereum.CallMsg{To: &target, Data: payload}, r.block)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_call %s: %v", ErrCallFailed, target, err)
	}
	if len(out) == 0 {
		code, err := r.cli.CodeAt(ctx, target, r.block)
		if err != nil {
			return nil, fmt.Errorf("%w: eth_getCode %s: %v", ErrCallFailed, target, err)
		}
		if len(code) == 0 {
			return nil, fmt.Errorf("%w: call to non-contract %s", ErrCallFailed, target)
		}
	}
	return out, nil
}
