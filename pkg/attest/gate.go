package attest

import (
	"context"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
)

// Gate is the verification entrypoint: attestation first, the opaque proof
// check only if attestation passed. An attestation failure surfaces as an
// error of the whole call, never as a boolean false, so callers cannot
// confuse "data did not match" with "proof did not verify".
type Gate struct {
	engine   *Engine
	reader   Reader
	verifier ProofVerifier
	log      zerolog.Logger
}

// NewGate binds the engine, the read capability, and the proof verifier.
func NewGate(engine *Engine, reader Reader, verifier ProofVerifier, opts ...Option) *Gate {
	o := applyOptions(opts)
	return &Gate{engine: engine, reader: reader, verifier: verifier, log: o.log}
}

// Verify attests every registered read against publicInputs, then hands the
// proof to the verifier. The verifier never runs when attestation fails.
func (g *Gate) Verify(ctx context.Context, publicInputs []fr.Element, proof []byte) (bool, error) {
	if err := g.engine.Attest(ctx, g.reader, publicInputs); err != nil {
		return false, fmt.Errorf("attestation: %w", err)
	}
	ok, err := g.verifier.Verify(proof, publicInputs)
	if err != nil {
		return false, fmt.Errorf("proof verification: %w", err)
	}
	g.log.Info().Bool("verified", ok).Msg("gate verdict")
	return ok, nil
}
