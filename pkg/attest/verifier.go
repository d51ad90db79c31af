package attest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
)

// ProofVerifier is the opaque proof-verification collaborator, consumed only
// after attestation has passed. (false, nil) means a well-formed proof that
// does not verify; a non-nil error means the inputs were malformed.
type ProofVerifier interface {
	Verify(proof []byte, publicInputs []fr.Element) (bool, error)
}

// Groth16Verifier verifies serialized gnark Groth16 proofs over BN254
// against a verifying key fixed at construction.
type Groth16Verifier struct {
	vk groth16.VerifyingKey
}

// NewGroth16Verifier binds a deserialized verifying key.
func NewGroth16Verifier(vk groth16.VerifyingKey) *Groth16Verifier {
	return &Groth16Verifier{vk: vk}
}

// LoadVerifyingKey reads a gnark-serialized BN254 verifying key from path.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verifying key: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("decode verifying key %s: %w", path, err)
	}
	return vk, nil
}

// Verify deserializes the proof, builds the public witness from the field
// elements, and runs the pairing check. A failed pairing check is the
// (false, nil) verdict; only undecodable inputs are errors.
func (v *Groth16Verifier) Verify(proof []byte, publicInputs []fr.Element) (bool, error) {
	p := groth16.NewProof(ecc.BN254)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return false, fmt.Errorf("decode proof: %w", err)
	}

	w, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return false, fmt.Errorf("new witness: %w", err)
	}
	values := make(chan any, len(publicInputs))
	for i := range publicInputs {
		values <- publicInputs[i]
	}
	close(values)
	if err := w.Fill(len(publicInputs), 0, values); err != nil {
		return false, fmt.Errorf("fill public witness: %w", err)
	}

	if err := groth16.Verify(p, v.vk, w); err != nil {
		return false, nil
	}
	return true, nil
}
