package circuit

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
)

// Prover turns circuit inputs into a proof. Proving is the long-running
// step of the protocol; implementations must honour ctx.
type Prover interface {
	Prove(ctx context.Context, inputs *ProverInputs) (*types.ProofData, error)
}

// ProofVerifier checks a proof against a verification key and public inputs.
// A false result means the proof does not verify. An error means the key
// or public inputs cannot be used.
type ProofVerifier interface {
	Verify(ctx context.Context, verificationKey []byte, publicInputs []*big.Int, proof *types.ProofData) (bool, error)
}

// Groth16Verifier verifies snarkjs/circom Groth16 proofs against a snarkjs
// verification key JSON.
type Groth16Verifier struct{}

// NewGroth16Verifier returns the pure Go Groth16 verifier.
func NewGroth16Verifier() *Groth16Verifier {
	return &Groth16Verifier{}
}

func (g *Groth16Verifier) Verify(ctx context.Context, verificationKey []byte, publicInputs []*big.Int, proof *types.ProofData) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if proof == nil {
		return false, fmt.Errorf("proof is nil")
	}
	if !json.Valid(verificationKey) {
		return false, fmt.Errorf("verification key is not valid JSON")
	}

	signals := make([]string, len(publicInputs))
	for i, x := range publicInputs {
		signals[i] = x.String()
	}
	if err := checkVerificationKey(verificationKey, len(signals)); err != nil {
		return false, err
	}
	logger := logging.Component("groth16")
	if !wellShapedProof(proof) {
		logger.Debug().Msg("proof rejected: malformed points")
		return false, nil
	}

	err := verifier.VerifyGroth16(types.ZKProof{Proof: proof, PubSignals: signals}, verificationKey)
	if err == nil {
		return true, nil
	}
	if err.Error() != errPairingFailed {
		// Tell a malformed proof apart from a key or input the library cannot use.
		if kerr := verifier.VerifyGroth16(types.ZKProof{Proof: identityProof(), PubSignals: signals}, verificationKey); kerr != nil && kerr.Error() != errPairingFailed {
			return false, fmt.Errorf("unusable verification key or public inputs: %w", kerr)
		}
	}

	logger.Debug().Err(err).Int("publicInputs", len(signals)).Msg("proof rejected")
	return false, nil
}

// errPairingFailed is the message the verifier library returns when every
// input parsed and only the pairing check failed.
const errPairingFailed = "invalid proofs"

// snarkjsKey mirrors the fields of a snarkjs verification key the library reads.
type snarkjsKey struct {
	Alpha []string   `json:"vk_alpha_1"`
	Beta  [][]string `json:"vk_beta_2"`
	Gamma [][]string `json:"vk_gamma_2"`
	Delta [][]string `json:"vk_delta_2"`
	IC    [][]string `json:"IC"`
}

// checkVerificationKey rejects keys whose shape the library would fail on or
// index past.
func checkVerificationKey(raw []byte, numPublic int) error {
	var vk snarkjsKey
	if err := json.Unmarshal(raw, &vk); err != nil {
		return fmt.Errorf("verification key: %w", err)
	}
	if len(vk.Alpha) < 3 {
		return fmt.Errorf("verification key: vk_alpha_1 is not a G1 point")
	}
	for name, p := range map[string][][]string{"vk_beta_2": vk.Beta, "vk_gamma_2": vk.Gamma, "vk_delta_2": vk.Delta} {
		if len(p) < 3 || len(p[0]) < 2 || len(p[1]) < 2 {
			return fmt.Errorf("verification key: %s is not a G2 point", name)
		}
	}
	if len(vk.IC) != numPublic+1 {
		return fmt.Errorf("verification key: has %d IC points for %d public inputs", len(vk.IC), numPublic)
	}
	for i, p := range vk.IC {
		if len(p) < 3 {
			return fmt.Errorf("verification key: IC[%d] is not a G1 point", i)
		}
	}
	return nil
}

func wellShapedProof(p *types.ProofData) bool {
	return len(p.A) >= 3 && len(p.C) >= 3 && len(p.B) >= 3 && len(p.B[0]) >= 2 && len(p.B[1]) >= 2
}

// identityProof is a proof made of points at infinity. It parses under any
// key, so verifying it isolates errors in the key and public inputs.
func identityProof() *types.ProofData {
	return &types.ProofData{
		A:        []string{"0", "0", "1"},
		B:        [][]string{{"0", "0"}, {"0", "0"}, {"1", "0"}},
		C:        []string{"0", "0", "1"},
		Protocol: "groth16",
	}
}
