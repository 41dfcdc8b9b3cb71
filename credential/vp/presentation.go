// Package vp builds and verifies selective-disclosure presentations.
//
// The holder side evaluates a schema's checks against decrypted
// credentials, assembles the fixed-shape circuit inputs and seals the
// requested values to the verifier. The verifier side checks every
// signature, opens the disclosed values, recomputes the public inputs from
// the plaintext artifacts alone and hands them to a SNARK verifier.
package vp

import (
	"context"
	"fmt"

	"github.com/iden3/go-rapidsnark/types"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
)

// Status is the review state of a submitted presentation.
type Status string

const (
	StatusNotVerified Status = "NOT_VERIFIED"
	StatusVerified    Status = "VERIFIED"
	StatusRejected    Status = "REJECTED"
)

// Fields left out of the presentation signature: the proof is attached
// after signing and the status belongs to the verifier.
const (
	fieldSNARKProof = "snarkProof"
	fieldStatus     = "status"
)

var unsignedFields = []string{fieldSNARKProof, fieldStatus}

// Presentation is what a holder submits against a schema.
type Presentation struct {
	ID              string           `json:"id"`
	Holder          string           `json:"holder"`
	HolderPublicKey string           `json:"holderPublicKey"`
	Credentials     []*vc.Credential `json:"credentials"`
	Schema          *vc.Schema       `json:"schema"`
	EncryptedData   string           `json:"encryptedData"`
	SNARKProof      *types.ProofData `json:"snarkProof,omitempty"`
	Proof           *dto.Proof       `json:"proof,omitempty"`
	Status          Status           `json:"status"`
}

// Prove runs the external prover over inputs and attaches the proof.
// Proving is slow; ctx should carry the caller's deadline.
func Prove(ctx context.Context, prover circuit.Prover, p *Presentation, inputs *circuit.ProverInputs) error {
	proof, err := prover.Prove(ctx, inputs)
	if err != nil {
		return fmt.Errorf("failed to prove presentation %s: %w", p.ID, err)
	}
	if proof == nil {
		return fmt.Errorf("prover returned no proof for presentation %s", p.ID)
	}
	p.SNARKProof = proof
	return nil
}

// SetStatus records the verifier's decision. Only the schema's verifier may
// decide, only once, and only VERIFIED or REJECTED.
func (p *Presentation) SetStatus(verifierDID string, status Status) error {
	if p.Schema == nil || p.Schema.Verifier != verifierDID {
		return vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "%s is not the verifier of presentation %s", verifierDID, p.ID)
	}
	if status != StatusVerified && status != StatusRejected {
		return fmt.Errorf("invalid status transition to %q", status)
	}
	if p.Status != "" && p.Status != StatusNotVerified {
		return fmt.Errorf("presentation %s is already %s", p.ID, p.Status)
	}
	p.Status = status
	return nil
}
