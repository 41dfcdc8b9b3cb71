package dto

// ProofPurpose states why an artifact was signed.
type ProofPurpose string

const (
	ProofPurposeAssertion      ProofPurpose = "ASSERTION"
	ProofPurposeAuthentication ProofPurpose = "AUTHENTICATION"
)

// Valid reports whether p is one of the known purposes.
func (p ProofPurpose) Valid() bool {
	return p == ProofPurposeAssertion || p == ProofPurposeAuthentication
}

// Proof is the self-authentication envelope attached to credentials,
// schemas and presentations. VerificationMethod carries the signer's public
// key in hex and Value the signature in hex.
type Proof struct {
	Type               string       `json:"type"`
	Created            string       `json:"created"`
	ProofPurpose       ProofPurpose `json:"proofPurpose"`
	Value              string       `json:"value"`
	VerificationMethod string       `json:"verificationMethod"`
}
