package circuit

import (
	"encoding/json"
	"math/big"
)

// Vector is a one dimensional circuit signal.
type Vector []*big.Int

// Matrix is a two dimensional circuit signal.
type Matrix []Vector

// Tensor is a three dimensional circuit signal.
type Tensor []Matrix

// NewVector returns n copies of fill.
func NewVector(n int, fill *big.Int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = new(big.Int).Set(fill)
	}
	return v
}

// NewMatrix returns an rows x cols matrix filled with fill.
func NewMatrix(rows, cols int, fill *big.Int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = NewVector(cols, fill)
	}
	return m
}

// NewTensor returns an a x b matrix whose cells are copies of cell.
func NewTensor(a, b int, cell Vector) Tensor {
	t := make(Tensor, a)
	for i := range t {
		t[i] = make(Matrix, b)
		for j := range t[i] {
			t[i][j] = cell.Clone()
		}
	}
	return t
}

// Clone deep-copies the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = new(big.Int).Set(x)
	}
	return out
}

// Strings renders the vector as decimal strings.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = x.String()
	}
	return out
}

// MarshalJSON writes field elements as decimal strings, the form circom
// witness generators and snarkjs expect.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Strings())
}

var (
	// DummyIndex is the field index of every padding slot.
	DummyIndex = big.NewInt(1)
	zero       = big.NewInt(0)
)

// PublicInputs are the signals the verifier recomputes from plaintext
// artifacts. Dimensions follow the Config they were created with.
type PublicInputs struct {
	CredentialRoots               Vector `json:"credentialRoots"`
	SchemaCheckRoots              Vector `json:"schemaCheckRoots"`
	RequestedCredentialRoots      Vector `json:"requestedCredentialRoots"`
	CredentialsFieldIndex         Matrix `json:"credentialsFieldIndex"`
	SchemaChecksFieldIndex        Matrix `json:"schemaChecksFieldIndex"`
	SchemaChecksOperation         Matrix `json:"schemaChecksOperation"`
	RequestedValue                Matrix `json:"requestedValue"`
	RequestedCredentialFieldIndex Vector `json:"requestedCredentialFieldIndex"`
}

// NewPublicInputs returns public inputs with every slot set to the padding
// sentinel: roots of the dummy tree, field index 1, operator 0, zero values.
func NewPublicInputs(cfg Config, dummyRoot *big.Int) *PublicInputs {
	return &PublicInputs{
		CredentialRoots:               NewVector(cfg.MaxNumChecks, dummyRoot),
		SchemaCheckRoots:              NewVector(cfg.MaxNumChecks, dummyRoot),
		RequestedCredentialRoots:      NewVector(cfg.MaxNumChecks, dummyRoot),
		CredentialsFieldIndex:         NewMatrix(cfg.MaxNumChecks, cfg.MaxCheckSize, DummyIndex),
		SchemaChecksFieldIndex:        NewMatrix(cfg.MaxNumChecks, cfg.MaxCheckSize, DummyIndex),
		SchemaChecksOperation:         NewMatrix(cfg.MaxNumChecks, cfg.MaxCheckSize, zero),
		RequestedValue:                NewMatrix(cfg.MaxNumChecks, cfg.MaxValueChunk, zero),
		RequestedCredentialFieldIndex: NewVector(cfg.MaxNumChecks, DummyIndex),
	}
}

// Vector flattens the public inputs in circuit order, led by the circuit
// output signal (always 0).
func (p *PublicInputs) Vector() Vector {
	out := Vector{big.NewInt(0)}
	out = append(out, p.CredentialRoots...)
	out = append(out, p.SchemaCheckRoots...)
	out = append(out, p.RequestedCredentialRoots...)
	for _, m := range []Matrix{p.CredentialsFieldIndex, p.SchemaChecksFieldIndex, p.SchemaChecksOperation, p.RequestedValue} {
		for _, row := range m {
			out = append(out, row...)
		}
	}
	out = append(out, p.RequestedCredentialFieldIndex...)
	return out.Clone()
}

// ProverInputs is the full witness input of the circuit: the public inputs
// plus the inclusion proofs and encoded values only the holder knows.
type ProverInputs struct {
	PublicInputs

	CredentialsProof         Tensor `json:"credentialsProof"`
	CredentialsValue         Tensor `json:"credentialsValue"`
	SchemaChecksProof        Tensor `json:"schemaChecksProof"`
	SchemaChecksValue        Tensor `json:"schemaChecksValue"`
	RequestedCredentialProof Matrix `json:"requestedCredentialProof"`
}

// NewProverInputs returns prover inputs with every slot padded: dummyProof
// is the dummy leaf's proof in the dummy tree (SMTLevel+1 elements).
func NewProverInputs(cfg Config, dummyRoot *big.Int, dummyProof Vector) *ProverInputs {
	zeroValue := NewVector(cfg.MaxValueChunk, zero)

	requested := make(Matrix, cfg.MaxNumChecks)
	for i := range requested {
		requested[i] = dummyProof.Clone()
	}

	return &ProverInputs{
		PublicInputs:             *NewPublicInputs(cfg, dummyRoot),
		CredentialsProof:         NewTensor(cfg.MaxNumChecks, cfg.MaxCheckSize, dummyProof),
		CredentialsValue:         NewTensor(cfg.MaxNumChecks, cfg.MaxCheckSize, zeroValue),
		SchemaChecksProof:        NewTensor(cfg.MaxNumChecks, cfg.MaxCheckSize, dummyProof),
		SchemaChecksValue:        NewTensor(cfg.MaxNumChecks, cfg.MaxCheckSize, zeroValue),
		RequestedCredentialProof: requested,
	}
}

// Public returns a copy of the public part.
func (p *ProverInputs) Public() *PublicInputs {
	pub := p.PublicInputs
	return &pub
}
