package jsonmap

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
)

type artifact struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Values []int      `json:"values"`
	Status string     `json:"status,omitempty"`
	Proof  *dto.Proof `json:"proof,omitempty"`
}

func newSigner(t *testing.T) crypto.Signer {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	s, err := crypto.NewDefaultSigner(kp.PrivateKey)
	require.NoError(t, err)
	return s
}

func TestCanonicalize(t *testing.T) {
	m, err := FromStruct(artifact{ID: "x", Name: "n", Values: []int{2, 1}, Proof: &dto.Proof{Value: "00"}})
	require.NoError(t, err)

	assert.Equal(t, `{"name":"n","values":[2,1]}`, string(m.Canonicalize(FieldID, FieldProof)))

	raw, err := m.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"x"`)
}

func TestSignAndVerify(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	a := artifact{Name: "schema", Values: []int{1, 2, 3}}
	proof, id, err := Sign(ctx, a, signer, dto.ProofPurposeAssertion, created)
	require.NoError(t, err)

	assert.Equal(t, crypto.ProofTypeSecp256k1, proof.Type)
	assert.Equal(t, "2024-05-01T10:00:00Z", proof.Created)
	assert.Equal(t, signer.PublicKey(), proof.VerificationMethod)
	assert.Equal(t, crypto.DeriveID(proof.Value), id)

	a.ID = id
	a.Proof = proof
	require.NoError(t, VerifyProof(a, a.Proof, a.ID))

	t.Run("tampered field", func(t *testing.T) {
		b := a
		b.Values = []int{1, 2, 4}
		assert.ErrorIs(t, VerifyProof(b, b.Proof, b.ID), ErrInvalidSignature)
	})

	t.Run("tampered id", func(t *testing.T) {
		assert.ErrorIs(t, VerifyProof(a, a.Proof, "deadbeef"), ErrIDMismatch)
	})

	t.Run("excluded field may change", func(t *testing.T) {
		proof, id, err := Sign(ctx, a, signer, dto.ProofPurposeAuthentication, created, "status")
		require.NoError(t, err)
		b := a
		b.Status = "VERIFIED"
		assert.NoError(t, VerifyProof(b, proof, id, "status"))
		assert.ErrorIs(t, VerifyProof(b, proof, id), ErrInvalidSignature)
	})

	t.Run("missing proof", func(t *testing.T) {
		assert.ErrorIs(t, VerifyProof(a, nil, a.ID), ErrMissingProof)
	})

	t.Run("unknown purpose", func(t *testing.T) {
		p := *a.Proof
		p.ProofPurpose = "CAPABILITY"
		assert.ErrorIs(t, VerifyProof(a, &p, a.ID), ErrInvalidSignature)
	})

	t.Run("wrong key", func(t *testing.T) {
		p := *a.Proof
		p.VerificationMethod = newSigner(t).PublicKey()
		assert.ErrorIs(t, VerifyProof(a, &p, a.ID), ErrInvalidSignature)
	})
}

func TestSignInvalidPurpose(t *testing.T) {
	_, _, err := Sign(context.Background(), artifact{}, newSigner(t), "OTHER", time.Now())
	assert.ErrorContains(t, err, "invalid proof purpose")
}

func TestVerifyEd25519Proof(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	a := artifact{Name: "ed", Values: []int{7}}
	input, err := SigningInput(a)
	require.NoError(t, err)

	proof := &dto.Proof{
		Type:               crypto.ProofTypeEd25519,
		ProofPurpose:       dto.ProofPurposeAssertion,
		Value:              hex.EncodeToString(ed25519.Sign(priv, input)),
		VerificationMethod: hex.EncodeToString(pub),
	}

	assert.NoError(t, VerifyProof(a, proof, crypto.DeriveID(proof.Value)))
}
