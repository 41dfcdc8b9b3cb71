package jsonmap

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
)

// Fields every artifact keeps out of its signing input.
const (
	FieldID    = "id"
	FieldProof = "proof"
)

var (
	// ErrMissingProof is returned when an artifact carries no proof.
	ErrMissingProof = errors.New("artifact has no proof")
	// ErrInvalidSignature is returned when the proof does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrIDMismatch is returned when an artifact id is not derived from its signature.
	ErrIDMismatch = errors.New("id does not match signature")
)

// JSONMap represents a JSON object as a map.
type JSONMap jsonvalue.Object

// FromStruct converts a JSON-tagged value into a JSONMap.
func FromStruct(v interface{}) (JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}

	obj, err := jsonvalue.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	return JSONMap(obj), nil
}

// ToJSON serializes the JSONMap canonically.
func (m JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}
	return jsonvalue.Canonical(jsonvalue.Object(m)), nil
}

// Canonicalize returns the canonical JSON of the map without the excluded
// top-level fields. The result is what gets signed.
func (m JSONMap) Canonicalize(exclude ...string) []byte {
	skip := make(map[string]struct{}, len(exclude))
	for _, f := range exclude {
		skip[f] = struct{}{}
	}

	mCopy := make(jsonvalue.Object, len(m))
	for k, v := range m {
		if _, ok := skip[k]; !ok {
			mCopy[k] = v
		}
	}

	return jsonvalue.Canonical(mCopy)
}

// SigningInput is the canonical JSON of v without the id, the proof and
// any extra excluded fields.
func SigningInput(v interface{}, exclude ...string) ([]byte, error) {
	m, err := FromStruct(v)
	if err != nil {
		return nil, err
	}
	return m.Canonicalize(append([]string{FieldID, FieldProof}, exclude...)...), nil
}

// Sign signs the signing input of v and returns the proof and the id
// derived from the signature.
func Sign(ctx context.Context, v interface{}, signer crypto.Signer, purpose dto.ProofPurpose, created time.Time, exclude ...string) (*dto.Proof, string, error) {
	if !purpose.Valid() {
		return nil, "", fmt.Errorf("invalid proof purpose %q", purpose)
	}

	input, err := SigningInput(v, exclude...)
	if err != nil {
		return nil, "", err
	}

	signature, err := signer.Sign(ctx, crypto.Digest(input))
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign artifact: %w", err)
	}

	proof := &dto.Proof{
		Type:               crypto.ProofTypeSecp256k1,
		Created:            created.UTC().Format(time.RFC3339),
		ProofPurpose:       purpose,
		Value:              hex.EncodeToString(signature),
		VerificationMethod: signer.PublicKey(),
	}

	return proof, crypto.DeriveID(proof.Value), nil
}

// VerifyProof checks that proof signs v and that id was derived from it.
func VerifyProof(v interface{}, proof *dto.Proof, id string, exclude ...string) error {
	if proof == nil {
		return ErrMissingProof
	}
	if !proof.ProofPurpose.Valid() {
		return fmt.Errorf("%w: unknown proof purpose %q", ErrInvalidSignature, proof.ProofPurpose)
	}

	key, err := crypto.KeyFromProof(proof.Type, proof.VerificationMethod)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	signature, err := crypto.DecodeHex(proof.Value)
	if err != nil {
		return fmt.Errorf("%w: failed to decode signature: %v", ErrInvalidSignature, err)
	}

	input, err := SigningInput(v, exclude...)
	if err != nil {
		return err
	}

	if !key.Verify(input, signature) {
		return ErrInvalidSignature
	}

	if crypto.DeriveID(proof.Value) != id {
		return ErrIDMismatch
	}

	return nil
}
