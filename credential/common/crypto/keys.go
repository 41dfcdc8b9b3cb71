package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Verification method types a DID document may declare.
const (
	KeyTypeSecp256k1 = "EcdsaSecp256k1VerificationKey2019"
	KeyTypeEd25519   = "Ed25519VerificationKey2018"
)

// VerificationKey checks signatures for one public key.
type VerificationKey interface {
	// Type is the verification method type the key was built for.
	Type() string
	// Hex is the canonical hex form of the key, comparable with a proof's verificationMethod.
	Hex() string
	// Verify checks signature against message.
	Verify(message, signature []byte) bool
}

// KeyFromPublicKey builds a VerificationKey from raw public key bytes and
// the declared verification method type.
func KeyFromPublicKey(raw []byte, keyType string) (VerificationKey, error) {
	switch keyType {
	case KeyTypeSecp256k1:
		pub, err := ParsePublicKey(raw)
		if err != nil {
			return nil, err
		}
		return &secp256k1Key{pub: pub}, nil
	case KeyTypeEd25519:
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
		}
		return ed25519Key(raw), nil
	default:
		return nil, fmt.Errorf("unsupported verification method type %q", keyType)
	}
}

// ProofTypeFor maps a verification method type to the proof type it signs.
func ProofTypeFor(keyType string) (string, error) {
	switch keyType {
	case KeyTypeSecp256k1:
		return ProofTypeSecp256k1, nil
	case KeyTypeEd25519:
		return ProofTypeEd25519, nil
	}
	return "", fmt.Errorf("unsupported verification method type %q", keyType)
}

// KeyFromProof builds the key named by a proof's verificationMethod for its proof type.
func KeyFromProof(proofType, verificationMethod string) (VerificationKey, error) {
	raw, err := DecodeHex(verificationMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to decode verification method: %w", err)
	}

	switch proofType {
	case ProofTypeSecp256k1:
		return KeyFromPublicKey(raw, KeyTypeSecp256k1)
	case ProofTypeEd25519:
		return KeyFromPublicKey(raw, KeyTypeEd25519)
	}
	return nil, fmt.Errorf("unsupported proof type %q", proofType)
}

type secp256k1Key struct {
	pub *ecdsa.PublicKey
}

func (k *secp256k1Key) Type() string { return KeyTypeSecp256k1 }

func (k *secp256k1Key) Hex() string { return PublicKeyHex(k.pub) }

func (k *secp256k1Key) Verify(message, signature []byte) bool {
	if len(signature) == 65 {
		signature = signature[:64]
	}
	if len(signature) != 64 {
		return false
	}
	return crypto.VerifySignature(crypto.CompressPubkey(k.pub), Digest(message), signature)
}

type ed25519Key ed25519.PublicKey

func (k ed25519Key) Type() string { return KeyTypeEd25519 }

func (k ed25519Key) Hex() string { return hex.EncodeToString(k) }

func (k ed25519Key) Verify(message, signature []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(k), message, signature)
}
