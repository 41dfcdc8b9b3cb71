package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ProofTypeSecp256k1 is the proof type of artifacts signed by this package.
const ProofTypeSecp256k1 = "ECDSA_secp256k1"

// ProofTypeEd25519 is accepted for verification only.
const ProofTypeEd25519 = "Ed25519Signature2018"

// DecodeHex decodes a hex string with or without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

// Digest is the message digest every secp256k1 signature covers.
func Digest(message []byte) []byte {
	hash := sha256.Sum256(message)
	return hash[:]
}

// ParsePrivateKey parses a private key of type secp256k1 from bytes
// The length of the private key is 32 bytes.
func ParsePrivateKey(privateKeyBytes []byte) (*ecdsa.PrivateKey, error) {
	if len(privateKeyBytes) != 32 {
		return nil, errors.New("private key must be 32 bytes")
	}

	privKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, err
	}

	return privKey, nil
}

// ParsePrivateKeyHex parses a hex encoded secp256k1 private key.
func ParsePrivateKeyHex(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	raw, err := DecodeHex(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key hex: %w", err)
	}
	return ParsePrivateKey(raw)
}

// DeriveID derives an artifact id from its signature: hex(sha256(signature)).
// The id is bound to the signature, not to the signed content.
func DeriveID(signatureHex string) string {
	hash := sha256.Sum256([]byte(signatureHex))
	return hex.EncodeToString(hash[:])
}

// KeyPair is a hex encoded secp256k1 key pair. PublicKey is compressed.
type KeyPair struct {
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// GenerateKeyPair creates a random secp256k1 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	return &KeyPair{
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(priv)),
		PublicKey:  PublicKeyHex(&priv.PublicKey),
	}, nil
}

// PublicKeyHex renders a public key compressed, in hex, without prefix.
func PublicKeyHex(pub *ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.CompressPubkey(pub))
}
