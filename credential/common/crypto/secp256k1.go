package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParsePublicKey parses a compressed (33 bytes) or uncompressed (65 bytes)
// secp256k1 public key. A bare 64 byte X || Y point is read as uncompressed.
func ParsePublicKey(pubKeyBytes []byte) (*ecdsa.PublicKey, error) {
	switch len(pubKeyBytes) {
	case 0:
		return nil, fmt.Errorf("public key is empty")
	case 64:
		pubKeyBytes = append([]byte{0x04}, pubKeyBytes...)
	}

	parsed, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	pub, err := crypto.UnmarshalPubkey(parsed.SerializeUncompressed())
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	return pub, nil
}

// ParsePublicKeyHex parses a hex encoded secp256k1 public key.
func ParsePublicKeyHex(publicKeyHex string) (*ecdsa.PublicKey, error) {
	raw, err := DecodeHex(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key hex: %w", err)
	}
	return ParsePublicKey(raw)
}

// SamePublicKey reports whether two hex keys, in any encoding, are the same point.
func SamePublicKey(a, b string) bool {
	pa, err := ParsePublicKeyHex(a)
	if err != nil {
		return false
	}
	pb, err := ParsePublicKeyHex(b)
	if err != nil {
		return false
	}
	return bytes.Equal(crypto.CompressPubkey(pa), crypto.CompressPubkey(pb))
}

// VerifyKeyPair verifies if a private key and public key match
func VerifyKeyPair(privateKey *ecdsa.PrivateKey, publicKey *ecdsa.PublicKey) bool {
	derivedPublicKey := &privateKey.PublicKey

	return derivedPublicKey.X.Cmp(publicKey.X) == 0 &&
		derivedPublicKey.Y.Cmp(publicKey.Y) == 0
}

// VerifyKeyPairFromHex verifies if a private key (hex) and public key (hex) match.
func VerifyKeyPairFromHex(privateKeyHex, publicKeyHex string) (bool, error) {
	privateKey, err := ParsePrivateKeyHex(privateKeyHex)
	if err != nil {
		return false, err
	}

	publicKey, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false, err
	}

	return VerifyKeyPair(privateKey, publicKey), nil
}
