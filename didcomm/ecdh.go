// Package didcomm seals values between two secp256k1 key holders.
//
// The default mode reproduces the protocol's original scheme: the full
// ECDH point is folded to an AES-128 key and the NUL padded plaintext is
// encrypted with AES-CBC under a fixed IV. The fixed IV makes equal
// plaintexts produce equal ciphertexts; WithRandomNonce switches to
// AES-256-GCM with a random nonce in a JWE envelope.
package didcomm

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
)

func parseKeys(privHex, pubHex string) (*secp256k1.PrivateKey, *secp256k1.PublicKey, error) {
	privBytes, err := crypto.DecodeHex(privHex)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privBytes) != 32 {
		return nil, nil, fmt.Errorf("private key must be 32 bytes, got %d", len(privBytes))
	}

	pubBytes, err := crypto.DecodeHex(pubHex)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return secp256k1.PrivKeyFromBytes(privBytes), pub, nil
}

// SharedPoint returns priv * pub as an uncompressed point (65 bytes).
// Both sides of a channel compute the same point.
func SharedPoint(privHex, pubHex string) ([]byte, error) {
	priv, pub, err := parseKeys(privHex, pubHex)
	if err != nil {
		return nil, err
	}

	var point, result secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()

	return secp256k1.NewPublicKey(&result.X, &result.Y).SerializeUncompressed(), nil
}

// GetFromKeys returns the 32 byte ECDH secret (the X coordinate of the
// shared point), used as the AES-256 key of the random nonce mode.
func GetFromKeys(pubHex, privHex string) ([]byte, error) {
	priv, pub, err := parseKeys(privHex, pubHex)
	if err != nil {
		return nil, err
	}

	return secp256k1.GenerateSharedSecret(priv, pub), nil
}

// FoldTo16Bytes XORs the tail of b onto the bytes 16 positions before it
// until 16 bytes remain.
func FoldTo16Bytes(b []byte) []byte {
	out := append([]byte(nil), b...)
	for len(out) > 16 {
		last := len(out) - 1
		out[last-16] ^= out[last]
		out = out[:last]
	}
	return out
}
