package jwt

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"

	zkcrypto "github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
)

// SigningMethodES256K implements ES256K (secp256k1, SHA-256, R || S).
type SigningMethodES256K struct{}

// ES256K is the ES256K signing method instance
var ES256K = &SigningMethodES256K{}

func init() {
	jwt.RegisterSigningMethod(ES256K.Alg(), func() jwt.SigningMethod {
		return ES256K
	})
}

// Alg returns the algorithm name
func (m *SigningMethodES256K) Alg() string {
	return "ES256K"
}

// Sign signs signingString with a *ecdsa.PrivateKey or a hex private key.
func (m *SigningMethodES256K) Sign(signingString string, key interface{}) ([]byte, error) {
	var privKey *ecdsa.PrivateKey
	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		privKey = k
	case string:
		parsed, err := zkcrypto.ParsePrivateKeyHex(k)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		privKey = parsed
	default:
		return nil, jwt.ErrInvalidKeyType
	}

	sig, err := crypto.Sign(zkcrypto.Digest([]byte(signingString)), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	// R || S, without the recovery id
	return sig[:64], nil
}

// Verify verifies a signature against a *ecdsa.PublicKey.
func (m *SigningMethodES256K) Verify(signingString string, signature []byte, key interface{}) error {
	publicKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}

	if len(signature) != 64 {
		return fmt.Errorf("invalid signature length %d", len(signature))
	}

	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])

	if !ecdsa.Verify(publicKey, zkcrypto.Digest([]byte(signingString)), r, s) {
		return jwt.ErrSignatureInvalid
	}

	return nil
}
