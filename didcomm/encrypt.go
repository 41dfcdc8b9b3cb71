package didcomm

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/pilacorp/go-zkcredential-sdk/didcomm/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm/jwe"
)

// Option configures SealTo.
type Option func(*options)

type options struct {
	randomNonce bool
}

// WithRandomNonce seals with AES-256-GCM under a random nonce and returns a
// JWE JSON envelope instead of bare hex.
func WithRandomNonce() Option {
	return func(o *options) {
		o.randomNonce = true
	}
}

// SealTo encrypts plaintext from the sender to the recipient. Trailing NUL
// bytes of plaintext do not survive the default mode.
func SealTo(senderPrivHex, recipientPubHex, plaintext string, opts ...Option) (string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.randomNonce {
		return sealGCM(senderPrivHex, recipientPubHex, plaintext)
	}
	return sealCBC(senderPrivHex, recipientPubHex, plaintext)
}

func sealCBC(senderPrivHex, recipientPubHex, plaintext string) (string, error) {
	point, err := SharedPoint(senderPrivHex, recipientPubHex)
	if err != nil {
		return "", fmt.Errorf("failed to derive shared secret: %w", err)
	}

	// An empty plaintext still seals to one zero block so it can be opened.
	padded := []byte(plaintext)
	if rem := len(padded) % crypto.BlockSize; rem != 0 || len(padded) == 0 {
		padded = append(padded, bytes.Repeat([]byte{0}, crypto.BlockSize-rem)...)
	}

	ciphertext, err := crypto.EncryptAESCBC(FoldTo16Bytes(point), crypto.FixedIV(), padded)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(ciphertext), nil
}

func sealGCM(senderPrivHex, recipientPubHex, plaintext string) (string, error) {
	key, err := GetFromKeys(recipientPubHex, senderPrivHex)
	if err != nil {
		return "", fmt.Errorf("failed to derive shared secret: %w", err)
	}

	nonce, sealed, err := crypto.EncryptAESGCM(key, []byte(plaintext))
	if err != nil {
		return "", err
	}

	return jwe.BuildJWE(nonce, sealed)
}
