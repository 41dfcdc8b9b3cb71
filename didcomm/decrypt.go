package didcomm

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pilacorp/go-zkcredential-sdk/didcomm/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm/jwe"
)

// ErrDecryption is returned for every failure to open a sealed value:
// wrong keys, corrupted or truncated ciphertext.
var ErrDecryption = errors.New("decryption failed")

// OpenFrom decrypts a value sealed by SealTo. The mode is detected from
// the ciphertext: a JSON object is a JWE, anything else is hex CBC.
func OpenFrom(recipientPrivHex, senderPubHex, ciphertext string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(ciphertext), "{") {
		return openGCM(recipientPrivHex, senderPubHex, ciphertext)
	}
	return openCBC(recipientPrivHex, senderPubHex, ciphertext)
}

func openCBC(recipientPrivHex, senderPubHex, ciphertext string) (string, error) {
	point, err := SharedPoint(recipientPrivHex, senderPubHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext hex: %v", ErrDecryption, err)
	}

	plaintext, err := crypto.DecryptAESCBC(FoldTo16Bytes(point), crypto.FixedIV(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	plaintext = bytes.TrimRight(plaintext, "\x00")
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryption)
	}

	return string(plaintext), nil
}

func openGCM(recipientPrivHex, senderPubHex, envelope string) (string, error) {
	key, err := GetFromKeys(senderPubHex, recipientPrivHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	nonce, sealed, err := jwe.ParseJWE(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	plaintext, err := crypto.DecryptAESGCM(key, nonce, sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return string(plaintext), nil
}
