// Package jwe wraps AES-GCM output in a JWE JSON envelope.
package jwe

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const tagSize = 16

type JWE struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type header struct {
	Alg string `json:"alg"`
	Enc string `json:"enc"`
	Crv string `json:"crv"`
	Typ string `json:"typ"`
}

var defaultHeader = header{
	Alg: "ECDH-ES",
	Enc: "A256GCM",
	Crv: "secp256k1",
	Typ: "application/didcomm-encrypted+json",
}

func base64url(input []byte) string {
	return base64.RawURLEncoding.EncodeToString(input)
}

// BuildJWE serializes a nonce and a GCM ciphertext (tag appended) as a
// compact JSON JWE.
func BuildJWE(iv, sealed []byte) (string, error) {
	if len(sealed) < tagSize {
		return "", fmt.Errorf("sealed data shorter than the GCM tag")
	}

	headerBytes, err := json.Marshal(defaultHeader)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWE header: %w", err)
	}

	split := len(sealed) - tagSize
	result, err := json.Marshal(JWE{
		Protected:  base64url(headerBytes),
		IV:         base64url(iv),
		Ciphertext: base64url(sealed[:split]),
		Tag:        base64url(sealed[split:]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWE: %w", err)
	}

	return string(result), nil
}

// ParseJWE returns the nonce and the GCM ciphertext with its tag appended.
func ParseJWE(s string) ([]byte, []byte, error) {
	var j JWE
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal JWE: %w", err)
	}

	rawHeader, err := base64.RawURLEncoding.DecodeString(j.Protected)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid protected header: %w", err)
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return nil, nil, fmt.Errorf("invalid protected header: %w", err)
	}
	if h.Enc != defaultHeader.Enc {
		return nil, nil, fmt.Errorf("unsupported content encryption %q", h.Enc)
	}

	iv, err := base64.RawURLEncoding.DecodeString(j.IV)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid iv: %w", err)
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(j.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ciphertext: %w", err)
	}
	tag, err := base64.RawURLEncoding.DecodeString(j.Tag)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid tag: %w", err)
	}

	return iv, append(ciphertext, tag...), nil
}
