// Package multibase decodes the prefixed key strings found in DID documents.
package multibase

import (
	"fmt"

	"github.com/multiformats/go-multibase"
)

// Supported lists the encodings DID documents may use for keys:
// z (base58btc), m (base64), u (base64url) and f (hex).
var Supported = []multibase.Encoding{
	multibase.Base58BTC,
	multibase.Base64,
	multibase.Base64url,
	multibase.Base16,
}

// Decode decodes a multibase string restricted to the Supported encodings.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("multibase value is empty")
	}

	enc, data, err := multibase.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode multibase value: %w", err)
	}
	if !supported(enc) {
		return nil, fmt.Errorf("unsupported multibase prefix %q", s[0])
	}

	return data, nil
}

// EncodeBase58BTC encodes data with the z prefix.
func EncodeBase58BTC(data []byte) string {
	s, err := multibase.Encode(multibase.Base58BTC, data)
	if err != nil {
		// Base58BTC is a registered encoding, Encode cannot fail for it.
		panic(err)
	}
	return s
}

func supported(enc multibase.Encoding) bool {
	for _, s := range Supported {
		if s == enc {
			return true
		}
	}
	return false
}
