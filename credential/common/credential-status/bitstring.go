package credentialstatus

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
)

// EncodeList builds the encodedList of a status list of size bits with the
// given positions set. Bits are LSB-first within each byte.
func EncodeList(size int, set ...int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("status list size must be positive")
	}

	bits := make([]byte, (size+7)/8)
	for _, pos := range set {
		if pos < 0 || pos >= size {
			return "", fmt.Errorf("position %d outside a list of %d", pos, size)
		}
		bits[pos/8] |= 1 << (pos % 8)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(bits); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeList reverses EncodeList.
func DecodeList(encoded string) ([]byte, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encodedList: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress encodedList: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
