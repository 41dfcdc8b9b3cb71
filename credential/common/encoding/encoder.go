// Package encoding maps JSON values onto fixed-length sequences of BN254
// scalar field elements.
//
// The encoding is one-way. Values longer than the byte budget are folded
// with XOR, so distinct long values may share an encoding; it is meant for
// commitments, not for recovering data.
package encoding

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
)

// ChunkWidth is the number of bytes packed into one chunk, floor(254/8).
const ChunkWidth = 31

// FieldChunks is an encoded value: exactly MaxValueChunk field elements.
type FieldChunks []*big.Int

// ZeroChunks returns n zero chunks, the encoding of an absent value.
func ZeroChunks(n int) FieldChunks {
	chunks := make(FieldChunks, n)
	for i := range chunks {
		chunks[i] = new(big.Int)
	}
	return chunks
}

// EncodeValue encodes v into maxChunks field elements. Integers are placed
// in the last chunk (reduced into the field, so negatives wrap). Everything
// else is encoded from its canonical JSON text, see encodeBytes.
func EncodeValue(v jsonvalue.Value, maxChunks int) FieldChunks {
	if i, ok := integerOf(v); ok {
		chunks := ZeroChunks(maxChunks)
		chunks[maxChunks-1] = i.Mod(i, constants.Q)
		return chunks
	}

	return encodeBytes(jsonvalue.Canonical(v), maxChunks)
}

// encodeBytes reverses data, pads it with zero bytes or XOR-folds it to
// exactly maxChunks*ChunkWidth bytes, reverses it back and slices it into
// big-endian chunks. Short values end up left-padded; for long values the
// leading bytes are folded into the window that keeps the trailing bytes.
func encodeBytes(data []byte, maxChunks int) FieldChunks {
	budget := maxChunks * ChunkWidth

	buf := make([]byte, len(data))
	for i, b := range data {
		buf[len(data)-1-i] = b
	}

	for len(buf) < budget {
		buf = append(buf, 0)
	}
	for len(buf) > budget {
		last := len(buf) - 1
		buf[last-budget] ^= buf[last]
		buf = buf[:last]
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	chunks := make(FieldChunks, maxChunks)
	for i := range chunks {
		chunks[i] = new(big.Int).SetBytes(buf[i*ChunkWidth : (i+1)*ChunkWidth])
	}
	return chunks
}

// FoldToField combines chunks into one field element by Horner's rule with
// base q-1, starting from the last chunk. This is the SMT leaf value of an
// encoded field.
func FoldToField(chunks FieldChunks) *big.Int {
	q := constants.Q
	base := new(big.Int).Sub(q, big.NewInt(1))

	result := new(big.Int)
	for i := len(chunks) - 1; i >= 0; i-- {
		result.Mul(result, base)
		result.Add(result, chunks[i])
		result.Mod(result, q)
	}
	return result
}

// EncodeToField is EncodeValue followed by FoldToField.
func EncodeToField(v jsonvalue.Value, maxChunks int) (FieldChunks, *big.Int) {
	chunks := EncodeValue(v, maxChunks)
	return chunks, FoldToField(chunks)
}

// Strings renders chunks as decimal strings, the format circuit inputs use.
func (c FieldChunks) Strings() []string {
	out := make([]string, len(c))
	for i, x := range c {
		out[i] = x.String()
	}
	return out
}

// integerOf reports whether v is a number with an integral value.
func integerOf(v jsonvalue.Value) (*big.Int, bool) {
	n, ok := v.(jsonvalue.Number)
	if !ok {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(string(n))
	if !ok || !r.IsInt() {
		return nil, false
	}
	return new(big.Int).Set(r.Num()), true
}
