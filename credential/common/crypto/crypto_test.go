package crypto

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecp256k1SignAndVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	require.Len(t, kp.PublicKey, 66)

	priv, err := ParsePrivateKeyHex(kp.PrivateKey)
	require.NoError(t, err)

	message := []byte(`{"holder":"did:example:alice"}`)
	sig, err := NewSignerFromKey(priv).Sign(context.Background(), Digest(message))
	require.NoError(t, err)
	require.Len(t, sig, 65)

	key, err := KeyFromProof(ProofTypeSecp256k1, kp.PublicKey)
	require.NoError(t, err)
	assert.True(t, key.Verify(message, sig))
	assert.True(t, key.Verify(message, sig[:64]), "signature without recovery byte")
	assert.False(t, key.Verify(message, sig[:10]))

	uncompressed, err := KeyFromProof(ProofTypeSecp256k1, "0x"+hex.EncodeToString(crypto.FromECDSAPub(&priv.PublicKey)))
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, uncompressed.Hex())
	assert.True(t, uncompressed.Verify(message, sig))

	tampered := append([]byte{}, message...)
	tampered[3] ^= 0x01
	assert.False(t, key.Verify(tampered, sig))

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	otherKey, err := KeyFromProof(ProofTypeSecp256k1, other.PublicKey)
	require.NoError(t, err)
	assert.False(t, otherKey.Verify(message, sig))

	_, err = KeyFromProof(ProofTypeSecp256k1, "zz")
	assert.Error(t, err)
}

func TestDeriveID(t *testing.T) {
	sum := sha256.Sum256([]byte("abcdef"))
	assert.Equal(t, hex.EncodeToString(sum[:]), DeriveID("abcdef"))
	assert.NotEqual(t, DeriveID("abcdef"), DeriveID("abcdee"))
}

func TestKeyPairHelpers(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	ok, err := VerifyKeyPairFromHex(kp.PrivateKey, kp.PublicKey)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyKeyPairFromHex(kp.PrivateKey, other.PublicKey)
	require.NoError(t, err)
	assert.False(t, ok)

	pub, err := ParsePublicKeyHex(kp.PublicKey)
	require.NoError(t, err)
	assert.True(t, SamePublicKey(kp.PublicKey, hex.EncodeToString(crypto.FromECDSAPub(pub))))
	assert.False(t, SamePublicKey(kp.PublicKey, other.PublicKey))
	assert.False(t, SamePublicKey(kp.PublicKey, "nothex"))

	_, err = ParsePrivateKey([]byte{1, 2, 3})
	assert.ErrorContains(t, err, "32 bytes")
}

func TestKeyFromPublicKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	priv, err := ParsePrivateKeyHex(kp.PrivateKey)
	require.NoError(t, err)

	message := []byte("payload")
	sig, err := NewSignerFromKey(priv).Sign(context.Background(), Digest(message))
	require.NoError(t, err)

	edPub, edPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	edSig := ed25519.Sign(edPriv, message)

	t.Run("secp256k1", func(t *testing.T) {
		raw, err := DecodeHex(kp.PublicKey)
		require.NoError(t, err)

		key, err := KeyFromPublicKey(raw, KeyTypeSecp256k1)
		require.NoError(t, err)
		assert.Equal(t, KeyTypeSecp256k1, key.Type())
		assert.Equal(t, kp.PublicKey, key.Hex())
		assert.True(t, key.Verify(message, sig))
		assert.False(t, key.Verify([]byte("other"), sig))
	})

	t.Run("ed25519", func(t *testing.T) {
		key, err := KeyFromPublicKey(edPub, KeyTypeEd25519)
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(edPub), key.Hex())
		assert.True(t, key.Verify(message, edSig))
		assert.False(t, key.Verify(message, sig[:64]))
	})

	t.Run("from proof", func(t *testing.T) {
		key, err := KeyFromProof(ProofTypeEd25519, hex.EncodeToString(edPub))
		require.NoError(t, err)
		assert.True(t, key.Verify(message, edSig))

		_, err = KeyFromProof("RsaSignature2018", kp.PublicKey)
		assert.ErrorContains(t, err, "unsupported proof type")
	})

	t.Run("errors", func(t *testing.T) {
		_, err := KeyFromPublicKey(edPub[:10], KeyTypeEd25519)
		assert.Error(t, err)

		_, err = KeyFromPublicKey([]byte{0x02, 0x01}, KeyTypeSecp256k1)
		assert.Error(t, err)

		_, err = KeyFromPublicKey(edPub, "JsonWebKey2020")
		assert.ErrorContains(t, err, "unsupported verification method type")
	})
}

func TestSigners(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	local, err := NewDefaultSigner("0x" + kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, local.PublicKey())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var body struct {
			PayloadHex string `json:"payload_hex"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		digest, err := hex.DecodeString(body.PayloadHex)
		require.NoError(t, err)

		sig, err := local.Sign(r.Context(), digest)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{"signature_hex": "0x" + hex.EncodeToString(sig)})
	}))
	defer server.Close()

	remote, err := NewRemoteSigner(server.URL, "secret", kp.PublicKey)
	require.NoError(t, err)

	digest := Digest([]byte("message"))
	sig, err := remote.Sign(context.Background(), digest)
	require.NoError(t, err)

	key, err := KeyFromProof(ProofTypeSecp256k1, remote.PublicKey())
	require.NoError(t, err)
	assert.True(t, key.Verify([]byte("message"), sig))

	_, err = remote.Sign(context.Background(), []byte("short"))
	assert.ErrorContains(t, err, "32 bytes")

	_, err = NewRemoteSigner("", "", kp.PublicKey)
	assert.Error(t, err)
	_, err = NewRemoteSigner(server.URL, "", "nothex")
	assert.Error(t, err)
}
