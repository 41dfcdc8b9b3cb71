package verificationmethod

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/multibase"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/provider"
)

func setup(t *testing.T) (*Resolver, *crypto.KeyPair, ed25519.PublicKey) {
	t.Helper()

	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	priv, err := crypto.ParsePrivateKeyHex(kp.PrivateKey)
	require.NoError(t, err)

	// The raw X || Y form, as some registries publish it.
	xy := gethcrypto.FromECDSAPub(&priv.PublicKey)[1:]

	edPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	p := provider.NewStaticProvider()
	p.Register(&model.DIDDocument{
		ID: "did:test:issuer",
		VerificationMethod: []model.VerificationMethodEntry{{
			ID:                 "did:test:issuer#key-1",
			Type:               crypto.KeyTypeSecp256k1,
			Controller:         "did:test:issuer",
			PublicKeyMultibase: multibase.EncodeBase58BTC(xy),
		}},
	}, "")
	p.Register(&model.DIDDocument{
		ID: "did:test:ed",
		VerificationMethod: []model.VerificationMethodEntry{{
			ID:           "did:test:ed#key-1",
			Type:         crypto.KeyTypeEd25519,
			PublicKeyHex: "0x" + hex.EncodeToString(edPub),
		}},
	}, "")
	p.Register(&model.DIDDocument{ID: "did:test:empty"}, "")

	return NewResolver(p), kp, edPub
}

func TestGetPublicKey(t *testing.T) {
	r, kp, edPub := setup(t)
	ctx := context.Background()

	key, err := r.GetPublicKey(ctx, "did:test:issuer#key-1")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, key.Hex())

	key, err = r.GetPublicKey(ctx, "did:test:ed")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(edPub), key.Hex())

	_, err = r.GetPublicKey(ctx, "did:test:issuer#key-9")
	assert.ErrorContains(t, err, "not found")

	_, err = r.GetPublicKey(ctx, "did:test:unknown#key-1")
	assert.ErrorIs(t, err, provider.ErrDIDNotFound)

	_, err = r.GetDefaultPublicKey(ctx, "did:test:empty")
	assert.ErrorContains(t, err, "verification method not found")
}

func TestCheckSigner(t *testing.T) {
	r, kp, edPub := setup(t)
	ctx := context.Background()

	assert.NoError(t, r.CheckSigner(ctx, "did:test:issuer", kp.PublicKey))
	assert.NoError(t, r.CheckSigner(ctx, "did:test:ed", hex.EncodeToString(edPub)))

	other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	assert.ErrorContains(t, r.CheckSigner(ctx, "did:test:issuer", other.PublicKey), "does not match")
}

func TestCheckVerificationMethod(t *testing.T) {
	r, kp, _ := setup(t)
	ctx := context.Background()

	ok, err := r.CheckVerificationMethod(ctx, kp.PrivateKey, "did:test:issuer#key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	ok, err = r.CheckVerificationMethod(ctx, other.PrivateKey, "did:test:issuer#key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.CheckVerificationMethod(ctx, kp.PrivateKey, "did:test:ed#key-1")
	assert.ErrorContains(t, err, "not a secp256k1 key")

	_, err = r.CheckVerificationMethod(ctx, "", "did:test:issuer#key-1")
	assert.Error(t, err)
}

func TestKeyFromEntry(t *testing.T) {
	_, err := KeyFromEntry(model.VerificationMethodEntry{ID: "x", Type: crypto.KeyTypeSecp256k1})
	assert.ErrorContains(t, err, "no key material")

	_, err = KeyFromEntry(model.VerificationMethodEntry{ID: "x", Type: "RsaVerificationKey2018", PublicKeyHex: "00"})
	assert.ErrorContains(t, err, "unsupported verification method type")
}
