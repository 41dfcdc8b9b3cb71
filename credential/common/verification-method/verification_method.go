package verificationmethod

import (
	"context"
	"fmt"
	"strings"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/multibase"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/provider"
)

// Resolver maps DIDs to the verification keys their documents declare.
type Resolver struct {
	provider provider.Provider
}

// NewResolver creates a resolver on top of a DID provider.
func NewResolver(p provider.Provider) *Resolver {
	return &Resolver{provider: p}
}

// GetPublicKey returns the key of the verification method with the given
// id ("did#fragment"). Without a fragment the first method is used.
func (r *Resolver) GetPublicKey(ctx context.Context, verificationMethodURL string) (crypto.VerificationKey, error) {
	didPart, _, found := strings.Cut(verificationMethodURL, "#")
	if didPart == "" {
		return nil, fmt.Errorf("invalid verification method URL, could not extract DID: %s", verificationMethodURL)
	}

	doc, err := r.provider.DIDResolver(ctx, didPart)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DID '%s': %w", didPart, err)
	}

	if !found {
		return r.defaultKey(doc)
	}

	vm, ok := doc.FindVerificationMethod(verificationMethodURL)
	if !ok {
		return nil, fmt.Errorf("verification method '%s' not found in DID document", verificationMethodURL)
	}
	return KeyFromEntry(vm)
}

// GetDefaultPublicKey returns the key of the first verification method of did.
func (r *Resolver) GetDefaultPublicKey(ctx context.Context, did string) (crypto.VerificationKey, error) {
	doc, err := r.provider.DIDResolver(ctx, did)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DID '%s': %w", did, err)
	}
	return r.defaultKey(doc)
}

func (r *Resolver) defaultKey(doc *model.DIDDocument) (crypto.VerificationKey, error) {
	if len(doc.VerificationMethod) == 0 {
		return nil, fmt.Errorf("verification method not found in DID '%s' document", doc.ID)
	}
	return KeyFromEntry(doc.VerificationMethod[0])
}

// CheckSigner ensures the default key of did is the key a proof was made
// with. publicKeyHex is the proof's verificationMethod.
func (r *Resolver) CheckSigner(ctx context.Context, did, publicKeyHex string) error {
	key, err := r.GetDefaultPublicKey(ctx, did)
	if err != nil {
		return err
	}

	if !SameKey(key, publicKeyHex) {
		return fmt.Errorf("public key of '%s' does not match the proof verification method", did)
	}
	return nil
}

// CheckVerificationMethod verifies if the provided private key matches the public key
// associated with the given verification method in its DID document.
func (r *Resolver) CheckVerificationMethod(ctx context.Context, privateKey, verificationMethod string) (bool, error) {
	if privateKey == "" || verificationMethod == "" {
		return false, fmt.Errorf("private key or verification method is empty")
	}

	key, err := r.GetPublicKey(ctx, verificationMethod)
	if err != nil {
		return false, fmt.Errorf("failed to get public key for '%s': %w", verificationMethod, err)
	}
	if key.Type() != crypto.KeyTypeSecp256k1 {
		return false, fmt.Errorf("verification method '%s' is not a secp256k1 key", verificationMethod)
	}

	return crypto.VerifyKeyPairFromHex(privateKey, key.Hex())
}

// KeyFromEntry decodes the key material of a DID document entry, preferring
// publicKeyMultibase over publicKeyHex.
func KeyFromEntry(vm model.VerificationMethodEntry) (crypto.VerificationKey, error) {
	var (
		raw []byte
		err error
	)

	switch {
	case vm.PublicKeyMultibase != "":
		raw, err = multibase.Decode(vm.PublicKeyMultibase)
	case vm.PublicKeyHex != "":
		raw, err = crypto.DecodeHex(vm.PublicKeyHex)
	default:
		return nil, fmt.Errorf("verification method '%s' has no key material", vm.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode key of '%s': %w", vm.ID, err)
	}

	return crypto.KeyFromPublicKey(raw, vm.Type)
}

// SameKey compares a resolved key with a hex key from a proof.
func SameKey(key crypto.VerificationKey, publicKeyHex string) bool {
	if key.Type() == crypto.KeyTypeSecp256k1 {
		return crypto.SamePublicKey(key.Hex(), publicKeyHex)
	}
	return strings.EqualFold(key.Hex(), strings.TrimPrefix(publicKeyHex, "0x"))
}
