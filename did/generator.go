// Package did creates secp256k1 DIDs and the documents that publish their keys.
package did

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	zkcrypto "github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/multibase"
)

const keyFragment = "#key-1"

var documentContext = []string{
	"https://w3id.org/security/v1",
	"https://www.w3.org/ns/did/v1",
}

// DIDGenerator creates DIDs under one method.
type DIDGenerator struct {
	didMethod string
}

// NewDIDGenerator accepts the method with or without the "did:" scheme,
// e.g. "example" or "did:example".
func NewDIDGenerator(method string) *DIDGenerator {
	return &DIDGenerator{
		didMethod: strings.TrimPrefix(strings.ToLower(method), "did:"),
	}
}

// Generate is a shorthand for a default-type DID under method.
func Generate(method string) (*DID, error) {
	return NewDIDGenerator(method).GenerateDID(CreateDID{Type: TypeDefault})
}

// GenerateDID creates a fresh key pair and its DID document.
func (d *DIDGenerator) GenerateDID(newDID CreateDID) (*DID, error) {
	if d.didMethod == "" {
		return nil, fmt.Errorf("DID method cannot be empty")
	}

	kp, pub, err := d.generateECDSADID()
	if err != nil {
		return nil, err
	}

	return &DID{
		DID:      kp.Identifier,
		Secret:   Secret{PrivateKeyHex: kp.PrivateKey},
		Document: *d.generateDIDDocument(kp.Identifier, pub, &newDID),
	}, nil
}

// KeyPair returns the identifier and keys of a generated DID.
func (d *DID) KeyPair() (*KeyPair, error) {
	priv, err := zkcrypto.ParsePrivateKeyHex(d.Secret.PrivateKeyHex)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Address:    strings.ToLower(crypto.PubkeyToAddress(priv.PublicKey).Hex()),
		PublicKey:  zkcrypto.PublicKeyHex(&priv.PublicKey),
		PrivateKey: d.Secret.PrivateKeyHex,
		Identifier: d.DID,
	}, nil
}

func (d *DIDGenerator) generateECDSADID() (*KeyPair, *ecdsa.PublicKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	pub := &privateKey.PublicKey
	address := strings.ToLower(crypto.PubkeyToAddress(*pub).Hex())

	// did:${method}:${address}
	identifier := fmt.Sprintf("did:%s:%s", d.didMethod, address)

	return &KeyPair{
		Address:    address,
		PublicKey:  zkcrypto.PublicKeyHex(pub),
		PrivateKey: fmt.Sprintf("%x", crypto.FromECDSA(privateKey)),
		Identifier: identifier,
	}, pub, nil
}

func (d *DIDGenerator) generateDIDDocument(identifier string, pub *ecdsa.PublicKey, didReq *CreateDID) *model.DIDDocument {
	keyID := identifier + keyFragment

	document := &model.DIDDocument{
		Context:    documentContext,
		ID:         identifier,
		Controller: identifier,
		VerificationMethod: []model.VerificationMethodEntry{{
			ID:                 keyID,
			Type:               zkcrypto.KeyTypeSecp256k1,
			Controller:         identifier,
			PublicKeyMultibase: multibase.EncodeBase58BTC(crypto.CompressPubkey(pub)),
		}},
		Authentication:      []string{keyID},
		AssertionMethod:     []string{keyID},
		KeyAgreement:        []string{keyID},
		DIDDocumentMetadata: didReq.Metadata,
	}
	if document.DIDDocumentMetadata == nil {
		document.DIDDocumentMetadata = map[string]interface{}{}
	}
	document.DIDDocumentMetadata["type"] = didReq.Type
	if didReq.Hash != "" {
		document.DIDDocumentMetadata["hash"] = didReq.Hash
	}

	return document
}
