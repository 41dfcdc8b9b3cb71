// Package jwt carries signed artifacts as compact ES256K JWTs. The artifact
// sits under a single claim ("vc", "schema" or "vp"); the signing key is
// named by the kid header and resolved from the signer's DID document.
package jwt

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonmap"
)

// Claim keys for the artifacts the SDK transports.
const (
	ClaimCredential   = "vc"
	ClaimSchema       = "schema"
	ClaimPresentation = "vp"
)

const defaultKeyFragment = "key-1"

// JWTSigner handles JWT signing operations for verifiable documents
type JWTSigner struct {
	priv      *ecdsa.PrivateKey
	issuerDID string
	now       func() time.Time
}

// NewJWTSigner creates a signer for issuerDID. The kid header names the
// first verification method of its document.
func NewJWTSigner(privKeyHex, issuerDID string) (*JWTSigner, error) {
	priv, err := crypto.ParsePrivateKeyHex(privKeyHex)
	if err != nil {
		return nil, err
	}
	if issuerDID == "" {
		return nil, fmt.Errorf("issuer DID cannot be empty")
	}

	return &JWTSigner{priv: priv, issuerDID: issuerDID, now: time.Now}, nil
}

// SignDocument signs doc as the claimKey claim. The document id, when
// present, becomes the jti claim; additionalClaims are merged last.
func (s *JWTSigner) SignDocument(doc interface{}, claimKey string, additionalClaims map[string]interface{}) (string, error) {
	docMap, err := jsonmap.FromStruct(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert document: %w", err)
	}
	docJSON, err := docMap.ToJSON()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		claimKey: rawClaim(docJSON),
		"iss":    s.issuerDID,
		"iat":    s.now().Unix(),
	}
	if id, ok := docMap["id"]; ok {
		claims["jti"] = id
	}
	for key, value := range additionalClaims {
		claims[key] = value
	}

	token := jwt.NewWithClaims(ES256K, claims)
	token.Header["typ"] = "JWT"
	token.Header["kid"] = s.GetKeyID()

	signedString, err := token.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedString, nil
}

// GetKeyID returns the Key ID for this signer
func (s *JWTSigner) GetKeyID() string {
	return fmt.Sprintf("%s#%s", s.issuerDID, defaultKeyFragment)
}

// rawClaim embeds already-serialized JSON so the document keeps its exact
// number formatting inside the token.
type rawClaim []byte

func (r rawClaim) MarshalJSON() ([]byte, error) {
	return r, nil
}
