package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/provider"
	verificationmethod "github.com/pilacorp/go-zkcredential-sdk/credential/common/verification-method"
)

// JWTVerifier handles JWT verification operations
type JWTVerifier struct {
	resolver *verificationmethod.Resolver
}

// NewJWTVerifier creates a new JWT verifier resolving keys through p.
func NewJWTVerifier(p provider.Provider) *JWTVerifier {
	return &JWTVerifier{
		resolver: verificationmethod.NewResolver(p),
	}
}

// VerifyDocument checks the token signature against the key its kid names,
// requires the iss claim to be the DID of that key and decodes the
// claimKey claim into out. It returns the signer DID.
func (v *JWTVerifier) VerifyDocument(ctx context.Context, tokenString, claimKey string, out interface{}) (string, error) {
	var signerDID string

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("kid not found in header")
		}
		signerDID, _, _ = strings.Cut(kid, "#")

		key, err := v.resolver.GetPublicKey(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("failed to get public key: %w", err)
		}
		if key.Type() != crypto.KeyTypeSecp256k1 {
			return nil, fmt.Errorf("key %s is not a secp256k1 key", kid)
		}
		return crypto.ParsePublicKeyHex(key.Hex())
	}, jwt.WithValidMethods([]string{ES256K.Alg()}), jwt.WithIssuedAt(), jwt.WithJSONNumber())
	if err != nil {
		return "", fmt.Errorf("invalid JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid JWT claims")
	}
	iss, err := claims.GetIssuer()
	if err != nil || iss != signerDID {
		return "", fmt.Errorf("iss %q does not match the signing DID %s", iss, signerDID)
	}

	doc, ok := claims[claimKey]
	if !ok {
		return "", fmt.Errorf("document type %s not found in JWT", claimKey)
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return "", fmt.Errorf("document is not a valid JSON object")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return "", fmt.Errorf("failed to decode %s claim: %w", claimKey, err)
	}

	return signerDID, nil
}
