package crypto

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Signer produces secp256k1 signatures over 32 byte digests.
type Signer interface {
	Sign(ctx context.Context, digest []byte) ([]byte, error)
	// PublicKey is the compressed hex public key recorded as verificationMethod.
	PublicKey() string
}

// DefaultSigner signs with a private key held in memory.
type DefaultSigner struct {
	priv *ecdsa.PrivateKey
}

// NewDefaultSigner creates a signer from a hex private key.
func NewDefaultSigner(privHex string) (*DefaultSigner, error) {
	priv, err := ParsePrivateKeyHex(privHex)
	if err != nil {
		return nil, err
	}
	return &DefaultSigner{priv: priv}, nil
}

// NewSignerFromKey wraps an existing private key.
func NewSignerFromKey(priv *ecdsa.PrivateKey) *DefaultSigner {
	return &DefaultSigner{priv: priv}
}

func (s *DefaultSigner) Sign(_ context.Context, digest []byte) ([]byte, error) {
	signature, err := crypto.Sign(digest, s.priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	if len(signature) != 65 {
		return nil, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(signature))
	}

	return signature, nil
}

func (s *DefaultSigner) PublicKey() string {
	return PublicKeyHex(&s.priv.PublicKey)
}

// RemoteSigner is a signer that signs a payload using a remote API
type RemoteSigner struct {
	endpoint  string
	apiKey    string
	publicKey string
	client    *http.Client
}

// NewRemoteSigner creates a new RemoteSigner. publicKey is the key the
// remote service signs with.
func NewRemoteSigner(endpoint, apiKey, publicKey string) (*RemoteSigner, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("endpoint required")
	}
	if _, err := ParsePublicKeyHex(publicKey); err != nil {
		return nil, fmt.Errorf("invalid remote signer public key: %w", err)
	}

	return &RemoteSigner{
		endpoint:  endpoint,
		apiKey:    apiKey,
		publicKey: strings.TrimPrefix(publicKey, "0x"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Sign signs a payload using the remote API
func (s *RemoteSigner) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	if len(payload) != 32 {
		return nil, fmt.Errorf("payload must be 32 bytes, got %d", len(payload))
	}

	reqBody, _ := json.Marshal(map[string]any{
		"payload_hex": hex.EncodeToString(payload),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote signer http %d", resp.StatusCode)
	}

	var out struct {
		SignatureHex string `json:"signature_hex"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	sig, err := DecodeHex(out.SignatureHex)
	if err != nil {
		return nil, err
	}
	if len(sig) != 65 {
		return nil, fmt.Errorf("invalid signature length %d", len(sig))
	}

	return sig, nil
}

func (s *RemoteSigner) PublicKey() string {
	return s.publicKey
}
