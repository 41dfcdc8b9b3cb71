package vc

import (
	"time"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

// CredentialOpt configures credential and schema processing options.
type CredentialOpt func(*credentialOptions)

// credentialOptions holds configuration for credential processing.
type credentialOptions struct {
	circuit       circuit.Config
	now           func() time.Time
	signer        crypto.Signer
	subjectSchema string
	sealOpts      []didcomm.Option
	checkExpiry   bool
}

// WithCircuitConfig sets the circuit shape used for encoding and limits.
func WithCircuitConfig(cfg circuit.Config) CredentialOpt {
	return func(c *credentialOptions) {
		c.circuit = cfg
	}
}

// WithClock replaces time.Now for issuance dates and expiry checks.
func WithClock(now func() time.Time) CredentialOpt {
	return func(c *credentialOptions) {
		c.now = now
	}
}

// WithSigner signs the credential with s instead of the issuer key given to
// IssueCredential. The issuer key is still used to seal the subject, so s
// must sign for the same public key.
func WithSigner(s crypto.Signer) CredentialOpt {
	return func(c *credentialOptions) {
		c.signer = s
	}
}

// WithSubjectSchema validates the credential subject against a JSON Schema
// before issuing. schema is either an inline JSON document or a URL.
func WithSubjectSchema(schema string) CredentialOpt {
	return func(c *credentialOptions) {
		c.subjectSchema = schema
	}
}

// WithSealOptions passes options to the confidentiality layer when sealing
// the credential subject.
func WithSealOptions(opts ...didcomm.Option) CredentialOpt {
	return func(c *credentialOptions) {
		c.sealOpts = append(c.sealOpts, opts...)
	}
}

// WithoutExpiryCheck accepts credentials whose expirationDate has passed.
func WithoutExpiryCheck() CredentialOpt {
	return func(c *credentialOptions) {
		c.checkExpiry = false
	}
}

func getOptions(opts ...CredentialOpt) *credentialOptions {
	options := &credentialOptions{
		circuit:     circuit.DefaultConfig(),
		now:         time.Now,
		checkExpiry: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}
