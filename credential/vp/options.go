package vp

import (
	"time"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

// PresentationOpt configures presentation processing options.
type PresentationOpt func(*presentationOptions)

type presentationOptions struct {
	circuit  circuit.Config
	now      func() time.Time
	sealOpts []didcomm.Option
}

// WithCircuitConfig sets the circuit shape. Builder and verifier must agree on it.
func WithCircuitConfig(cfg circuit.Config) PresentationOpt {
	return func(o *presentationOptions) {
		o.circuit = cfg
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PresentationOpt {
	return func(o *presentationOptions) {
		o.now = now
	}
}

// WithSealOptions passes options to the confidentiality layer when sealing
// the disclosed values.
func WithSealOptions(opts ...didcomm.Option) PresentationOpt {
	return func(o *presentationOptions) {
		o.sealOpts = append(o.sealOpts, opts...)
	}
}

func getOptions(opts ...PresentationOpt) *presentationOptions {
	options := &presentationOptions{
		circuit: circuit.DefaultConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// CredentialOpts returns the vc options carrying the same circuit shape
// and clock as opts.
func CredentialOpts(opts ...PresentationOpt) []vc.CredentialOpt {
	return getOptions(opts...).credentialOpts()
}

// credentialOpts forwards the shared settings to the vc package.
func (o *presentationOptions) credentialOpts() []vc.CredentialOpt {
	return []vc.CredentialOpt{vc.WithCircuitConfig(o.circuit), vc.WithClock(o.now)}
}
