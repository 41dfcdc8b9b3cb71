package provider

import (
	"context"
	"errors"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
)

// ErrDIDNotFound is returned when the resolver has no document for a DID.
var ErrDIDNotFound = errors.New("DID document not found")

// Provider defines the interface for external services the credential
// logic depends on. This allows for custom implementations to be injected.
type Provider interface {
	// DIDResolver resolves a DID string into a DID Document.
	DIDResolver(ctx context.Context, did string) (*model.DIDDocument, error)

	// DIDsByWallet lists the DIDs controlled by a wallet address.
	DIDsByWallet(ctx context.Context, wallet string) ([]string, error)
}
