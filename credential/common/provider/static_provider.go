package provider

import (
	"context"
	"sync"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/model"
)

// StaticProvider serves DID documents registered in memory.
type StaticProvider struct {
	mu      sync.RWMutex
	docs    map[string]*model.DIDDocument
	wallets map[string][]string
}

// NewStaticProvider creates an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		docs:    make(map[string]*model.DIDDocument),
		wallets: make(map[string][]string),
	}
}

// Register stores doc and, when wallet is not empty, links it to the wallet.
func (p *StaticProvider) Register(doc *model.DIDDocument, wallet string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.docs[doc.ID] = doc
	if wallet != "" {
		p.wallets[wallet] = append(p.wallets[wallet], doc.ID)
	}
}

func (p *StaticProvider) DIDResolver(_ context.Context, did string) (*model.DIDDocument, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	doc, ok := p.docs[did]
	if !ok {
		return nil, ErrDIDNotFound
	}
	return doc, nil
}

func (p *StaticProvider) DIDsByWallet(_ context.Context, wallet string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]string(nil), p.wallets[wallet]...), nil
}
