// Package store keeps issued credentials, schemas and submitted
// presentations, and checks each artifact's signer against its DID
// document before accepting it.
package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vp"
)

// ErrNotFound is returned when no artifact matches a lookup.
var ErrNotFound = errors.New("not found")

type presentationKey struct {
	schemaID string
	holder   string
}

// MemoryStore manages artifacts in a thread-safe manner. Values are copied
// on the way in and out so callers never share a stored document.
type MemoryStore struct {
	mu            sync.RWMutex
	credentials   map[string]vc.Credential
	revoked       map[string]struct{}
	schemas       map[string]vc.Schema
	presentations map[presentationKey]vp.Presentation
}

// NewMemoryStore initializes an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials:   make(map[string]vc.Credential),
		revoked:       make(map[string]struct{}),
		schemas:       make(map[string]vc.Schema),
		presentations: make(map[presentationKey]vp.Presentation),
	}
}

// PutCredential inserts or replaces a credential by id.
func (s *MemoryStore) PutCredential(c *vc.Credential) error {
	if c == nil || c.ID == "" {
		return errors.New("credential id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[c.ID] = *c
	return nil
}

// GetCredential retrieves a credential by id.
func (s *MemoryStore) GetCredential(id string) (*vc.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credentials[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// DeleteCredential removes a credential by id.
func (s *MemoryStore) DeleteCredential(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[id]; !ok {
		return ErrNotFound
	}
	delete(s.credentials, id)
	return nil
}

// RevokeCredential marks a stored credential revoked. Revocation is final.
func (s *MemoryStore) RevokeCredential(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[id]; !ok {
		return ErrNotFound
	}
	s.revoked[id] = struct{}{}
	return nil
}

// IsRevoked reports whether id was revoked, whether or not it is still stored.
func (s *MemoryStore) IsRevoked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.revoked[id]
	return ok
}

// CredentialsByIssuer lists the credentials issued by a DID, oldest first.
func (s *MemoryStore) CredentialsByIssuer(issuer string) []*vc.Credential {
	return s.filterCredentials(func(c *vc.Credential) bool { return c.Issuer == issuer })
}

// CredentialsByHolders lists the credentials held by any of the DIDs.
func (s *MemoryStore) CredentialsByHolders(holders ...string) []*vc.Credential {
	return s.filterCredentials(func(c *vc.Credential) bool { return slices.Contains(holders, c.Holder) })
}

func (s *MemoryStore) filterCredentials(keep func(*vc.Credential) bool) []*vc.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*vc.Credential
	for _, c := range s.credentials {
		if keep(&c) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *vc.Credential) int {
		return cmp.Or(cmp.Compare(a.IssuanceDate, b.IssuanceDate), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// PutSchema inserts or replaces a schema by id.
func (s *MemoryStore) PutSchema(schema *vc.Schema) error {
	if schema == nil || schema.ID == "" {
		return errors.New("schema id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[schema.ID] = *schema
	return nil
}

// GetSchema retrieves a schema by id.
func (s *MemoryStore) GetSchema(id string) (*vc.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.schemas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &schema, nil
}

// SchemasByVerifier lists the schemas a verifier published, oldest first.
func (s *MemoryStore) SchemasByVerifier(verifier string) []*vc.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*vc.Schema
	for _, schema := range s.schemas {
		if schema.Verifier == verifier {
			out = append(out, &schema)
		}
	}
	slices.SortFunc(out, func(a, b *vc.Schema) int {
		return cmp.Or(cmp.Compare(a.IssuanceDate, b.IssuanceDate), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// SubmitPresentation stores p unless the holder already submitted against
// the same schema. It returns the stored presentation and whether p was
// the one stored.
func (s *MemoryStore) SubmitPresentation(p *vp.Presentation) (*vp.Presentation, bool, error) {
	if p == nil || p.Schema == nil || p.Schema.ID == "" || p.Holder == "" {
		return nil, false, errors.New("presentation must name a schema and a holder")
	}
	key := presentationKey{schemaID: p.Schema.ID, holder: p.Holder}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.presentations[key]; ok {
		return &existing, false, nil
	}
	s.presentations[key] = *p
	stored := *p
	return &stored, true, nil
}

// GetPresentation retrieves the presentation a holder submitted for a schema.
func (s *MemoryStore) GetPresentation(schemaID, holder string) (*vp.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presentations[presentationKey{schemaID: schemaID, holder: holder}]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// PresentationsBySchema lists the presentations submitted for a schema.
func (s *MemoryStore) PresentationsBySchema(schemaID string) []*vp.Presentation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*vp.Presentation
	for key, p := range s.presentations {
		if key.schemaID == schemaID {
			out = append(out, &p)
		}
	}
	slices.SortFunc(out, func(a, b *vp.Presentation) int { return cmp.Compare(a.Holder, b.Holder) })
	return out
}

// SetPresentationStatus records a verifier decision on a stored presentation.
func (s *MemoryStore) SetPresentationStatus(schemaID, holder, verifierDID string, status vp.Status) (*vp.Presentation, error) {
	key := presentationKey{schemaID: schemaID, holder: holder}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.presentations[key]
	if !ok {
		return nil, ErrNotFound
	}
	if err := p.SetStatus(verifierDID, status); err != nil {
		return nil, err
	}
	s.presentations[key] = p
	return &p, nil
}
