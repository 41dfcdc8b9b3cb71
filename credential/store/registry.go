package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jwt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/provider"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
	verificationmethod "github.com/pilacorp/go-zkcredential-sdk/credential/common/verification-method"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vp"
)

// Registry accepts artifacts only from the parties their DID documents
// name, verifies them and persists them in a MemoryStore.
type Registry struct {
	store    *MemoryStore
	provider provider.Provider
	resolver *verificationmethod.Resolver
	tokens   *jwt.JWTVerifier
	status   StatusChecker
	opts     []vp.PresentationOpt
}

// StatusChecker resolves a credential's published revocation state.
// *credentialstatus.Client implements it.
type StatusChecker interface {
	IsRevoked(ctx context.Context, status *dto.CredentialStatus) (bool, error)
}

// NewRegistry creates a registry over store resolving DIDs through p.
// opts are used for every verification the registry runs.
func NewRegistry(store *MemoryStore, p provider.Provider, opts ...vp.PresentationOpt) *Registry {
	return &Registry{
		store:    store,
		provider: p,
		resolver: verificationmethod.NewResolver(p),
		tokens:   jwt.NewJWTVerifier(p),
		opts:     opts,
	}
}

// SetStatusChecker makes the registry consult published status lists for
// credentials that carry a credentialStatus. Without one only local
// revocations are honored.
func (r *Registry) SetStatusChecker(c StatusChecker) {
	r.status = c
}

// Store returns the underlying store.
func (r *Registry) Store() *MemoryStore {
	return r.store
}

// RegisterCredential checks that the issuer DID holds the signing key,
// verifies c and stores its public view.
func (r *Registry) RegisterCredential(ctx context.Context, c *vc.Credential) error {
	if c == nil || c.Proof == nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential has no proof")
	}
	if err := r.resolver.CheckSigner(ctx, c.Issuer, c.Proof.VerificationMethod); err != nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s: %v", c.ID, err)
	}
	if err := vc.VerifyCredential(c, r.credentialOpts()...); err != nil {
		return err
	}
	if err := r.checkNotRevoked(ctx, c); err != nil {
		return err
	}

	logging.Component("store").Debug().Str("id", c.ID).Str("issuer", c.Issuer).Msg("credential registered")
	return r.store.PutCredential(c.PublicView())
}

// RevokeCredential revokes a stored credential on behalf of its issuer.
func (r *Registry) RevokeCredential(ctx context.Context, issuerDID, id string) error {
	c, err := r.store.GetCredential(id)
	if err != nil {
		return fmt.Errorf("credential %s: %w", id, err)
	}
	if c.Issuer != issuerDID {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "%s is not the issuer of credential %s", issuerDID, id)
	}
	if err := r.store.RevokeCredential(id); err != nil {
		return err
	}
	logging.Component("store").Info().Str("id", id).Str("issuer", issuerDID).Msg("credential revoked")
	return nil
}

func (r *Registry) checkNotRevoked(ctx context.Context, c *vc.Credential) error {
	if r.store.IsRevoked(c.ID) {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is revoked", c.ID)
	}
	if r.status == nil || c.CredentialStatus == nil {
		return nil
	}
	revoked, err := r.status.IsRevoked(ctx, c.CredentialStatus)
	if err != nil {
		return fmt.Errorf("failed to check status of credential %s: %w", c.ID, err)
	}
	if revoked {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is revoked", c.ID)
	}
	return nil
}

// RegisterSchema checks that the verifier DID holds the signing key,
// verifies s and stores it.
func (r *Registry) RegisterSchema(ctx context.Context, s *vc.Schema) error {
	if s == nil || s.Proof == nil {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema has no proof")
	}
	if err := r.resolver.CheckSigner(ctx, s.Verifier, s.Proof.VerificationMethod); err != nil {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema %s: %v", s.ID, err)
	}
	if err := vc.VerifySchema(ctx, s, r.credentialOpts()...); err != nil {
		return err
	}

	logging.Component("store").Debug().Str("id", s.ID).Str("verifier", s.Verifier).Msg("schema registered")
	return r.store.PutSchema(s)
}

// SubmitPresentation checks that the holder DID holds the signing key and
// that every signature in p verifies, then stores p as NOT_VERIFIED. A
// holder's second submission for the same schema returns the first one.
func (r *Registry) SubmitPresentation(ctx context.Context, p *vp.Presentation) (*vp.Presentation, error) {
	if p == nil || p.Proof == nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation has no proof")
	}
	if err := r.resolver.CheckSigner(ctx, p.Holder, p.Proof.VerificationMethod); err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s: %v", p.ID, err)
	}
	if err := vp.VerifyPresentationSignatures(ctx, p, r.opts...); err != nil {
		return nil, err
	}
	if _, err := r.store.GetSchema(p.Schema.ID); err != nil {
		return nil, fmt.Errorf("schema %s: %w", p.Schema.ID, err)
	}

	submitted := *p
	submitted.Status = vp.StatusNotVerified
	stored, created, err := r.store.SubmitPresentation(&submitted)
	if err != nil {
		return nil, err
	}
	if !created {
		logging.Component("store").Debug().Str("id", stored.ID).Str("holder", p.Holder).Msg("presentation already submitted")
	}
	return stored, nil
}

// RegisterCredentialJWT accepts a credential carried as the "vc" claim of a
// JWT signed by its issuer.
func (r *Registry) RegisterCredentialJWT(ctx context.Context, token string) (*vc.Credential, error) {
	var c vc.Credential
	signer, err := r.tokens.VerifyDocument(ctx, token, jwt.ClaimCredential, &c)
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential token: %v", err)
	}
	if signer != c.Issuer {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential token signed by %s, not issuer %s", signer, c.Issuer)
	}
	if err := r.RegisterCredential(ctx, &c); err != nil {
		return nil, err
	}
	return c.PublicView(), nil
}

// SubmitPresentationJWT accepts a presentation carried as the "vp" claim of
// a JWT signed by its holder.
func (r *Registry) SubmitPresentationJWT(ctx context.Context, token string) (*vp.Presentation, error) {
	var p vp.Presentation
	signer, err := r.tokens.VerifyDocument(ctx, token, jwt.ClaimPresentation, &p)
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation token: %v", err)
	}
	if signer != p.Holder {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation token signed by %s, not holder %s", signer, p.Holder)
	}
	return r.SubmitPresentation(ctx, &p)
}

// Reviewer is the verifier side of a review: its DID and private key, and
// the SNARK verifier with its verification key.
type Reviewer struct {
	DID             string
	PrivateKey      string
	ProofVerifier   circuit.ProofVerifier
	VerificationKey []byte
}

// ReviewPresentation runs the full verification of the presentation a
// holder submitted against schemaID with the verifier's own stored schema.
// A presentation that fails a protocol check is marked REJECTED and the
// failure is returned; one that passes is marked VERIFIED and its disclosed
// values are returned. A revoked credential rejects the presentation. Other
// failures leave the status unchanged.
func (r *Registry) ReviewPresentation(ctx context.Context, schemaID, holder string, reviewer Reviewer) ([]jsonvalue.Value, *vp.Presentation, error) {
	schema, err := r.store.GetSchema(schemaID)
	if err != nil {
		return nil, nil, fmt.Errorf("schema %s: %w", schemaID, err)
	}
	if schema.Verifier != reviewer.DID {
		return nil, nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "%s is not the verifier of schema %s", reviewer.DID, schemaID)
	}
	p, err := r.store.GetPresentation(schemaID, holder)
	if err != nil {
		return nil, nil, fmt.Errorf("presentation of %s for %s: %w", holder, schemaID, err)
	}

	var verr error
	for _, c := range p.Credentials {
		if c == nil {
			continue
		}
		if verr = r.checkNotRevoked(ctx, c); verr != nil {
			break
		}
	}
	var disclosed []jsonvalue.Value
	if verr == nil {
		disclosed, verr = vp.VerifyPresentation(ctx, schema, p, reviewer.PrivateKey, reviewer.ProofVerifier, reviewer.VerificationKey, r.opts...)
	}
	status := vp.StatusVerified
	if verr != nil {
		if !isProtocolFailure(verr) {
			return nil, nil, verr
		}
		status = vp.StatusRejected
	}

	updated, err := r.store.SetPresentationStatus(schemaID, holder, reviewer.DID, status)
	if err != nil {
		return nil, nil, err
	}
	logging.Component("store").Debug().Str("id", updated.ID).Str("status", string(status)).Msg("presentation reviewed")

	if verr != nil {
		return nil, updated, verr
	}
	return disclosed, updated, nil
}

// CredentialsByWallet lists the credentials held by any DID the wallet controls.
func (r *Registry) CredentialsByWallet(ctx context.Context, wallet string) ([]*vc.Credential, error) {
	dids, err := r.provider.DIDsByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list DIDs of wallet %s: %w", wallet, err)
	}
	if len(dids) == 0 {
		return nil, nil
	}
	return r.store.CredentialsByHolders(dids...), nil
}

func (r *Registry) credentialOpts() []vc.CredentialOpt {
	return vp.CredentialOpts(r.opts...)
}

func isProtocolFailure(err error) bool {
	for _, kind := range []error{
		vcerror.ErrInvalidSchema,
		vcerror.ErrInvalidCredential,
		vcerror.ErrUnsatisfiable,
		vcerror.ErrBadAssignment,
		vcerror.ErrInvalidVCPresentation,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
