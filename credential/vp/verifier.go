package vp

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/encoding"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/predicate"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/smt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

// VerifyPresentationSignatures checks the presentation signature and id,
// the embedded schema and every embedded credential. Each credential must
// belong to the presenting holder.
func VerifyPresentationSignatures(ctx context.Context, p *Presentation, opts ...PresentationOpt) error {
	options := getOptions(opts...)
	logger := logging.Component("vp")

	if p == nil || p.Proof == nil {
		return vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation has no proof")
	}
	if p.HolderPublicKey != "" && !crypto.SamePublicKey(p.Proof.VerificationMethod, p.HolderPublicKey) {
		return vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s is not signed by its holder key", p.ID)
	}
	if err := jsonmap.VerifyProof(p, p.Proof, p.ID, unsignedFields...); err != nil {
		logger.Warn().Err(err).Str("id", p.ID).Str("holder", p.Holder).Msg("presentation signature rejected")
		return vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s: %v", p.ID, err)
	}

	if p.Schema == nil {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "presentation %s has no schema", p.ID)
	}
	if len(p.Credentials) != len(p.Schema.Checks) {
		return vcerror.Wrap(vcerror.ErrBadAssignment, "presentation %s has %d credentials for %d checks", p.ID, len(p.Credentials), len(p.Schema.Checks))
	}
	if err := vc.VerifySchema(ctx, p.Schema, options.credentialOpts()...); err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	for _, c := range p.Credentials {
		g.Go(func() error {
			if err := vc.VerifyCredential(c, options.credentialOpts()...); err != nil {
				return err
			}
			if c.Holder != p.Holder {
				return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is held by %s, not %s", c.ID, c.Holder, p.Holder)
			}
			if !crypto.SamePublicKey(c.HolderPublicKey, p.Proof.VerificationMethod) {
				return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is bound to another holder key", c.ID)
			}
			return nil
		})
	}

	return g.Wait()
}

// VerifyPresentation checks p against the verifier's own copy of schema and
// returns the disclosed values in request order. The public inputs handed
// to proofVerifier are recomputed from the plaintext schema, the embedded
// credentials and the opened values; nothing the prover computed is reused.
func VerifyPresentation(ctx context.Context, schema *vc.Schema, p *Presentation, verifierPrivHex string, proofVerifier circuit.ProofVerifier, verificationKey []byte, opts ...PresentationOpt) ([]jsonvalue.Value, error) {
	logger := logging.Component("vp")

	if p == nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation is nil")
	}
	if !vc.SameSchema(schema, p.Schema) {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s was built for another schema", p.ID)
	}

	if err := VerifyPresentationSignatures(ctx, p, opts...); err != nil {
		return nil, err
	}

	plaintext, err := didcomm.OpenFrom(verifierPrivHex, p.Proof.VerificationMethod, p.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to open presentation %s: %w", p.ID, err)
	}
	raw, err := jsonvalue.Parse([]byte(plaintext))
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s disclosed values: %v", p.ID, err)
	}
	disclosed, ok := raw.(jsonvalue.Array)
	if !ok {
		return nil, vcerror.Wrap(vcerror.ErrInvalidVCPresentation, "presentation %s disclosed values are not an array", p.ID)
	}

	public, err := PublicInputsFor(ctx, schema, p.Credentials, disclosed, opts...)
	if err != nil {
		return nil, err
	}

	if p.SNARKProof == nil {
		return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "presentation %s has no SNARK proof", p.ID)
	}
	valid, err := proofVerifier.Verify(ctx, verificationKey, public.Vector(), p.SNARKProof)
	if err != nil {
		return nil, fmt.Errorf("failed to verify SNARK proof of presentation %s: %w", p.ID, err)
	}
	if !valid {
		logger.Warn().Str("id", p.ID).Str("schema", schema.ID).Msg("SNARK proof rejected")
		return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "SNARK proof of presentation %s does not verify", p.ID)
	}

	logger.Debug().Str("id", p.ID).Str("schema", schema.ID).Int("disclosed", len(disclosed)).Msg("presentation verified")

	return disclosed, nil
}

// PublicInputsFor computes the circuit public inputs from the schema, the
// public credentials paired with its checks and the disclosed values. It
// reads the credential roots and field indexes as signed and derives the
// check indexes from the checks themselves.
func PublicInputsFor(ctx context.Context, schema *vc.Schema, credentials []*vc.Credential, disclosed []jsonvalue.Value, opts ...PresentationOpt) (*circuit.PublicInputs, error) {
	cfg := getOptions(opts...).circuit

	clauses, err := schema.Clauses(cfg)
	if err != nil {
		return nil, err
	}
	requests, err := schema.ParsedRequests(cfg)
	if err != nil {
		return nil, err
	}
	checkRoots, err := schema.Roots()
	if err != nil {
		return nil, err
	}
	if len(credentials) != len(clauses) {
		return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "schema has %d checks, got %d credentials", len(clauses), len(credentials))
	}
	if len(disclosed) != len(requests) {
		return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "schema has %d requests, got %d values", len(requests), len(disclosed))
	}

	dummy, err := smt.BuildDummyTree(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pub := circuit.NewPublicInputs(cfg, dummy.Root())

	roots := make([]*big.Int, len(credentials))
	keyMaps := make([]*smt.KeyMap, len(credentials))
	for i, c := range credentials {
		if c == nil {
			return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "credential %d is missing", i)
		}
		if roots[i], err = c.Root(); err != nil {
			return nil, err
		}
		if keyMaps[i], err = c.KeyMap(); err != nil {
			return nil, err
		}

		pub.CredentialRoots[i] = roots[i]
		pub.SchemaCheckRoots[i] = checkRoots[i]

		checkKeys := smt.BuildKeyMap(predicate.Fields(clauses[i]))
		for j, cl := range clauses[i] {
			credKey, ok := keyMaps[i].Index(cl.Path)
			if !ok {
				return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "credential %s has no field %q", c.ID, cl.Path)
			}
			checkKey, _ := checkKeys.Index(cl.Path)

			pub.CredentialsFieldIndex[i][j] = new(big.Int).SetUint64(credKey)
			pub.SchemaChecksFieldIndex[i][j] = new(big.Int).SetUint64(checkKey)
			pub.SchemaChecksOperation[i][j] = big.NewInt(cl.Op.ID())
		}
	}

	for k, r := range requests {
		key, ok := keyMaps[r.CredentialIndex].Index(r.FieldPath)
		if !ok {
			return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "requested field %s does not exist", r)
		}
		pub.RequestedCredentialRoots[k] = roots[r.CredentialIndex]
		pub.RequestedCredentialFieldIndex[k] = new(big.Int).SetUint64(key)
		pub.RequestedValue[k] = circuit.Vector(encoding.EncodeValue(disclosed[k], cfg.MaxValueChunk))
	}

	return pub, nil
}
