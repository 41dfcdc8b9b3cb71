package vp

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/predicate"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/smt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

// Holder identifies the presenting party.
type Holder struct {
	DID        string
	PrivateKey string
}

// BuildResult is a built presentation together with the prover inputs and
// the values it discloses, in request order.
type BuildResult struct {
	Presentation *Presentation
	Inputs       *circuit.ProverInputs
	Disclosed    []jsonvalue.Value
}

// slot holds the commitments of one check slot.
type slot struct {
	clauses    []predicate.Clause
	credential *smt.Commitment
	check      *smt.Commitment
}

// BuildPresentation evaluates the schema checks against the holder's
// decrypted credentials, assembles the circuit inputs, seals the requested
// values to the verifier and signs the presentation. credentials[i] is
// paired with schema.Checks[i]. An empty verifierPublicKey means the
// schema's verifier key. The proof itself is left to Prove.
func BuildPresentation(ctx context.Context, schema *vc.Schema, credentials []*vc.Credential, holder Holder, verifierPublicKey string, opts ...PresentationOpt) (*BuildResult, error) {
	options := getOptions(opts...)
	cfg := options.circuit
	logger := logging.Component("vp")

	if schema == nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "schema is nil")
	}
	clauses, err := schema.Clauses(cfg)
	if err != nil {
		return nil, err
	}
	if len(credentials) != len(schema.Checks) {
		return nil, vcerror.Wrap(vcerror.ErrBadAssignment, "schema has %d checks, got %d credentials", len(schema.Checks), len(credentials))
	}

	subjects := make([]jsonvalue.Object, len(credentials))
	for i, c := range credentials {
		if c == nil || c.CredentialSubject == nil {
			return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %d is not decrypted", i)
		}
		if c.Holder != holder.DID {
			return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is held by %s, not %s", c.ID, c.Holder, holder.DID)
		}
		subjects[i] = c.CredentialSubject

		flat, err := jsonvalue.FlattenUnique(subjects[i])
		if err != nil {
			return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject: %v", c.ID, err)
		}
		if !predicate.Evaluate(clauses[i], jsonvalue.FieldMap(flat)) {
			logger.Debug().Int("slot", i).Str("credential", c.ID).Msg("check failed")
			return nil, vcerror.Wrap(vcerror.ErrUnsatisfiable, "check %d does not hold for credential %s", i, c.ID)
		}
		logger.Debug().Int("slot", i).Str("credential", c.ID).Msg("check passed")
	}

	requests, err := schema.ParsedRequests(cfg)
	if err != nil {
		return nil, err
	}
	checkRoots, err := schema.Roots()
	if err != nil {
		return nil, err
	}

	slots, err := commitSlots(ctx, credentials, subjects, clauses, cfg)
	if err != nil {
		return nil, err
	}

	dummy, err := smt.BuildDummyTree(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dummyProof, err := dummy.Proof(ctx, smt.DummyKey, cfg.SMTLevel)
	if err != nil {
		return nil, err
	}
	inputs := circuit.NewProverInputs(cfg, dummy.Root(), circuit.Vector(dummyProof))

	for i, s := range slots {
		if s.check.Root().Cmp(checkRoots[i]) != 0 {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check root %d does not commit to check %d", i, i)
		}
		if err := fillSlot(ctx, inputs, i, s, cfg); err != nil {
			return nil, err
		}
	}

	disclosed := make([]jsonvalue.Value, len(requests))
	for k, r := range requests {
		s := slots[r.CredentialIndex]
		field, ok := s.credential.Field(r.FieldPath)
		if !ok {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "requested field %s does not exist", r)
		}
		proof, err := s.credential.Proof(ctx, r.FieldPath, cfg.SMTLevel)
		if err != nil {
			return nil, err
		}

		inputs.RequestedCredentialRoots[k] = s.credential.Root()
		inputs.RequestedCredentialFieldIndex[k] = new(big.Int).SetUint64(field.Key)
		inputs.RequestedValue[k] = circuit.Vector(field.Chunks).Clone()
		inputs.RequestedCredentialProof[k] = circuit.Vector(proof)
		disclosed[k] = field.Raw

		logger.Debug().Str("request", r.String()).Uint64("fieldIndex", field.Key).Msg("request resolved")
	}

	if verifierPublicKey == "" {
		verifierPublicKey = schema.VerifierPublicKey
	}
	sealed, err := didcomm.SealTo(holder.PrivateKey, verifierPublicKey, jsonvalue.CanonicalString(jsonvalue.Array(disclosed)), options.sealOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to seal disclosed values: %w", err)
	}

	signer, err := crypto.NewDefaultSigner(holder.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holder key: %w", err)
	}

	p := &Presentation{
		Holder:          holder.DID,
		HolderPublicKey: signer.PublicKey(),
		Credentials:     make([]*vc.Credential, len(credentials)),
		Schema:          schema,
		EncryptedData:   sealed,
		Status:          StatusNotVerified,
	}
	for i, c := range credentials {
		p.Credentials[i] = c.PublicView()
	}

	proof, id, err := jsonmap.Sign(ctx, p, signer, dto.ProofPurposeAuthentication, options.now(), unsignedFields...)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.Proof = proof

	logger.Debug().Str("id", p.ID).Str("schema", schema.ID).Int("disclosed", len(disclosed)).Msg("presentation built")

	return &BuildResult{Presentation: p, Inputs: inputs, Disclosed: disclosed}, nil
}

// commitSlots rebuilds the credential and check trees of every slot
// concurrently and checks each credential tree against its signed root.
func commitSlots(ctx context.Context, credentials []*vc.Credential, subjects []jsonvalue.Object, clauses [][]predicate.Clause, cfg circuit.Config) ([]slot, error) {
	slots := make([]slot, len(credentials))

	g, gctx := errgroup.WithContext(ctx)
	for i := range credentials {
		g.Go(func() error {
			credCommit, err := smt.CommitObject(gctx, subjects[i], cfg)
			if err != nil {
				return err
			}

			root, err := credentials[i].Root()
			if err != nil {
				return err
			}
			if credCommit.Root().Cmp(root) != 0 {
				return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject does not match fieldMerkleRoot", credentials[i].ID)
			}

			checkCommit, err := smt.Commit(gctx, predicate.Fields(clauses[i]), cfg)
			if err != nil {
				return err
			}

			slots[i] = slot{clauses: clauses[i], credential: credCommit, check: checkCommit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slots, nil
}

// fillSlot writes the roots, indexes, operators, proofs and values of slot
// i. Clause positions past the check keep their padding.
func fillSlot(ctx context.Context, in *circuit.ProverInputs, i int, s slot, cfg circuit.Config) error {
	in.CredentialRoots[i] = s.credential.Root()
	in.SchemaCheckRoots[i] = s.check.Root()

	for j, cl := range s.clauses {
		credField, ok := s.credential.Field(cl.Path)
		if !ok {
			return vcerror.Wrap(vcerror.ErrBadAssignment, "credential in slot %d has no field %q", i, cl.Path)
		}
		checkField, ok := s.check.Field(cl.Path)
		if !ok {
			return vcerror.Wrap(vcerror.ErrInvalidSchema, "check %d has no field %q", i, cl.Path)
		}

		credProof, err := s.credential.Proof(ctx, cl.Path, cfg.SMTLevel)
		if err != nil {
			return err
		}
		checkProof, err := s.check.Proof(ctx, cl.Path, cfg.SMTLevel)
		if err != nil {
			return err
		}

		in.CredentialsFieldIndex[i][j] = new(big.Int).SetUint64(credField.Key)
		in.SchemaChecksFieldIndex[i][j] = new(big.Int).SetUint64(checkField.Key)
		in.SchemaChecksOperation[i][j] = big.NewInt(cl.Op.ID())
		in.CredentialsProof[i][j] = circuit.Vector(credProof)
		in.CredentialsValue[i][j] = circuit.Vector(credField.Chunks).Clone()
		in.SchemaChecksProof[i][j] = circuit.Vector(checkProof)
		in.SchemaChecksValue[i][j] = circuit.Vector(checkField.Chunks).Clone()
	}

	return nil
}
