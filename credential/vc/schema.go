package vc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/predicate"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/smt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

// Schema is a verifier's presentation request. Checks[i] is evaluated
// against the credential in slot i and committed to by CheckMerkleRoots[i].
type Schema struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Verifier          string             `json:"verifier"`
	VerifierPublicKey string             `json:"verifierPublicKey"`
	Checks            []jsonvalue.Object `json:"checks"`
	Requests          []string           `json:"requests"`
	CheckMerkleRoots  []string           `json:"checkMerkleRoots"`
	IssuanceDate      string             `json:"issuanceDate"`
	Proof             *dto.Proof         `json:"proof,omitempty"`
}

// SchemaInputs are the verifier-chosen parts of a schema.
type SchemaInputs struct {
	Name     string
	Verifier string
	Checks   []jsonvalue.Object
	Requests []string
}

// IssueSchema validates the checks and requests against the circuit shape,
// commits to every check and signs the schema.
func IssueSchema(ctx context.Context, in SchemaInputs, signer crypto.Signer, opts ...CredentialOpt) (*Schema, error) {
	options := getOptions(opts...)

	if in.Verifier == "" {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "verifier is required")
	}

	s := &Schema{
		Name:              in.Name,
		Verifier:          in.Verifier,
		VerifierPublicKey: signer.PublicKey(),
		Checks:            in.Checks,
		Requests:          in.Requests,
	}
	if s.Requests == nil {
		s.Requests = []string{}
	}

	roots, err := commitChecks(ctx, s, options.circuit)
	if err != nil {
		return nil, err
	}
	s.CheckMerkleRoots = make([]string, len(roots))
	for i, r := range roots {
		s.CheckMerkleRoots[i] = smt.RootHex(r)
	}

	now := options.now()
	s.IssuanceDate = now.UTC().Format(time.RFC3339)

	proof, id, err := jsonmap.Sign(ctx, s, signer, dto.ProofPurposeAssertion, now)
	if err != nil {
		return nil, err
	}
	s.ID = id
	s.Proof = proof

	logging.Component("vc").Debug().
		Str("id", s.ID).
		Str("verifier", s.Verifier).
		Int("checks", len(s.Checks)).
		Strs("requests", s.Requests).
		Msg("schema issued")

	return s, nil
}

// commitChecks validates the schema shape and returns one root per check.
func commitChecks(ctx context.Context, s *Schema, cfg circuit.Config) ([]*big.Int, error) {
	clauses, err := s.Clauses(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := s.ParsedRequests(cfg); err != nil {
		return nil, err
	}

	roots := make([]*big.Int, len(clauses))
	for i, cl := range clauses {
		commitment, err := smt.Commit(ctx, predicate.Fields(cl), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to commit check %d: %w", i, err)
		}
		roots[i] = commitment.Root()
	}
	return roots, nil
}

// Clauses parses every check. A schema needs at least one check and fits
// the circuit: at most MaxNumChecks checks of at most MaxCheckSize clauses.
func (s *Schema) Clauses(cfg circuit.Config) ([][]predicate.Clause, error) {
	if len(s.Checks) == 0 {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "schema has no checks")
	}
	if len(s.Checks) > cfg.MaxNumChecks {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "schema has %d checks, circuit allows %d", len(s.Checks), cfg.MaxNumChecks)
	}

	out := make([][]predicate.Clause, len(s.Checks))
	for i, check := range s.Checks {
		clauses, err := predicate.ParseCheck(check)
		if err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
		if len(clauses) > cfg.MaxCheckSize {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check %d has %d clauses, circuit allows %d", i, len(clauses), cfg.MaxCheckSize)
		}
		out[i] = clauses
	}
	return out, nil
}

// ParsedRequests parses the requests and bounds them by the checks.
func (s *Schema) ParsedRequests(cfg circuit.Config) ([]Request, error) {
	if len(s.Requests) > cfg.MaxNumChecks {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "schema has %d requests, circuit allows %d", len(s.Requests), cfg.MaxNumChecks)
	}
	return ParseRequests(s.Requests, len(s.Checks))
}

// Roots parses CheckMerkleRoots.
func (s *Schema) Roots() ([]*big.Int, error) {
	if len(s.CheckMerkleRoots) != len(s.Checks) {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "schema has %d checks but %d check roots", len(s.Checks), len(s.CheckMerkleRoots))
	}
	out := make([]*big.Int, len(s.CheckMerkleRoots))
	for i, h := range s.CheckMerkleRoots {
		r, err := smt.ParseRootHex(h)
		if err != nil {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check root %d: %v", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// VerifySchema checks the verifier signature and id, the schema shape and
// that every check root commits to its check.
func VerifySchema(ctx context.Context, s *Schema, opts ...CredentialOpt) error {
	options := getOptions(opts...)

	if s == nil {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema is nil")
	}
	if s.Proof == nil {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema %s has no proof", s.ID)
	}
	if !crypto.SamePublicKey(s.Proof.VerificationMethod, s.VerifierPublicKey) {
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema %s is not signed by its verifier key", s.ID)
	}
	if err := jsonmap.VerifyProof(s, s.Proof, s.ID); err != nil {
		logging.Component("vc").Warn().Err(err).Str("id", s.ID).Str("verifier", s.Verifier).Msg("schema signature rejected")
		return vcerror.Wrap(vcerror.ErrInvalidSchema, "schema %s: %v", s.ID, err)
	}

	stored, err := s.Roots()
	if err != nil {
		return err
	}
	roots, err := commitChecks(ctx, s, options.circuit)
	if err != nil {
		return err
	}
	for i := range roots {
		if roots[i].Cmp(stored[i]) != 0 {
			return vcerror.Wrap(vcerror.ErrInvalidSchema, "check root %d does not commit to check %d", i, i)
		}
	}

	return nil
}

// SameSchema reports whether two schemas are the same document.
func SameSchema(a, b *Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	ma, err := jsonmap.FromStruct(a)
	if err != nil {
		return false
	}
	mb, err := jsonmap.FromStruct(b)
	if err != nil {
		return false
	}
	return string(ma.Canonicalize()) == string(mb.Canonicalize())
}
