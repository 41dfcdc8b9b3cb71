// Package vc issues and checks the signed artifacts of the protocol:
// credentials that commit to a hidden subject, and schemas that hold the
// verifier's predicates and disclosure requests.
package vc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/smt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

// DefaultCredentialType is used when no type is given at issuance.
const DefaultCredentialType = "VerifiableCredential"

// fieldCredentialSubject is held by the holder only and never signed.
const fieldCredentialSubject = "credentialSubject"

// Credential is an issued credential. The subject travels sealed to the
// holder in EncryptedData and is committed to by FieldMerkleRoot;
// CredentialSubject is only set on the holder's decrypted copy.
type Credential struct {
	ID                string                `json:"id"`
	Types             []string              `json:"types"`
	Issuer            string                `json:"issuer"`
	IssuerPublicKey   string                `json:"issuerPublicKey"`
	Holder            string                `json:"holder"`
	HolderPublicKey   string                `json:"holderPublicKey"`
	IssuanceDate      string                `json:"issuanceDate"`
	ExpirationDate    string                `json:"expirationDate,omitempty"`
	FieldIndexes      []smt.FieldIndex      `json:"fieldIndexes"`
	FieldMerkleRoot   string                `json:"fieldMerkleRoot"`
	EncryptedData     string                `json:"encryptedData"`
	CredentialStatus  *dto.CredentialStatus `json:"credentialStatus,omitempty"`
	CredentialSubject jsonvalue.Object      `json:"credentialSubject,omitempty"`
	Proof             *dto.Proof            `json:"proof,omitempty"`
}

// CredentialInputs are the issuer-chosen parts of a credential.
type CredentialInputs struct {
	Types           []string
	Issuer          string
	Holder          string
	HolderPublicKey string
	// ExpirationDate is optional.
	ExpirationDate time.Time
	// Status optionally points into a revocation status list.
	Status  *dto.CredentialStatus
	Subject jsonvalue.Object
}

// IssueCredential commits to the subject, seals it to the holder and signs
// the result with the issuer key. The returned credential does not carry
// the subject in the clear.
func IssueCredential(ctx context.Context, in CredentialInputs, issuerPrivHex string, opts ...CredentialOpt) (*Credential, error) {
	options := getOptions(opts...)
	logger := logging.Component("vc")

	if err := checkInputs(in); err != nil {
		return nil, err
	}
	if options.subjectSchema != "" {
		if err := ValidateSubject(in.Subject, options.subjectSchema); err != nil {
			return nil, err
		}
	}

	issuerKey, err := crypto.ParsePrivateKeyHex(issuerPrivHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer key: %w", err)
	}
	issuerPublicKey := crypto.PublicKeyHex(&issuerKey.PublicKey)

	signer := options.signer
	if signer == nil {
		signer = crypto.NewSignerFromKey(issuerKey)
	} else if !crypto.SamePublicKey(signer.PublicKey(), issuerPublicKey) {
		return nil, fmt.Errorf("signer key %s does not match issuer key %s", signer.PublicKey(), issuerPublicKey)
	}

	commitment, err := smt.CommitObject(ctx, in.Subject, options.circuit)
	if err != nil {
		return nil, err
	}

	sealed, err := didcomm.SealTo(issuerPrivHex, in.HolderPublicKey, jsonvalue.CanonicalString(in.Subject), options.sealOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to seal credential subject: %w", err)
	}

	types := in.Types
	if len(types) == 0 {
		types = []string{DefaultCredentialType}
	}

	now := options.now()
	c := &Credential{
		Types:            types,
		Issuer:           in.Issuer,
		IssuerPublicKey:  issuerPublicKey,
		Holder:           in.Holder,
		HolderPublicKey:  in.HolderPublicKey,
		IssuanceDate:     now.UTC().Format(time.RFC3339),
		FieldIndexes:     commitment.KeyMap().Entries(),
		FieldMerkleRoot:  smt.RootHex(commitment.Root()),
		EncryptedData:    sealed,
		CredentialStatus: in.Status,
	}
	if !in.ExpirationDate.IsZero() {
		c.ExpirationDate = in.ExpirationDate.UTC().Format(time.RFC3339)
	}

	proof, id, err := jsonmap.Sign(ctx, c, signer, dto.ProofPurposeAssertion, now, fieldCredentialSubject)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.Proof = proof

	logger.Debug().
		Str("id", c.ID).
		Str("issuer", c.Issuer).
		Str("holder", c.Holder).
		Int("fields", len(c.FieldIndexes)).
		Str("root", c.FieldMerkleRoot).
		Msg("credential issued")

	return c, nil
}

func checkInputs(in CredentialInputs) error {
	switch {
	case in.Issuer == "":
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "issuer is required")
	case in.Holder == "":
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "holder is required")
	case len(in.Subject) == 0:
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential subject is empty")
	}
	if _, err := crypto.ParsePublicKeyHex(in.HolderPublicKey); err != nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "invalid holder public key: %v", err)
	}
	fields, err := jsonvalue.FlattenUnique(in.Subject)
	if err != nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential subject: %v", err)
	}
	if len(fields) == 0 {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential subject has no fields")
	}
	if st := in.Status; st != nil {
		if st.Type == "" || st.StatusPurpose == "" || st.StatusListCredential == "" {
			return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential status needs type, statusPurpose and statusListCredential")
		}
		if n, err := strconv.Atoi(st.StatusListIndex); err != nil || n < 0 {
			return vcerror.Wrap(vcerror.ErrInvalidCredential, "invalid statusListIndex %q", st.StatusListIndex)
		}
	}
	return nil
}

// VerifyCredential checks the issuer signature, the id and the shape of the
// commitment. It does not need the subject.
func VerifyCredential(c *Credential, opts ...CredentialOpt) error {
	options := getOptions(opts...)
	logger := logging.Component("vc")

	if c == nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential is nil")
	}
	if c.Issuer == "" || c.Holder == "" || c.IssuerPublicKey == "" || c.HolderPublicKey == "" {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is missing issuer or holder", c.ID)
	}
	if c.Proof == nil {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s has no proof", c.ID)
	}
	if !crypto.SamePublicKey(c.Proof.VerificationMethod, c.IssuerPublicKey) {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s is not signed by its issuer key", c.ID)
	}

	if err := jsonmap.VerifyProof(c, c.Proof, c.ID, fieldCredentialSubject); err != nil {
		logger.Warn().Err(err).Str("id", c.ID).Str("issuer", c.Issuer).Msg("credential signature rejected")
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s: %v", c.ID, err)
	}

	if _, err := c.KeyMap(); err != nil {
		return err
	}
	if _, err := c.Root(); err != nil {
		return err
	}

	if options.checkExpiry && c.ExpirationDate != "" {
		exp, err := time.Parse(time.RFC3339, c.ExpirationDate)
		if err != nil {
			return vcerror.Wrap(vcerror.ErrInvalidCredential, "failed to parse expirationDate: %v", err)
		}
		if options.now().After(exp) {
			return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s expired at %s", c.ID, c.ExpirationDate)
		}
	}

	return nil
}

// DecryptCredential opens the sealed subject with the holder key and checks
// that it is the subject the issuer committed to. The result is the
// holder's copy, with CredentialSubject set.
func DecryptCredential(ctx context.Context, c *Credential, holderPrivHex string, opts ...CredentialOpt) (*Credential, error) {
	if err := VerifyCredential(c, opts...); err != nil {
		return nil, err
	}

	holderKey, err := crypto.ParsePrivateKeyHex(holderPrivHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holder key: %w", err)
	}
	if !crypto.SamePublicKey(crypto.PublicKeyHex(&holderKey.PublicKey), c.HolderPublicKey) {
		return nil, fmt.Errorf("credential %s is not held by this key", c.ID)
	}

	plaintext, err := didcomm.OpenFrom(holderPrivHex, c.IssuerPublicKey, c.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential %s: %w", c.ID, err)
	}

	subject, err := jsonvalue.ParseObject([]byte(plaintext))
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject: %v", c.ID, err)
	}

	if err := CheckSubject(ctx, c, subject, opts...); err != nil {
		return nil, err
	}

	out := *c
	out.CredentialSubject = subject
	logging.Component("vc").Debug().Str("id", c.ID).Msg("credential decrypted")

	return &out, nil
}

// CheckSubject recommits subject and compares the root and field indexes
// with the ones c was signed with.
func CheckSubject(ctx context.Context, c *Credential, subject jsonvalue.Object, opts ...CredentialOpt) error {
	options := getOptions(opts...)

	root, err := c.Root()
	if err != nil {
		return err
	}
	keyMap, err := c.KeyMap()
	if err != nil {
		return err
	}

	commitment, err := smt.CommitObject(ctx, subject, options.circuit)
	if errors.Is(err, jsonvalue.ErrDuplicatePath) {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject: %v", c.ID, err)
	}
	if err != nil {
		return err
	}
	if commitment.Root().Cmp(root) != 0 {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject does not match fieldMerkleRoot", c.ID)
	}
	if !commitment.KeyMap().Equal(keyMap) {
		return vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s subject does not match fieldIndexes", c.ID)
	}

	return nil
}

// PublicView returns a copy without the subject, safe to hand to a verifier.
func (c *Credential) PublicView() *Credential {
	out := *c
	out.CredentialSubject = nil
	return &out
}

// KeyMap rebuilds the key assignment recorded in FieldIndexes.
func (c *Credential) KeyMap() (*smt.KeyMap, error) {
	m, err := smt.NewKeyMap(c.FieldIndexes)
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s fieldIndexes: %v", c.ID, err)
	}
	return m, nil
}

// Root parses FieldMerkleRoot.
func (c *Credential) Root() (*big.Int, error) {
	root, err := smt.ParseRootHex(c.FieldMerkleRoot)
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidCredential, "credential %s: %v", c.ID, err)
	}
	return root, nil
}
