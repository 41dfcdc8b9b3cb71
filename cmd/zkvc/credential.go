package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/dto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jwt"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/did"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

func newKeygenCmd() *cobra.Command {
	var (
		method string
		output string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a secp256k1 DID and its document",
		Example: `  zkvc keygen --method example -o issuer.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := did.Generate(method)
			if err != nil {
				return err
			}
			return writeJSON(output, d)
		},
	}

	cmd.Flags().StringVar(&method, "method", "example", "DID method")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

type issueConfig struct {
	identity      string
	holder        string
	holderKey     string
	subject       string
	subjectSchema string
	types         []string
	expires       string
	statusList    string
	statusIndex   int
	randomNonce   bool
	jwt           bool
	output        string
}

func newIssueCmd(g *globalConfig) *cobra.Command {
	cfg := &issueConfig{}

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a credential over a subject",
		Example: `  zkvc issue --identity issuer.json --holder did:example:0xab.. \
    --holder-key 02ab.. --subject subject.json -o credential.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssue(cmd.Context(), g, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.identity, "identity", "", "Issuer keygen file")
	cmd.Flags().StringVar(&cfg.holder, "holder", "", "Holder DID")
	cmd.Flags().StringVar(&cfg.holderKey, "holder-key", "", "Holder public key (hex)")
	cmd.Flags().StringVar(&cfg.subject, "subject", "", "Credential subject JSON file")
	cmd.Flags().StringVar(&cfg.subjectSchema, "subject-schema", "", "JSON Schema the subject must satisfy (file or URL)")
	cmd.Flags().StringSliceVar(&cfg.types, "type", nil, "Additional credential types")
	cmd.Flags().StringVar(&cfg.expires, "expires", "", "Expiration date (RFC 3339)")
	cmd.Flags().StringVar(&cfg.statusList, "status-list", "", "Revocation status list credential URL")
	cmd.Flags().IntVar(&cfg.statusIndex, "status-index", 0, "Position of the credential in --status-list")
	cmd.Flags().BoolVar(&cfg.randomNonce, "random-nonce", false, "Seal the subject with AES-GCM and a random nonce")
	cmd.Flags().BoolVar(&cfg.jwt, "jwt", false, "Write the credential as an ES256K JWT")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "Output file (default stdout)")
	for _, name := range []string{"identity", "holder", "holder-key", "subject"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runIssue(ctx context.Context, g *globalConfig, cfg *issueConfig) error {
	issuer, kp, err := readIdentity(cfg.identity)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(cfg.subject)
	if err != nil {
		return fmt.Errorf("failed to read subject: %w", err)
	}
	subject, err := jsonvalue.ParseObject(raw)
	if err != nil {
		return fmt.Errorf("subject: %w", err)
	}

	in := vc.CredentialInputs{
		Types:           cfg.types,
		Issuer:          issuer.DID,
		Holder:          cfg.holder,
		HolderPublicKey: cfg.holderKey,
		Subject:         subject,
	}
	if cfg.statusList != "" {
		in.Status = &dto.CredentialStatus{
			Type:                 dto.StatusTypeBitstring,
			StatusPurpose:        dto.StatusPurposeRevocation,
			StatusListIndex:      strconv.Itoa(cfg.statusIndex),
			StatusListCredential: cfg.statusList,
		}
	}
	if cfg.expires != "" {
		if in.ExpirationDate, err = time.Parse(time.RFC3339, cfg.expires); err != nil {
			return fmt.Errorf("invalid --expires: %w", err)
		}
	}

	opts := []vc.CredentialOpt{vc.WithCircuitConfig(g.circuit)}
	if cfg.subjectSchema != "" {
		opts = append(opts, vc.WithSubjectSchema(cfg.subjectSchema))
	}
	if cfg.randomNonce {
		opts = append(opts, vc.WithSealOptions(didcomm.WithRandomNonce()))
	}

	c, err := vc.IssueCredential(ctx, in, kp.PrivateKey, opts...)
	if err != nil {
		return err
	}
	if cfg.jwt {
		return writeToken(cfg.output, kp.PrivateKey, issuer.DID, jwt.ClaimCredential, c)
	}
	return writeJSON(cfg.output, c)
}

func newDecryptCmd(g *globalConfig) *cobra.Command {
	var identity, credential, output string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Verify a credential and recover its subject as the holder",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, kp, err := readIdentity(identity)
			if err != nil {
				return err
			}
			var c vc.Credential
			if err := readJSON(credential, &c); err != nil {
				return err
			}

			full, err := vc.DecryptCredential(cmd.Context(), &c, kp.PrivateKey, vc.WithCircuitConfig(g.circuit))
			if err != nil {
				return err
			}
			return writeJSON(output, full)
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Holder keygen file")
	cmd.Flags().StringVar(&credential, "credential", "", "Credential JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("credential")

	return cmd
}
