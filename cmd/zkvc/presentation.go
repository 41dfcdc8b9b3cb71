package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/spf13/cobra"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vp"
	"github.com/pilacorp/go-zkcredential-sdk/didcomm"
)

type presentConfig struct {
	identity    string
	schema      string
	credentials []string
	verifierKey string
	randomNonce bool
	inputs      string
	output      string
}

func newPresentCmd(g *globalConfig) *cobra.Command {
	cfg := &presentConfig{}

	cmd := &cobra.Command{
		Use:   "present",
		Short: "Build a presentation and its prover inputs",
		Long:  `Evaluate the schema checks against decrypted credentials (one per check, in order), seal the requested values to the verifier and write the circuit inputs for an external prover. Attach the resulting proof with attach-proof.`,
		Example: `  zkvc present --identity holder.json --schema schema.json \
    --credential decrypted.json --inputs input.json -o presentation.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresent(cmd.Context(), g, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.identity, "identity", "", "Holder keygen file")
	cmd.Flags().StringVar(&cfg.schema, "schema", "", "Schema JSON file")
	cmd.Flags().StringArrayVar(&cfg.credentials, "credential", nil, "Decrypted credential JSON file, once per check")
	cmd.Flags().StringVar(&cfg.verifierKey, "verifier-key", "", "Verifier public key (defaults to the schema's)")
	cmd.Flags().BoolVar(&cfg.randomNonce, "random-nonce", false, "Seal the disclosed values with AES-GCM and a random nonce")
	cmd.Flags().StringVar(&cfg.inputs, "inputs", "input.json", "Prover inputs output file")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("credential")

	return cmd
}

func runPresent(ctx context.Context, g *globalConfig, cfg *presentConfig) error {
	holder, kp, err := readIdentity(cfg.identity)
	if err != nil {
		return err
	}

	rawSchema, err := os.ReadFile(cfg.schema)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	schema, err := vc.ParseSchema(rawSchema)
	if err != nil {
		return err
	}

	credentials := make([]*vc.Credential, len(cfg.credentials))
	for i, path := range cfg.credentials {
		credentials[i] = &vc.Credential{}
		if err := readJSON(path, credentials[i]); err != nil {
			return err
		}
	}

	opts := []vp.PresentationOpt{vp.WithCircuitConfig(g.circuit)}
	if cfg.randomNonce {
		opts = append(opts, vp.WithSealOptions(didcomm.WithRandomNonce()))
	}

	res, err := vp.BuildPresentation(ctx, schema, credentials, vp.Holder{DID: holder.DID, PrivateKey: kp.PrivateKey}, cfg.verifierKey, opts...)
	if err != nil {
		return err
	}
	if err := writeJSON(cfg.inputs, res.Inputs); err != nil {
		return err
	}
	return writeJSON(cfg.output, res.Presentation)
}

func newAttachProofCmd() *cobra.Command {
	var presentation, proof, output string

	cmd := &cobra.Command{
		Use:   "attach-proof",
		Short: "Attach a Groth16 proof (snarkjs/rapidsnark JSON) to a presentation",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p vp.Presentation
			if err := readJSON(presentation, &p); err != nil {
				return err
			}
			var pd types.ProofData
			if err := readJSON(proof, &pd); err != nil {
				return err
			}
			p.SNARKProof = &pd
			return writeJSON(output, &p)
		},
	}

	cmd.Flags().StringVar(&presentation, "presentation", "", "Presentation JSON file")
	cmd.Flags().StringVar(&proof, "proof", "", "Proof JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("presentation")
	_ = cmd.MarkFlagRequired("proof")

	return cmd
}

type verifyConfig struct {
	identity        string
	schema          string
	presentation    string
	verificationKey string
	output          string
}

func newVerifyCmd(g *globalConfig) *cobra.Command {
	cfg := &verifyConfig{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a presentation against your schema and print the disclosed values",
		Example: `  zkvc verify --identity verifier.json --schema schema.json \
    --presentation presentation.json --vk verification_key.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), g, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.identity, "identity", "", "Verifier keygen file")
	cmd.Flags().StringVar(&cfg.schema, "schema", "", "Schema JSON file")
	cmd.Flags().StringVar(&cfg.presentation, "presentation", "", "Presentation JSON file")
	cmd.Flags().StringVar(&cfg.verificationKey, "vk", "", "snarkjs verification key JSON file")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "Output file for the disclosed values (default stdout)")
	for _, name := range []string{"identity", "schema", "presentation", "vk"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runVerify(ctx context.Context, g *globalConfig, cfg *verifyConfig) error {
	_, kp, err := readIdentity(cfg.identity)
	if err != nil {
		return err
	}
	var schema vc.Schema
	if err := readJSON(cfg.schema, &schema); err != nil {
		return err
	}
	var p vp.Presentation
	if err := readJSON(cfg.presentation, &p); err != nil {
		return err
	}
	vk, err := os.ReadFile(cfg.verificationKey)
	if err != nil {
		return fmt.Errorf("failed to read verification key: %w", err)
	}

	var verifier circuit.ProofVerifier = circuit.NewGroth16Verifier()
	disclosed, err := vp.VerifyPresentation(ctx, &schema, &p, kp.PrivateKey, verifier, vk, vp.WithCircuitConfig(g.circuit))
	if err != nil {
		return err
	}
	return writeJSON(cfg.output, jsonvalue.Array(disclosed))
}
