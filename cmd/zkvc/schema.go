package main

import (
	"github.com/spf13/cobra"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/vc"
)

type schemaConfig struct {
	identity string
	name     string
	checks   string
	requests []string
	output   string
}

func newSchemaCmd(g *globalConfig) *cobra.Command {
	cfg := &schemaConfig{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Publish a predicate schema",
		Long:  `Commit to a list of checks, one per credential slot, and sign them with the verifier key. The checks file is a JSON array of objects whose leaves are [operator, value] pairs.`,
		Example: `  zkvc schema --identity verifier.json --name adult \
    --checks checks.json --request 0.country -o schema.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier, kp, err := readIdentity(cfg.identity)
			if err != nil {
				return err
			}
			var checks []jsonvalue.Object
			if err := readJSON(cfg.checks, &checks); err != nil {
				return err
			}
			signer, err := crypto.NewDefaultSigner(kp.PrivateKey)
			if err != nil {
				return err
			}

			s, err := vc.IssueSchema(cmd.Context(), vc.SchemaInputs{
				Name:     cfg.name,
				Verifier: verifier.DID,
				Checks:   checks,
				Requests: cfg.requests,
			}, signer, vc.WithCircuitConfig(g.circuit))
			if err != nil {
				return err
			}
			return writeJSON(cfg.output, s)
		},
	}

	cmd.Flags().StringVar(&cfg.identity, "identity", "", "Verifier keygen file")
	cmd.Flags().StringVar(&cfg.name, "name", "", "Schema name")
	cmd.Flags().StringVar(&cfg.checks, "checks", "", "Checks JSON file")
	cmd.Flags().StringSliceVar(&cfg.requests, "request", nil, "Requested field as <credential index>.<field path>")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("checks")

	return cmd
}
