package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/logging"
)

// globalConfig holds what the persistent flags resolve to.
type globalConfig struct {
	configPath string
	logLevel   string
	circuit    circuit.Config
}

func newRootCmd() *cobra.Command {
	g := &globalConfig{circuit: circuit.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:           "zkvc",
		Short:         "Zero-knowledge verifiable credentials",
		Long:          `Issue field-committed credentials, publish predicate schemas, build selective-disclosure presentations and verify them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLogger(logging.NewConsole(os.Stderr, g.logLevel))
			if g.configPath == "" {
				return nil
			}
			cfg, err := circuit.LoadConfig(g.configPath)
			if err != nil {
				return err
			}
			g.circuit = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML circuit shape (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newKeygenCmd(),
		newIssueCmd(g),
		newDecryptCmd(g),
		newSchemaCmd(g),
		newPresentCmd(g),
		newAttachProofCmd(),
		newVerifyCmd(g),
	)

	return rootCmd
}
