// Package circuit describes the fixed shape of the selective-disclosure
// circuit: its dimensions, the prover input tensors, the public input vector
// and the interfaces of the external SNARK backend.
package circuit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the circuit shape. Builders and verifiers must use the same value.
type Config struct {
	// MaxNumChecks is the number of check slots (and of disclosure slots).
	MaxNumChecks int `yaml:"maxNumChecks" json:"maxNumChecks"`
	// MaxCheckSize is the number of predicates per check slot.
	MaxCheckSize int `yaml:"maxCheckSize" json:"maxCheckSize"`
	// SMTLevel is the number of siblings in every inclusion proof.
	SMTLevel int `yaml:"smtLevel" json:"smtLevel"`
	// MaxValueChunk is the number of field chunks per encoded value.
	MaxValueChunk int `yaml:"maxValueChunk" json:"maxValueChunk"`
	// TreeMaxLevels bounds the in-memory commitment trees. Roots do not depend on it.
	TreeMaxLevels int `yaml:"treeMaxLevels" json:"treeMaxLevels"`
}

// DefaultConfig returns the shape of the reference circuit.
func DefaultConfig() Config {
	return Config{
		MaxNumChecks:  2,
		MaxCheckSize:  3,
		SMTLevel:      6,
		MaxValueChunk: 4,
		TreeMaxLevels: 64,
	}
}

// Validate rejects shapes no circuit can have.
func (c Config) Validate() error {
	switch {
	case c.MaxNumChecks <= 0:
		return fmt.Errorf("maxNumChecks must be positive, got %d", c.MaxNumChecks)
	case c.MaxCheckSize <= 0:
		return fmt.Errorf("maxCheckSize must be positive, got %d", c.MaxCheckSize)
	case c.SMTLevel <= 0:
		return fmt.Errorf("smtLevel must be positive, got %d", c.SMTLevel)
	case c.MaxValueChunk <= 0:
		return fmt.Errorf("maxValueChunk must be positive, got %d", c.MaxValueChunk)
	case c.TreeMaxLevels < c.SMTLevel:
		return fmt.Errorf("treeMaxLevels (%d) must not be smaller than smtLevel (%d)", c.TreeMaxLevels, c.SMTLevel)
	}
	return nil
}

// LoadConfig reads a YAML circuit shape. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read circuit config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse circuit config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid circuit config: %w", err)
	}

	return cfg, nil
}
