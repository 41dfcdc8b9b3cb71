package circuit

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "checks", mutate: func(c *Config) { c.MaxNumChecks = 0 }},
		{name: "check size", mutate: func(c *Config) { c.MaxCheckSize = -1 }},
		{name: "smt level", mutate: func(c *Config) { c.SMTLevel = 0 }},
		{name: "value chunk", mutate: func(c *Config) { c.MaxValueChunk = 0 }},
		{name: "tree levels", mutate: func(c *Config) { c.TreeMaxLevels = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "circuit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxNumChecks: 4\nsmtLevel: 10\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxNumChecks)
	assert.Equal(t, 10, cfg.SMTLevel)
	assert.Equal(t, 3, cfg.MaxCheckSize)
	assert.Equal(t, 4, cfg.MaxValueChunk)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("smtLevel: 100\n"), 0o600))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "invalid circuit config")

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestPublicInputsVector(t *testing.T) {
	cfg := DefaultConfig()
	dummyRoot := big.NewInt(99)

	p := NewPublicInputs(cfg, dummyRoot)
	v := p.Vector()

	n, c, vc := cfg.MaxNumChecks, cfg.MaxCheckSize, cfg.MaxValueChunk
	require.Len(t, v, 1+3*n+3*n*c+n*vc+n)

	assert.Equal(t, "0", v[0].String())
	for i := 1; i <= 3*n; i++ {
		assert.Equal(t, "99", v[i].String())
	}
	// credentialsFieldIndex and schemaChecksFieldIndex are padded with 1.
	for i := 1 + 3*n; i < 1+3*n+2*n*c; i++ {
		assert.Equal(t, "1", v[i].String())
	}
	assert.Equal(t, "1", v[len(v)-1].String())

	// The vector is a copy.
	v[1].SetInt64(5)
	assert.Equal(t, "99", p.CredentialRoots[0].String())
}

func TestPublicInputsOrder(t *testing.T) {
	cfg := Config{MaxNumChecks: 1, MaxCheckSize: 1, SMTLevel: 1, MaxValueChunk: 1, TreeMaxLevels: 1}
	p := NewPublicInputs(cfg, big.NewInt(0))

	p.CredentialRoots[0] = big.NewInt(10)
	p.SchemaCheckRoots[0] = big.NewInt(11)
	p.RequestedCredentialRoots[0] = big.NewInt(12)
	p.CredentialsFieldIndex[0][0] = big.NewInt(13)
	p.SchemaChecksFieldIndex[0][0] = big.NewInt(14)
	p.SchemaChecksOperation[0][0] = big.NewInt(15)
	p.RequestedValue[0][0] = big.NewInt(16)
	p.RequestedCredentialFieldIndex[0] = big.NewInt(17)

	assert.Equal(t, []string{"0", "10", "11", "12", "13", "14", "15", "16", "17"}, p.Vector().Strings())
}

func TestProverInputsJSON(t *testing.T) {
	cfg := DefaultConfig()
	dummyProof := NewVector(cfg.SMTLevel+1, big.NewInt(0))
	in := NewProverInputs(cfg, big.NewInt(7), dummyProof)

	require.Len(t, in.CredentialsProof, cfg.MaxNumChecks)
	require.Len(t, in.CredentialsProof[0], cfg.MaxCheckSize)
	require.Len(t, in.CredentialsProof[0][0], cfg.SMTLevel+1)
	require.Len(t, in.RequestedCredentialProof[1], cfg.SMTLevel+1)

	// Cells do not alias each other.
	in.CredentialsProof[0][0][0].SetInt64(3)
	assert.Equal(t, "0", in.CredentialsProof[0][1][0].String())
	assert.Equal(t, "0", dummyProof[0].String())

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []interface{}{"7", "7"}, decoded["credentialRoots"])
	assert.Contains(t, decoded, "schemaChecksProof")
	assert.Contains(t, decoded, "requestedValue")

	assert.Equal(t, in.PublicInputs.Vector(), in.Public().Vector())
}

func TestGroth16VerifierRejectsBadInput(t *testing.T) {
	g := NewGroth16Verifier()
	proof := &types.ProofData{Protocol: "groth16"}

	_, err := g.Verify(context.Background(), []byte("{not json"), nil, proof)
	assert.ErrorContains(t, err, "not valid JSON")

	_, err = g.Verify(context.Background(), []byte("{}"), nil, nil)
	assert.ErrorContains(t, err, "proof is nil")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Verify(ctx, []byte("{}"), nil, proof)
	assert.ErrorIs(t, err, context.Canceled)
}

// infinityKey is a well formed key whose points are all at infinity.
func infinityKey(numPublic int) map[string]interface{} {
	g1 := []string{"0", "0", "1"}
	g2 := [][]string{{"0", "0"}, {"0", "0"}, {"1", "0"}}
	ic := make([][]string, numPublic+1)
	for i := range ic {
		ic[i] = g1
	}
	return map[string]interface{}{
		"protocol":   "groth16",
		"curve":      "bn128",
		"nPublic":    numPublic,
		"vk_alpha_1": g1,
		"vk_beta_2":  g2,
		"vk_gamma_2": g2,
		"vk_delta_2": g2,
		"IC":         ic,
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestGroth16VerifierKeyErrors(t *testing.T) {
	g := NewGroth16Verifier()
	inputs := []*big.Int{big.NewInt(7)}

	offCurve := infinityKey(1)
	offCurve["vk_alpha_1"] = []string{"5", "5", "1"}
	shortG2 := infinityKey(1)
	shortG2["vk_beta_2"] = [][]string{{"0"}, {"0"}, {"1"}}

	tests := []struct {
		name    string
		key     []byte
		wantErr string
	}{
		{name: "empty object", key: []byte("{}"), wantErr: "vk_alpha_1"},
		{name: "wrong field types", key: []byte(`{"vk_alpha_1": 3}`), wantErr: "verification key"},
		{name: "IC count mismatch", key: mustJSON(t, infinityKey(2)), wantErr: "IC points"},
		{name: "short G2 coordinates", key: mustJSON(t, shortG2), wantErr: "vk_beta_2"},
		{name: "point off the curve", key: mustJSON(t, offCurve), wantErr: "unusable verification key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := g.Verify(context.Background(), tt.key, inputs, identityProof())
			assert.ErrorContains(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}

	t.Run("public input outside the field", func(t *testing.T) {
		q, _ := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
		ok, err := g.Verify(context.Background(), mustJSON(t, infinityKey(1)), []*big.Int{q}, identityProof())
		assert.ErrorContains(t, err, "unusable verification key or public inputs")
		assert.False(t, ok)
	})
}

func TestGroth16VerifierProofOutcomes(t *testing.T) {
	g := NewGroth16Verifier()
	key := mustJSON(t, infinityKey(1))
	inputs := []*big.Int{big.NewInt(7)}

	ok, err := g.Verify(context.Background(), key, inputs, identityProof())
	require.NoError(t, err)
	assert.True(t, ok)

	offCurve := identityProof()
	offCurve.A = []string{"5", "5", "1"}
	ok, err = g.Verify(context.Background(), key, inputs, offCurve)
	require.NoError(t, err)
	assert.False(t, ok)

	truncated := identityProof()
	truncated.B = [][]string{{"0"}, {"0"}, {"1"}}
	ok, err = g.Verify(context.Background(), key, inputs, truncated)
	require.NoError(t, err)
	assert.False(t, ok)
}
