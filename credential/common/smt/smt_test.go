package smt

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/encoding"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
)

func subject() jsonvalue.Object {
	return jsonvalue.Object{
		"age":     jsonvalue.Int(30),
		"country": jsonvalue.String("US"),
		"address": jsonvalue.Object{"city": jsonvalue.String("Hanoi")},
	}
}

func TestBuildKeyMap(t *testing.T) {
	m := BuildKeyMap(jsonvalue.Flatten(subject()))

	assert.Equal(t, []FieldIndex{
		{FieldName: "address.city", FieldIndex: 2},
		{FieldName: "age", FieldIndex: 3},
		{FieldName: "country", FieldIndex: 4},
	}, m.Entries())

	k, ok := m.Index("age")
	assert.True(t, ok)
	assert.Equal(t, uint64(3), k)

	_, ok = m.Index("missing")
	assert.False(t, ok)

	again := BuildKeyMap(jsonvalue.Flatten(subject()))
	assert.True(t, m.Equal(again))
}

func TestNewKeyMap(t *testing.T) {
	tests := []struct {
		name    string
		entries []FieldIndex
		wantErr string
	}{
		{
			name:    "valid",
			entries: []FieldIndex{{FieldName: "a", FieldIndex: 2}, {FieldName: "b", FieldIndex: 3}},
		},
		{
			name:    "reserved index",
			entries: []FieldIndex{{FieldName: "a", FieldIndex: 1}},
			wantErr: "reserved index",
		},
		{
			name:    "duplicate name",
			entries: []FieldIndex{{FieldName: "a", FieldIndex: 2}, {FieldName: "a", FieldIndex: 3}},
			wantErr: "duplicate field",
		},
		{
			name:    "duplicate index",
			entries: []FieldIndex{{FieldName: "a", FieldIndex: 2}, {FieldName: "b", FieldIndex: 2}},
			wantErr: "duplicate field index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewKeyMap(tt.entries)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.entries, m.Entries())
		})
	}
}

func TestBuildTreeOrderIndependent(t *testing.T) {
	ctx := context.Background()

	leaves := make([]Leaf, 0, 10)
	for i := 0; i < 10; i++ {
		leaves = append(leaves, Leaf{Key: FirstFieldKey + uint64(i), Value: big.NewInt(int64(i*i + 7))})
	}

	reference, err := BuildTree(ctx, 64, leaves)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]Leaf, len(leaves))
		copy(shuffled, leaves)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		tree, err := BuildTree(ctx, 64, shuffled)
		require.NoError(t, err)
		assert.Equal(t, reference.Root(), tree.Root())
	}
}

func TestTreeDuplicateKey(t *testing.T) {
	ctx := context.Background()

	_, err := BuildTree(ctx, 64, []Leaf{{Key: DummyKey, Value: big.NewInt(3)}})
	assert.Error(t, err)
}

func TestCommitmentProof(t *testing.T) {
	ctx := context.Background()
	cfg := circuit.DefaultConfig()

	c, err := CommitObject(ctx, subject(), cfg)
	require.NoError(t, err)

	f, ok := c.Field("age")
	require.True(t, ok)
	assert.Equal(t, uint64(3), f.Key)
	assert.Equal(t, encoding.FoldToField(f.Chunks), f.Leaf)
	assert.Equal(t, []string{"0", "0", "0", "30"}, f.Chunks.Strings())

	proof, err := c.Proof(ctx, "age", cfg.SMTLevel)
	require.NoError(t, err)
	require.Len(t, proof, cfg.SMTLevel+1)
	assert.Equal(t, f.Leaf, proof[0])

	dummy, err := c.DummyProof(ctx, cfg.SMTLevel)
	require.NoError(t, err)
	assert.Equal(t, "0", dummy[0].String())

	_, err = c.Proof(ctx, "missing", cfg.SMTLevel)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestCommitmentDeterministic(t *testing.T) {
	ctx := context.Background()
	cfg := circuit.DefaultConfig()

	a, err := CommitObject(ctx, subject(), cfg)
	require.NoError(t, err)
	b, err := CommitObject(ctx, subject(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Root(), b.Root())

	changed := subject()
	changed["age"] = jsonvalue.Int(31)
	c, err := CommitObject(ctx, changed, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Root(), c.Root())
}

func TestCommitRejectsCollidingPaths(t *testing.T) {
	ctx := context.Background()
	obj, err := jsonvalue.ParseObject([]byte(`{"a":{"b":1},"a.b":2}`))
	require.NoError(t, err)

	for range 20 {
		_, err := CommitObject(ctx, obj, circuit.DefaultConfig())
		require.ErrorIs(t, err, jsonvalue.ErrDuplicatePath)
	}

	_, err = Commit(ctx, []jsonvalue.Field{
		{Path: "x", Value: jsonvalue.Int(1)},
		{Path: "x", Value: jsonvalue.Int(1)},
	}, circuit.DefaultConfig())
	assert.ErrorIs(t, err, jsonvalue.ErrDuplicatePath)
}

func TestDummyTree(t *testing.T) {
	ctx := context.Background()
	cfg := circuit.DefaultConfig()

	d1, err := BuildDummyTree(ctx, cfg)
	require.NoError(t, err)
	d2, err := BuildDummyTree(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, d1.Root(), d2.Root())

	proof, err := d1.Proof(ctx, DummyKey, cfg.SMTLevel)
	require.NoError(t, err)
	require.Len(t, proof, cfg.SMTLevel+1)
	for _, x := range proof {
		assert.Equal(t, "0", x.String())
	}

	_, err = d1.Proof(ctx, FirstFieldKey, cfg.SMTLevel)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestProofTooDeep(t *testing.T) {
	ctx := context.Background()

	// Keys 1 and 2^k+1 share their low k bits, forcing a path of depth k+1.
	tree, err := BuildTree(ctx, 64, []Leaf{{Key: 1<<8 + 1, Value: big.NewInt(5)}})
	require.NoError(t, err)

	_, err = tree.Proof(ctx, 1<<8+1, 6)
	assert.ErrorContains(t, err, "circuit allows 6")
}

func TestRootHex(t *testing.T) {
	root := big.NewInt(0xabcdef)
	assert.Equal(t, "abcdef", RootHex(root))

	parsed, err := ParseRootHex("abcdef")
	require.NoError(t, err)
	assert.Equal(t, root, parsed)

	_, err = ParseRootHex("xyz")
	assert.Error(t, err)
	_, err = ParseRootHex("-1")
	assert.Error(t, err)
}
