package smt

import (
	"context"
	"fmt"
	"math/big"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/circuit"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/encoding"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
)

// CommittedField is one leaf of a commitment together with its encodings.
type CommittedField struct {
	Path   string
	Key    uint64
	Raw    jsonvalue.Value
	Chunks encoding.FieldChunks
	Leaf   *big.Int
}

// Commitment is a tree built over a flattened object.
type Commitment struct {
	tree   *Tree
	keyMap *KeyMap
	fields map[string]CommittedField
}

// Commit encodes every field, assigns keys with BuildKeyMap and inserts the
// folded encodings into a fresh tree. fields must be sorted by path; two
// fields with the same path fail with jsonvalue.ErrDuplicatePath.
func Commit(ctx context.Context, fields []jsonvalue.Field, cfg circuit.Config) (*Commitment, error) {
	if err := jsonvalue.CheckUniquePaths(fields); err != nil {
		return nil, err
	}
	keyMap := BuildKeyMap(fields)

	c := &Commitment{
		keyMap: keyMap,
		fields: make(map[string]CommittedField, len(fields)),
	}

	leaves := make([]Leaf, 0, len(fields))
	for _, f := range fields {
		key, _ := keyMap.Index(f.Path)
		chunks, leaf := encoding.EncodeToField(f.Value, cfg.MaxValueChunk)

		c.fields[f.Path] = CommittedField{
			Path:   f.Path,
			Key:    key,
			Raw:    f.Value,
			Chunks: chunks,
			Leaf:   leaf,
		}
		leaves = append(leaves, Leaf{Key: key, Value: leaf})
	}

	tree, err := BuildTree(ctx, cfg.TreeMaxLevels, leaves)
	if err != nil {
		return nil, fmt.Errorf("failed to build commitment tree: %w", err)
	}
	c.tree = tree

	return c, nil
}

// CommitObject flattens obj and commits to its fields.
func CommitObject(ctx context.Context, obj jsonvalue.Object, cfg circuit.Config) (*Commitment, error) {
	return Commit(ctx, jsonvalue.Flatten(obj), cfg)
}

// Root returns the commitment root.
func (c *Commitment) Root() *big.Int {
	return c.tree.Root()
}

// KeyMap returns the key assignment the tree was built with.
func (c *Commitment) KeyMap() *KeyMap {
	return c.keyMap
}

// Field returns the committed leaf at path.
func (c *Commitment) Field(path string) (CommittedField, bool) {
	f, ok := c.fields[path]
	return f, ok
}

// Proof returns the inclusion proof of the field at path.
func (c *Commitment) Proof(ctx context.Context, path string, levels int) (Proof, error) {
	f, ok := c.fields[path]
	if !ok {
		return nil, fmt.Errorf("%w: field %q", ErrKeyNotFound, path)
	}
	return c.tree.Proof(ctx, f.Key, levels)
}

// DummyProof returns the proof of the dummy leaf in this tree.
func (c *Commitment) DummyProof(ctx context.Context, levels int) (Proof, error) {
	return c.tree.Proof(ctx, DummyKey, levels)
}

// BuildDummyTree returns a fresh tree holding only the dummy leaf. Padding
// slots take their roots and proofs from it.
func BuildDummyTree(ctx context.Context, cfg circuit.Config) (*Tree, error) {
	return NewTree(ctx, cfg.TreeMaxLevels)
}
