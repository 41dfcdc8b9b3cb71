// Package smt builds the sparse Merkle tree commitments over flattened
// objects. Trees are circomlib compatible (Poseidon over BN254), live in
// memory and are rebuilt for every call.
package smt

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/iden3/go-merkletree-sql/v2"
	"github.com/iden3/go-merkletree-sql/v2/db/memory"
)

// ErrKeyNotFound is returned when a proof is requested for a key the tree does not hold.
var ErrKeyNotFound = errors.New("smt: key not found")

// Leaf is one key/value pair of a tree.
type Leaf struct {
	Key   uint64
	Value *big.Int
}

// Proof is the fixed-length inclusion proof fed to the circuit:
// the leaf value followed by exactly SMTLevel siblings, zero padded.
type Proof []*big.Int

// Strings renders the proof as decimal strings.
func (p Proof) Strings() []string {
	out := make([]string, len(p))
	for i, x := range p {
		out[i] = x.String()
	}
	return out
}

// Tree is an in-memory sparse Merkle tree that always holds the dummy leaf.
type Tree struct {
	mt *merkletree.MerkleTree
}

// NewTree creates a tree of at most maxLevels levels holding only the dummy
// leaf (DummyKey, 0).
func NewTree(ctx context.Context, maxLevels int) (*Tree, error) {
	mt, err := merkletree.NewMerkleTree(ctx, memory.NewMemoryStorage(), maxLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to create merkle tree: %w", err)
	}

	t := &Tree{mt: mt}
	if err := t.Insert(ctx, DummyKey, big.NewInt(0)); err != nil {
		return nil, err
	}

	return t, nil
}

// BuildTree creates a tree holding the dummy leaf plus leaves. The root only
// depends on the set of leaves, not on their order.
func BuildTree(ctx context.Context, maxLevels int, leaves []Leaf) (*Tree, error) {
	t, err := NewTree(ctx, maxLevels)
	if err != nil {
		return nil, err
	}
	for _, l := range leaves {
		if err := t.Insert(ctx, l.Key, l.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Insert adds a leaf. Keys are unique within a tree.
func (t *Tree) Insert(ctx context.Context, key uint64, value *big.Int) error {
	if err := t.mt.Add(ctx, new(big.Int).SetUint64(key), value); err != nil {
		return fmt.Errorf("failed to insert key %d: %w", key, err)
	}
	return nil
}

// Root returns the root as a field element.
func (t *Tree) Root() *big.Int {
	return t.mt.Root().BigInt()
}

// Proof returns the inclusion proof of key with its siblings padded to levels.
func (t *Tree) Proof(ctx context.Context, key uint64, levels int) (Proof, error) {
	proof, value, err := t.mt.GenerateProof(ctx, new(big.Int).SetUint64(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof for key %d: %w", key, err)
	}
	if !proof.Existence {
		return nil, fmt.Errorf("%w: %d", ErrKeyNotFound, key)
	}

	siblings := proof.AllSiblings()
	if len(siblings) > levels {
		return nil, fmt.Errorf("proof for key %d needs %d siblings, circuit allows %d", key, len(siblings), levels)
	}

	out := make(Proof, 0, levels+1)
	out = append(out, value)
	for _, s := range siblings {
		out = append(out, s.BigInt())
	}
	for len(out) < levels+1 {
		out = append(out, big.NewInt(0))
	}

	return out, nil
}

// RootHex renders a root the way artifacts store it: lowercase hex, no prefix.
func RootHex(root *big.Int) string {
	return root.Text(16)
}

// ParseRootHex parses a root stored by RootHex.
func ParseRootHex(s string) (*big.Int, error) {
	root, ok := new(big.Int).SetString(s, 16)
	if !ok || root.Sign() < 0 {
		return nil, fmt.Errorf("invalid merkle root %q", s)
	}
	return root, nil
}
