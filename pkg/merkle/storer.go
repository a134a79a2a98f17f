package merkle

import (
	"context"
	"errors"
)

// ErrNilNode is returned when Put is handed a nil node.
var ErrNilNode = errors.New("cannot store nil node")

// Storer persists and retrieves transcript nodes.
// De-duplication happens automatically via content-addressing: identical
// buckets with identical parents produce identical hashes.
type Storer interface {
	// Put stores a node and reports whether it was new. Storing an existing
	// hash is a no-op.
	Put(ctx context.Context, node *Node) (bool, error)

	// Get retrieves a node by its hash. Returns ErrNotFound if the node doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	// Has checks if a node exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns all nodes in insertion order.
	List(ctx context.Context) ([]*Node, error)

	// Roots returns all root nodes (nodes with no parent).
	Roots(ctx context.Context) ([]*Node, error)

	// Leaves returns all leaf nodes (nodes with no children).
	Leaves(ctx context.Context) ([]*Node, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "node not found"
	}

	return "node not found: " + e.Hash
}

// Ancestry returns the path from hash back to its root (node first, root last).
func Ancestry(ctx context.Context, s Storer, hash string) ([]*Node, error) {
	var path []*Node
	next := &hash
	for next != nil {
		node, err := s.Get(ctx, *next)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
		next = node.ParentHash
	}
	return path, nil
}

// PutChain stores nodes in order and returns how many were new.
func PutChain(ctx context.Context, s Storer, nodes []*Node) (int, error) {
	var added int
	for _, n := range nodes {
		isNew, err := s.Put(ctx, n)
		if err != nil {
			return added, err
		}
		if isNew {
			added++
		}
	}
	return added, nil
}
