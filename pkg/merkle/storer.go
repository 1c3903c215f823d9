package merkle

import (
	"context"
	"errors"
)

// Storer persists and retrieves transcript nodes.
// De-duplication happens via content-addressing: identical buckets with
// identical parents produce identical hashes and are stored once.
type Storer interface {
	// Put stores a node and reports whether it was new.
	// Storing an existing hash is a no-op.
	Put(ctx context.Context, node *Node) (bool, error)

	// Get retrieves a node by its hash. Returns ErrNotFound if the node doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	// Has checks if a node exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns all nodes in the store.
	List(ctx context.Context) ([]*Node, error)

	// Leaves returns all leaf nodes (nodes with no children).
	Leaves(ctx context.Context) ([]*Node, error)

	// Ancestry returns the path from a node back to its root (node first, root last).
	Ancestry(ctx context.Context, hash string) ([]*Node, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNilNode is returned by Put when given a nil node.
var ErrNilNode = errors.New("cannot store nil node")

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

// Open returns the storer for path: ":memory:" selects a MemoryStorer,
// anything else a SQLite database file.
func Open(path string) (Storer, error) {
	if path == MemoryPath {
		return NewMemoryStorer(), nil
	}
	return NewSQLiteStorer(path)
}

// MemoryPath selects the in-memory storer in Open.
const MemoryPath = ":memory:"

// ancestry walks parent links starting at hash using get.
func ancestry(ctx context.Context, hash string, get func(context.Context, string) (*Node, error)) ([]*Node, error) {
	var path []*Node
	for next := &hash; next != nil; {
		node, err := get(ctx, *next)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
		next = node.ParentHash
	}
	return path, nil
}
