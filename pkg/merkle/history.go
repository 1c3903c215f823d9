package merkle

import "context"

// History returns the chain ending at hash in chronological order (root first).
func History(ctx context.Context, s Storer, hash string) ([]*Node, error) {
	path, err := s.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Chain stores buckets as a linked chain under parent (nil for a new root)
// and returns the last node. Existing nodes are left untouched.
func Chain(ctx context.Context, s Storer, parent *Node, buckets ...Bucket) (*Node, error) {
	for _, b := range buckets {
		node := NewNode(b, parent)
		if _, err := s.Put(ctx, node); err != nil {
			return nil, err
		}
		parent = node
	}
	return parent, nil
}
