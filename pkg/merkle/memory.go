package merkle

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorer keeps nodes in a map. Contents are lost on Close.
type MemoryStorer struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// NewMemoryStorer returns an empty in-memory storer.
func NewMemoryStorer() *MemoryStorer {
	return &MemoryStorer{nodes: make(map[string]*Node)}
}

func (s *MemoryStorer) Put(_ context.Context, node *Node) (bool, error) {
	if node == nil {
		return false, ErrNilNode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[node.Hash]; ok {
		return false, nil
	}
	s.nodes[node.Hash] = node
	return true, nil
}

func (s *MemoryStorer) Get(_ context.Context, hash string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[hash]
	if !ok {
		return nil, ErrNotFound{Hash: hash}
	}
	return node, nil
}

func (s *MemoryStorer) Has(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.nodes[hash]
	return ok, nil
}

// List returns all nodes ordered by hash.
func (s *MemoryStorer) List(_ context.Context) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sortByHash(out)
	return out, nil
}

func (s *MemoryStorer) Leaves(_ context.Context) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parents := make(map[string]bool, len(s.nodes))
	for _, n := range s.nodes {
		if n.ParentHash != nil {
			parents[*n.ParentHash] = true
		}
	}

	var out []*Node
	for hash, n := range s.nodes {
		if !parents[hash] {
			out = append(out, n)
		}
	}
	sortByHash(out)
	return out, nil
}

func (s *MemoryStorer) Ancestry(ctx context.Context, hash string) ([]*Node, error) {
	return ancestry(ctx, hash, s.Get)
}

func (s *MemoryStorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	return nil
}

func sortByHash(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Hash < nodes[j].Hash })
}
