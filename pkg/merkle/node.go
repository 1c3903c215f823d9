// Package merkle records Neural AI exchanges as a content-addressed Merkle DAG.
// Every message is a node whose hash covers its bucket and its parent's hash,
// so repeated conversations collapse onto the same nodes and diverging replies
// branch from their shared prefix.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Bucket types.
const (
	TypeMessage = "message"
	TypeImage   = "image"
)

// Bucket is the hashed payload of a node.
type Bucket struct {
	// Type is TypeMessage for chat messages and prompts, TypeImage for generated image URLs.
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// Node represents a single content-addressed node in a Merkle DAG
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash.
	// This will be nil for root nodes.
	ParentHash *string `json:"parent_hash"`

	Bucket Bucket `json:"bucket"`
}

type input struct {
	Bucket Bucket `json:"bucket"`
	Parent string `json:"parent,omitempty"`
}

// NewNode creates a new node with the computed hash for the provided bucket
func NewNode(bucket Bucket, parent *Node) *Node {
	n := &Node{
		Bucket: bucket,
	}

	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}

	n.Hash = n.computeHash()
	return n
}

func (n *Node) computeHash() string {
	i := input{Bucket: n.Bucket}
	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Struct field order makes the encoding canonical.
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
