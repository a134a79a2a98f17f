// Package merkle stores relay transcripts as a content-addressed Merkle DAG.
// Every message is a node whose hash covers its bucket and its parent's hash,
// so identical conversation prefixes deduplicate and divergent replies branch.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/entropy/pkg/llm"
)

// Bucket is the hashable payload of a node.
type Bucket struct {
	Type    string   `json:"type"` // always "message" for now
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
	Model   string   `json:"model,omitempty"`
}

// MessageBucket wraps a conversation message for storage.
func MessageBucket(m llm.Message, model string) Bucket {
	return Bucket{
		Type:    "message",
		Role:    m.Role,
		Content: m.Content,
		Model:   model,
	}
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

type hashInput struct {
	Bucket Bucket `json:"bucket"`
	Parent string `json:"parent,omitempty"`
}

func (n *Node) computeHash() string {
	in := hashInput{Bucket: n.Bucket}
	if n.ParentHash != nil {
		in.Parent = *n.ParentHash
	}

	// Struct fields marshal in declaration order, which keeps this deterministic
	data, err := json.Marshal(in)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Chain builds linked nodes for msgs, oldest first, all tagged with model.
// The last element is the head of the chain.
func Chain(msgs []llm.Message, model string) []*Node {
	nodes := make([]*Node, 0, len(msgs))
	var parent *Node
	for _, m := range msgs {
		n := NewNode(MessageBucket(m, model), parent)
		nodes = append(nodes, n)
		parent = n
	}
	return nodes
}
