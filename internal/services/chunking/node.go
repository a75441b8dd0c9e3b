package chunking

import "github.com/google/uuid"

// Node is one chunk of a source text ready to be embedded.
type Node struct {
	ID       string
	Text     string
	Metadata map[string]interface{}

	// Neighbouring node ids within the same source text.
	PrevID string
	NextID string
}

func newNode(text string, metadata map[string]interface{}) Node {
	return Node{
		ID:       uuid.NewString(),
		Text:     text,
		Metadata: copyMetadata(metadata),
	}
}

func copyMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// linkNodes records prev/next relationships in order.
func linkNodes(nodes []Node) {
	for i := range nodes {
		if i > 0 {
			nodes[i].PrevID = nodes[i-1].ID
		}
		if i < len(nodes)-1 {
			nodes[i].NextID = nodes[i+1].ID
		}
	}
}
