// File: internal/services/vectorstore/interface.go
package vectorstore

import (
	"context"
)

// Point is a vector plus its payload ready for upsert.
type Point struct {
	ID      string // UUID; generated when empty
	Vector  []float32
	Payload map[string]interface{}
}

// SearchResult is a scored hit with the payload fields the pipeline reads
// pulled out.
type SearchResult struct {
	ID       string
	Score    float32
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// Store is the vector store used by indexing and retrieval.
type Store interface {
	CreateCollection(ctx context.Context, name string, dimension int) (string, error)
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	BatchUpsert(ctx context.Context, points []Point, batchSize int) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Health(ctx context.Context) error
}
