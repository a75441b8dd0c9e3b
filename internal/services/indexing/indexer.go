// File: internal/services/indexing/indexer.go
package indexing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/chunking"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
)

// Payload keys written alongside every indexed chunk.
const (
	KeyDocID       = "doc_id"
	KeyChunkID     = "chunk_id"
	KeyTotalChunks = "total_chunks"
)

// Chunker splits text into nodes. *chunking.Chunker satisfies it.
type Chunker interface {
	StrategyFor(text string) chunking.Strategy
	DynamicChunk(ctx context.Context, text string, metadata map[string]interface{}) ([]chunking.Node, error)
}

// Writer is the write side of the vector store.
type Writer interface {
	BatchUpsert(ctx context.Context, points []vectorstore.Point, batchSize int) error
}

// Recorder receives chunking observations. *metrics.Recorder satisfies it.
type Recorder interface {
	ObserveChunks(strategy string, n int)
}

type Indexer struct {
	chunker   Chunker
	embedder  ai.EmbeddingProvider
	store     Writer
	batchSize int
	metrics   Recorder
	logger    logging.Logger
}

func NewIndexer(chunker Chunker, embedder ai.EmbeddingProvider, store Writer, batchSize int, metrics Recorder, logger logging.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Indexer{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		metrics:   metrics,
		logger:    logging.OrNoOp(logger),
	}
}

// IndexDocument chunks a stored document, embeds every chunk and upserts the
// points with doc_id (as a string), title and content payloads. It returns the
// number of points written.
func (ix *Indexer) IndexDocument(ctx context.Context, docID uint, title, content string) (int, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("document %d has no content", docID)
	}

	id := strconv.FormatUint(uint64(docID), 10)
	nodes, err := ix.chunk(ctx, content, map[string]interface{}{KeyDocID: id, vectorstore.PayloadTitle: title})
	if err != nil {
		return 0, err
	}

	points := make([]vectorstore.Point, 0, len(nodes))
	for _, node := range nodes {
		vector, err := ix.embedder.CreateEmbedding(ctx, node.Text)
		if err != nil {
			return 0, fmt.Errorf("embed chunk of document %d: %w", docID, err)
		}
		points = append(points, vectorstore.Point{
			ID:     uuid.NewString(),
			Vector: vector,
			Payload: map[string]interface{}{
				KeyDocID:                   id,
				vectorstore.PayloadTitle:   title,
				vectorstore.PayloadContent: node.Text,
			},
		})
	}

	if err := ix.store.BatchUpsert(ctx, points, ix.batchSize); err != nil {
		return 0, fmt.Errorf("upsert chunks of document %d: %w", docID, err)
	}
	ix.logger.Info("document indexed", "doc_id", docID, "chunks", len(points))
	return len(points), nil
}

// PreparePoints chunks text and embeds each chunk. Every point carries the
// chunk's metadata plus chunk_id, total_chunks and content.
func (ix *Indexer) PreparePoints(ctx context.Context, text string, metadata map[string]interface{}) ([]vectorstore.Point, error) {
	nodes, err := ix.chunk(ctx, text, metadata)
	if err != nil {
		return nil, err
	}

	points := make([]vectorstore.Point, 0, len(nodes))
	for i, node := range nodes {
		vector, err := ix.embedder.CreateEmbedding(ctx, node.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}

		payload := make(map[string]interface{}, len(node.Metadata)+3)
		for k, v := range node.Metadata {
			payload[k] = v
		}
		payload[KeyChunkID] = i
		payload[KeyTotalChunks] = len(nodes)
		payload[vectorstore.PayloadContent] = node.Text

		points = append(points, vectorstore.Point{ID: uuid.NewString(), Vector: vector, Payload: payload})
	}
	return points, nil
}

// Upload writes points in batches, failing on the first failed batch.
func (ix *Indexer) Upload(ctx context.Context, points []vectorstore.Point) error {
	return ix.store.BatchUpsert(ctx, points, ix.batchSize)
}

func (ix *Indexer) chunk(ctx context.Context, text string, metadata map[string]interface{}) ([]chunking.Node, error) {
	strategy := ix.chunker.StrategyFor(text)
	nodes, err := ix.chunker.DynamicChunk(ctx, text, metadata)
	if err != nil {
		return nil, fmt.Errorf("chunk (%s): %w", strategy, err)
	}
	if ix.metrics != nil {
		ix.metrics.ObserveChunks(string(strategy), len(nodes))
	}
	ix.logger.Debug("text chunked", "strategy", strategy, "nodes", len(nodes))
	return nodes, nil
}
