package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iyunix/go-meddy/internal/services/ai/fake"
	"github.com/iyunix/go-meddy/internal/services/chunking"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	points    []vectorstore.Point
	batchSize int
	err       error
}

func (w *recordingWriter) BatchUpsert(_ context.Context, points []vectorstore.Point, batchSize int) error {
	w.points = append(w.points, points...)
	w.batchSize = batchSize
	return w.err
}

type chunkCounter map[string]int

func (c chunkCounter) ObserveChunks(strategy string, n int) { c[strategy] += n }

func newIndexer(t *testing.T, llm *fake.Provider, w *recordingWriter, rec Recorder) *Indexer {
	t.Helper()
	chunker, err := chunking.NewChunker(chunking.DefaultConfig(), chunking.WhitespaceTokenizer{}, nil, llm, nil)
	require.NoError(t, err)
	return NewIndexer(chunker, llm, w, 50, rec, nil)
}

func TestIndexDocumentShortText(t *testing.T) {
	llm := &fake.Provider{Embedding: []float32{1, 2}}
	w := &recordingWriter{}
	counts := chunkCounter{}
	ix := newIndexer(t, llm, w, counts)

	n, err := ix.IndexDocument(context.Background(), 7, "Cảm cúm", "Cảm cúm là bệnh do virus.")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, w.points, 1)
	assert.Equal(t, 50, w.batchSize)

	p := w.points[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []float32{1, 2}, p.Vector)
	assert.Equal(t, map[string]interface{}{
		"doc_id":  "7",
		"title":   "Cảm cúm",
		"content": "Cảm cúm là bệnh do virus.",
	}, p.Payload)
	assert.Equal(t, 1, counts["single"])
}

func TestIndexDocumentWindowText(t *testing.T) {
	llm := &fake.Provider{}
	w := &recordingWriter{}
	ix := newIndexer(t, llm, w, nil)

	text := strings.Repeat("Sốt cao kéo dài cần đi khám. ", 30)
	n, err := ix.IndexDocument(context.Background(), 1, "Sốt", text)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Len(t, llm.CallsOf("embedding"), n)
	for _, p := range w.points {
		assert.NotContains(t, p.Payload, chunking.WindowMetadataKey)
	}
}

func TestIndexDocumentErrors(t *testing.T) {
	ix := newIndexer(t, &fake.Provider{}, &recordingWriter{}, nil)
	_, err := ix.IndexDocument(context.Background(), 1, "t", "  ")
	assert.Error(t, err)

	ix = newIndexer(t, &fake.Provider{EmbeddingErr: errors.New("quota")}, &recordingWriter{}, nil)
	_, err = ix.IndexDocument(context.Background(), 1, "t", "nội dung")
	assert.ErrorContains(t, err, "quota")

	ix = newIndexer(t, &fake.Provider{}, &recordingWriter{err: errors.New("batch 1/1 failed")}, nil)
	_, err = ix.IndexDocument(context.Background(), 1, "t", "nội dung")
	assert.ErrorContains(t, err, "batch 1/1 failed")
}

func TestPreparePointsCarriesChunkMetadata(t *testing.T) {
	ix := newIndexer(t, &fake.Provider{}, &recordingWriter{}, nil)

	points, err := ix.PreparePoints(context.Background(), "Câu hỏi: ho?\nCâu trả lời: Viêm phổi", map[string]interface{}{
		"doc_type":       "disease_info",
		"source":         "PB3002/ViMedical_Disease",
		"original_index": 3,
	})
	require.NoError(t, err)
	require.Len(t, points, 1)

	payload := points[0].Payload
	assert.Equal(t, "disease_info", payload["doc_type"])
	assert.Equal(t, 3, payload["original_index"])
	assert.Equal(t, 0, payload[KeyChunkID])
	assert.Equal(t, 1, payload[KeyTotalChunks])
	assert.Equal(t, "Câu hỏi: ho?\nCâu trả lời: Viêm phổi", payload["content"])
}
