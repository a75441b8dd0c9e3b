// File: internal/services/vectorstore/client.go
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantStore implements Store over the Qdrant gRPC API.
type QdrantStore struct {
	config      *Config
	client      *qdrant.Client
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	retry       *RetryService
	logger      logging.Logger
}

// NewQdrantStore dials Qdrant. The connection is lazy; the first call
// surfaces connectivity problems.
func NewQdrantStore(config *Config, logger logging.Logger) (*QdrantStore, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, NewConnectionError("client creation failed", err)
	}

	store := newStore(config, client.GetPointsClient(), client.GetCollectionsClient(), logger)
	store.client = client

	store.logger.Info("Qdrant client initialized",
		"host", config.Host,
		"port", config.Port,
		"collection", config.CollectionName)
	return store, nil
}

func newStore(config *Config, points qdrant.PointsClient, collections qdrant.CollectionsClient, logger logging.Logger) *QdrantStore {
	return &QdrantStore{
		config:      config,
		points:      points,
		collections: collections,
		retry:       NewRetryService(config, logger),
		logger:      logging.OrNoOp(logger),
	}
}

// CreateCollection creates a cosine collection unless it already exists and
// returns a human-readable status.
func (s *QdrantStore) CreateCollection(ctx context.Context, name string, dimension int) (string, error) {
	if name == "" {
		return "", NewValidationError("collection name is required")
	}
	if dimension <= 0 {
		return "", NewValidationError("vector dimension must be positive")
	}

	exists, err := s.collectionExists(ctx, name)
	if err != nil {
		return "", NewOperationError("collection lookup failed", err)
	}
	if exists {
		s.logger.Info("Collection already exists", "collection", name)
		return fmt.Sprintf("Collection %s already exists", name), nil
	}

	err = s.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.collections.Create(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(dimension),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		return err
	})
	if err != nil {
		return "", NewOperationError("collection creation failed", err)
	}

	s.logger.Info("Collection created", "collection", name, "dimension", dimension)
	return fmt.Sprintf("Collection %s created with vector dimensions %d successfully", name, dimension), nil
}

// EnsureCollection creates the configured collection when missing.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	_, err := s.CreateCollection(ctx, s.config.CollectionName, s.config.Dimension)
	return err
}

func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for i, p := range points {
		if len(p.Vector) != s.config.Dimension {
			return NewValidationError(fmt.Sprintf("point %d has dimension %d, want %d", i, len(p.Vector), s.config.Dimension))
		}
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: p.Vector}}},
			Payload: toPayload(p.Payload),
		})
	}

	wait := true
	err := s.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.config.CollectionName,
			Wait:           &wait,
			Points:         structs,
		})
		return err
	})
	if err != nil {
		s.logger.Error("upsert failed", "points", len(points), "error", err)
		return NewOperationError("upsert failed", err)
	}

	s.logger.Debug("points upserted", "count", len(points))
	return nil
}

// BatchUpsert upserts in chunks of batchSize and stops at the first failing
// batch.
func (s *QdrantStore) BatchUpsert(ctx context.Context, points []Point, batchSize int) error {
	if batchSize <= 0 {
		batchSize = s.config.BatchSize
	}

	total := (len(points) + batchSize - 1) / batchSize
	for start, n := 0, 1; start < len(points); start, n = start+batchSize, n+1 {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.Upsert(ctx, points[start:end]); err != nil {
			return fmt.Errorf("batch %d/%d failed: %w", n, total, err)
		}
		s.logger.Info("batch upserted", "batch", n, "total_batches", total, "points", end-start)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if len(vector) == 0 {
		return nil, NewValidationError("query vector is empty")
	}
	if topK <= 0 {
		return nil, NewValidationError("topK must be positive")
	}

	var hits []*qdrant.ScoredPoint
	err := s.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
			CollectionName: s.config.CollectionName,
			Vector:         vector,
			Limit:          uint64(topK),
			WithPayload: &qdrant.WithPayloadSelector{
				SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
			},
		})
		if err != nil {
			return err
		}
		hits = resp.GetResult()
		return nil
	})
	if err != nil {
		s.logger.Error("similarity search failed", "error", err)
		return nil, NewOperationError("search operation failed", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, toSearchResult(hit))
	}
	s.logger.Debug("similarity search completed", "results_count", len(results))
	return results, nil
}

func (s *QdrantStore) Health(ctx context.Context) error {
	_, err := s.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return NewConnectionError("health check failed", err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *QdrantStore) collectionExists(ctx context.Context, name string) (bool, error) {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: name})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
