// File: internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iyunix/go-meddy/internal/cache"
	"github.com/iyunix/go-meddy/internal/config"
	"github.com/iyunix/go-meddy/internal/handlers"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/metrics"
	"github.com/iyunix/go-meddy/internal/ratelimit"
	"github.com/iyunix/go-meddy/internal/repository"
	"github.com/iyunix/go-meddy/internal/repository/conversation"
	"github.com/iyunix/go-meddy/internal/repository/document"
	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/chat"
	"github.com/iyunix/go-meddy/internal/services/chunking"
	"github.com/iyunix/go-meddy/internal/services/indexing"
	"github.com/iyunix/go-meddy/internal/services/rerank"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
	"github.com/iyunix/go-meddy/internal/services/websearch"
	"github.com/iyunix/go-meddy/internal/tasks"
)

// Application aggregates all services shared by the server, the worker and
// the loader.
type Application struct {
	Config  *config.Config
	Logger  *logging.ZapLogger
	Metrics *metrics.Recorder

	DB            *gorm.DB
	Redis         *redis.Client
	Sessions      *cache.RedisSessionStore
	Conversations conversation.ConversationRepository
	Documents     document.DocumentRepository

	AI       *ai.OpenAIProvider
	Store    *vectorstore.QdrantStore
	Reranker *rerank.CohereReranker
	Searcher *websearch.TavilyClient
	Chunker  *chunking.Chunker
	Indexer  *indexing.Indexer
	Chat     *chat.Service
	Tasks    *tasks.Client

	closers []func() error
}

// NewLogger builds the process logger from config.
func NewLogger(cfg *config.Config, service string) *logging.ZapLogger {
	return logging.New(logging.Options{
		Service:    service,
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		File:       cfg.LogFile,
	})
}

// New wires every component. Remote services are dialed lazily, so New only
// fails on bad configuration or an unreachable database.
func New(cfg *config.Config, logger *logging.ZapLogger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Application{Config: cfg, Logger: logger, Metrics: metrics.New()}

	// --- Storage ---
	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	a.DB = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	a.Redis = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	a.closers = append(a.closers, a.Redis.Close)
	a.Sessions = cache.NewRedisSessionStore(a.Redis, cfg.ConversationTTL, logger)
	a.Conversations = conversation.NewConversationRepository(db, logger)
	a.Documents = document.NewDocumentRepository(db, logger)

	// --- External services ---
	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.OpenAIAPIKey
	aiCfg.BaseURL = cfg.OpenAIBaseURL
	aiCfg.ChatModel = cfg.ChatModel
	aiCfg.EmbeddingModel = cfg.EmbeddingModelName
	aiCfg.Temperature = cfg.Temperature
	aiCfg.MaxTokens = cfg.MaxTokens
	if err := aiCfg.Validate(); err != nil {
		return nil, fmt.Errorf("ai config: %w", err)
	}
	a.AI = ai.NewOpenAIProvider(aiCfg, logger)

	vsCfg := vectorstore.DefaultConfig()
	vsCfg.Host = cfg.QdrantHost
	vsCfg.Port = cfg.QdrantPort
	vsCfg.APIKey = cfg.QdrantAPIKey
	vsCfg.UseTLS = cfg.QdrantUseTLS
	vsCfg.CollectionName = cfg.CollectionName
	vsCfg.Dimension = cfg.VectorDimension
	vsCfg.BatchSize = cfg.BatchPoints
	store, err := vectorstore.NewQdrantStore(vsCfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	a.Reranker = rerank.NewCohereReranker(rerank.Config{
		APIKey: cfg.CohereAPIKey,
		Model:  cfg.RerankModel,
	}, logger)
	a.Searcher = websearch.NewTavilyClient(websearch.Config{
		APIKey:     cfg.TavilyAPIKey,
		MaxResults: cfg.TavilyMaxResults,
	}, logger)

	// --- Indexing ---
	chunker, err := newChunker(cfg, a.AI, logger)
	if err != nil {
		return nil, err
	}
	a.Chunker = chunker
	a.Indexer = indexing.NewIndexer(chunker, a.AI, store, cfg.BatchPoints, a.Metrics, logger)

	// --- Chat ---
	chatCfg := chat.DefaultConfig()
	chatCfg.RetrievalTopK = cfg.RetrievalTopK
	chatCfg.RerankTopN = cfg.RerankTopN
	chatCfg.ConfidenceThreshold = cfg.ConfidenceThreshold
	chatCfg.Temperature = cfg.Temperature
	chatCfg.MaxTokens = cfg.MaxTokens
	a.Chat, err = chat.NewService(chatCfg, chat.Dependencies{
		AI:        a.AI,
		Retriever: store,
		Reranker:  a.Reranker,
		Searcher:  a.Searcher,
		History:   chat.NewHistoryService(a.Sessions, a.Conversations, logger),
		Metrics:   a.Metrics,
	}, logger)
	if err != nil {
		return nil, err
	}

	// --- Tasks ---
	taskClient, err := tasks.NewClient(a.TaskConfig(), logger)
	if err != nil {
		return nil, err
	}
	a.Tasks = taskClient
	a.closers = append(a.closers, taskClient.Close)

	return a, nil
}

// newChunker prefers tiktoken and punkt, falling back to whitespace token
// counts and regex sentences when their data can't be loaded.
func newChunker(cfg *config.Config, llm ai.CompletionProvider, logger logging.Logger) (*chunking.Chunker, error) {
	chunkCfg := chunking.DefaultConfig()
	chunkCfg.ChunkSize = cfg.ChunkSize
	chunkCfg.ChunkOverlap = cfg.ChunkOverlap
	chunkCfg.WindowSize = cfg.WindowSize

	var tokenizer chunking.Tokenizer = chunking.WhitespaceTokenizer{}
	if tk, err := chunking.NewTiktokenTokenizer(cfg.TokenizerEncoding); err != nil {
		logger.Warn("tiktoken unavailable, counting whitespace tokens", "encoding", cfg.TokenizerEncoding, "error", err)
	} else {
		tokenizer = tk
	}

	var segmenter chunking.Segmenter
	if punkt, err := chunking.NewPunktSegmenter(); err != nil {
		logger.Warn("punkt segmenter unavailable, using regex sentences", "error", err)
	} else {
		segmenter = punkt
	}

	return chunking.NewChunker(chunkCfg, tokenizer, segmenter, llm, logger)
}

// TaskConfig derives the asynq settings from the process config.
func (a *Application) TaskConfig() *tasks.Config {
	cfg := tasks.DefaultConfig()
	cfg.RedisAddr = a.Config.RedisAddr
	cfg.RedisPassword = a.Config.RedisPassword
	cfg.RedisDB = a.Config.RedisDB
	cfg.Queue = a.Config.TaskQueue
	cfg.Concurrency = a.Config.WorkerConcurrency
	cfg.Retention = a.Config.TaskRetention
	cfg.PollTimeout = a.Config.TaskPollTimeout
	cfg.PollInterval = a.Config.TaskPollInterval
	return cfg
}

// EnsureCollection creates the default collection if it is missing.
func (a *Application) EnsureCollection(ctx context.Context) error {
	return a.Store.EnsureCollection(ctx)
}

// HealthChecks lists the probes served on /health.
func (a *Application) HealthChecks() map[string]handlers.HealthCheck {
	return map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis":  a.Sessions.Ping,
		"qdrant": a.Store.Health,
	}
}

// Router builds the HTTP handler for cmd/server.
func (a *Application) Router() http.Handler {
	chatLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultChatConfig(a.Config.ChatRateLimit, a.Config.ChatRateWindow))
	adminLimiter := ratelimit.NewTokenBucketLimiter(ratelimit.DefaultAdminConfig())
	a.closers = append(a.closers,
		func() error { chatLimiter.Close(); return nil },
		func() error { adminLimiter.Close(); return nil },
	)

	var secret []byte
	if a.Config.AdminJWTSecret != "" {
		secret = []byte(a.Config.AdminJWTSecret)
	} else {
		a.Logger.Warn("ADMIN_JWT_SECRET is empty; admin routes are unauthenticated")
	}

	return NewRouter(RouterDeps{
		System: handlers.NewSystemHandler(a.HealthChecks(), a.Logger),
		Chat:   handlers.NewChatHandler(a.Chat, a.Tasks, a.Sessions, a.Logger),
		Admin: handlers.NewAdminHandler(a.Store, a.Documents, a.Indexer, a.Tasks, handlers.CollectionDefaults{
			Name:      a.Config.CollectionName,
			Dimension: a.Config.VectorDimension,
		}, a.Logger),
		Metrics:      a.Metrics,
		ChatLimiter:  chatLimiter,
		AdminLimiter: adminLimiter,
		AdminSecret:  secret,
		CORSOrigins:  a.Config.CORSOrigins,
		Logger:       a.Logger,
	})
}

// Close releases connections in reverse order of creation.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.Logger.Sync()
	return errors.Join(errs...)
}
