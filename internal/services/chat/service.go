// File: internal/services/chat/service.go
package chat

import (
	"errors"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/rerank"
	"github.com/iyunix/go-meddy/internal/services/websearch"
)

// Dependencies are the collaborators of the chat Service.
type Dependencies struct {
	AI        ai.Service
	Retriever Retriever
	Reranker  rerank.Reranker
	Searcher  websearch.Searcher
	History   *HistoryService
	Metrics   Recorder
}

// Service runs the question answering pipeline.
type Service struct {
	config    *Config
	ai        ai.Service
	retriever Retriever
	reranker  rerank.Reranker
	searcher  websearch.Searcher
	history   *HistoryService
	agent     *Agent
	metrics   Recorder
	logger    logging.Logger
}

var _ MessageHandler = (*Service)(nil)

func NewService(config *Config, deps Dependencies, logger logging.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError("invalid chat configuration", err)
	}
	if deps.AI == nil || deps.Retriever == nil || deps.Reranker == nil || deps.Searcher == nil {
		return nil, NewConfigError("ai, retriever, reranker and searcher are required", errors.New("missing dependency"))
	}
	if deps.Metrics == nil {
		deps.Metrics = noopRecorder{}
	}
	logger = logging.OrNoOp(logger)

	tools := append(CalculatorTools(), SearchTool(deps.Searcher))

	return &Service{
		config:    config,
		ai:        deps.AI,
		retriever: deps.Retriever,
		reranker:  deps.Reranker,
		searcher:  deps.Searcher,
		history:   deps.History,
		agent:     NewAgent(deps.AI, tools, config.MaxToolRounds, logger),
		metrics:   deps.Metrics,
		logger:    logger,
	}, nil
}

// observe times one call to an external dependency.
func (s *Service) observe(dependency string, call func() error) error {
	start := time.Now()
	err := call()
	s.metrics.ObserveExternal(dependency, time.Since(start), err)
	return err
}
