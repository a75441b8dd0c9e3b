// File: internal/services/chat/rag.go
package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/rerank"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
	"github.com/iyunix/go-meddy/internal/services/websearch"
)

// Fallback reasons reported to metrics.
const (
	fallbackNoDocuments = "no_documents"
	fallbackLowScore    = "low_score"
	fallbackRerankError = "rerank_error"
)

// RAGAnswer answers a medical question from the knowledge base. When nothing
// relevant is retrieved, or the best reranked passage scores below the
// confidence threshold, the answer is built from a web search instead.
func (s *Service) RAGAnswer(ctx context.Context, history []domain.ChatMessage, question string) (string, error) {
	rewritten, err := s.RewriteQuery(ctx, history, question)
	if err != nil {
		return "", err
	}

	var embedding []float32
	err = s.observe("openai", func() error {
		var err error
		embedding, err = s.ai.CreateEmbedding(ctx, rewritten)
		return err
	})
	if err != nil {
		return "", NewRAGError("embed_question", "failed to embed question", err)
	}

	var hits []vectorstore.SearchResult
	err = s.observe("qdrant", func() error {
		var err error
		hits, err = s.retriever.Search(ctx, embedding, s.config.RetrievalTopK)
		return err
	})
	if err != nil {
		return "", NewRAGError("search", "vector search failed", err)
	}
	s.logger.Info("retrieved documents from vector store", "count", len(hits))

	reranked, reason := s.rerank(ctx, rewritten, hits)

	formattedContext := NoContext
	if reranked != nil && len(reranked.Results) > 0 {
		formattedContext = reranked.Context
	}

	messages := []domain.ChatMessage{domain.SystemMessage(SystemPrompt)}
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		messages = append(messages, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}

	if reason != "" {
		s.metrics.ObserveWebFallback(reason)
		s.logger.Info("RAG confidence low, using web search fallback",
			"reason", reason,
			"best_score", reranked.BestScore())
		messages = append(messages, domain.UserMessage(fmt.Sprintf(WebFallbackPrompt, formattedContext, rewritten)))
		answer, err := s.webAnswer(ctx, messages)
		if err != nil {
			return "", err
		}
		s.logger.Info("response generated with web search fallback")
		return answer, nil
	}

	messages = append(messages, domain.UserMessage(fmt.Sprintf(RAGPrompt, formattedContext, rewritten)))
	var answer string
	err = s.observe("openai", func() error {
		var err error
		answer, err = s.ai.ChatComplete(ctx, messages, ai.WithTemperature(s.config.Temperature, s.config.MaxTokens))
		return err
	})
	if err != nil {
		return "", NewRAGError("complete", "failed to generate answer", err)
	}
	s.logger.Info("RAG response generated successfully")
	return answer, nil
}

// rerank scores the hits and decides whether the web fallback is needed. A
// non-empty reason means fall back. Reranker failures fall back rather than
// fail the answer.
func (s *Service) rerank(ctx context.Context, query string, hits []vectorstore.SearchResult) (*rerank.Response, string) {
	if len(hits) == 0 {
		return nil, fallbackNoDocuments
	}

	docs := make([]rerank.Document, len(hits))
	for i, h := range hits {
		docs[i] = rerank.Document{Title: h.Title, Content: h.Content}
	}

	var resp *rerank.Response
	err := s.observe("cohere", func() error {
		var err error
		resp, err = s.reranker.Rerank(ctx, query, docs, s.config.RerankTopN)
		return err
	})
	if err != nil {
		s.logger.Warn("rerank failed, falling back to web search", "error", err)
		return nil, fallbackRerankError
	}

	switch {
	case len(resp.Results) == 0:
		return resp, fallbackNoDocuments
	case resp.BestScore() < s.config.ConfidenceThreshold:
		return resp, fallbackLowScore
	}
	return resp, ""
}

// webAnswer makes the model choose a search query, runs the search and asks
// for a cited answer built on the results.
func (s *Service) webAnswer(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	fn := ai.Tool{
		Name:        websearch.ToolName,
		Description: websearch.ToolDescription,
		Parameters:  websearch.ToolParameters(),
	}

	var call domain.ToolCall
	err := s.observe("openai", func() error {
		var err error
		call, err = s.ai.ForcedFunctionCall(ctx, messages, fn)
		return err
	})
	if err != nil {
		return "", NewWebSearchError("function_call", "failed to obtain search query", err)
	}

	query, err := parseQuery(call.Arguments)
	if err != nil {
		return "", NewWebSearchError("function_call", "model returned unusable search arguments", err)
	}
	s.logger.Info("web search query", "query", query)

	var results []websearch.Result
	err = s.observe("tavily", func() error {
		var err error
		results, err = s.searcher.Search(ctx, query)
		return err
	})
	if err != nil {
		return "", NewWebSearchError("search", "web search failed", err)
	}
	observation := websearch.FormatResults(results)

	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}
	call.Name = websearch.ToolName

	enhanced := make([]domain.ChatMessage, 0, len(messages)+3)
	enhanced = append(enhanced, messages...)
	enhanced = append(enhanced,
		domain.ChatMessage{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{call}},
		domain.ToolResultMessage(call.ID, websearch.ToolName, observation),
		domain.UserMessage(WebCitationPrompt),
	)

	var answer string
	err = s.observe("openai", func() error {
		var err error
		answer, err = s.ai.ChatComplete(ctx, enhanced, ai.CompletionOptions{})
		return err
	})
	if err != nil {
		return "", NewWebSearchError("complete", "failed to generate cited answer", err)
	}
	return answer, nil
}
