// File: internal/services/rerank/cohere.go
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	"gopkg.in/yaml.v3"
)

const DefaultCohereURL = "https://api.cohere.com/v2/rerank"

// Document is a candidate passage handed to the reranker.
type Document struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Result is one reranked document, best first.
type Result struct {
	Index          int
	RelevanceScore float64
	Document       Document
}

// Response carries the ordered results and the prompt-ready context built
// from them.
type Response struct {
	Results []Result
	Context string
}

// BestScore returns the top relevance score, or 0 when there are no results.
func (r *Response) BestScore() float64 {
	if r == nil || len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].RelevanceScore
}

type Reranker interface {
	Rerank(ctx context.Context, query string, docs []Document, topN int) (*Response, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// CohereReranker calls the Cohere v2 rerank endpoint.
type CohereReranker struct {
	config Config
	client *http.Client
	logger logging.Logger
}

func NewCohereReranker(config Config, logger logging.Logger) *CohereReranker {
	if config.BaseURL == "" {
		config.BaseURL = DefaultCohereURL
	}
	if config.Model == "" {
		config.Model = "rerank-multilingual-v3.0"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &CohereReranker{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logging.OrNoOp(logger),
	}
}

type cohereRerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores docs against query. Each document is sent as a YAML mapping
// of its title and content.
func (c *CohereReranker) Rerank(ctx context.Context, query string, docs []Document, topN int) (*Response, error) {
	if len(docs) == 0 {
		return &Response{}, nil
	}
	if c.config.APIKey == "" {
		return nil, errors.New("rerank: no API key configured")
	}
	if topN <= 0 || topN > len(docs) {
		topN = len(docs)
	}

	serialized := make([]string, len(docs))
	for i, d := range docs {
		out, err := yaml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("rerank: encode document %d: %w", i, err)
		}
		serialized[i] = string(out)
	}

	bodyBytes, err := json.Marshal(cohereRerankRequest{
		Model:     c.config.Model,
		Query:     query,
		Documents: serialized,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("rerank: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank: HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rerank: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank: Cohere API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed cohereRerankResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("rerank: unmarshal response: %w", err)
	}

	out := &Response{Results: make([]Result, 0, len(parsed.Results))}
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(docs) {
			c.logger.Warn("reranker returned invalid index", "index", r.Index, "total", len(docs))
			continue
		}
		out.Results = append(out.Results, Result{
			Index:          r.Index,
			RelevanceScore: r.RelevanceScore,
			Document:       docs[r.Index],
		})
	}
	out.Context = FormatContext(out.Results)

	c.logger.Debug("rerank completed",
		"documents", len(docs),
		"results", len(out.Results),
		"best_score", out.BestScore(),
		"latency_ms", time.Since(start).Milliseconds())
	return out, nil
}

// FormatContext renders results as ranked passages separated by blank lines.
func FormatContext(results []Result) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("#Rank %d (Relevance Score = %.3f):\nTitle: %s\nContent: %s",
			i+1, r.RelevanceScore, r.Document.Title, r.Document.Content))
	}
	return strings.Join(parts, "\n\n")
}
