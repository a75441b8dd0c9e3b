// File: internal/services/websearch/tavily.go
package websearch

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
)

const DefaultTavilyURL = "https://api.tavily.com/search"

// ToolName is the function name the model is forced to call.
const ToolName = "tavily_search"

// Result is one web hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	MaxResults  int
	SearchDepth string // basic or advanced
	Timeout     time.Duration
}

type TavilyClient struct {
	config Config
	client *http.Client
	logger logging.Logger
}

func NewTavilyClient(config Config, logger logging.Logger) *TavilyClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultTavilyURL
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 3
	}
	if config.SearchDepth == "" {
		config.SearchDepth = "basic"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &TavilyClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logging.OrNoOp(logger),
	}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// Search returns at most MaxResults hits for query.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("websearch: empty query")
	}
	if c.config.APIKey == "" {
		return nil, errors.New("websearch: no API key configured")
	}

	bodyBytes, err := json.Marshal(tavilyRequest{
		Query:       query,
		MaxResults:  c.config.MaxResults,
		SearchDepth: c.config.SearchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("websearch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("websearch: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("websearch: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: Tavily API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("websearch: unmarshal response: %w", err)
	}

	results := parsed.Results
	if len(results) > c.config.MaxResults {
		results = results[:c.config.MaxResults]
	}
	c.logger.Info("web search completed", "results", len(results))
	return results, nil
}
