// Package search implements a typed client for the Tavily web search
// API. Provider responses are validated into explicit result types at
// this boundary; nothing loosely typed crosses into the pipeline.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.tavily.com"

// Search depth accepted by the provider.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Topic accepted by the provider.
const (
	TopicGeneral = "general"
	TopicNews    = "news"
)

// Request is one provider search call.
type Request struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
	Topic       string `json:"topic"`
}

// Response is the provider's validated response.
type Response struct {
	Answer  string                 `json:"answer,omitempty"`
	Results []schemas.SearchResult `json:"results"`
}

// Client is an authenticated Tavily HTTP client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Tavily client. An empty apiKey is allowed here;
// Search surfaces it as a configuration error per call so a session can
// still complete on fallbacks.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchPayload struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
	Topic       string `json:"topic"`
}

// Search issues one provider call. All failures are coded: a missing
// credential is a configuration error, transport and status failures
// are provider errors.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.ErrCredentialMissing, "search provider credential is not configured")
	}

	body, err := json.Marshal(searchPayload{
		APIKey:      c.apiKey,
		Query:       req.Query,
		MaxResults:  req.MaxResults,
		SearchDepth: req.SearchDepth,
		Topic:       req.Topic,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderDecode, "failed to encode search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderNetwork, "failed to build search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderNetwork, "search request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderNetwork, "failed to read search response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf(errors.ErrCredentialInvalid, "search provider rejected credential (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrRateLimit, "search provider rate limit exceeded")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn("search provider returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", req.Query))
		return nil, errors.Newf(errors.ErrProviderStatus, "search provider returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderDecode, "failed to decode search response")
	}

	c.logger.Debug("search completed",
		zap.String("query", req.Query),
		zap.Int("results", len(out.Results)))
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
