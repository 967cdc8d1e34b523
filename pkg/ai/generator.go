// Package ai wraps the Gemini API as a schema-constrained structured
// generation service. Output is requested as JSON against an explicit
// response schema and decoded into the caller's type; decode failures
// count as validation errors and are retried under the client's own
// retry policy.
package ai

import (
	"context"
	"encoding/json"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/retry"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Request is one structured generation call.
type Request struct {
	System string
	User   string
	Schema *genai.Schema
}

// Generator produces a schema-constrained structured object into out.
type Generator interface {
	Generate(ctx context.Context, req Request, out any) error
}

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	retry  retry.Config
	logger *zap.Logger
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) GeminiOption {
	return func(g *GeminiGenerator) { g.logger = l }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(c retry.Config) GeminiOption {
	return func(g *GeminiGenerator) { g.retry = c }
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCredentialMissing, "generation service credential is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderNetwork, "failed to create generation client")
	}

	g := &GeminiGenerator{
		client: client,
		model:  model,
		retry:  retry.DefaultConfigs.Fast,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs one structured generation call with retries and decodes
// the result into out.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request, out any) error {
	_, err := retry.ExecuteWithRetry(ctx, func() (struct{}, error) {
		return struct{}{}, g.generateOnce(ctx, req, out)
	}, g.retry)
	return err
}

func (g *GeminiGenerator) generateOnce(ctx context.Context, req Request, out any) error {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrProviderStatus, "generation call failed")
	}

	text := resp.Text()
	if text == "" {
		return errors.New(errors.ErrEmptyGeneration, "generation returned no content")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		g.logger.Warn("structured output failed schema decode", zap.Error(err))
		return errors.Wrap(err, errors.ErrSchemaViolation, "structured output violates schema")
	}
	return nil
}
