package research

import (
	"context"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

// recommendationLearningsWindow bounds the prompt context for
// recommendation generation.
const recommendationLearningsWindow = 10

// RecommendationGenerator derives prioritized, actionable
// recommendations from accumulated learnings. Like report synthesis,
// a failure here is session-fatal.
type RecommendationGenerator struct {
	gen    ai.Generator
	logger *zap.Logger
}

// NewRecommendationGenerator creates a recommendation generator.
func NewRecommendationGenerator(gen ai.Generator, logger *zap.Logger) *RecommendationGenerator {
	return &RecommendationGenerator{gen: gen, logger: logger}
}

// Generate derives recommendations from the first 10 learnings.
func (g *RecommendationGenerator) Generate(ctx context.Context, query string, learnings []string) (*schemas.Recommendations, error) {
	if len(learnings) > recommendationLearningsWindow {
		learnings = learnings[:recommendationLearningsWindow]
	}

	var recs schemas.Recommendations
	err := g.gen.Generate(ctx, ai.Request{
		System: recommendationsSystemPrompt,
		User:   buildRecommendationsPrompt(query, learnings),
		Schema: recommendationsSchema,
	}, &recs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSessionAborted, "recommendation generation failed")
	}

	g.logger.Info("recommendations generated",
		zap.Int("immediate_actions", len(recs.ImmediateActions)))
	return &recs, nil
}
