package research

import (
	"context"
	"fmt"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

// StrategyGenerator turns a topic plus prior learnings into prioritized
// search queries and a stated approach. It never fails: when the
// generation service cannot produce a usable strategy, a deterministic
// fallback keeps the session moving.
type StrategyGenerator struct {
	gen    ai.Generator
	logger *zap.Logger
}

// NewStrategyGenerator creates a strategy generator.
func NewStrategyGenerator(gen ai.Generator, logger *zap.Logger) *StrategyGenerator {
	return &StrategyGenerator{gen: gen, logger: logger}
}

type strategyOutput struct {
	Queries  []schemas.SearchQuery `json:"queries"`
	Strategy schemas.Strategy      `json:"strategy"`
}

// Generate produces at most numQueries queries with priorities in
// [1,5]. Focus areas bias the first depth level; prior learnings steer
// regeneration at deeper levels.
func (g *StrategyGenerator) Generate(ctx context.Context, query string, focusAreas, priorLearnings []string, numQueries int) ([]schemas.SearchQuery, *schemas.Strategy) {
	var out strategyOutput
	err := g.gen.Generate(ctx, ai.Request{
		System: strategySystemPrompt,
		User:   buildStrategyPrompt(query, focusAreas, priorLearnings, numQueries),
		Schema: strategySchema,
	}, &out)
	if err != nil {
		g.logger.Warn("strategy generation failed, using fallback query",
			zap.String("query", query),
			zap.Error(err))
		return fallbackStrategy(query)
	}

	queries := sanitizeQueries(out.Queries, numQueries)
	if len(queries) == 0 {
		g.logger.Warn("strategy generation returned no usable queries, using fallback",
			zap.String("query", query))
		return fallbackStrategy(query)
	}

	strategy := out.Strategy
	if strategy.Approach == "" {
		strategy.Approach = fallbackApproach(query)
	}
	return queries, &strategy
}

// sanitizeQueries drops empty queries, clamps priorities into [1,5],
// and bounds the result length. Never returns more than max queries.
func sanitizeQueries(queries []schemas.SearchQuery, max int) []schemas.SearchQuery {
	out := make([]schemas.SearchQuery, 0, max)
	for _, q := range queries {
		if q.Query == "" {
			continue
		}
		if q.Priority < 1 {
			q.Priority = 1
		}
		if q.Priority > 5 {
			q.Priority = 5
		}
		out = append(out, q)
		if len(out) == max {
			break
		}
	}
	return out
}

// fallbackStrategy is the deterministic substitute when structured
// generation fails: one query equal to the topic at top priority.
func fallbackStrategy(query string) ([]schemas.SearchQuery, *schemas.Strategy) {
	queries := []schemas.SearchQuery{{
		Query:        query,
		ResearchGoal: fmt.Sprintf("Gather foundational information about %s", query),
		Priority:     5,
	}}
	strategy := &schemas.Strategy{
		Approach:         fallbackApproach(query),
		ExpectedOutcomes: []string{fmt.Sprintf("A broad overview of %s", query)},
	}
	return queries, strategy
}

func fallbackApproach(query string) string {
	return fmt.Sprintf("Direct web research on %q, broadening from general sources to specific findings", query)
}
