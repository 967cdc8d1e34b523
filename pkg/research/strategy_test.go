package research

import (
	"context"
	"testing"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// genFunc adapts a function to ai.Generator for single-purpose fakes.
type genFunc func(ctx context.Context, req ai.Request, out any) error

func (f genFunc) Generate(ctx context.Context, req ai.Request, out any) error {
	return f(ctx, req, out)
}

func TestStrategyGenerateFallsBackOnError(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		return errors.New(errors.ErrEmptyGeneration, "no content")
	})
	sg := NewStrategyGenerator(gen, zap.NewNop())

	queries, strategy := sg.Generate(context.Background(), "solid state batteries", nil, nil, 4)

	require.Len(t, queries, 1)
	assert.Equal(t, "solid state batteries", queries[0].Query)
	assert.Equal(t, 5, queries[0].Priority)
	require.NotNil(t, strategy)
	assert.NotEmpty(t, strategy.Approach)
	assert.NotEmpty(t, strategy.ExpectedOutcomes)
}

func TestStrategyGenerateFallsBackOnEmptyQueries(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		s := out.(*strategyOutput)
		s.Queries = []schemas.SearchQuery{{Query: ""}, {Query: ""}}
		return nil
	})
	sg := NewStrategyGenerator(gen, zap.NewNop())

	queries, strategy := sg.Generate(context.Background(), "topic", nil, nil, 4)

	require.Len(t, queries, 1)
	assert.Equal(t, "topic", queries[0].Query)
	require.NotNil(t, strategy)
}

func TestStrategyGenerateBoundsAndClamps(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		s := out.(*strategyOutput)
		s.Queries = []schemas.SearchQuery{
			{Query: "a", Priority: 0},
			{Query: "", Priority: 3},
			{Query: "b", Priority: 9},
			{Query: "c", Priority: 3},
			{Query: "d", Priority: -2},
		}
		s.Strategy = schemas.Strategy{Approach: "targeted"}
		return nil
	})
	sg := NewStrategyGenerator(gen, zap.NewNop())

	queries, strategy := sg.Generate(context.Background(), "topic", nil, nil, 3)

	require.Len(t, queries, 3)
	assert.Equal(t, "a", queries[0].Query)
	assert.Equal(t, 1, queries[0].Priority)
	assert.Equal(t, "b", queries[1].Query)
	assert.Equal(t, 5, queries[1].Priority)
	assert.Equal(t, "c", queries[2].Query)
	assert.Equal(t, "targeted", strategy.Approach)
}

func TestStrategyGenerateFillsEmptyApproach(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		s := out.(*strategyOutput)
		s.Queries = []schemas.SearchQuery{{Query: "a", Priority: 3}}
		return nil
	})
	sg := NewStrategyGenerator(gen, zap.NewNop())

	_, strategy := sg.Generate(context.Background(), "topic", nil, nil, 2)

	require.NotNil(t, strategy)
	assert.NotEmpty(t, strategy.Approach)
}
