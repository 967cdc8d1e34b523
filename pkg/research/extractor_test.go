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

func someResults(n int) []schemas.SearchResult {
	out := make([]schemas.SearchResult, n)
	for i := range out {
		out[i] = schemas.SearchResult{
			Title:   "result",
			URL:     "https://example.com/r",
			Content: "content",
		}
	}
	return out
}

func TestExtractEmptyResultsYieldsFallback(t *testing.T) {
	called := false
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		called = true
		return nil
	})
	ex := NewLearningExtractor(gen, zap.NewNop())

	got := ex.Extract(context.Background(), schemas.SearchQuery{Query: "q"}, nil, MaxLearningsPerQuery)

	assert.False(t, called, "no generation call for zero results")
	require.Len(t, got.Learnings, 1)
	assert.Contains(t, got.Learnings[0], `"q"`)
	require.Len(t, got.FollowUpQuestions, 1)
	assert.Empty(t, got.Citations)
}

func TestExtractGenerationFailureYieldsFallback(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		return errors.New(errors.ErrSchemaViolation, "bad json")
	})
	ex := NewLearningExtractor(gen, zap.NewNop())

	got := ex.Extract(context.Background(), schemas.SearchQuery{Query: "q"}, someResults(3), MaxLearningsPerQuery)

	require.Len(t, got.Learnings, 1)
	assert.Contains(t, got.Learnings[0], "No usable search results")
	assert.Empty(t, got.Citations)
}

func TestExtractSanitizesOutput(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		e := out.(*extractionOutput)
		e.Learnings = []string{"l1", "", "l2", "l3", "l4"}
		e.FollowUpQuestions = []string{"", "f1"}
		e.Citations = []schemas.Citation{
			{URL: "https://a", Relevance: 99},
			{URL: "", Relevance: 5},
			{URL: "https://b", Relevance: -3},
			{URL: "https://c", Relevance: 5},
		}
		return nil
	})
	ex := NewLearningExtractor(gen, zap.NewNop())

	got := ex.Extract(context.Background(), schemas.SearchQuery{Query: "q"}, someResults(2), MaxLearningsPerQuery)

	assert.Equal(t, []string{"l1", "l2", "l3"}, got.Learnings)
	assert.Equal(t, []string{"f1"}, got.FollowUpQuestions)
	// Citations are bounded by the result count, relevance clamped to [1,10].
	require.Len(t, got.Citations, 2)
	assert.Equal(t, 10, got.Citations[0].Relevance)
	assert.Equal(t, 1, got.Citations[1].Relevance)
}

func TestExtractGuaranteesLearningAndFollowUp(t *testing.T) {
	gen := genFunc(func(ctx context.Context, req ai.Request, out any) error {
		e := out.(*extractionOutput)
		e.Learnings = []string{""}
		return nil
	})
	ex := NewLearningExtractor(gen, zap.NewNop())

	got := ex.Extract(context.Background(), schemas.SearchQuery{Query: "q"}, someResults(1), MaxLearningsPerQuery)

	require.Len(t, got.Learnings, 1)
	require.Len(t, got.FollowUpQuestions, 1)
}
