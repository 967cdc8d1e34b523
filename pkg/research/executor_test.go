package research

import (
	"context"
	"fmt"
	"testing"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/spawn-mcp/deep-research/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyProvider fails for queries listed in failFor.
type flakyProvider struct {
	failFor map[string]bool
}

func (p *flakyProvider) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if p.failFor[req.Query] {
		return nil, errors.New(errors.ErrProviderStatus, "provider unavailable")
	}
	return &search.Response{Results: []schemas.SearchResult{{URL: "https://example.com/" + req.Query}}}, nil
}

func TestExecuteManyAbsorbsPerQueryFailures(t *testing.T) {
	provider := &flakyProvider{failFor: map[string]bool{"b": true}}
	ex := NewSearchExecutor(provider, DefaultConcurrency, zap.NewNop())

	queries := []schemas.SearchQuery{
		{Query: "a", Priority: 3},
		{Query: "b", Priority: 3},
		{Query: "c", Priority: 3},
	}
	outcomes := ex.ExecuteMany(context.Background(), queries, 1, schemas.TimeScopeComprehensive)

	require.Len(t, outcomes, 3)
	require.NotNil(t, outcomes[0])
	assert.Nil(t, outcomes[1])
	require.NotNil(t, outcomes[2])
	assert.Equal(t, "a", outcomes[0].Query.Query)
	assert.Equal(t, "c", outcomes[2].Query.Query)
}

func TestBuildSearchRequestDepthMapping(t *testing.T) {
	q := schemas.SearchQuery{Query: "q", Priority: 3}
	for depthIndex, want := range map[int]string{
		1: search.DepthBasic,
		2: search.DepthBasic,
		3: search.DepthAdvanced,
		4: search.DepthAdvanced,
	} {
		t.Run(fmt.Sprintf("depthIndex=%d", depthIndex), func(t *testing.T) {
			req := buildSearchRequest(q, depthIndex, schemas.TimeScopeComprehensive)
			assert.Equal(t, want, req.SearchDepth)
		})
	}
}

func TestBuildSearchRequestTopicMapping(t *testing.T) {
	q := schemas.SearchQuery{Query: "q", Priority: 3}

	assert.Equal(t, search.TopicNews, buildSearchRequest(q, 1, schemas.TimeScopeRecent).Topic)
	assert.Equal(t, search.TopicGeneral, buildSearchRequest(q, 1, schemas.TimeScopeHistorical).Topic)
	assert.Equal(t, search.TopicGeneral, buildSearchRequest(q, 1, schemas.TimeScopeComprehensive).Topic)
}

func TestMaxResultsForPriority(t *testing.T) {
	for priority, want := range map[int]int{
		1:  8,
		5:  8,
		7:  8,
		9:  6,
		14: 1,
		20: 1,
	} {
		assert.Equal(t, want, maxResultsForPriority(priority), "priority %d", priority)
	}
}
