package research

import (
	"context"

	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/spawn-mcp/deep-research/pkg/search"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous external calls within one
// depth level.
const DefaultConcurrency = 3

// SearchProvider is the web search boundary consumed by the executor.
type SearchProvider interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// QueryOutcome is one query's search outcome. A nil outcome in the
// returned slice marks a query whose provider call failed.
type QueryOutcome struct {
	Query    schemas.SearchQuery
	Response *search.Response
}

// SearchExecutor fans queries out against the provider under a bounded
// concurrency gate and joins them at a barrier.
type SearchExecutor struct {
	provider    SearchProvider
	concurrency int
	logger      *zap.Logger
}

// NewSearchExecutor creates an executor admitting at most concurrency
// in-flight provider calls.
func NewSearchExecutor(provider SearchProvider, concurrency int, logger *zap.Logger) *SearchExecutor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &SearchExecutor{provider: provider, concurrency: concurrency, logger: logger}
}

// ExecuteMany runs every query and returns outcomes indexed by the
// original query order. Provider failures are fatal only for their own
// query: the slot becomes nil and siblings proceed. The call returns
// only once every dispatched query has resolved.
func (e *SearchExecutor) ExecuteMany(ctx context.Context, queries []schemas.SearchQuery, depthIndex int, scope schemas.TimeScope) []*QueryOutcome {
	outcomes := make([]*QueryOutcome, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			resp, err := e.provider.Search(ctx, buildSearchRequest(q, depthIndex, scope))
			if err != nil {
				e.logger.Warn("search failed for query",
					zap.String("query", q.Query),
					zap.Error(err))
				return nil
			}
			outcomes[i] = &QueryOutcome{Query: q, Response: resp}
			return nil
		})
	}
	// Barrier join; per-query errors were absorbed above.
	_ = g.Wait()

	return outcomes
}

// buildSearchRequest maps a prioritized query onto provider parameters:
// higher priority requests more results (capped at 8), deeper levels
// use advanced search, and a recent time scope switches to the news
// topic.
func buildSearchRequest(q schemas.SearchQuery, depthIndex int, scope schemas.TimeScope) search.Request {
	depth := search.DepthBasic
	if depthIndex > 2 {
		depth = search.DepthAdvanced
	}
	topic := search.TopicGeneral
	if scope == schemas.TimeScopeRecent {
		topic = search.TopicNews
	}
	return search.Request{
		Query:       q.Query,
		MaxResults:  maxResultsForPriority(q.Priority),
		SearchDepth: depth,
		Topic:       topic,
	}
}

// maxResultsForPriority clamps 15−priority to at most 8 results.
func maxResultsForPriority(priority int) int {
	n := 15 - priority
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}
