package research

import (
	"context"
	"fmt"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentLearningsWindow is how many of the latest learnings feed query
// regeneration at deeper levels.
const recentLearningsWindow = 5

// DepthController drives the depth×breadth iteration. Depth levels run
// strictly sequentially; within a level, per-query search and
// extraction run concurrently under the executor's gate and are merged
// in original query order once the whole batch has joined.
type DepthController struct {
	strategy    *StrategyGenerator
	executor    *SearchExecutor
	extractor   *LearningExtractor
	concurrency int
	logger      *zap.Logger
}

// NewDepthController creates a depth controller.
func NewDepthController(strategy *StrategyGenerator, executor *SearchExecutor, extractor *LearningExtractor, concurrency int, logger *zap.Logger) *DepthController {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &DepthController{
		strategy:    strategy,
		executor:    executor,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run iterates depth levels 1..depth, feeding recent learnings forward.
// Per-query failures are absorbed below this level; an error returned
// here is session-fatal and leaves partial state on the session intact.
func (c *DepthController) Run(ctx context.Context, s *Session, initialQueries []schemas.SearchQuery) error {
	for d := 1; d <= s.Request.Depth; d++ {
		if err := ctx.Err(); err != nil {
			return sessionErr(err)
		}

		queries := initialQueries
		breadth := s.Request.Breadth
		if d > 1 {
			breadth = breadthForLevel(s.Request.Breadth, d)
			queries, _ = c.strategy.Generate(ctx, s.Request.Query, s.Request.FocusAreas, s.recentLearnings(recentLearningsWindow), breadth)
			if err := ctx.Err(); err != nil {
				return sessionErr(err)
			}
		}

		c.logger.Info("starting depth level",
			zap.String("session", s.ID),
			zap.Int("depth", d),
			zap.Int("queries", len(queries)))

		searchStep := s.beginStep(
			fmt.Sprintf("search-depth-%d", d),
			schemas.StepTypeSearch,
			fmt.Sprintf("Searching (depth %d)", d),
			fmt.Sprintf("Running %d search queries", len(queries)),
			&schemas.StepMetadata{QueryCount: len(queries), Depth: d, Breadth: breadth},
		)

		outcomes := c.executor.ExecuteMany(ctx, queries, d, s.Request.TimeScope)
		extractions := c.extractAll(ctx, queries, outcomes)

		if err := ctx.Err(); err != nil {
			s.failStep(searchStep)
			return sessionErr(err)
		}

		// Merge in original query order, after the full batch has
		// joined, so the accumulated sequences are reproducible.
		sourceCount := 0
		for i := range queries {
			if oc := outcomes[i]; oc != nil {
				s.totalSearches++
				sourceCount += len(oc.Response.Results)
				s.totalSources += len(oc.Response.Results)
				urls := make([]string, 0, len(oc.Response.Results))
				for _, r := range oc.Response.Results {
					urls = append(urls, r.URL)
				}
				s.addVisited(urls)
			}
			s.addLearnings(extractions[i].Learnings)
			s.addCitations(extractions[i].Citations)
		}

		s.completeStep(searchStep)

		analyzeStep := s.beginStep(
			fmt.Sprintf("analyze-depth-%d", d),
			schemas.StepTypeAnalyze,
			fmt.Sprintf("Analyzing results (depth %d)", d),
			fmt.Sprintf("Extracted learnings from %d sources", sourceCount),
			&schemas.StepMetadata{SourceCount: sourceCount, Depth: d},
		)
		s.completeStep(analyzeStep)

		s.depthCompleted = d
	}
	return nil
}

// extractAll runs the per-query extraction tasks concurrently under the
// same gate width as search. Queries whose search failed still get an
// extraction pass over zero results so the fallback learning contract
// holds.
func (c *DepthController) extractAll(ctx context.Context, queries []schemas.SearchQuery, outcomes []*QueryOutcome) []Extraction {
	extractions := make([]Extraction, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			var results []schemas.SearchResult
			if outcomes[i] != nil {
				results = outcomes[i].Response.Results
			}
			extractions[i] = c.extractor.Extract(ctx, q, results, MaxLearningsPerQuery)
			return nil
		})
	}
	_ = g.Wait()

	return extractions
}

// breadthForLevel shrinks breadth as depth grows: max(2, breadth/d).
func breadthForLevel(breadth, depth int) int {
	b := breadth / depth
	if b < 2 {
		b = 2
	}
	return b
}

// sessionErr maps a context error to a coded session failure.
func sessionErr(err error) error {
	if err == context.DeadlineExceeded {
		return errors.Wrap(err, errors.ErrSessionTimeout, "research session timed out")
	}
	return errors.Wrap(err, errors.ErrSessionCanceled, "research session canceled")
}
