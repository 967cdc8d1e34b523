package research

import (
	"context"
	"time"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/progress"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/spawn-mcp/deep-research/pkg/store"
	"github.com/spawn-mcp/deep-research/pkg/timeout"
	"go.uber.org/zap"
)

// Orchestrator runs research sessions end to end: strategy, the depth
// loop, report synthesis, and recommendations. One orchestrator serves
// any number of sequential or concurrent sessions; each Run owns its
// session state exclusively.
type Orchestrator struct {
	strategy    *StrategyGenerator
	executor    *SearchExecutor
	extractor   *LearningExtractor
	depth       *DepthController
	synthesizer *ReportSynthesizer
	recommender *RecommendationGenerator

	reporter    progress.Reporter
	reports     store.ReportStore
	timeouts    *timeout.Manager
	concurrency int
	logger      *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithReporter sets the progress sink. Absence of a reporter never
// changes orchestration behavior.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithStore sets the report store for completed sessions.
func WithStore(s store.ReportStore) Option {
	return func(o *Orchestrator) { o.reports = s }
}

// WithConcurrency bounds simultaneous external calls per depth level.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithSessionTimeout overrides the overall session deadline.
func WithSessionTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeouts.SetOperationTimeout("session", d) }
}

// New wires an orchestrator from a structured generator and a search
// provider.
func New(gen ai.Generator, provider SearchProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reporter:    progress.Nop{},
		reports:     store.NewMemoryStore(),
		timeouts:    timeout.NewManager(timeout.OperationTimeouts["session"]),
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.strategy = NewStrategyGenerator(gen, o.logger)
	o.executor = NewSearchExecutor(provider, o.concurrency, o.logger)
	o.extractor = NewLearningExtractor(gen, o.logger)
	o.depth = NewDepthController(o.strategy, o.executor, o.extractor, o.concurrency, o.logger)
	o.synthesizer = NewReportSynthesizer(gen, o.logger)
	o.recommender = NewRecommendationGenerator(gen, o.logger)
	return o
}

// Run executes one research session. The returned response's Status
// field is authoritative: failures never propagate as a Go error or a
// panic past this boundary, and a failed response always carries the
// partial learnings and citations accumulated before the failure.
func (o *Orchestrator) Run(ctx context.Context, req schemas.ResearchRequest) (resp *schemas.ResearchResponse) {
	req.Normalize()
	s := newSession(req, o.reporter)

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("research session panicked",
				zap.String("session", s.ID),
				zap.Any("panic", r))
			resp = o.fail(s, errors.Newf(errors.ErrSessionAborted, "internal failure: %v", r))
		}
	}()

	ctx, cancel := o.timeouts.WithTimeout(ctx, "session")
	defer cancel()

	o.logger.Info("starting research session",
		zap.String("session", s.ID),
		zap.String("query", req.Query),
		zap.Int("depth", req.Depth),
		zap.Int("breadth", req.Breadth))

	initStep := s.beginStep("init", schemas.StepTypeStrategy,
		"Research initialized",
		"Session created and request validated", nil)
	s.completeStep(initStep)

	strategyStep := s.beginStep("strategy", schemas.StepTypeStrategy,
		"Generating research strategy",
		"Breaking the topic into prioritized search queries", nil)
	queries, strat := o.strategy.Generate(ctx, req.Query, req.FocusAreas, nil, req.Breadth)
	s.Strategy = strat
	s.completeStep(strategyStep)

	if err := o.depth.Run(ctx, s, queries); err != nil {
		return o.fail(s, err)
	}

	synthStep := s.beginStep("synthesize", schemas.StepTypeSynthesize,
		"Synthesizing final report",
		"Building the structured report from accumulated learnings",
		&schemas.StepMetadata{SourceCount: s.uniqueSources()})
	report, err := o.synthesizer.Synthesize(ctx, s)
	if err != nil {
		s.failStep(synthStep)
		return o.fail(s, err)
	}
	s.completeStep(synthStep)

	reportStep := s.beginStep("report", schemas.StepTypeReport,
		"Finalizing research output",
		"Deriving recommendations and assembling the response", nil)
	recs, err := o.recommender.Generate(ctx, req.Query, s.learnings)
	if err != nil {
		s.failStep(reportStep)
		return o.fail(s, err)
	}
	s.completeStep(reportStep)

	s.setStatus(schemas.StatusCompleted)
	resp = buildSuccess(s, report, recs)

	if err := o.reports.Save(ctx, resp); err != nil {
		o.logger.Warn("failed to persist research report",
			zap.String("session", s.ID),
			zap.Error(err))
	}

	o.logger.Info("research session completed",
		zap.String("session", s.ID),
		zap.Int("learnings", len(s.learnings)),
		zap.Int("citations", len(s.citations)),
		zap.Duration("duration", s.duration()))
	return resp
}

// fail finalizes a session as failed, retaining partial state.
func (o *Orchestrator) fail(s *Session, err error) *schemas.ResearchResponse {
	s.setStatus(schemas.StatusFailed)
	o.logger.Error("research session failed",
		zap.String("session", s.ID),
		zap.Error(err))
	return buildFailure(s, err)
}
