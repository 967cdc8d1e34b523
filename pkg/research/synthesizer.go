package research

import (
	"context"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

// Prompt-context truncation for synthesis. Selection is first-N in
// accumulation order, so repeated calls over the same session state are
// deterministic.
const (
	reportLearningsWindow = 20
	reportCitationsWindow = 15
)

// ReportSynthesizer builds the structured final report. Unlike the
// per-query components it has no local fallback: if the generation
// service cannot produce a valid report after its own retries, the
// session fails.
type ReportSynthesizer struct {
	gen    ai.Generator
	logger *zap.Logger
}

// NewReportSynthesizer creates a report synthesizer.
func NewReportSynthesizer(gen ai.Generator, logger *zap.Logger) *ReportSynthesizer {
	return &ReportSynthesizer{gen: gen, logger: logger}
}

// Synthesize produces the final report from the first 20 accumulated
// learnings and first 15 citations.
func (r *ReportSynthesizer) Synthesize(ctx context.Context, s *Session) (*schemas.FinalReport, error) {
	learnings := s.firstLearnings(reportLearningsWindow)
	citations := s.firstCitations(reportCitationsWindow)

	var report schemas.FinalReport
	err := r.gen.Generate(ctx, ai.Request{
		System: reportSystemPrompt,
		User:   buildReportPrompt(s.Request.Query, s.Request.OutputFormat, learnings, citations),
		Schema: reportSchema,
	}, &report)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSessionAborted, "report synthesis failed")
	}

	r.logger.Info("report synthesized",
		zap.String("session", s.ID),
		zap.Int("findings", len(report.MainFindings)))
	return &report, nil
}
