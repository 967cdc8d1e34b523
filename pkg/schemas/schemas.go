// Package schemas defines the data model and wire types for the deep
// research pipeline: the research request/response contract, session
// accumulator types, and the structured report shapes produced by the
// generation service.
package schemas

import "time"

// TimeScope narrows searches to a temporal window.
type TimeScope string

const (
	TimeScopeRecent        TimeScope = "recent"
	TimeScopeHistorical    TimeScope = "historical"
	TimeScopeComprehensive TimeScope = "comprehensive"
)

// OutputFormat is a prompt-level hint for report length.
type OutputFormat string

const (
	OutputFormatSummary        OutputFormat = "summary"
	OutputFormatDetailedReport OutputFormat = "detailed_report"
	OutputFormatExecutiveBrief OutputFormat = "executive_brief"
)

// SessionStatus is the terminal-state machine for a research session:
// running -> {completed, failed}, assigned exactly once.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// StepType identifies the orchestration phase a step belongs to.
type StepType string

const (
	StepTypeStrategy   StepType = "strategy"
	StepTypeSearch     StepType = "search"
	StepTypeAnalyze    StepType = "analyze"
	StepTypeSynthesize StepType = "synthesize"
	StepTypeReport     StepType = "report"
)

// StepStatus is the per-step state machine:
// pending -> in-progress -> {completed, failed}, no regression.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Request bounds. Out-of-range values are clamped, not rejected.
const (
	MinDepth   = 1
	MaxDepth   = 4
	MinBreadth = 2
	MaxBreadth = 6

	DefaultDepth   = 2
	DefaultBreadth = 3
)

// ResearchRequest is the external research contract.
type ResearchRequest struct {
	Query        string       `json:"query"`
	Depth        int          `json:"depth,omitempty"`
	Breadth      int          `json:"breadth,omitempty"`
	FocusAreas   []string     `json:"focus_areas,omitempty"`
	TimeScope    TimeScope    `json:"time_scope,omitempty"`
	OutputFormat OutputFormat `json:"output_format,omitempty"`
}

// Normalize applies defaults and clamps ranges in place.
func (r *ResearchRequest) Normalize() {
	if r.Depth == 0 {
		r.Depth = DefaultDepth
	}
	if r.Breadth == 0 {
		r.Breadth = DefaultBreadth
	}
	r.Depth = clampInt(r.Depth, MinDepth, MaxDepth)
	r.Breadth = clampInt(r.Breadth, MinBreadth, MaxBreadth)
	if r.TimeScope == "" {
		r.TimeScope = TimeScopeComprehensive
	}
	if r.OutputFormat == "" {
		r.OutputFormat = OutputFormatDetailedReport
	}
}

// SearchQuery is a prioritized query produced by the strategy generator.
// Priority is an integer in [1,5], 5 highest.
type SearchQuery struct {
	Query        string `json:"query"`
	ResearchGoal string `json:"research_goal"`
	Priority     int    `json:"priority"`
}

// SearchResult is one hit from the web search provider.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Citation is a source reference backing one or more learnings.
// Relevance is an integer in [1,10]. Citations are append-only and are
// never deduplicated by URL.
type Citation struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Relevance int    `json:"relevance"`
}

// Strategy is the AI-stated research approach guiding query generation.
type Strategy struct {
	Approach         string   `json:"approach"`
	ExpectedOutcomes []string `json:"expected_outcomes"`
}

// StepMetadata carries phase-specific counters on a research step.
type StepMetadata struct {
	QueryCount  int `json:"query_count,omitempty"`
	SourceCount int `json:"source_count,omitempty"`
	Depth       int `json:"depth,omitempty"`
	Breadth     int `json:"breadth,omitempty"`
}

// ResearchStep is one observable phase transition of the orchestration,
// exposed to progress consumers.
type ResearchStep struct {
	ID          string        `json:"id"`
	Type        StepType      `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      StepStatus    `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
	Progress    int           `json:"progress,omitempty"`
	Metadata    *StepMetadata `json:"metadata,omitempty"`
}

// ConfidenceAssessment scores the overall report confidence in [1,10].
type ConfidenceAssessment struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// FinalReport is the structured report synthesized from accumulated
// learnings and citations.
type FinalReport struct {
	Title                string               `json:"title"`
	ExecutiveSummary     string               `json:"executive_summary"`
	MainFindings         []string             `json:"main_findings"`
	DetailedAnalysis     string               `json:"detailed_analysis"`
	Recommendations      []string             `json:"recommendations"`
	KnowledgeGaps        []string             `json:"knowledge_gaps"`
	ConfidenceAssessment ConfidenceAssessment `json:"confidence_assessment"`
}

// Recommendations groups actionable recommendations by horizon.
type Recommendations struct {
	ImmediateActions    []string `json:"immediate_actions"`
	ShortTermStrategies []string `json:"short_term_strategies"`
	LongTermInitiatives []string `json:"long_term_initiatives"`
	RiskConsiderations  []string `json:"risk_considerations"`
	SuccessMetrics      []string `json:"success_metrics"`
}

// ResearchMetadata summarizes how the session executed.
type ResearchMetadata struct {
	DepthCompleted   int       `json:"depth_completed"`
	BreadthCompleted int       `json:"breadth_completed"`
	TotalSearches    int       `json:"total_searches"`
	DurationMS       int64     `json:"duration_ms"`
	FocusAreas       []string  `json:"focus_areas,omitempty"`
	TimeScope        TimeScope `json:"time_scope"`
}

// PartialResults is the best-effort state returned with a failed session.
type PartialResults struct {
	Learnings  []string   `json:"learnings"`
	Citations  []Citation `json:"citations"`
	DurationMS int64      `json:"duration_ms"`
}

// ResearchResponse is the response envelope for both outcomes. Status is
// authoritative: a failed session carries Error and PartialResults, a
// completed one carries the report fields.
type ResearchResponse struct {
	ResearchID       string            `json:"research_id"`
	Status           SessionStatus     `json:"status"`
	OriginalQuery    string            `json:"original_query,omitempty"`
	ResearchStrategy *Strategy         `json:"research_strategy,omitempty"`
	TotalSources     int               `json:"total_sources,omitempty"`
	UniqueSources    int               `json:"unique_sources,omitempty"`
	KeyLearnings     []string          `json:"key_learnings,omitempty"`
	Report           *FinalReport      `json:"comprehensive_report,omitempty"`
	Citations        []Citation        `json:"citations,omitempty"`
	Metadata         *ResearchMetadata `json:"research_metadata,omitempty"`
	Recommendations  *Recommendations  `json:"recommendations,omitempty"`
	Steps            []ResearchStep    `json:"research_steps,omitempty"`
	Error            string            `json:"error,omitempty"`
	PartialResults   *PartialResults   `json:"partial_results,omitempty"`
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
