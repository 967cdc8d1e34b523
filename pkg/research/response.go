package research

import (
	"sort"

	"github.com/spawn-mcp/deep-research/pkg/schemas"
)

// Response truncation limits.
const (
	keyLearningsLimit = 10
	citationsLimit    = 20
)

func buildSuccess(s *Session, report *schemas.FinalReport, recs *schemas.Recommendations) *schemas.ResearchResponse {
	return &schemas.ResearchResponse{
		ResearchID:       s.ID,
		Status:           schemas.StatusCompleted,
		OriginalQuery:    s.Request.Query,
		ResearchStrategy: s.Strategy,
		TotalSources:     s.totalSources,
		UniqueSources:    s.uniqueSources(),
		KeyLearnings:     s.firstLearnings(keyLearningsLimit),
		Report:           report,
		Citations:        sortedCitations(s.citations, citationsLimit),
		Metadata: &schemas.ResearchMetadata{
			DepthCompleted:   s.depthCompleted,
			BreadthCompleted: s.Request.Breadth,
			TotalSearches:    s.totalSearches,
			DurationMS:       s.duration().Milliseconds(),
			FocusAreas:       s.Request.FocusAreas,
			TimeScope:        s.Request.TimeScope,
		},
		Recommendations: recs,
		Steps:           s.snapshotSteps(),
	}
}

func buildFailure(s *Session, err error) *schemas.ResearchResponse {
	return &schemas.ResearchResponse{
		ResearchID: s.ID,
		Status:     schemas.StatusFailed,
		Error:      err.Error(),
		PartialResults: &schemas.PartialResults{
			Learnings:  append([]string{}, s.learnings...),
			Citations:  append([]schemas.Citation{}, s.citations...),
			DurationMS: s.duration().Milliseconds(),
		},
	}
}

// sortedCitations returns a stable relevance-descending copy truncated
// to limit. The session's accumulated order is left untouched.
func sortedCitations(citations []schemas.Citation, limit int) []schemas.Citation {
	out := make([]schemas.Citation, len(citations))
	copy(out, citations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
