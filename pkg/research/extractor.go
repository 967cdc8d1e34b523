package research

import (
	"context"
	"fmt"

	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

// MaxLearningsPerQuery bounds how many learnings one query contributes.
const MaxLearningsPerQuery = 3

// Extraction is the per-query unit of synthesis.
type Extraction struct {
	Learnings         []string
	FollowUpQuestions []string
	Citations         []schemas.Citation
}

// LearningExtractor turns one query's search results into learnings,
// follow-up questions, and citations. It never fails: empty results and
// generation failures both collapse to the same deterministic fallback.
type LearningExtractor struct {
	gen    ai.Generator
	logger *zap.Logger
}

// NewLearningExtractor creates a learning extractor.
func NewLearningExtractor(gen ai.Generator, logger *zap.Logger) *LearningExtractor {
	return &LearningExtractor{gen: gen, logger: logger}
}

type extractionOutput struct {
	Learnings         []string           `json:"learnings"`
	FollowUpQuestions []string           `json:"follow_up_questions"`
	Citations         []schemas.Citation `json:"citations"`
}

// Extract guarantees at least one learning and one follow-up question,
// relevance scores in [1,10], and citation count bounded by the result
// count.
func (e *LearningExtractor) Extract(ctx context.Context, query schemas.SearchQuery, results []schemas.SearchResult, maxLearnings int) Extraction {
	if maxLearnings < 1 {
		maxLearnings = MaxLearningsPerQuery
	}
	if len(results) == 0 {
		return fallbackExtraction(query)
	}

	var out extractionOutput
	err := e.gen.Generate(ctx, ai.Request{
		System: extractionSystemPrompt,
		User:   buildExtractionPrompt(query, results, maxLearnings),
		Schema: extractionSchema,
	}, &out)
	if err != nil {
		e.logger.Warn("learning extraction failed, using fallback",
			zap.String("query", query.Query),
			zap.Error(err))
		return fallbackExtraction(query)
	}

	return sanitizeExtraction(query, out, len(results), maxLearnings)
}

func sanitizeExtraction(query schemas.SearchQuery, out extractionOutput, resultCount, maxLearnings int) Extraction {
	ext := Extraction{}

	for _, l := range out.Learnings {
		if l == "" {
			continue
		}
		ext.Learnings = append(ext.Learnings, l)
		if len(ext.Learnings) == maxLearnings {
			break
		}
	}
	if len(ext.Learnings) == 0 {
		ext.Learnings = []string{fallbackLearning(query)}
	}

	for _, q := range out.FollowUpQuestions {
		if q != "" {
			ext.FollowUpQuestions = append(ext.FollowUpQuestions, q)
		}
	}
	if len(ext.FollowUpQuestions) == 0 {
		ext.FollowUpQuestions = []string{fallbackFollowUp(query)}
	}

	for _, c := range out.Citations {
		if c.URL == "" {
			continue
		}
		if c.Relevance < 1 {
			c.Relevance = 1
		}
		if c.Relevance > 10 {
			c.Relevance = 10
		}
		ext.Citations = append(ext.Citations, c)
		if len(ext.Citations) == resultCount {
			break
		}
	}

	return ext
}

// fallbackExtraction covers both the empty-result case and a failed
// summarizer: one synthesized learning, one follow-up, no citations.
func fallbackExtraction(query schemas.SearchQuery) Extraction {
	return Extraction{
		Learnings:         []string{fallbackLearning(query)},
		FollowUpQuestions: []string{fallbackFollowUp(query)},
	}
}

func fallbackLearning(query schemas.SearchQuery) string {
	return fmt.Sprintf("No usable search results were available for %q; this aspect of the topic needs further investigation.", query.Query)
}

func fallbackFollowUp(query schemas.SearchQuery) string {
	return fmt.Sprintf("What alternative sources could answer %q?", query.Query)
}
