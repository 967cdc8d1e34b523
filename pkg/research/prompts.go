package research

import (
	"fmt"
	"strings"

	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"google.golang.org/genai"
)

// Response schemas for the structured generation service. Each phase
// requests JSON constrained to one of these shapes.

var strategySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"queries": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query":         {Type: genai.TypeString},
					"research_goal": {Type: genai.TypeString},
					"priority":      {Type: genai.TypeInteger},
				},
				Required: []string{"query", "research_goal", "priority"},
			},
		},
		"strategy": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"approach":          {Type: genai.TypeString},
				"expected_outcomes": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"approach"},
		},
	},
	Required: []string{"queries", "strategy"},
}

var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"learnings":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"follow_up_questions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"citations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url":       {Type: genai.TypeString},
					"title":     {Type: genai.TypeString},
					"content":   {Type: genai.TypeString},
					"relevance": {Type: genai.TypeInteger},
				},
				Required: []string{"url", "title", "content", "relevance"},
			},
		},
	},
	Required: []string{"learnings", "follow_up_questions", "citations"},
}

var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":             {Type: genai.TypeString},
		"executive_summary": {Type: genai.TypeString},
		"main_findings":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"detailed_analysis": {Type: genai.TypeString},
		"recommendations":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"knowledge_gaps":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"confidence_assessment": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":     {Type: genai.TypeInteger},
				"reasoning": {Type: genai.TypeString},
			},
			Required: []string{"score", "reasoning"},
		},
	},
	Required: []string{"title", "executive_summary", "main_findings", "detailed_analysis", "confidence_assessment"},
}

var recommendationsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"immediate_actions":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"short_term_strategies": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"long_term_initiatives": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"risk_considerations":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"success_metrics":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"immediate_actions", "short_term_strategies", "long_term_initiatives", "risk_considerations", "success_metrics"},
}

const strategySystemPrompt = "You are a research strategist. Break a research topic into " +
	"prioritized, non-overlapping web search queries, each with a concrete research goal. " +
	"Priority is an integer from 1 to 5 where 5 is most important."

func buildStrategyPrompt(query string, focusAreas, priorLearnings []string, numQueries int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research topic: %s\n", query)
	if len(focusAreas) > 0 {
		fmt.Fprintf(&b, "Focus areas, in priority order: %s\n", strings.Join(focusAreas, "; "))
	}
	if len(priorLearnings) > 0 {
		b.WriteString("\nLearnings gathered so far; generate queries that deepen or challenge them:\n")
		for _, l := range priorLearnings {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	fmt.Fprintf(&b, "\nGenerate at most %d search queries and state your overall approach and expected outcomes.", numQueries)
	return b.String()
}

const extractionSystemPrompt = "You are a research analyst. From web search results for one " +
	"query, extract concise factual learnings, propose follow-up questions, and cite the " +
	"sources you drew from. Citation relevance is an integer from 1 to 10."

func buildExtractionPrompt(query schemas.SearchQuery, results []schemas.SearchResult, maxLearnings int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search query: %s\nResearch goal: %s\n\nResults:\n", query.Query, query.ResearchGoal)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, r.Title, r.URL, truncateText(r.Content, 1200))
	}
	fmt.Fprintf(&b, "Extract at most %d learnings, at least one follow-up question, and at most %d citations.", maxLearnings, len(results))
	return b.String()
}

const reportSystemPrompt = "You are a research report writer. Synthesize accumulated " +
	"learnings and citations into a structured report with an executive summary, main " +
	"findings, detailed analysis, recommendations, knowledge gaps, and a confidence " +
	"assessment scored from 1 to 10."

func buildReportPrompt(query string, format schemas.OutputFormat, learnings []string, citations []schemas.Citation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research topic: %s\n\nLearnings:\n", query)
	for _, l := range learnings {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	if len(citations) > 0 {
		b.WriteString("\nSources:\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.Title, c.URL, truncateText(c.Content, 300))
		}
	}
	b.WriteString("\n")
	b.WriteString(lengthHint(format))
	return b.String()
}

// lengthHint maps the output format to a prompt-level length target. It
// is a hint, not an enforced constraint.
func lengthHint(format schemas.OutputFormat) string {
	switch format {
	case schemas.OutputFormatSummary:
		return "Keep the report short: a few paragraphs of analysis."
	case schemas.OutputFormatExecutiveBrief:
		return "Write a medium-length executive brief aimed at decision makers."
	default:
		return "Write a long, thorough report with detailed analysis."
	}
}

const recommendationsSystemPrompt = "You are a strategy advisor. From research learnings, " +
	"derive prioritized, actionable recommendations grouped by horizon, plus risk " +
	"considerations and success metrics."

func buildRecommendationsPrompt(query string, learnings []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research topic: %s\n\nKey learnings:\n", query)
	for _, l := range learnings {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	b.WriteString("\nDerive actionable recommendations.")
	return b.String()
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
