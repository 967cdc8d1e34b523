// deep-research is the command-line entry point: it runs one research
// session and renders the report to the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/config"
	"github.com/spawn-mcp/deep-research/pkg/progress"
	"github.com/spawn-mcp/deep-research/pkg/research"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/spawn-mcp/deep-research/pkg/search"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		depth      int
		breadth    int
		focusAreas []string
		timeScope  string
		format     string
		timeout    time.Duration
		asJSON     bool
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "deep-research \"<query>\"",
		Short: "Run a multi-depth deep research session on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if timeout > 0 {
				cfg.SessionTimeout = timeout
			}

			logger := zap.NewNop()
			if verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
				defer logger.Sync()
			}

			gen, err := ai.NewGeminiGenerator(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel, ai.WithLogger(logger))
			if err != nil {
				return err
			}

			orch := research.New(gen,
				search.NewClient(cfg.TavilyAPIKey, search.WithLogger(logger)),
				research.WithLogger(logger),
				research.WithReporter(progress.NewZapReporter(logger)),
				research.WithConcurrency(cfg.Concurrency),
				research.WithSessionTimeout(cfg.SessionTimeout),
			)

			resp := orch.Run(cmd.Context(), schemas.ResearchRequest{
				Query:        args[0],
				Depth:        depth,
				Breadth:      breadth,
				FocusAreas:   focusAreas,
				TimeScope:    schemas.TimeScope(timeScope),
				OutputFormat: schemas.OutputFormat(format),
			})

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			if resp.Status == schemas.StatusFailed {
				return fmt.Errorf("research failed: %s", resp.Error)
			}

			rendered, err := glamour.Render(renderMarkdown(resp), "dark")
			if err != nil {
				// Fall back to plain markdown on rendering issues.
				rendered = renderMarkdown(resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	root.Flags().IntVar(&depth, "depth", schemas.DefaultDepth, "sequential refinement iterations (1-4)")
	root.Flags().IntVar(&breadth, "breadth", schemas.DefaultBreadth, "parallel search queries per iteration (2-6)")
	root.Flags().StringSliceVar(&focusAreas, "focus", nil, "focus areas, in priority order")
	root.Flags().StringVar(&timeScope, "time-scope", "comprehensive", "time scope: recent, historical, comprehensive")
	root.Flags().StringVar(&format, "format", "detailed_report", "output format: summary, detailed_report, executive_brief")
	root.Flags().DurationVar(&timeout, "timeout", 0, "overall session timeout (default from config)")
	root.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	return root
}

// renderMarkdown flattens the response into a markdown document.
func renderMarkdown(resp *schemas.ResearchResponse) string {
	var b strings.Builder
	r := resp.Report

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", r.ExecutiveSummary)

	if len(r.MainFindings) > 0 {
		b.WriteString("## Main Findings\n\n")
		for _, f := range r.MainFindings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Analysis\n\n%s\n\n", r.DetailedAnalysis)

	if recs := resp.Recommendations; recs != nil {
		b.WriteString("## Recommendations\n\n")
		writeRecGroup(&b, "Immediate actions", recs.ImmediateActions)
		writeRecGroup(&b, "Short-term strategies", recs.ShortTermStrategies)
		writeRecGroup(&b, "Long-term initiatives", recs.LongTermInitiatives)
		writeRecGroup(&b, "Risk considerations", recs.RiskConsiderations)
		writeRecGroup(&b, "Success metrics", recs.SuccessMetrics)
	}

	if len(r.KnowledgeGaps) > 0 {
		b.WriteString("## Knowledge Gaps\n\n")
		for _, g := range r.KnowledgeGaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
		b.WriteString("\n")
	}

	if len(resp.Citations) > 0 {
		b.WriteString("## Sources\n\n")
		for _, c := range resp.Citations {
			fmt.Fprintf(&b, "- [%s](%s) (relevance %d/10)\n", c.Title, c.URL, c.Relevance)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nConfidence: %d/10 (%s)\n", r.ConfidenceAssessment.Score, r.ConfidenceAssessment.Reasoning)
	if m := resp.Metadata; m != nil {
		fmt.Fprintf(&b, "\n%d searches, %d unique sources, depth %d, %s\n",
			m.TotalSearches, resp.UniqueSources, m.DepthCompleted,
			(time.Duration(m.DurationMS) * time.Millisecond).Round(time.Second))
	}
	return b.String()
}

func writeRecGroup(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
