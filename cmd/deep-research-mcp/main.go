// deep-research-mcp exposes the deep research orchestrator as an MCP
// server over stdio, with tools to run a research session and fetch a
// stored report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spawn-mcp/deep-research/pkg/ai"
	"github.com/spawn-mcp/deep-research/pkg/config"
	"github.com/spawn-mcp/deep-research/pkg/progress"
	"github.com/spawn-mcp/deep-research/pkg/research"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/spawn-mcp/deep-research/pkg/search"
	"github.com/spawn-mcp/deep-research/pkg/store"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	orch, reports, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build orchestrator", zap.Error(err))
	}
	defer cleanup()

	s := server.NewMCPServer(
		"deep-research",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	registerTools(s, orch, reports)

	logger.Info("starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// buildOrchestrator wires the orchestrator from configuration. GCP
// integrations (Firestore report store, Pub/Sub progress stream) attach
// only when a project is configured.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*research.Orchestrator, store.ReportStore, func(), error) {
	gen, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, ai.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("generation client: %w", err)
	}

	provider := search.NewClient(cfg.TavilyAPIKey, search.WithLogger(logger))

	var gcpOpts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		gcpOpts = append(gcpOpts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}

	cleanup := func() {}
	var reports store.ReportStore = store.NewMemoryStore()
	reporters := progress.Multi{progress.NewZapReporter(logger)}

	if cfg.GCPProject != "" {
		fs, err := store.NewFirestoreStore(ctx, cfg.GCPProject, cfg.ReportCollection, gcpOpts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("firestore store: %w", err)
		}
		reports = fs

		if cfg.ProgressTopic != "" {
			ps, err := progress.NewPubSubReporter(ctx, cfg.GCPProject, cfg.ProgressTopic, logger, gcpOpts...)
			if err != nil {
				fs.Close()
				return nil, nil, nil, fmt.Errorf("pubsub reporter: %w", err)
			}
			reporters = append(reporters, ps)
			cleanup = func() {
				ps.Close()
				fs.Close()
			}
		} else {
			cleanup = func() { fs.Close() }
		}
	}

	orch := research.New(gen, provider,
		research.WithLogger(logger),
		research.WithReporter(reporters),
		research.WithStore(reports),
		research.WithConcurrency(cfg.Concurrency),
		research.WithSessionTimeout(cfg.SessionTimeout),
	)
	return orch, reports, cleanup, nil
}

func registerTools(s *server.MCPServer, orch *research.Orchestrator, reports store.ReportStore) {
	researchTool := mcp.NewTool("deep_research",
		mcp.WithDescription("Run a multi-depth, multi-breadth deep research session on a topic and return a structured report with citations and recommendations"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Research topic or question"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Number of sequential refinement iterations"),
			mcp.DefaultNumber(schemas.DefaultDepth),
			mcp.Min(schemas.MinDepth),
			mcp.Max(schemas.MaxDepth),
		),
		mcp.WithNumber("breadth",
			mcp.Description("Number of parallel search queries per iteration"),
			mcp.DefaultNumber(schemas.DefaultBreadth),
			mcp.Min(schemas.MinBreadth),
			mcp.Max(schemas.MaxBreadth),
		),
		mcp.WithString("focus_areas",
			mcp.Description("Comma-separated focus areas, in priority order"),
		),
		mcp.WithString("time_scope",
			mcp.Description("Temporal scope of the research"),
			mcp.Enum("recent", "historical", "comprehensive"),
			mcp.DefaultString("comprehensive"),
		),
		mcp.WithString("output_format",
			mcp.Description("Report length target"),
			mcp.Enum("summary", "detailed_report", "executive_brief"),
			mcp.DefaultString("detailed_report"),
		),
	)
	s.AddTool(researchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid query: %v", err)), nil
		}

		req := schemas.ResearchRequest{
			Query:        query,
			Depth:        int(request.GetFloat("depth", schemas.DefaultDepth)),
			Breadth:      int(request.GetFloat("breadth", schemas.DefaultBreadth)),
			FocusAreas:   splitFocusAreas(request.GetString("focus_areas", "")),
			TimeScope:    schemas.TimeScope(request.GetString("time_scope", "")),
			OutputFormat: schemas.OutputFormat(request.GetString("output_format", "")),
		}

		resp := orch.Run(ctx, req)
		return toolResultJSON(resp)
	})

	reportTool := mcp.NewTool("get_research_report",
		mcp.WithDescription("Fetch a previously completed research report by research id"),
		mcp.WithString("research_id",
			mcp.Required(),
			mcp.Description("Research id returned by deep_research"),
		),
	)
	s.AddTool(reportTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("research_id")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid research_id: %v", err)), nil
		}
		resp, err := reports.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toolResultJSON(resp)
	})
}

func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func splitFocusAreas(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
