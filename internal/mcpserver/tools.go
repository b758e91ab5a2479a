// Package mcpserver exposes differential fuzzing operations via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/domain"
)

// FuzzRunner executes one case against all configured adapters.
// *analysis.Analyzer satisfies this without changes.
type FuzzRunner interface {
	RunFuzzCase(ctx context.Context, fuzzCase *domain.FuzzCase) analysis.DifferentialResult
}

// CorpusOps is the corpus surface exposed through MCP tools.
// *corpus.Manager satisfies this without changes.
type CorpusOps interface {
	ProcessResult(result *analysis.DifferentialResult) error
	GetStats() (corpus.Stats, error)
	ListDivergences(limit int) ([]map[string]any, error)
	GetDivergence(caseID string) (map[string]any, error)
	CleanupOldFiles(days int) (int, error)
}

// RegisterTools registers all fuzzing MCP tools on the given server.
func RegisterTools(server *mcp.Server, runner FuzzRunner, store CorpusOps) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "run_fuzz_case",
			Description: "Run one method call against every configured backend and compare the normalized results",
		},
		runFuzzCaseHandler(runner, store),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_corpus_stats",
			Description: "Count the stable, divergence, and crash entries in the corpus",
		},
		getCorpusStatsHandler(store),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_divergences",
			Description: "List recorded divergences, newest first",
		},
		listDivergencesHandler(store),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_divergence",
			Description: "Get the full divergence record for one case id",
		},
		getDivergenceHandler(store),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "cleanup_corpus",
			Description: "Remove corpus entries older than the given number of days",
		},
		cleanupCorpusHandler(store),
	)
}

type runFuzzCaseInput struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

func runFuzzCaseHandler(runner FuzzRunner, store CorpusOps) mcp.ToolHandlerFor[runFuzzCaseInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input runFuzzCaseInput) (*mcp.CallToolResult, any, error) {
		if input.Method == "" {
			return errorResult("method is required"), nil, nil
		}

		fuzzCase := domain.FuzzCase{MethodName: input.Method, Parameters: input.Params}
		if fuzzCase.Parameters == nil {
			fuzzCase.Parameters = map[string]any{}
		}
		if err := fuzzCase.Validate(); err != nil {
			return errorResult(err.Error()), nil, nil
		}

		result := runner.RunFuzzCase(ctx, &fuzzCase)
		if err := store.ProcessResult(&result); err != nil {
			return nil, nil, fmt.Errorf("run_fuzz_case: persist: %w", err)
		}

		return textResult(result)
	}
}

func getCorpusStatsHandler(store CorpusOps) mcp.ToolHandlerFor[struct{}, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		stats, err := store.GetStats()
		if err != nil {
			return nil, nil, fmt.Errorf("get_corpus_stats: %w", err)
		}
		return textResult(stats)
	}
}

type listDivergencesInput struct {
	Limit int `json:"limit,omitempty"`
}

func listDivergencesHandler(store CorpusOps) mcp.ToolHandlerFor[listDivergencesInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input listDivergencesInput) (*mcp.CallToolResult, any, error) {
		if input.Limit < 0 {
			return errorResult("limit must be non-negative"), nil, nil
		}
		records, err := store.ListDivergences(input.Limit)
		if err != nil {
			return nil, nil, fmt.Errorf("list_divergences: %w", err)
		}
		return textResult(records)
	}
}

type caseIDInput struct {
	CaseID string `json:"case_id"`
}

func getDivergenceHandler(store CorpusOps) mcp.ToolHandlerFor[caseIDInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input caseIDInput) (*mcp.CallToolResult, any, error) {
		if input.CaseID == "" {
			return errorResult("case_id is required"), nil, nil
		}
		record, err := store.GetDivergence(input.CaseID)
		if err != nil {
			return errorResult(fmt.Sprintf("divergence not found: %s", input.CaseID)), nil, nil
		}
		return textResult(record)
	}
}

type cleanupInput struct {
	RetentionDays int `json:"retention_days"`
}

func cleanupCorpusHandler(store CorpusOps) mcp.ToolHandlerFor[cleanupInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input cleanupInput) (*mcp.CallToolResult, any, error) {
		if input.RetentionDays <= 0 {
			return errorResult("retention_days must be positive"), nil, nil
		}
		removed, err := store.CleanupOldFiles(input.RetentionDays)
		if err != nil {
			return nil, nil, fmt.Errorf("cleanup_corpus: %w", err)
		}
		return textResult(map[string]int{"files_removed": removed})
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
