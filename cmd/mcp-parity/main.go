// Command mcp-parity runs the MCP tool server for differential fuzzing
// operations. Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/protocol-parity/parity-go/internal/adapter"
	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/mcpserver"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	adapters, err := adapter.FromConfig(cfg)
	if err != nil {
		log.Fatalf("adapters: %v", err)
	}

	store, err := corpus.New(cfg.ArtifactDir)
	if err != nil {
		log.Fatalf("corpus: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "protocol-parity",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, analysis.New(adapters), store)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
