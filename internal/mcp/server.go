package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
)

// CreateServer creates an MCP server with tool and prompt capabilities.
// Units are added through a Registry.
func CreateServer(metadata domain.ServerMetadata) *server.MCPServer {
	return server.NewMCPServer(
		metadata.Name,
		metadata.Version,
		server.WithInstructions(metadata.Instructions),
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)
}
