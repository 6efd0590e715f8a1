package domain

import "fmt"

// ServerMetadata identifies the MCP server to clients
type ServerMetadata struct {
	Name         string
	Version      string
	Instructions string
}

// DefaultServerMetadata returns the metadata used by the mcp-prompts binary
func DefaultServerMetadata(version string) ServerMetadata {
	return ServerMetadata{
		Name:    "prompts-mcp",
		Version: version,
		Instructions: "This server exposes a library of Markdown prompts. " +
			"Each prompt is available by its path-derived name, e.g. 'review/go-code'.",
	}
}

// Validate validates the server metadata
func (m ServerMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("server version is required")
	}
	return nil
}

// Document is a searchable representation of a prompt definition
type Document struct {
	Name        string
	Description string
	Content     string
}
