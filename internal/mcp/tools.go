package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sha1n/mcp-prompts-server-go/internal/search"
)

// RegisterSearchTool registers the prompt search tool
func RegisterSearchTool(r ToolRegistrar, name string, searchService search.Searcher) (Handle, error) {
	return r.RegisterTool(name, ToolDescriptor{
		Title:       "Search prompts",
		Description: "Search the prompt library by keywords. Returns the names and descriptions of matching prompts.",
		Parameters: []mcp.ToolOption{
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query. Use natural language or keywords.")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results to return")),
		},
	}, NewSearchToolHandler(searchService))
}

// NewSearchToolHandler creates the handler for the search tool
func NewSearchToolHandler(searchService search.Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, fmt.Errorf("missing 'query' argument")
		}

		var opts *search.SearchOptions
		if limit := req.GetInt("limit", 0); limit > 0 {
			opts = &search.SearchOptions{Limit: limit}
		}

		slog.Info("Search request", "query", query)

		results, err := searchService.Search(query, opts)
		if err != nil {
			slog.Error("Search failed", "query", query, "error", err)
			return nil, err
		}

		var sb strings.Builder
		if len(results) == 0 {
			fmt.Fprintf(&sb, "No prompts found for '%s'", query)
		} else {
			fmt.Fprintf(&sb, "Prompts matching '%s':\n\n", query)
			for _, r := range results {
				fmt.Fprintf(&sb, "- %s: %s\n", r.Name, r.Description)
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
