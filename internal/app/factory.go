package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
	"github.com/sha1n/mcp-prompts-server-go/internal/mcp"
	"github.com/sha1n/mcp-prompts-server-go/internal/prompts"
	"github.com/sha1n/mcp-prompts-server-go/internal/search"
	"golang.org/x/sync/errgroup"
)

// CreateMCPServer loads the prompt library and registers it on a new MCP server.
// The returned cleanup function releases the search index, if one was created.
func CreateMCPServer(ctx context.Context, settings *config.Settings, metadata domain.ServerMetadata) (*server.MCPServer, func(), error) {
	if err := metadata.Validate(); err != nil {
		return nil, nil, fmt.Errorf("metadata validation failed: %w", err)
	}

	definitions, err := prompts.LoadPromptDefinitions(settings.PromptsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	metadata.Instructions = buildInstructions(metadata.Instructions, settings)
	mcpServer := mcp.CreateServer(metadata)
	registry := mcp.NewRegistry(mcpServer)

	result, err := mcp.RegisterByMode(registry, definitions, settings.RegisterAs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register prompts: %w", err)
	}
	slog.Info("Registered prompts", "mode", settings.RegisterAs, "enabled", len(result.Enabled), "disabled", len(result.Disabled))
	warnAboutDefinitions(settings.PromptsDir, result)

	cleanup := func() {}
	if settings.Search.Enabled {
		searchService, err := search.NewService(settings.Search)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize search: %w", err)
		}
		if err := IndexDefinitions(ctx, result.Enabled, searchService); err != nil {
			searchService.Close()
			return nil, nil, fmt.Errorf("failed to index prompts: %w", err)
		}
		if _, err := mcp.RegisterSearchTool(registry, settings.Search.ToolName, searchService); err != nil {
			searchService.Close()
			return nil, nil, fmt.Errorf("failed to register search tool: %w", err)
		}
		cleanup = searchService.Close
	}

	return mcpServer, cleanup, nil
}

// IndexDefinitions streams definitions into the searcher
func IndexDefinitions(ctx context.Context, definitions []prompts.PromptDefinition, searcher search.Searcher) error {
	docs := make(chan domain.Document)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(docs)
		for _, d := range definitions {
			doc := domain.Document{
				Name:        d.GeneratedName,
				Description: d.Description,
				Content:     d.Prompt,
			}
			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		return searcher.Index(ctx, docs)
	})

	return g.Wait()
}

func warnAboutDefinitions(dir string, result mcp.RegisterResult) {
	total := len(result.Enabled) + len(result.Disabled)
	if total == 0 {
		slog.Warn("No prompts found", "dir", dir)
		return
	}

	if len(result.Disabled) > 0 {
		paths := make([]string, len(result.Disabled))
		for i, d := range result.Disabled {
			paths[i] = d.RelativePath
		}
		slog.Warn("Found disabled prompts", "count", len(result.Disabled), "paths", strings.Join(paths, ", "))
	}

	if len(result.Enabled) == 0 {
		slog.Warn("All prompts are disabled", "dir", dir)
	}
}

// buildInstructions extends the base instructions with how prompts are exposed
func buildInstructions(base string, settings *config.Settings) string {
	var sb strings.Builder
	sb.WriteString(base)

	switch settings.RegisterAs {
	case domain.ModeTool:
		sb.WriteString("\n\nEach prompt is available as a tool that returns the prompt text.")
	case domain.ModePrompt:
		sb.WriteString("\n\nEach prompt is available through prompts/get.")
	case domain.ModeBoth:
		sb.WriteString("\n\nEach prompt is available both as a tool and through prompts/get.")
	}

	if settings.Search.Enabled {
		fmt.Fprintf(&sb, "\nUse the %s tool to find prompts by keywords.", settings.Search.ToolName)
	}

	return sb.String()
}
