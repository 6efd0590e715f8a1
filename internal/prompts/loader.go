package prompts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds the number of prompt files read at the same time
const maxConcurrentReads = 32

// LoadPromptDefinitions recursively loads Markdown prompt files from a directory.
//
// All files are read before any of them is parsed or validated. Any read, parse or
// validation failure aborts the whole load; no partial result is returned.
// The returned definitions are sorted by GeneratedName.
func LoadPromptDefinitions(directoryPath string) ([]PromptDefinition, error) {
	root, err := filepath.Abs(directoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prompt directory %q: %w", directoryPath, err)
	}

	// WalkDir does not descend into a symlinked root, so walk its target
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
	}

	info, err := os.Stat(resolvedRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
	}

	files, err := collectMarkdownFiles(resolvedRoot)
	if err != nil {
		return nil, err
	}

	contents, err := readFiles(files)
	if err != nil {
		return nil, err
	}

	definitions := make([]PromptDefinition, 0, len(files))
	for i, path := range files {
		definition, err := parsePromptFile(root, resolvedRoot, path, contents[i])
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}

	if err := checkDuplicateNames(definitions); err != nil {
		return nil, err
	}

	slices.SortFunc(definitions, func(a, b PromptDefinition) int {
		return strings.Compare(a.GeneratedName, b.GeneratedName)
	})

	slog.Info("Loaded prompt definitions", "directory", root, "count", len(definitions))

	return definitions, nil
}

// collectMarkdownFiles returns every regular Markdown file beneath root
func collectMarkdownFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking prompt directory at %s: %w", path, err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !isMarkdownFile(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// readFiles reads all files concurrently and returns their contents in input order
func readFiles(paths []string) ([][]byte, error) {
	contents := make([][]byte, len(paths))

	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read prompt file %s: %w", path, err)
			}
			contents[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return contents, nil
}

// parsePromptFile builds a definition from a file found under resolvedRoot.
// FilePath is reported under root, the path the caller asked for.
func parsePromptFile(root, resolvedRoot, path string, content []byte) (PromptDefinition, error) {
	relativePath, err := filepath.Rel(resolvedRoot, path)
	if err != nil {
		return PromptDefinition{}, fmt.Errorf("failed to resolve relative path of %s: %w", path, err)
	}

	meta, body, err := ParseMarkdown(content)
	if err != nil {
		return PromptDefinition{}, fmt.Errorf("failed to parse metadata in %s: %w", relativePath, err)
	}

	name := GenerateName(relativePath)
	if err := ValidateName(name, relativePath); err != nil {
		return PromptDefinition{}, err
	}

	description, ok := meta.Description()
	if !ok {
		description = fmt.Sprintf("Prompt defined in %s", relativePath)
	}

	title, ok := meta.Title()
	if !ok {
		title = name
	}

	definition := PromptDefinition{
		GeneratedName: name,
		Title:         title,
		Description:   description,
		Prompt:        strings.TrimSpace(body),
		FilePath:      filepath.Join(root, relativePath),
		RelativePath:  relativePath,
		Enabled:       meta.Enabled(),
	}

	slog.Debug("Loaded prompt", "name", name, "file", relativePath, "enabled", definition.Enabled)

	return definition, nil
}

// checkDuplicateNames fails if two definitions share a generated name
func checkDuplicateNames(definitions []PromptDefinition) error {
	seen := make(map[string]string, len(definitions))
	for _, d := range definitions {
		if existing, ok := seen[d.GeneratedName]; ok {
			return fmt.Errorf("%w %q detected in %q and %q, please ensure unique file names",
				ErrDuplicateName, d.GeneratedName, existing, d.RelativePath)
		}
		seen[d.GeneratedName] = d.RelativePath
	}
	return nil
}
