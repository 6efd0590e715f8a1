package prompts

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MarkdownExtension is the extension of prompt files, matched case-insensitively
	MarkdownExtension = ".md"

	// MaxNameLength is the maximum length of a generated name
	MaxNameLength = 64
)

var disallowedNameChars = regexp.MustCompile(`[^A-Za-z0-9_\-./]`)

func isMarkdownFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), MarkdownExtension)
}

// GenerateName derives a prompt name from a path relative to the prompts root.
// The extension is dropped and separators are normalized to '/'.
func GenerateName(relativePath string) string {
	withoutExt := relativePath[:len(relativePath)-len(filepath.Ext(relativePath))]
	return filepath.ToSlash(withoutExt)
}

// ValidateName checks the length and character set of a generated name.
// relativePath is only used for error reporting.
func ValidateName(name, relativePath string) error {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > MaxNameLength {
		return fmt.Errorf("%w: %q from %q has %d characters", ErrInvalidNameLength, name, relativePath, length)
	}

	if offending := disallowedNameChars.FindAllString(name, -1); len(offending) > 0 {
		return fmt.Errorf("%w: %q from %q contains %q (allowed: letters, digits, '_', '-', '.', '/')",
			ErrInvalidNameCharacters, name, relativePath, uniqueJoin(offending))
	}

	return nil
}

func uniqueJoin(values []string) string {
	seen := make(map[string]struct{}, len(values))
	var sb strings.Builder
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		sb.WriteString(v)
	}
	return sb.String()
}
