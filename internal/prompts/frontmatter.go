package prompts

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const metadataDelimiter = "---"

// yamlFormat is the only metadata block format recognized in prompt files.
var yamlFormat = frontmatter.NewFormat(metadataDelimiter, metadataDelimiter, yaml.Unmarshal)

// Metadata holds the key-value pairs of a prompt file's metadata block
type Metadata map[string]interface{}

// ParseMarkdown splits a Markdown document into its metadata block and body.
// A metadata block is only recognized at the very start of the content. A
// document without one yields empty metadata and the whole content as body.
func ParseMarkdown(content []byte) (Metadata, string, error) {
	meta := Metadata{}
	if !bytes.HasPrefix(content, []byte(metadataDelimiter)) {
		return meta, string(content), nil
	}
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta, yamlFormat)
	if err != nil {
		return nil, "", err
	}
	return meta, string(body), nil
}

// Description returns the description key if it is a non-empty string
func (m Metadata) Description() (string, bool) {
	description, ok := m["description"].(string)
	if !ok || description == "" {
		return "", false
	}
	return description, true
}

// Title returns the title key if it is a non-empty string
func (m Metadata) Title() (string, bool) {
	title, ok := m["title"].(string)
	if !ok || title == "" {
		return "", false
	}
	return title, true
}

// Enabled interprets the enabled key. Booleans are taken as-is, the string
// "false" (any case) disables, anything else enables.
func (m Metadata) Enabled() bool {
	switch v := m["enabled"].(type) {
	case bool:
		return v
	case string:
		return !strings.EqualFold(v, "false")
	default:
		return true
	}
}
