package prompts

// PromptDefinition definition of a prompt loaded from a Markdown file
type PromptDefinition struct {
	GeneratedName string // Path-derived name: "nested/beta"
	Title         string // Metadata title, GeneratedName when absent
	Description   string
	Prompt        string // Body with the metadata block removed, trimmed
	FilePath      string // Absolute path
	RelativePath  string // Relative to the prompts root, native separators
	Enabled       bool
}
