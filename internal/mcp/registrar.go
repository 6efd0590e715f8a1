package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
	"github.com/sha1n/mcp-prompts-server-go/internal/prompts"
)

// Handle is a registered unit that can be deactivated
type Handle interface {
	Disable()
}

// ToolDescriptor describes a tool-style unit
type ToolDescriptor struct {
	Title        string
	Description  string
	OutputSchema json.RawMessage
	Parameters   []mcp.ToolOption
}

// PromptDescriptor describes a prompt-style unit
type PromptDescriptor struct {
	Description string
}

// ToolRegistrar registers tool-style units
type ToolRegistrar interface {
	RegisterTool(name string, descriptor ToolDescriptor, handler server.ToolHandlerFunc) (Handle, error)
}

// PromptRegistrar registers prompt-style units
type PromptRegistrar interface {
	RegisterPrompt(name string, descriptor PromptDescriptor, handler server.PromptHandlerFunc) (Handle, error)
}

// Registrar registers units on both surfaces
type Registrar interface {
	ToolRegistrar
	PromptRegistrar
}

// RegisterResult partitions registered definitions by their enabled flag
type RegisterResult struct {
	Enabled  []prompts.PromptDefinition
	Disabled []prompts.PromptDefinition
}

// PromptOutput is the structured content returned by a prompt tool
type PromptOutput struct {
	Name        string `json:"name" jsonschema_description:"Generated name of the prompt"`
	Description string `json:"description" jsonschema_description:"Description of the prompt"`
	Prompt      string `json:"prompt" jsonschema_description:"Prompt text"`
	SourcePath  string `json:"sourcePath" jsonschema_description:"Source file path relative to the prompts directory"`
}

var promptOutputSchema = reflectOutputSchema(&PromptOutput{})

func reflectOutputSchema(v any) json.RawMessage {
	reflector := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := reflector.Reflect(v)
	schema.Version = ""

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal output schema: %v", err))
	}
	return data
}

// RegisterAsTools registers every definition as a tool and disables the ones
// marked as disabled
func RegisterAsTools(r ToolRegistrar, definitions []prompts.PromptDefinition) (RegisterResult, error) {
	result := newRegisterResult()
	for _, d := range definitions {
		handle, err := r.RegisterTool(d.GeneratedName, ToolDescriptor{
			Title:        d.Title,
			Description:  d.Description,
			OutputSchema: promptOutputSchema,
		}, NewPromptToolHandler(d))
		if err != nil {
			return RegisterResult{}, err
		}
		result.track(d, handle)
		slog.Debug("Registered prompt tool", "name", d.GeneratedName, "enabled", d.Enabled)
	}
	return result, nil
}

// RegisterAsPrompts registers every definition as a prompt and disables the ones
// marked as disabled
func RegisterAsPrompts(r PromptRegistrar, definitions []prompts.PromptDefinition) (RegisterResult, error) {
	result := newRegisterResult()
	for _, d := range definitions {
		handle, err := r.RegisterPrompt(d.GeneratedName, PromptDescriptor{
			Description: d.Description,
		}, NewPromptHandler(d))
		if err != nil {
			return RegisterResult{}, err
		}
		result.track(d, handle)
		slog.Debug("Registered prompt", "name", d.GeneratedName, "enabled", d.Enabled)
	}
	return result, nil
}

// RegisterByMode registers definitions on the surfaces selected by mode.
// In ModeBoth the result of the prompt pass is returned.
func RegisterByMode(r Registrar, definitions []prompts.PromptDefinition, mode domain.RegistrationMode) (RegisterResult, error) {
	if !mode.Valid() {
		return RegisterResult{}, fmt.Errorf("unknown registration mode: %q", mode)
	}

	var result RegisterResult
	var err error
	if mode.RegistersTools() {
		if result, err = RegisterAsTools(r, definitions); err != nil {
			return RegisterResult{}, err
		}
	}
	if mode.RegistersPrompts() {
		if result, err = RegisterAsPrompts(r, definitions); err != nil {
			return RegisterResult{}, err
		}
	}
	return result, nil
}

// NewPromptToolHandler creates the handler of a prompt tool
func NewPromptToolHandler(d prompts.PromptDefinition) server.ToolHandlerFunc {
	output := PromptOutput{
		Name:        d.GeneratedName,
		Description: d.Description,
		Prompt:      d.Prompt,
		SourcePath:  d.RelativePath,
	}

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slog.Info("Prompt tool request", "name", d.GeneratedName)
		return mcp.NewToolResultStructured(output, d.Prompt), nil
	}
}

// NewPromptHandler creates the handler of a prompt
func NewPromptHandler(d prompts.PromptDefinition) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		slog.Info("Prompt request", "name", d.GeneratedName)
		return mcp.NewGetPromptResult(d.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(d.Prompt)),
		}), nil
	}
}

func newRegisterResult() RegisterResult {
	return RegisterResult{
		Enabled:  []prompts.PromptDefinition{},
		Disabled: []prompts.PromptDefinition{},
	}
}

func (r *RegisterResult) track(d prompts.PromptDefinition, handle Handle) {
	if d.Enabled {
		r.Enabled = append(r.Enabled, d)
		return
	}
	r.Disabled = append(r.Disabled, d)
	handle.Disable()
}
