package domain

import (
	"fmt"
	"strings"
)

// RegistrationMode selects the MCP surfaces prompt definitions are exposed on
type RegistrationMode string

const (
	// ModeTool registers every definition as an MCP tool
	ModeTool RegistrationMode = "tool"
	// ModePrompt registers every definition as an MCP prompt
	ModePrompt RegistrationMode = "prompt"
	// ModeBoth registers every definition as both a tool and a prompt
	ModeBoth RegistrationMode = "both"
)

// DefaultRegistrationMode is used when no mode is configured
const DefaultRegistrationMode = ModeTool

// RegistrationModes lists all valid modes
var RegistrationModes = []RegistrationMode{ModeTool, ModePrompt, ModeBoth}

// ParseRegistrationMode parses a mode string. An empty string yields the default mode.
func ParseRegistrationMode(value string) (RegistrationMode, error) {
	if value == "" {
		return DefaultRegistrationMode, nil
	}
	mode := RegistrationMode(value)
	if !mode.Valid() {
		return "", fmt.Errorf("invalid --register-as value: %s. Must be %s", value, modeList())
	}
	return mode, nil
}

// Valid reports whether m is a known mode
func (m RegistrationMode) Valid() bool {
	for _, known := range RegistrationModes {
		if m == known {
			return true
		}
	}
	return false
}

// RegistersTools reports whether the mode exposes the tool surface
func (m RegistrationMode) RegistersTools() bool {
	return m == ModeTool || m == ModeBoth
}

// RegistersPrompts reports whether the mode exposes the prompt surface
func (m RegistrationMode) RegistersPrompts() bool {
	return m == ModePrompt || m == ModeBoth
}

func modeList() string {
	names := make([]string, len(RegistrationModes))
	for i, m := range RegistrationModes {
		names[i] = string(m)
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
