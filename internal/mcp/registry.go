package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ErrAlreadyRegistered is returned when a name is registered twice on the same surface
var ErrAlreadyRegistered = errors.New("already registered")

// Surface is the kind of MCP unit a registration lives on
type Surface string

const (
	// SurfaceTool is the MCP tools surface
	SurfaceTool Surface = "tool"
	// SurfacePrompt is the MCP prompts surface
	SurfacePrompt Surface = "prompt"
)

// Unit describes a registered unit
type Unit struct {
	Name    string
	Surface Surface
	Active  bool
}

// Registry implements Registrar on top of an mcp-go server.
//
// Disabled units stay registered in the Registry but are removed from the
// MCP server, so clients do not see them in list results.
type Registry struct {
	server *server.MCPServer

	mu    sync.Mutex
	units map[unitKey]*RegisteredUnit
}

type unitKey struct {
	surface Surface
	name    string
}

// RegisteredUnit is the Handle returned by Registry
type RegisteredUnit struct {
	registry *Registry
	key      unitKey
	active   bool
	add      func()
	remove   func()
}

// NewRegistry creates a registry backed by the given MCP server
func NewRegistry(s *server.MCPServer) *Registry {
	return &Registry{
		server: s,
		units:  make(map[unitKey]*RegisteredUnit),
	}
}

// RegisterTool adds a tool to the MCP server
func (r *Registry) RegisterTool(name string, descriptor ToolDescriptor, handler server.ToolHandlerFunc) (Handle, error) {
	opts := []mcp.ToolOption{
		mcp.WithDescription(descriptor.Description),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	if descriptor.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(descriptor.Title))
	}
	if len(descriptor.OutputSchema) > 0 {
		opts = append(opts, mcp.WithRawOutputSchema(descriptor.OutputSchema))
	}
	opts = append(opts, descriptor.Parameters...)

	tool := mcp.NewTool(name, opts...)

	return r.register(unitKey{surface: SurfaceTool, name: name},
		func() { r.server.AddTool(tool, handler) },
		func() { r.server.DeleteTools(name) },
	)
}

// RegisterPrompt adds a prompt to the MCP server
func (r *Registry) RegisterPrompt(name string, descriptor PromptDescriptor, handler server.PromptHandlerFunc) (Handle, error) {
	prompt := mcp.NewPrompt(name, mcp.WithPromptDescription(descriptor.Description))

	return r.register(unitKey{surface: SurfacePrompt, name: name},
		func() { r.server.AddPrompt(prompt, handler) },
		func() { r.server.DeletePrompts(name) },
	)
}

func (r *Registry) register(key unitKey, add, remove func()) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.units[key]; exists {
		return nil, fmt.Errorf("%s %q %w", key.surface, key.name, ErrAlreadyRegistered)
	}

	unit := &RegisteredUnit{
		registry: r,
		key:      key,
		active:   true,
		add:      add,
		remove:   remove,
	}
	r.units[key] = unit
	add()

	return unit, nil
}

// Units lists all registered units, active or not, ordered by surface and name
func (r *Registry) Units() []Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	units := make([]Unit, 0, len(r.units))
	for key, u := range r.units {
		units = append(units, Unit{Name: key.name, Surface: key.surface, Active: u.active})
	}
	slices.SortFunc(units, func(a, b Unit) int {
		if c := strings.Compare(string(a.Surface), string(b.Surface)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return units
}

// Disable removes the unit from the MCP server, keeping it registered
func (u *RegisteredUnit) Disable() {
	u.registry.setActive(u, false)
}

// Enable adds a disabled unit back to the MCP server
func (u *RegisteredUnit) Enable() {
	u.registry.setActive(u, true)
}

// Active reports whether the unit is visible to clients
func (u *RegisteredUnit) Active() bool {
	u.registry.mu.Lock()
	defer u.registry.mu.Unlock()
	return u.active
}

func (r *Registry) setActive(u *RegisteredUnit, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.active == active {
		return
	}
	u.active = active
	if active {
		u.add()
	} else {
		u.remove()
	}
	slog.Debug("Changed unit state", "name", u.key.name, "surface", u.key.surface, "active", active)
}
