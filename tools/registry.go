package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// ToolPlugin defines the interface for plugins that provide tools
type ToolPlugin interface {
	RegisterTools(gk *genkit.Genkit, registry *Registry)
}

// Executor runs a tool against the raw action input produced by the model
type Executor func(ctx context.Context, input string) Result

// Entry is a registered tool together with the metadata the agents need
type Entry struct {
	Name         string
	Description  string
	ReturnDirect bool
	Tool         ai.Tool
	Execute      Executor
}

// Option customizes a registration
type Option func(*Entry)

// ReturnDirect marks a tool whose output ends the reasoning run as the final answer
func ReturnDirect() Option {
	return func(e *Entry) {
		e.ReturnDirect = true
	}
}

// Registry manages the registration of AI tools, preserving registration order
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]*Entry, 0),
		byName:  make(map[string]*Entry),
	}
}

// Register adds a tool to the registry with its executor.
// Registering a name twice replaces the earlier executor.
func (r *Registry) Register(tool ai.Tool, executor Executor, opts ...Option) {
	def := tool.Definition()
	e := &Entry{
		Name:        def.Name,
		Description: def.Description,
		Tool:        tool,
		Execute:     executor,
	}
	for _, opt := range opts {
		opt(e)
	}

	if existing, ok := r.byName[e.Name]; ok {
		*existing = *e
		return
	}
	r.entries = append(r.entries, e)
	r.byName[e.Name] = e
}

// GetTools returns all registered genkit tools
func (r *Registry) GetTools() []ai.Tool {
	out := make([]ai.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Tool)
	}
	return out
}

// Entries returns the registered entries in registration order
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Lookup finds a tool by name
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names returns the tool names in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}
	return names
}

// Describe renders one "name: description" line per tool
func (r *Registry) Describe() string {
	lines := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Name, e.Description))
	}
	return strings.Join(lines, "\n")
}

// ExecuteTool runs a registered tool by name
func (r *Registry) ExecuteTool(ctx context.Context, name string, input string) (Result, error) {
	e, ok := r.byName[name]
	if !ok {
		return Result{}, fmt.Errorf("tool not found: %s", name)
	}
	return e.Execute(ctx, input), nil
}
