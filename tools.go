package advisor

import (
	"context"
	"fmt"
)

// ToolSpec is the declarative tool schema exposed to the model.
// The full set is defined once at startup and is read-only afterwards.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Required    []string       `json:"required,omitempty"`
}

// Schema assembles the JSON-Schema object form of the parameters.
func (s ToolSpec) Schema() map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": s.Parameters,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

// FunctionCall is one tool invocation requested by the model's planning
// response.
type FunctionCall struct {
	CallID string
	Name   string
	Args   map[string]any
}

// ToolResult is the normalized tool execution result. Exactly one of Data or
// Err is populated, never both.
type ToolResult struct {
	Data   any
	Err    string
	Status int
}

// IsError reports whether the result carries an error instead of data.
func (r ToolResult) IsError() bool { return r.Err != "" }

// DataResult wraps successful tool output.
func DataResult(v any) ToolResult {
	return ToolResult{Data: v}
}

// ErrorResult wraps a recoverable tool failure with an HTTP-style status.
func ErrorResult(msg string, status int) ToolResult {
	return ToolResult{Err: msg, Status: status}
}

// NotFoundResult is the shaped reply for an unrecognized tool name. The model
// asking for an unknown tool is a normal, recoverable condition.
func NotFoundResult(name string) ToolResult {
	return ToolResult{Err: fmt.Sprintf("Tool %s not found.", name)}
}

// Tool is an executable tool.
//
// Execute must absorb upstream failures into an error-bearing ToolResult; a
// non-nil error return is reserved for unexpected executor faults and is
// converted to an error result by the orchestrator, never propagated past the
// dispatch boundary.
type Tool interface {
	Spec() ToolSpec
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// Registry is a fixed catalog of named tools. It is built once at startup and
// safe for concurrent readers; there is no way to mutate it afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. A duplicate name keeps
// the last registration.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if _, seen := r.tools[name]; !seen {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
	return r
}

// Lookup returns the implementation bound to name. A nil registry holds no
// tools; every lookup misses.
func (r *Registry) Lookup(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns the tool declarations in registration order.
func (r *Registry) Specs() []ToolSpec {
	if r == nil {
		return nil
	}
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}
