package tqq

import (
	"context"
)

// Result is what running one directive contributes back to the output
// document.
type Result struct {
	// Lines replace the directive line in the output, already fully
	// resolved (no further substitution is applied to them).
	Lines []string

	// Halt, when true, tells the engine to stop processing the rest of
	// the current file: everything after this directive has already been
	// consumed (this is how !pipe claims "the remainder of this file" as
	// its subprocess's stdin without also claiming an importer's
	// remaining lines).
	Halt bool

	// Consumed is the number of lines after the directive line that the
	// directive itself already read and resolved (e.g. !run's "{ ... }"
	// block body). The engine skips these when continuing to the next
	// unconsumed line.
	Consumed int
}

// Directive is one named tqq preprocessor directive. Implementations are
// registered into a Registry and looked up by name at "!name" lines.
type Directive interface {
	Name() string
	Run(ctx context.Context, rc *runCtx, args string) (Result, error)
}

// Registry maps directive names to their handlers.
type Registry struct {
	handlers map[string]Directive
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Directive)}
}

// Register adds d, keyed by d.Name(). A later Register with the same
// name replaces the previous handler, so callers can override individual
// directives (e.g. disabling !run) without rebuilding the whole registry.
func (r *Registry) Register(d Directive) {
	r.handlers[d.Name()] = d
}

// Lookup returns the handler registered for name.
func (r *Registry) Lookup(name string) (Directive, bool) {
	d, ok := r.handlers[name]

	return d, ok
}

// DefaultRegistry returns a Registry with every built-in directive
// registered: set, env, import, json, read, emit, pipe, run.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(setDirective{})
	r.Register(envDirective{})
	r.Register(importDirective{})
	r.Register(jsonDirective{})
	r.Register(readDirective{})
	r.Register(emitDirective{})
	r.Register(pipeDirective{})
	r.Register(runDirective{})

	return r
}
