// Package tqq implements the tauq query preprocessor: a text-to-text
// pass that resolves !set/!env/!import/!json/!read/!emit/!pipe/!run
// directives and ${VAR} substitution, producing plain TQN text that
// package tqn can parse. Directive dispatch is table-driven: each
// directive is looked up by name in a [Registry].
package tqq

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"go.tauq.dev/tauq/tqerr"
)

// defaultMaxImportDepth bounds !import recursion, guarding against
// accidental or malicious cycles that evade the explicit cycle check
// (e.g. a long chain of distinct files).
const defaultMaxImportDepth = 100

// Engine runs the preprocessor over tqq source text.
type Engine struct {
	registry *Registry
	safe     bool
	maxDepth int
	trace    func(event string, fields map[string]any)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSafeMode disallows directives that touch the filesystem or spawn
// subprocesses (!emit, !pipe, !run, !read, !import, !json, !env), leaving
// only !set and variable substitution available. Use this to preprocess
// untrusted tqq text.
func WithSafeMode(safe bool) Option {
	return func(e *Engine) { e.safe = safe }
}

// WithMaxImportDepth overrides the default import-recursion limit.
func WithMaxImportDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// WithRegistry overrides the directive registry, e.g. to disable
// individual directives beyond what safe mode covers.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTrace installs a callback invoked once per directive executed,
// for building a directive execution trace (package log's Publisher is
// a natural sink: `tqq.WithTrace(func(event string, fields map[string]any) { ... })`).
func WithTrace(fn func(event string, fields map[string]any)) Option {
	return func(e *Engine) { e.trace = fn }
}

// NewEngine builds an Engine with the default directive registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{registry: DefaultRegistry(), maxDepth: defaultMaxImportDepth}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Process resolves every directive in text, returning plain TQN. path
// identifies the document for relative !import/!json/!read resolution
// and for error locations; pass "" for in-memory text with no directory
// context (relative imports will then resolve against the process's
// working directory).
func (e *Engine) Process(ctx context.Context, text, path string) (string, error) {
	return e.processAt(ctx, text, path, newScope(nil), 0, nil)
}

func (e *Engine) processAt(ctx context.Context, text, path string, sc *scope, depth int, chain []string) (string, error) {
	if depth > e.maxDepth {
		return "", tqerr.New(tqerr.KindResource, 0, 0, "import depth exceeds %d", e.maxDepth)
	}

	lines := strings.Split(text, "\n")

	var out []string

	for idx := 0; idx < len(lines); idx++ {
		raw := lines[idx]
		lineNo := idx + 1

		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "!") {
			word, rest := splitDirectiveWord(trimmed)

			if d, ok := e.registry.Lookup(word); ok {
				if e.safe && isUnsafeDirective(word) {
					return "", tqerr.New(tqerr.KindDirective, lineNo, 1,
						"!%s is not permitted in safe mode", word)
				}

				rc := &runCtx{
					engine:    e,
					scope:     sc,
					path:      path,
					depth:     depth,
					chain:     chain,
					remainder: lines[idx+1:],
				}

				res, err := d.Run(ctx, rc, rest)
				if err != nil {
					return "", locate(err, path, lineNo)
				}

				e.emitTrace(word, path, lineNo)
				out = append(out, res.Lines...)
				idx += res.Consumed

				if res.Halt {
					return strings.Join(out, "\n"), nil
				}

				continue
			}
		}

		sub, err := substitute(raw, sc)
		if err != nil {
			return "", locate(err, path, lineNo)
		}

		out = append(out, sub)
	}

	return strings.Join(out, "\n"), nil
}

func (e *Engine) emitTrace(directive, path string, line int) {
	if e.trace == nil {
		return
	}

	e.trace("directive", map[string]any{"name": directive, "file": path, "line": line})
}

func isUnsafeDirective(name string) bool {
	switch name {
	case "env", "import", "json", "read", "emit", "pipe", "run":
		return true
	default:
		return false
	}
}

func splitDirectiveWord(trimmed string) (word, rest string) {
	body := strings.TrimPrefix(trimmed, "!")

	i := strings.IndexAny(body, " \t")
	if i < 0 {
		return body, ""
	}

	return body[:i], strings.TrimSpace(body[i+1:])
}

func locate(err error, path string, line int) error {
	if te, ok := err.(*tqerr.Error); ok {
		te.Line = line
		if te.File == "" {
			te.File = path
		}

		return te
	}

	return err
}

// varRe matches either the braced form "${NAME}" (group 1) or the
// bareword form "$NAME" (group 2), the latter taking the longest matching
// identifier starting right after the "$".
var varRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substitute replaces every $NAME or ${NAME} in line with its current
// value from sc. A name with no value in scope is replaced with the
// empty string rather than erroring.
func substitute(line string, sc *scope) (string, error) {
	result := varRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := varRe.FindStringSubmatch(m)

		name := sub[1]
		if name == "" {
			name = sub[2]
		}

		v, _ := sc.get(name)

		return v
	})

	return result, nil
}

// runCtx bundles the per-call state a Directive needs, avoiding a long,
// shifting parameter list as more directives are added.
type runCtx struct {
	engine    *Engine
	scope     *scope
	path      string
	depth     int
	chain     []string
	remainder []string
}

func (rc *runCtx) resolvePath(p string) string {
	if filepath.IsAbs(p) || rc.path == "" {
		return p
	}

	return filepath.Join(filepath.Dir(rc.path), p)
}
