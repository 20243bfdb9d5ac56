package tqq

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"go.tauq.dev/tauq/emit"
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/value"
)

// setDirective implements "!set NAME value...", assigning a variable in
// the current scope after substituting any variables the value itself
// references.
type setDirective struct{}

func (setDirective) Name() string { return "set" }

func (setDirective) Run(_ context.Context, rc *runCtx, args string) (Result, error) {
	fields, err := shellquote.Split(args)
	if err != nil {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!set: %s", err)
	}

	if len(fields) == 0 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!set requires a variable name")
	}

	name := fields[0]

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), name))

	val, err := substitute(raw, rc.scope)
	if err != nil {
		return Result{}, err
	}

	rc.scope.set(name, val)

	return Result{}, nil
}

// envDirective implements "!env NAME", injecting the line "NAME value"
// read from the process environment (empty string if unset).
type envDirective struct{}

func (envDirective) Name() string { return "env" }

func (envDirective) Run(_ context.Context, _ *runCtx, args string) (Result, error) {
	fields, err := shellquote.Split(args)
	if err != nil || len(fields) != 1 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!env requires exactly one variable name")
	}

	name := fields[0]
	val := os.Getenv(name)

	return Result{Lines: []string{name + " " + strconv.Quote(val)}}, nil
}

// importDirective implements "!import path", splicing the recursively
// preprocessed contents of path in place. The imported file gets its own
// child scope (its !sets do not leak back to the importer) but shares
// the importer's variables for lookup.
type importDirective struct{}

func (importDirective) Name() string { return "import" }

func (importDirective) Run(ctx context.Context, rc *runCtx, args string) (Result, error) {
	fields, err := shellquote.Split(args)
	if err != nil || len(fields) != 1 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!import requires exactly one path")
	}

	resolved := rc.resolvePath(fields[0])

	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}

	if slices.Contains(rc.chain, abs) {
		return Result{}, tqerr.New(tqerr.KindResource, 0, 0, "import cycle detected: %s", abs)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "reading import %q", resolved)
	}

	child := newScope(rc.scope)
	newChain := append(slices.Clone(rc.chain), abs)

	out, err := rc.engine.processAt(ctx, string(data), resolved, child, rc.depth+1, newChain)
	if err != nil {
		return Result{}, err
	}

	return Result{Lines: strings.Split(out, "\n")}, nil
}

// jsonDirective implements "!json path", converting a JSON file to TQN
// text and splicing it in place.
type jsonDirective struct{}

func (jsonDirective) Name() string { return "json" }

func (jsonDirective) Run(_ context.Context, rc *runCtx, args string) (Result, error) {
	fields, err := shellquote.Split(args)
	if err != nil || len(fields) != 1 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!json requires exactly one path")
	}

	resolved := rc.resolvePath(fields[0])

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "reading json %q", resolved)
	}

	v, err := value.FromJSON(data)
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "parsing json %q", resolved)
	}

	text, err := emit.Emit(v)
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindSyntax, 0, 0, err, "converting json %q to tqn", resolved)
	}

	return Result{Lines: strings.Split(strings.TrimSuffix(text, "\n"), "\n")}, nil
}

// readDirective implements "!read path", splicing a file's raw contents
// in place verbatim, with no directive interpretation or substitution.
type readDirective struct{}

func (readDirective) Name() string { return "read" }

func (readDirective) Run(_ context.Context, rc *runCtx, args string) (Result, error) {
	fields, err := shellquote.Split(args)
	if err != nil || len(fields) != 1 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!read requires exactly one path")
	}

	resolved := rc.resolvePath(fields[0])

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "reading %q", resolved)
	}

	return Result{Lines: strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")}, nil
}

// emitDirective implements "!emit cmd args...": the command runs with no
// stdin, and its stdout is spliced in place verbatim, the same subprocess
// contract !run uses for its own command.
type emitDirective struct{}

func (emitDirective) Name() string { return "emit" }

func (emitDirective) Run(ctx context.Context, _ *runCtx, args string) (Result, error) {
	argv, err := shellquote.Split(args)
	if err != nil || len(argv) == 0 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!emit requires a command")
	}

	out, err := runCommand(ctx, argv, nil)
	if err != nil {
		return Result{}, err
	}

	return Result{Lines: strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")}, nil
}

// pipeDirective implements "!pipe cmd args...": everything remaining in
// the current file becomes the subprocess's stdin, and its stdout
// replaces that remainder. Processing of the current file stops here;
// an importer's own remaining lines are never touched, since rc.remainder
// is scoped to the file processAt is currently walking.
type pipeDirective struct{}

func (pipeDirective) Name() string { return "pipe" }

func (pipeDirective) Run(ctx context.Context, rc *runCtx, args string) (Result, error) {
	argv, err := shellquote.Split(args)
	if err != nil || len(argv) == 0 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!pipe requires a command")
	}

	stdin := strings.Join(rc.remainder, "\n")

	out, err := runCommand(ctx, argv, []byte(stdin))
	if err != nil {
		return Result{}, err
	}

	return Result{Lines: strings.Split(strings.TrimSuffix(string(out), "\n"), "\n"), Halt: true}, nil
}

// runDirective implements "!run interpreter { ... }": the block body
// between the opening "{" on the directive line and a following line
// consisting solely of "}" is written to a temp file, which is passed as
// the sole argument to interpreter. The temp file is removed on every
// exit path, including error returns.
type runDirective struct{}

func (runDirective) Name() string { return "run" }

func (runDirective) Run(ctx context.Context, rc *runCtx, args string) (Result, error) {
	trimmed := strings.TrimSpace(args)
	if !strings.HasSuffix(trimmed, "{") {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, `!run requires "interpreter {" opening a block`)
	}

	interpreter := strings.TrimSpace(strings.TrimSuffix(trimmed, "{"))
	if interpreter == "" {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!run requires an interpreter")
	}

	argv, err := shellquote.Split(interpreter)
	if err != nil || len(argv) == 0 {
		return Result{}, tqerr.New(tqerr.KindDirective, 0, 0, "!run: invalid interpreter %q", interpreter)
	}

	var body []string

	consumed := 0
	closed := false

	for _, line := range rc.remainder {
		consumed++

		if strings.TrimSpace(line) == "}" {
			closed = true

			break
		}

		body = append(body, line)
	}

	if !closed {
		return Result{}, tqerr.New(tqerr.KindSyntax, 0, 0, `!run block is missing its closing "}" line`)
	}

	tmp, err := os.CreateTemp("", "tauq-run-*")
	if err != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "!run: creating temp file")
	}

	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, writeErr := tmp.WriteString(strings.Join(body, "\n"))
	closeErr := tmp.Close()

	if writeErr != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, writeErr, "!run: writing temp file")
	}

	if closeErr != nil {
		return Result{}, tqerr.Wrap(tqerr.KindIO, 0, 0, closeErr, "!run: closing temp file")
	}

	out, err := runCommand(ctx, append(argv, tmpPath), nil)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Lines:    strings.Split(strings.TrimSuffix(string(out), "\n"), "\n"),
		Consumed: consumed,
	}, nil
}

// runCommand executes argv directly via os/exec, never through a shell:
// argv[0] is the binary, argv[1:] its arguments, exactly as shellquote
// tokenized them from the directive line.
func runCommand(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "command %q failed: %s",
			strings.Join(argv, " "), strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
