package tauq

import (
	"context"

	"go.tauq.dev/tauq/emit"
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/tqn"
	"go.tauq.dev/tauq/tqq"
	"go.tauq.dev/tauq/value"
)

// ParseToValue parses TQN text into its JSON-equivalent value tree.
func ParseToValue(text string) (value.Value, error) {
	return tqn.Parse(text)
}

// ParseToJSONText parses TQN text and re-encodes it as JSON.
func ParseToJSONText(text string) ([]byte, error) {
	v, err := tqn.Parse(text)
	if err != nil {
		return nil, err
	}

	data, err := value.ToJSON(v)
	if err != nil {
		return nil, tqerr.Wrap(tqerr.KindIO, 0, 0, err, "encoding value as json")
	}

	return data, nil
}

// StreamRecords returns a pull-based iterator over the rows of the array
// at path within text, or the document root rows when path is "". The
// caller drives progress entirely by calling Next; there is no
// background goroutine, so dropping the stream without exhausting it is
// always safe.
func StreamRecords(text, path string) (*tqn.RecordStream, error) {
	if path == "" {
		return tqn.NewRecordStream(text)
	}

	return tqn.NewRecordStreamAt(text, path)
}

// Mode selects pretty or minified rendering for Emit.
type Mode int

const (
	// Pretty renders one field/row per physical line.
	Pretty Mode = iota
	// Minified folds the document onto a single physical line, each
	// logical line separated by ';'.
	Minified
)

// Emit renders v as TQN text. Objects and arrays of uniform objects (all
// objects, same keys in the same order) render; a bare scalar or any
// other array at the document root is rejected with a syntax error.
func Emit(v value.Value, mode Mode) (string, error) {
	if mode == Minified {
		return emit.Emit(v, emit.WithMinify(true))
	}

	return emit.Emit(v)
}

// ExecQuery preprocesses TQQ text through the given engine options and
// parses the result. path identifies the source document for relative
// !import/!json/!read resolution and for error locations; pass "" for
// in-memory text with no directory context. safe, when true, disallows
// directives that touch the filesystem or spawn subprocesses.
func ExecQuery(ctx context.Context, text, path string, safe bool, opts ...tqq.Option) (value.Value, error) {
	engineOpts := append([]tqq.Option{tqq.WithSafeMode(safe)}, opts...)

	resolved, err := tqq.NewEngine(engineOpts...).Process(ctx, text, path)
	if err != nil {
		return value.Value{}, err
	}

	return tqn.Parse(resolved)
}

// Minify parses TQN text and re-renders it minified. Minify is
// idempotent: Minify(Minify(t)) and Minify(t) always produce identical
// text, since both go through the same parse-then-render canonicalization.
func Minify(text string) (string, error) {
	v, err := tqn.Parse(text)
	if err != nil {
		return "", err
	}

	return emit.Emit(v, emit.WithMinify(true))
}
