// Package tauq implements the tauq text serialization format: TQN, a
// JSON-equivalent, schema-driven, token-minimal document format, and TQQ,
// a small text preprocessor that expands to TQN.
//
// # Packages
//
//   - [go.tauq.dev/tauq/value] is the in-memory JSON-equivalent value
//     representation every other package builds on.
//   - [go.tauq.dev/tauq/lex] scans TQN/TQQ source into tokens.
//   - [go.tauq.dev/tauq/schema] holds named field-list schemas used to
//     compress repeated row shapes.
//   - [go.tauq.dev/tauq/tqn] parses TQN text to a [value.Value], either
//     all at once ([tqn.Parse]) or as a pull-based record stream
//     ([tqn.NewRecordStream]).
//   - [go.tauq.dev/tauq/emit] renders a [value.Value] back to TQN text,
//     pretty or minified.
//   - [go.tauq.dev/tauq/tqq] preprocesses TQQ text (!set, !env, !import,
//     !json, !read, !emit, !pipe, !run, ${VAR} substitution) into TQN.
//
// This package wires those together into the six public operations of
// the language-neutral contract: [ParseToValue], [ParseToJSONText],
// [StreamRecords], [Emit], [ExecQuery], and [Minify]. Every operation is
// total: it either succeeds or returns a [go.tauq.dev/tauq/tqerr.Error]
// carrying a kind, message, and source position; there is no partial or
// best-effort result.
package tauq
