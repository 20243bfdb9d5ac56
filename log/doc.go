// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports two output formats ([FormatJSON] and [FormatLogfmt]) and four
// severity levels ([LevelDebug] through [LevelError]). Use [NewHandler] to
// build a handler directly, or [NewHandlerFromStrings] when the level and
// format arrive as strings (e.g. from an environment variable).
//
//	handler, err := log.NewHandlerFromStrings(os.Stderr, "debug", "json")
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans out log output to multiple subscribers. Tauq's
// preprocessor (package tqq) uses this to let a caller both log directive
// execution to stderr and capture the same trace in memory for tests:
//
//	pub := log.NewPublisher()
//	handler := log.NewHandler(pub, log.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // inspect or replay the trace entry
//	    }
//	}()
//
// Combine it with [io.MultiWriter] to write to multiple locations:
//
//	pub := log.NewPublisher()
//	w := io.MultiWriter(os.Stderr, pub)
//	handler := log.NewHandler(w, log.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
package log
