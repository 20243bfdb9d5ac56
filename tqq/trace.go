package tqq

import "log/slog"

// SlogTrace adapts an [*slog.Logger] into a trace callback for
// [WithTrace], logging one debug-level record per directive executed.
// Pairing it with a [go.tauq.dev/tauq/log.Publisher]-backed handler lets
// a caller both log directive execution to stderr and subscribe a test
// or audit consumer to the same stream.
func SlogTrace(logger *slog.Logger) func(event string, fields map[string]any) {
	return func(event string, fields map[string]any) {
		args := make([]any, 0, len(fields)*2)
		for k, v := range fields {
			args = append(args, k, v)
		}

		logger.Debug(event, args...)
	}
}
