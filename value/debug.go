package value

import (
	"github.com/k0kubun/pp/v3"
)

// debugPrinter renders Go-level struct internals for ad-hoc inspection
// during development; unlike [Dump], which is a stable rendering
// of the Value tree, this exists purely for print-debugging a parser or
// emitter bug and is not meant to be asserted on in tests.
var debugPrinter = pp.New()

func init() {
	debugPrinter.SetColoringEnabled(false)
}

// DebugString renders v's internal representation (including unexported
// field layout) via pp, for use in ad-hoc trace logging.
func DebugString(v Value) string {
	return debugPrinter.Sprint(v)
}
