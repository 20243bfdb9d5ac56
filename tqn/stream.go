package tqn

import (
	"go.tauq.dev/tauq/tqerr"
	"go.tauq.dev/tauq/value"
)

// RecordStream is a pull-based iterator over the rows of a schema-backed
// array (or, by default, the document root once it resolves to an array
// of rows). It drives the exact same [Parser] state machine used by
// [Parse], diverting each produced row to the caller via [RecordStream.Next]
// instead of accumulating it into a tree, so memory use stays bounded by
// one row regardless of document size.
//
// There is no background goroutine: all work happens synchronously
// inside Next. A caller cancels simply by not calling Next again.
type RecordStream struct {
	p       *Parser
	path    string
	armed   *frame
	pending []value.Value
	done    bool
	err     error
}

// NewRecordStream opens a stream over the document root's rows region.
func NewRecordStream(text string) (*RecordStream, error) {
	return newRecordStreamAt(text, "")
}

// NewRecordStreamAt opens a stream over the array found at the named
// top-level field, e.g. "users" for a document shaped like
// `users [ !use User ... ]`. The field must resolve to a multi-line
// array; fields fully inline on one line are available from [Parse]
// instead, since they never stream incrementally.
func NewRecordStreamAt(text, field string) (*RecordStream, error) {
	return newRecordStreamAt(text, field)
}

func newRecordStreamAt(text, path string) (*RecordStream, error) {
	p, err := NewParser(text)
	if err != nil {
		return nil, err
	}

	rs := &RecordStream{p: p, path: path}
	rs.tryArm()

	return rs, nil
}

func (rs *RecordStream) tryArm() {
	if rs.armed != nil {
		return
	}

	if rs.path == "" {
		root := rs.p.stack[0]
		root.onRow = rs.collect
		rs.armed = root

		return
	}

	for _, f := range rs.p.stack {
		if f.attach.kind == attachObjectKey && f.attach.key == rs.path {
			f.onRow = rs.collect
			rs.armed = f

			return
		}
	}
}

func (rs *RecordStream) collect(v value.Value) {
	rs.pending = append(rs.pending, v)
}

// Next returns the next row, or ok=false at end of stream (err is nil on
// clean end, non-nil if the document was malformed).
func (rs *RecordStream) Next() (row value.Value, ok bool, err error) {
	if rs.done {
		return value.Value{}, false, rs.err
	}

	for {
		if len(rs.pending) > 0 {
			v := rs.pending[0]
			rs.pending = rs.pending[1:]

			return v, true, nil
		}

		ll, ok, err := rs.p.lines.next()
		if err != nil {
			rs.done, rs.err = true, err

			return value.Value{}, false, err
		}

		if !ok {
			rs.done = true

			if len(rs.p.stack) != 1 {
				top := rs.p.stack[len(rs.p.stack)-1]
				rs.err = tqerr.New(tqerr.KindSyntax, top.openLine, top.openCol, "unterminated bracket opened here")

				return value.Value{}, false, rs.err
			}

			return value.Value{}, false, nil
		}

		if err := rs.p.step(ll); err != nil {
			rs.done, rs.err = true, err

			return value.Value{}, false, err
		}

		rs.tryArm()
	}
}
