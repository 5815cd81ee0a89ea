package unfmt

import (
	"strings"
	"unicode"

	g "github.com/anacrolix/generics"

	"github.com/anacrolix/unfmt/lookahead"
)

// Scanner couples one argument's scan spec with the shared lookahead buffer for the duration
// of that argument's extraction. It's transient: create one per argument, discard it once the
// value (or failure) is produced. Not safe for concurrent or re-entrant use.
type Scanner struct {
	fill  g.Option[rune] // absent means pad on generic whitespace
	align Alignment
	flags Flags
	width g.Option[uint]

	buf *lookahead.Buffer
}

func NewScanner(buf *lookahead.Buffer, spec ScanSpec) *Scanner {
	return &Scanner{
		fill:  spec.Fill,
		align: spec.Align,
		flags: spec.Flags,
		width: spec.Width,
		buf:   buf,
	}
}

// Buffer returns the underlying lookahead buffer, for capabilities implemented outside this
// package.
func (me *Scanner) Buffer() *lookahead.Buffer {
	return me.buf
}

func (me *Scanner) Flags() Flags {
	return me.flags
}

func (me *Scanner) skipPad() (int, error) {
	if me.fill.Ok {
		return me.buf.ReadPadChar(me.fill.Value)
	}
	return me.buf.ReadPadByteIf(isPadByte)
}

func isPadByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// SkipPrepad consumes pad material before the value for left and center alignment, and is a
// no-op otherwise.
func (me *Scanner) SkipPrepad() (int, error) {
	switch me.align {
	case AlignLeft, AlignCenter:
		return me.skipPad()
	}
	return 0, nil
}

// SkipPostpad consumes pad material after the value for right and center alignment, and is a
// no-op otherwise.
func (me *Scanner) SkipPostpad() (int, error) {
	switch me.align {
	case AlignRight, AlignCenter:
		return me.skipPad()
	}
	return 0, nil
}

// TrimPostpad strips trailing pad material from an already-materialized value. It replaces
// SkipPostpad for values whose own terminator already consumed the padding.
func (me *Scanner) TrimPostpad(s string) string {
	switch me.align {
	case AlignRight, AlignCenter:
		if me.fill.Ok {
			return strings.TrimRight(s, string(me.fill.Value))
		}
		return strings.TrimRightFunc(s, unicode.IsSpace)
	}
	return s
}

// Scannable is the generic scanning contract for caller-defined value types.
type Scannable interface {
	// Extracts a value from the scanner into the receiver. ok is false when the input doesn't
	// match; the input is then left at the point scanning gave up.
	ScanValue(s *Scanner) (ok bool, err error)
}
