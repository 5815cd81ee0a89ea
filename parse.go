package unfmt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	g "github.com/anacrolix/generics"
)

// ParseError describes a format string grammar violation. A malformed format is rejected in
// full before any scanning occurs.
type ParseError struct {
	Offset int // byte offset into the format string
	What   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unfmt: bad format (offset %d): %s", e.Offset, e.What)
}

func parseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{offset, fmt.Sprintf(format, args...)}
}

// Parse translates a format string into its ordered piece sequence. It's pure: the result for
// a given format never changes, and can be reused across any number of scan operations.
func Parse(format string) ([]Piece, error) {
	p := formatParser{s: format}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.pieces, nil
}

type formatParser struct {
	s      string
	pos    int
	pieces []Piece
}

func (me *formatParser) run() error {
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			me.pieces = append(me.pieces, Literal(lit.String()))
			lit.Reset()
		}
	}
	for me.pos < len(me.s) {
		r, size := utf8.DecodeRuneInString(me.s[me.pos:])
		switch {
		case r == '\\':
			// The escaped codepoint starts a fresh literal run.
			flush()
			me.pos += size
			if me.pos == len(me.s) {
				return parseErrorf(me.pos, "trailing escape at end of format")
			}
			esc, escSize := utf8.DecodeRuneInString(me.s[me.pos:])
			lit.WriteRune(esc)
			me.pos += escSize
		case r == '{':
			flush()
			me.pos += size
			arg, err := me.parseArgument()
			if err != nil {
				return err
			}
			me.pieces = append(me.pieces, arg)
		case r == '}':
			return parseErrorf(me.pos, "unmatched '}'")
		case r < utf8.RuneSelf && isFormatSpace(byte(r)):
			flush()
			for me.pos < len(me.s) && isFormatSpace(me.s[me.pos]) {
				me.pos++
			}
			me.pieces = append(me.pieces, Whitespace{})
		default:
			lit.WriteRune(r)
			me.pos += size
		}
	}
	flush()
	return nil
}

// Positioned just past '{'. Consumes through the matching '}'.
func (me *formatParser) parseArgument() (arg Argument, err error) {
	me.skipSpace()
	arg.Position, err = me.parsePosition()
	if err != nil {
		return
	}
	me.skipSpace()
	hadSpec := me.eat(':')
	if hadSpec {
		err = me.parseScanSpec(&arg.Spec)
		if err != nil {
			return
		}
	}
	me.skipSpace()
	if me.pos == len(me.s) {
		err = parseErrorf(me.pos, "premature end of argument")
		return
	}
	if me.s[me.pos] != '}' {
		r, _ := utf8.DecodeRuneInString(me.s[me.pos:])
		if hadSpec {
			err = parseErrorf(me.pos, "unexpected %q after scan spec", r)
		} else {
			err = parseErrorf(me.pos, "unexpected %q in argument", r)
		}
		return
	}
	me.pos++
	return
}

func (me *formatParser) parsePosition() (pos Position, err error) {
	if me.eat('*') {
		pos.Kind = PositionSuppressed
		return
	}
	if digits := me.takeDigits(); digits != "" {
		v, perr := strconv.ParseUint(digits, 10, strconv.IntSize)
		if perr != nil {
			err = parseErrorf(me.pos, "argument index overflow")
			return
		}
		pos.Kind = PositionIndexed
		pos.Index = uint(v)
		return
	}
	if name := me.takeIdent(); name != "" {
		pos.Kind = PositionNamed
		pos.Name = name
		return
	}
	// Anything else is left for the caller; the position is implicitly sequential.
	return
}

// Positioned just past ':'. Stops at whatever it can't consume; the caller requires '}' next.
func (me *formatParser) parseScanSpec(spec *ScanSpec) error {
	me.skipSpace()
	// A fill codepoint is recognized only when immediately followed by an alignment symbol.
	// Failing both prefix forms, the text is reinterpreted from its left-trimmed position.
	if r1, size1 := me.peekRune(); size1 > 0 && r1 != '}' {
		r2, size2 := utf8.DecodeRuneInString(me.s[me.pos+size1:])
		if a, ok := alignmentFor(r2); ok && size2 > 0 {
			spec.Fill = g.Some(r1)
			spec.Align = a
			me.pos += size1 + size2
		} else if a, ok := alignmentFor(r1); ok {
			spec.Align = a
			me.pos += size1
		}
	}
	me.skipSpace()
	if me.eat('+') {
		spec.Flags |= FlagSignPlus
	} else if me.eat('-') {
		spec.Flags |= FlagSignMinus
	}
	me.skipSpace()
	if me.eat('#') {
		spec.Flags |= FlagAlternate
	}
	me.skipSpace()
	if start := me.pos; me.takeDigits() != "" {
		w, err := strconv.ParseUint(me.s[start:me.pos], 10, strconv.IntSize)
		if err != nil {
			return parseErrorf(start, "width overflow")
		}
		spec.Width = g.Some(uint(w))
	}
	me.skipSpace()
	spec.Type = me.takeIdent()
	return nil
}

func (me *formatParser) peekRune() (rune, int) {
	return utf8.DecodeRuneInString(me.s[me.pos:])
}

func (me *formatParser) eat(b byte) bool {
	if me.pos < len(me.s) && me.s[me.pos] == b {
		me.pos++
		return true
	}
	return false
}

func (me *formatParser) skipSpace() {
	for me.pos < len(me.s) && isFormatSpace(me.s[me.pos]) {
		me.pos++
	}
}

func (me *formatParser) takeDigits() string {
	start := me.pos
	for me.pos < len(me.s) && me.s[me.pos] >= '0' && me.s[me.pos] <= '9' {
		me.pos++
	}
	return me.s[start:me.pos]
}

func (me *formatParser) takeIdent() string {
	start := me.pos
	for me.pos < len(me.s) {
		r, size := me.peekRune()
		if me.pos == start {
			if !isIdentStart(r) {
				break
			}
		} else if !isIdentContinue(r) {
			break
		}
		me.pos += size
	}
	return me.s[start:me.pos]
}

func alignmentFor(r rune) (Alignment, bool) {
	switch r {
	case '<':
		return AlignLeft, true
	case '^':
		return AlignCenter, true
	case '>':
		return AlignRight, true
	}
	return AlignUnspecified, false
}

func isFormatSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
