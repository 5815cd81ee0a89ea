package unfmt

import (
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/anacrolix/log"
	"github.com/pkg/errors"

	"github.com/anacrolix/unfmt/lookahead"
)

// ErrInvalidInput reports that a value was demanded unconditionally but the input didn't
// match.
var ErrInvalidInput = errors.New("invalid input")

// Require converts a capability's no-match result into ErrInvalidInput, for callers that need
// a value unconditionally.
func Require[T any](val T, ok bool, err error) (T, error) {
	if err == nil && !ok {
		err = ErrInvalidInput
	}
	return val, err
}

// Arg names a destination for format arguments using named positions.
type Arg struct {
	Name  string
	Value any
}

// Format is a compiled format string. It's immutable once compiled and can drive any number of
// scan operations against different inputs.
type Format struct {
	pieces []Piece
	src    string
	// Receives debug-level tracing of piece matching. Defaults to log.Default.
	Logger log.Logger
}

// Compile parses a format string once, up front. Grammar violations are reported here, before
// any scanning can occur.
func Compile(format string) (*Format, error) {
	pieces, err := Parse(format)
	if err != nil {
		return nil, err
	}
	return &Format{pieces: pieces, src: format, Logger: log.Default}, nil
}

// WithLogger returns a copy of the format that traces to l.
func (me *Format) WithLogger(l log.Logger) *Format {
	cp := *me
	cp.Logger = l
	return &cp
}

// Pieces exposes the parsed piece sequence. Callers must not modify it.
func (me *Format) Pieces() []Piece {
	return me.pieces
}

func (me *Format) String() string {
	return me.src
}

// Formats compiled by the package-level scan functions, keyed by format string identity. The
// cache is shared; scanning itself is single-threaded per operation.
var (
	formatCacheMu sync.Mutex
	formatCache   = make(map[string]*Format)
)

func compileCached(format string) (*Format, error) {
	formatCacheMu.Lock()
	defer formatCacheMu.Unlock()
	if f, ok := formatCache[format]; ok {
		return f, nil
	}
	f, err := Compile(format)
	if err != nil {
		return nil, err
	}
	formatCache[format] = f
	return f, nil
}

// Scan applies the format to src. Destinations are non-nil pointers, given in argument order;
// named format arguments take theirs from Arg destinations instead. Returns how many
// destinations were bound. On a mismatch, scanning stops at the first unmatched piece with the
// input positioned at its first unconsumed byte; nothing already consumed is rolled back.
func (me *Format) Scan(src lookahead.Source, dsts ...any) (n int, err error) {
	return me.ScanBuffer(lookahead.NewBuffer(src), dsts...)
}

// ScanBuffer is Scan against an existing buffer, for callers interleaving their own reads.
func (me *Format) ScanBuffer(buf *lookahead.Buffer, dsts ...any) (n int, err error) {
	var positional []any
	var named map[string]any
	for _, d := range dsts {
		if a, isNamed := d.(Arg); isNamed {
			if _, dup := named[a.Name]; dup {
				return 0, fmt.Errorf("duplicate argument named %q", a.Name)
			}
			if named == nil {
				named = make(map[string]any)
			}
			named[a.Name] = a.Value
			continue
		}
		positional = append(positional, d)
	}
	next := 0
	argIndex := 0
	for _, piece := range me.pieces {
		switch p := piece.(type) {
		case Literal:
			if err = matchLiteral(buf, string(p)); err != nil {
				return
			}
		case Whitespace:
			// Any amount of input whitespace, including none, so exhaustion here is fine.
			if _, werr := buf.ReadPadByteIf(isPadByte); werr != nil && !stderrors.Is(werr, io.EOF) {
				return n, werr
			}
		case Argument:
			dst, derr := resolveDst(p.Position, positional, named, &next)
			if derr != nil {
				return n, derr
			}
			s := NewScanner(buf, p.Spec)
			var ok bool
			if dst == nil {
				ok, err = scanDiscard(s, p.Spec.Type)
			} else {
				ok, err = scanValue(s, p.Spec.Type, dst)
			}
			if err != nil {
				return n, errors.Wrapf(err, "argument %d", argIndex)
			}
			if !ok {
				me.Logger.Levelf(log.Debug, "format %q: argument %d didn't match", me.src, argIndex)
				return n, errors.Wrapf(ErrInvalidInput, "argument %d", argIndex)
			}
			if dst != nil {
				n++
			}
			argIndex++
		}
	}
	return
}

func matchLiteral(buf *lookahead.Buffer, lit string) error {
	b, err := buf.FillRequest(len(lit))
	if err != nil {
		return errors.Wrapf(err, "matching literal %q", lit)
	}
	if len(b) < len(lit) || string(b[:len(lit)]) != lit {
		return errors.Wrapf(ErrInvalidInput, "expected literal %q", lit)
	}
	buf.Consume(len(lit))
	return nil
}

func resolveDst(pos Position, positional []any, named map[string]any, next *int) (any, error) {
	switch pos.Kind {
	case PositionSuppressed:
		return nil, nil
	case PositionNext:
		if *next >= len(positional) {
			return nil, fmt.Errorf("not enough destinations: %d provided", len(positional))
		}
		d := positional[*next]
		*next++
		return d, nil
	case PositionIndexed:
		if int(pos.Index) >= len(positional) {
			return nil, fmt.Errorf("no destination at index %d", pos.Index)
		}
		return positional[pos.Index], nil
	case PositionNamed:
		d, ok := named[pos.Name]
		if !ok {
			return nil, fmt.Errorf("no destination named %q", pos.Name)
		}
		return d, nil
	}
	panic(pos.Kind)
}

// scanValue extracts one value into dst, dispatching on the spec's type tag and the
// destination's type. Caller-defined types take priority via Scannable.
func scanValue(s *Scanner, tag string, dst any) (ok bool, err error) {
	if sc, isScannable := dst.(Scannable); isScannable {
		return sc.ScanValue(s)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, fmt.Errorf("destination must be a non-nil pointer, got %T", dst)
	}
	return scanReflect(s, tag, rv.Elem())
}

func scanReflect(s *Scanner, tag string, rv reflect.Value) (ok bool, err error) {
	kind := rv.Kind()
	badDst := func() error {
		return fmt.Errorf("cannot scan %q into %s", tag, rv.Type())
	}
	switch tag {
	case "":
		switch {
		case kind == reflect.String:
			return scanStringReflect(s, rv)
		case isIntKind(kind) || isUintKind(kind):
			return scanIntegerReflect(s, rv, 10, 0, isDecimalDigit)
		case isFloatKind(kind):
			return scanFloatReflect(s, rv, false)
		default:
			return false, fmt.Errorf("unsupported destination type %s", rv.Type())
		}
	case "d", "i", "u":
		if !isIntKind(kind) && !isUintKind(kind) {
			return false, badDst()
		}
		return scanIntegerReflect(s, rv, 10, 0, isDecimalDigit)
	case "x", "X":
		if !isIntKind(kind) && !isUintKind(kind) {
			return false, badDst()
		}
		return scanIntegerReflect(s, rv, 16, 'x', isHexDigit)
	case "o":
		if !isIntKind(kind) && !isUintKind(kind) {
			return false, badDst()
		}
		return scanIntegerReflect(s, rv, 8, 'o', isOctalDigit)
	case "b":
		if !isIntKind(kind) && !isUintKind(kind) {
			return false, badDst()
		}
		return scanIntegerReflect(s, rv, 2, 'b', isBinaryDigit)
	case "c":
		if kind != reflect.Int32 {
			return false, badDst()
		}
		r, ok, err := ScanChar(s)
		if err != nil || !ok {
			return ok, err
		}
		rv.SetInt(int64(r))
		return true, nil
	case "s":
		if kind != reflect.String {
			return false, badDst()
		}
		return scanStringReflect(s, rv)
	case "f":
		if !isFloatKind(kind) {
			return false, badDst()
		}
		return scanFloatReflect(s, rv, false)
	case "e":
		if !isFloatKind(kind) {
			return false, badDst()
		}
		return scanFloatReflect(s, rv, true)
	default:
		return false, fmt.Errorf("unrecognized modifier %q", tag)
	}
}

// scanDiscard scans and throws away a value for suppressed arguments, choosing the capability
// by tag alone. The default is a string token.
func scanDiscard(s *Scanner, tag string) (ok bool, err error) {
	switch tag {
	case "", "s":
		_, ok, err = ScanString(s)
	case "d", "i":
		_, ok, err = ScanSigned[int64](s)
	case "u":
		_, ok, err = ScanUnsigned[uint64](s)
	case "x", "X":
		_, ok, err = ScanHex[uint64](s)
	case "o":
		_, ok, err = ScanOctal[uint64](s)
	case "b":
		_, ok, err = ScanBinary[uint64](s)
	case "c":
		_, ok, err = ScanChar(s)
	case "f":
		_, ok, err = ScanFloat[float64](s)
	case "e":
		_, ok, err = ScanExp[float64](s)
	default:
		err = fmt.Errorf("unrecognized modifier %q", tag)
	}
	return
}

func scanIntegerReflect(s *Scanner, rv reflect.Value, base int, prefix byte, isDigit func(byte) bool) (ok bool, err error) {
	if !s.flags.Has(FlagAlternate) {
		prefix = 0
	}
	var text string
	text, ok, err = scanIntegerText(s, isDigit, prefix)
	if err != nil || !ok {
		return
	}
	if isIntKind(rv.Kind()) {
		i, _, fits := parseScannedInt(text, base, prefix, true, rv.Type().Bits())
		if !fits {
			return false, nil
		}
		rv.SetInt(i)
	} else {
		_, u, fits := parseScannedInt(text, base, prefix, false, rv.Type().Bits())
		if !fits {
			return false, nil
		}
		rv.SetUint(u)
	}
	return true, nil
}

func scanStringReflect(s *Scanner, rv reflect.Value) (ok bool, err error) {
	var val string
	val, ok, err = ScanString(s)
	if err != nil || !ok {
		return
	}
	rv.SetString(val)
	return
}

func scanFloatReflect(s *Scanner, rv reflect.Value, requireExp bool) (ok bool, err error) {
	var text string
	text, ok, err = scanFloatText(s, requireExp)
	if err != nil || !ok {
		return
	}
	f, perr := parseFloatBits(text, rv.Type().Bits())
	if perr != nil {
		return false, nil
	}
	rv.SetFloat(f)
	return true, nil
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// Scan compiles format (cached by string identity) and applies it to src.
func Scan(src lookahead.Source, format string, dsts ...any) (int, error) {
	f, err := compileCached(format)
	if err != nil {
		return 0, err
	}
	return f.Scan(src, dsts...)
}

// Sscan scans values out of an input string.
func Sscan(input, format string, dsts ...any) (int, error) {
	return Scan(lookahead.NewStringSource(input), format, dsts...)
}

// Fscan scans values out of an io.Reader.
func Fscan(r io.Reader, format string, dsts ...any) (int, error) {
	return Scan(lookahead.NewReaderSource(r), format, dsts...)
}
