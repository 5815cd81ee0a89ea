package unfmt

import (
	"strconv"
	"strings"
	"unsafe"

	"github.com/anacrolix/missinggo/v2/panicif"
	"golang.org/x/exp/constraints"

	"github.com/anacrolix/unfmt/lookahead"
)

// States of the single-pass digit recognizer. Only expectMoreDigits accepts.
type digitState int

const (
	expectSignOrDigit digitState = iota // @ sign? digit+
	expectSign                          // @ sign digit+
	expectDigit                         // sign? @ digit+
	expectMoreDigits                    // sign? digit @ digit*
)

// scanDigitSpan runs the recognizer over the buffer without consuming anything, requesting one
// additional byte of lookahead per iteration so buffering stays bounded by the match length.
// Returns the byte length of the matched span, or ok false when the input doesn't match. A
// non-zero prefix byte permits the 0x-style radix marker after a single leading zero.
func scanDigitSpan(buf *lookahead.Buffer, mandatorySign bool, isDigit func(byte) bool, prefix byte) (n int, ok bool, err error) {
	state := expectSignOrDigit
	if mandatorySign {
		state = expectSign
	}
	i := 0
	zeroOnly := false // span's digits so far are exactly "0"
scan:
	for {
		b, ferr := buf.FillRequest(i + 1)
		if ferr != nil {
			err = ferr
			return
		}
		if len(b) <= i {
			break
		}
		for j, c := range b[i:] {
			switch {
			case (state == expectSignOrDigit || state == expectSign) && (c == '+' || c == '-'):
				state = expectDigit
			case (state == expectSignOrDigit || state == expectDigit || state == expectMoreDigits) && isDigit(c):
				zeroOnly = state != expectMoreDigits && c == '0'
				state = expectMoreDigits
			case prefix != 0 && state == expectMoreDigits && zeroOnly && c|0x20 == prefix:
				state = expectDigit
				prefix = 0
			default:
				i += j
				break scan
			}
		}
		i = len(b)
	}
	if state != expectMoreDigits {
		return 0, false, nil
	}
	return i, true, nil
}

// takeSpan materializes and consumes n already-buffered bytes.
func takeSpan(buf *lookahead.Buffer, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	b, err := buf.FillRequest(n)
	if err != nil {
		return "", err
	}
	panicif.LessThan(len(b), n)
	s := string(b[:n])
	buf.Consume(n)
	return s, nil
}

// scanIntegerText wraps the recognizer in the shared padding protocol and hands back the
// matched span as text. On accept the span is consumed; on reject nothing is, beyond padding
// already skipped.
func scanIntegerText(s *Scanner, isDigit func(byte) bool, prefix byte) (text string, ok bool, err error) {
	if _, err = s.SkipPrepad(); err != nil {
		return
	}
	var n int
	n, ok, err = scanDigitSpan(s.buf, s.flags.Has(FlagSignPlus), isDigit, prefix)
	if err != nil || !ok {
		return
	}
	text, err = takeSpan(s.buf, n)
	if err != nil {
		return
	}
	_, err = s.SkipPostpad()
	return
}

// parseScannedInt parses a matched span with the standard textual parser. Exactly one of i and
// u is meaningful, per signed. ok is false when the value doesn't fit, in which case the span
// remains consumed: the input matched the grammar, the target type just can't hold it.
func parseScannedInt(text string, base int, prefix byte, signed bool, bits int) (i int64, u uint64, ok bool) {
	t := text
	neg := strings.HasPrefix(t, "-")
	if neg || strings.HasPrefix(t, "+") {
		t = t[1:]
	}
	if prefix != 0 && len(t) >= 2 && t[0] == '0' && t[1]|0x20 == prefix {
		t = t[2:]
	}
	if signed {
		if neg {
			t = "-" + t
		}
		v, err := strconv.ParseInt(t, base, bits)
		if err != nil {
			return
		}
		return v, 0, true
	}
	if neg {
		return
	}
	v, err := strconv.ParseUint(t, base, bits)
	if err != nil {
		return
	}
	return 0, v, true
}

func scanInteger[T constraints.Integer](s *Scanner, base int, prefix byte, isDigit func(byte) bool) (val T, ok bool, err error) {
	if !s.flags.Has(FlagAlternate) {
		prefix = 0
	}
	var text string
	text, ok, err = scanIntegerText(s, isDigit, prefix)
	if err != nil || !ok {
		return
	}
	var i int64
	var u uint64
	i, u, ok = parseScannedInt(text, base, prefix, isSignedType[T](), intBits[T]())
	if !ok {
		return
	}
	if isSignedType[T]() {
		val = T(i)
	} else {
		val = T(u)
	}
	return
}

// ScanInteger extracts a decimal integer of either signedness.
func ScanInteger[T constraints.Integer](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 10, 0, isDecimalDigit)
}

// ScanSigned extracts a signed decimal integer.
func ScanSigned[T constraints.Signed](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 10, 0, isDecimalDigit)
}

// ScanUnsigned extracts an unsigned decimal integer. A leading '-' matches the grammar but
// never fits, so it reads as no-match with the span consumed.
func ScanUnsigned[T constraints.Unsigned](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 10, 0, isDecimalDigit)
}

// ScanHex extracts a base 16 integer. With FlagAlternate a 0x prefix is accepted.
func ScanHex[T constraints.Integer](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 16, 'x', isHexDigit)
}

// ScanOctal extracts a base 8 integer. With FlagAlternate a 0o prefix is accepted.
func ScanOctal[T constraints.Integer](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 8, 'o', isOctalDigit)
}

// ScanBinary extracts a base 2 integer. With FlagAlternate a 0b prefix is accepted.
func ScanBinary[T constraints.Integer](s *Scanner) (T, bool, error) {
	return scanInteger[T](s, 2, 'b', isBinaryDigit)
}

func isDecimalDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDecimalDigit(b) || (b|0x20 >= 'a' && b|0x20 <= 'f')
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isBinaryDigit(b byte) bool {
	return b == '0' || b == '1'
}

func intBits[T constraints.Integer]() int {
	var v T
	return int(unsafe.Sizeof(v)) * 8
}

func isSignedType[T constraints.Integer]() bool {
	var v T
	v--
	return v < 0
}
