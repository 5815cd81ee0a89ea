package unfmt

import (
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/anacrolix/unfmt/lookahead"
)

// States of the floating point recognizer: sign? digit+ ('.' digit+)? ([eE] sign? digit+)?.
type floatState int

const (
	fExpectSignOrDigit floatState = iota
	fExpectSign
	fExpectDigit
	fExpectMoreDigits // accepting
	fExpectFracDigit
	fExpectMoreFracDigits // accepting
	fExpectExpSignOrDigit
	fExpectExpDigit
	fExpectMoreExpDigits // accepting
)

func (me floatState) accepting(requireExp bool) bool {
	if requireExp {
		return me == fExpectMoreExpDigits
	}
	switch me {
	case fExpectMoreDigits, fExpectMoreFracDigits, fExpectMoreExpDigits:
		return true
	}
	return false
}

// Same single-pass shape as the digit recognizer, with the fraction and exponent extensions.
func scanFloatSpan(buf *lookahead.Buffer, mandatorySign, requireExp bool) (n int, ok bool, err error) {
	state := fExpectSignOrDigit
	if mandatorySign {
		state = fExpectSign
	}
	i := 0
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
			case (state == fExpectSignOrDigit || state == fExpectSign) && (c == '+' || c == '-'):
				state = fExpectDigit
			case (state == fExpectSignOrDigit || state == fExpectDigit || state == fExpectMoreDigits) && isDecimalDigit(c):
				state = fExpectMoreDigits
			case state == fExpectMoreDigits && c == '.':
				state = fExpectFracDigit
			case (state == fExpectFracDigit || state == fExpectMoreFracDigits) && isDecimalDigit(c):
				state = fExpectMoreFracDigits
			case (state == fExpectMoreDigits || state == fExpectMoreFracDigits) && c|0x20 == 'e':
				state = fExpectExpSignOrDigit
			case state == fExpectExpSignOrDigit && (c == '+' || c == '-'):
				state = fExpectExpDigit
			case (state == fExpectExpSignOrDigit || state == fExpectExpDigit || state == fExpectMoreExpDigits) && isDecimalDigit(c):
				state = fExpectMoreExpDigits
			default:
				i += j
				break scan
			}
		}
		i = len(b)
	}
	if !state.accepting(requireExp) {
		return 0, false, nil
	}
	return i, true, nil
}

func scanFloatText(s *Scanner, requireExp bool) (text string, ok bool, err error) {
	if _, err = s.SkipPrepad(); err != nil {
		return
	}
	var n int
	n, ok, err = scanFloatSpan(s.buf, s.flags.Has(FlagSignPlus), requireExp)
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

func scanFloat[T constraints.Float](s *Scanner, requireExp bool) (val T, ok bool, err error) {
	var text string
	text, ok, err = scanFloatText(s, requireExp)
	if err != nil || !ok {
		return
	}
	var v T
	f, perr := parseFloatBits(text, int(unsafe.Sizeof(v))*8)
	if perr != nil {
		ok = false
		return
	}
	val = T(f)
	return
}

func parseFloatBits(text string, bits int) (float64, error) {
	return strconv.ParseFloat(text, bits)
}

// ScanFloat extracts a decimal floating point number, with optional fraction and exponent.
func ScanFloat[T constraints.Float](s *Scanner) (T, bool, error) {
	return scanFloat[T](s, false)
}

// ScanExp is ScanFloat with the exponent part mandatory.
func ScanExp[T constraints.Float](s *Scanner) (T, bool, error) {
	return scanFloat[T](s, true)
}
