package unfmt

import (
	"unicode"
	"unicode/utf8"

	"github.com/anacrolix/unfmt/lookahead"
)

// ScanString captures a run of text. By default the token ends at the first whitespace
// codepoint; with FlagAlternate it ends at the first CR or LF instead (line capture). The
// terminator is not consumed. With FlagSignPlus a zero-length match is a failure rather than
// an empty success. Chunks are only ever decoded up to their last complete codepoint boundary,
// so a codepoint split across chunk deliveries is never decoded truncated.
func ScanString(s *Scanner) (val string, ok bool, err error) {
	if _, err = s.SkipPrepad(); err != nil {
		return
	}
	nonEmpty := s.flags.Has(FlagSignPlus)
	lineMode := s.flags.Has(FlagAlternate)
	i := 0
	request := 1
scan:
	for {
		b, ferr := s.buf.FillRequest(request)
		if ferr != nil {
			err = ferr
			return
		}
		if len(b) < request {
			break
		}
		complete, nextRequest := dropIncompleteTail(b)
		if nextRequest <= len(b) {
			// The tail isn't even a plausible truncated encoding.
			return "", false, nil
		}
		chunk := b[i:complete]
		if !utf8.Valid(chunk) {
			return "", false, nil
		}
		for j, r := range string(chunk) {
			if lineMode {
				if r == '\r' || r == '\n' {
					i += j
					break scan
				}
			} else if unicode.IsSpace(r) {
				i += j
				break scan
			}
		}
		i = complete
		request = nextRequest
	}
	if nonEmpty && i == 0 {
		return "", false, nil
	}
	val, err = takeSpan(s.buf, i)
	if err != nil {
		return
	}
	// The terminator already served as post-padding, so trim rather than skip.
	val = s.TrimPostpad(val)
	ok = true
	return
}

// dropIncompleteTail finds the last complete codepoint boundary in b, excluding any dangling
// partial multi-byte sequence. nextRequest is a length past the boundary: enough to complete a
// truncated trailing sequence, or one byte beyond a tail that already ends on a boundary.
func dropIncompleteTail(b []byte) (complete, nextRequest int) {
	i := len(b)
	for i > 0 {
		i--
		w := lookahead.LeadByteWidth(b[i])
		if w == 0 {
			// Continuation byte, keep walking back to its lead.
			continue
		}
		if i+w <= len(b) {
			return i + w, i + w + 1
		}
		return i, i + w
	}
	return 0, 1
}

// ScanChar extracts a single codepoint.
func ScanChar(s *Scanner) (r rune, ok bool, err error) {
	if _, err = s.SkipPrepad(); err != nil {
		return
	}
	r, ok, err = s.buf.PeekChar()
	if err != nil || !ok {
		return
	}
	s.buf.Consume(utf8.RuneLen(r))
	_, err = s.SkipPostpad()
	return
}
