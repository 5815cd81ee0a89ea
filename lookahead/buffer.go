package lookahead

import (
	"unicode/utf8"

	"github.com/anacrolix/missinggo/v2/panicif"
)

type bufferState int

const (
	// The last view came straight from the source, nothing is saved.
	statePassthrough bufferState = iota
	// Views come from the saved bytes.
	stateBuffered
	// Saved bytes, then the recorded terminal error.
	stateBufferedErr
)

// Buffer presents a Source as though it could supply a contiguous view of any requested minimum
// length, copying only when the source's own chunks are insufficient. A terminal error from the
// source is sticky: it's returned only once the bytes preceding it have all been delivered, and
// exactly once. Not safe for concurrent use.
type Buffer struct {
	src      Source
	state    bufferState
	saved    []byte
	savedPos int
	savedErr error // set iff state == stateBufferedErr
}

func NewBuffer(src Source) *Buffer {
	return &Buffer{src: src}
}

// FillRequest returns a view of at least min bytes if the source can provide them. Fewer are
// returned only when the source is exhausted; the terminal condition itself is returned once
// the remaining bytes have been consumed. The view is valid until the next Consume.
func (me *Buffer) FillRequest(min int) ([]byte, error) {
	if me.savedPos == len(me.saved) {
		if me.state == stateBufferedErr {
			err := me.savedErr
			me.state = statePassthrough
			me.savedErr = nil
			me.saved = me.saved[:0]
			me.savedPos = 0
			return nil, err
		}
		// Try not to save anything: if the source's own chunk satisfies the request, hand it
		// out directly.
		b, err := me.src.Fill()
		if err != nil {
			return nil, err
		}
		if len(b) >= min {
			me.state = statePassthrough
			return b, nil
		}
		me.state = stateBuffered
		me.saved = append(me.saved[:0], b...)
		me.savedPos = 0
		me.src.Consume(len(b))
	}
	minLen := me.savedPos + min
	for len(me.saved) < minLen && me.state == stateBuffered {
		b, err := me.src.Fill()
		if err != nil {
			me.savedErr = err
			me.state = stateBufferedErr
			break
		}
		me.saved = append(me.saved, b...)
		me.src.Consume(len(b))
	}
	return me.saved[me.savedPos:], nil
}

// Consume commits n bytes of the most recent view as read.
func (me *Buffer) Consume(n int) {
	if me.state == statePassthrough {
		me.src.Consume(n)
		return
	}
	me.savedPos += n
	panicif.GreaterThan(me.savedPos, len(me.saved))
}

// Fill makes Buffer a Source itself, for composition and testing.
func (me *Buffer) Fill() ([]byte, error) {
	return me.FillRequest(0)
}

// Read copies the next available bytes into p, implementing io.Reader.
func (me *Buffer) Read(p []byte) (n int, err error) {
	b, err := me.FillRequest(0)
	if err != nil {
		return
	}
	n = copy(p, b)
	me.Consume(n)
	return
}

// ReadPadChar consumes consecutive occurrences of pad and returns how many were read. It stops
// at the first mismatch or when the source can't supply a whole encoding of pad.
func (me *Buffer) ReadPadChar(pad rune) (count int, err error) {
	if pad < utf8.RuneSelf {
		// Single byte encodings don't need re-encoding per iteration.
		p := byte(pad)
		return me.ReadPadByteIf(func(b byte) bool { return b == p })
	}
	var padBuf [4]byte
	padLen := utf8.EncodeRune(padBuf[:], pad)
	for {
		b, err := me.FillRequest(padLen)
		if err != nil {
			return count, err
		}
		if len(b) < padLen {
			// The remaining bytes cannot contain a whole pad.
			return count, nil
		}
		// Leave any trailing partial encoding for the next request.
		nchars := len(b) / padLen
		upto := nchars * padLen
		offset := 0
		for i := 0; i < upto; i++ {
			if padBuf[offset] != b[i] {
				consume := i - offset
				me.Consume(consume)
				return count + consume/padLen, nil
			}
			offset++
			if offset == padLen {
				offset = 0
			}
		}
		me.Consume(upto)
		count += nchars
	}
}

// ReadPadByteIf consumes consecutive bytes matching isPad and returns how many were read.
func (me *Buffer) ReadPadByteIf(isPad func(byte) bool) (count int, err error) {
	for {
		b, err := me.FillRequest(1)
		if err != nil {
			return count, err
		}
		if len(b) == 0 {
			return count, nil
		}
		for i, c := range b {
			if !isPad(c) {
				me.Consume(i)
				return count + i, nil
			}
		}
		me.Consume(len(b))
		count += len(b)
	}
}

// PeekByte returns the next byte without consuming it. ok is false at exhaustion.
func (me *Buffer) PeekByte() (b byte, ok bool, err error) {
	buf, err := me.FillRequest(1)
	if err != nil || len(buf) == 0 {
		return
	}
	return buf[0], true, nil
}

// PeekChar decodes the next codepoint without consuming it. The encoded width comes from the
// lead byte; if the source can't supply that many bytes, or the encoding is invalid, ok is
// false rather than returning a corrupt decode.
func (me *Buffer) PeekChar() (r rune, ok bool, err error) {
	buf, err := me.FillRequest(1)
	if err != nil || len(buf) == 0 {
		return
	}
	first := buf[0]
	width := LeadByteWidth(first)
	if width == 0 {
		return
	}
	if width == 1 {
		return rune(first), true, nil
	}
	buf, err = me.FillRequest(width)
	if err != nil || len(buf) < width {
		return
	}
	r, n := utf8.DecodeRune(buf[:width])
	if r == utf8.RuneError && n <= 1 {
		return 0, false, nil
	}
	return r, true, nil
}

// LeadByteWidth is the encoded length of a UTF-8 sequence given its lead byte, or 0 if the
// byte can't start one.
func LeadByteWidth(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xc0:
		return 0
	case b < 0xe0:
		return 2
	case b < 0xf0:
		return 3
	case b < 0xf8:
		return 4
	default:
		return 0
	}
}
