package lookahead

import (
	"bufio"
	"io"

	"github.com/anacrolix/missinggo/v2/panicif"
)

// Source is the pull contract over some sequence of bytes. Implementations expose whatever
// chunking is natural to them; Buffer deals with making chunks large enough.
type Source interface {
	// Returns a view of the next available bytes without consuming them. Repeated calls without
	// an intervening Consume return the same view. End of data and I/O failure are both
	// terminal and returned as errors (io.EOF included).
	Fill() ([]byte, error)
	// Advances past n bytes of the most recent view returned by Fill. n must not exceed that
	// view's length.
	Consume(n int)
}

type readerSource struct {
	br *bufio.Reader
}

// NewReaderSource adapts an io.Reader into a Source. The reader's own read sizes determine the
// chunking seen by the buffer.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{bufio.NewReader(r)}
}

func (me *readerSource) Fill() ([]byte, error) {
	// Force a read if nothing is buffered yet.
	if _, err := me.br.Peek(1); err != nil {
		return nil, err
	}
	return me.br.Peek(me.br.Buffered())
}

func (me *readerSource) Consume(n int) {
	_, err := me.br.Discard(n)
	panicif.Err(err)
}

type bytesSource struct {
	b []byte
}

// NewBytesSource returns a Source delivering b in a single chunk, then io.EOF.
func NewBytesSource(b []byte) Source {
	return &bytesSource{b}
}

// NewStringSource returns a Source delivering s in a single chunk, then io.EOF.
func NewStringSource(s string) Source {
	return &bytesSource{[]byte(s)}
}

func (me *bytesSource) Fill() ([]byte, error) {
	if len(me.b) == 0 {
		return nil, io.EOF
	}
	return me.b, nil
}

func (me *bytesSource) Consume(n int) {
	panicif.GreaterThan(n, len(me.b))
	me.b = me.b[n:]
}
