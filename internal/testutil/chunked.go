package testutil

import (
	"io"

	"github.com/anacrolix/missinggo/v2/panicif"
)

// ChunkedSource is a lookahead.Source that yields a fixed sequence of chunks, one per Fill
// once the previous chunk is consumed, then a terminal error. It simulates the corner cases of
// sources with awkward chunking, like short network reads.
type ChunkedSource struct {
	chunks [][]byte
	index  int
	pos    int
	// Returned once the chunks run out. Defaults to io.EOF.
	TerminalErr error
}

func NewChunkedSource(chunks ...[]byte) *ChunkedSource {
	return &ChunkedSource{chunks: chunks, TerminalErr: io.EOF}
}

func ChunkedStrings(chunks ...string) *ChunkedSource {
	bs := make([][]byte, len(chunks))
	for i, s := range chunks {
		bs[i] = []byte(s)
	}
	return NewChunkedSource(bs...)
}

func (me *ChunkedSource) Fill() ([]byte, error) {
	if me.index < len(me.chunks) && me.pos == len(me.chunks[me.index]) {
		me.index++
		me.pos = 0
	}
	if me.index < len(me.chunks) {
		return me.chunks[me.index][me.pos:], nil
	}
	return nil, me.TerminalErr
}

func (me *ChunkedSource) Consume(n int) {
	me.pos += n
	panicif.GreaterThan(me.pos, len(me.chunks[me.index]))
}
