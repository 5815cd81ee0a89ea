package testutil

import (
	"io"
	"testing"

	qt "github.com/go-quicktest/qt"
)

func TestChunkedSource(t *testing.T) {
	s := NewChunkedSource()
	_, err := s.Fill()
	qt.Assert(t, qt.ErrorIs(err, io.EOF))

	s = NewChunkedSource([]byte{1, 2, 3})
	v, _ := s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte{1, 2, 3}))
	s.Consume(1)
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte{2, 3}))
	s.Consume(2)
	_, err = s.Fill()
	qt.Assert(t, qt.ErrorIs(err, io.EOF))

	s = NewChunkedSource([]byte{1, 2}, []byte{3, 4})
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte{1, 2}))
	s.Consume(2)
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte{3, 4}))

	s = ChunkedStrings("ab", "", "c")
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte("ab")))
	// Idempotent until consumed.
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte("ab")))
	s.Consume(2)
	v, _ = s.Fill()
	qt.Assert(t, qt.HasLen(v, 0))
	v, _ = s.Fill()
	qt.Assert(t, qt.DeepEquals(v, []byte("c")))
}
