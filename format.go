package unfmt

import (
	g "github.com/anacrolix/generics"
)

// Alignment of a value within its padded field.
type Alignment int

const (
	AlignUnspecified Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// Flags is a bit set of scan modifiers.
type Flags uint

const (
	// The sign is mandatory when scanning numbers; a string match must be non-empty.
	FlagSignPlus Flags = 1 << iota
	FlagSignMinus
	// Strings capture to end of line; integers accept a radix prefix.
	FlagAlternate
)

func (me Flags) Has(f Flags) bool {
	return me&f != 0
}

type PositionKind int

const (
	// Binds the next unused destination.
	PositionNext PositionKind = iota
	// Binds the destination at Index.
	PositionIndexed
	// Binds the destination registered under Name.
	PositionNamed
	// Scans and discards, binding nothing.
	PositionSuppressed
)

type Position struct {
	Kind  PositionKind
	Index uint   // PositionIndexed only
	Name  string // PositionNamed only
}

// ScanSpec describes how to scan and pad-trim one argument's value.
type ScanSpec struct {
	Fill  g.Option[rune]
	Align Alignment
	Flags Flags
	Width g.Option[uint]
	// Free-form type tag, empty if absent. See Format.Scan for the tags the dispatcher
	// understands.
	Type string
}

// Piece is one syntactic unit of a parsed format string: Literal, Whitespace or Argument.
type Piece interface {
	piece()
}

// Literal text that must match the input byte for byte.
type Literal string

// A run of whitespace in the format, matching any amount of input whitespace, including none.
type Whitespace struct{}

// A placeholder requesting a scanned value.
type Argument struct {
	Position Position
	Spec     ScanSpec
}

func (Literal) piece()    {}
func (Whitespace) piece() {}
func (Argument) piece()   {}
