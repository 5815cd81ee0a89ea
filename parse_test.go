package unfmt

import (
	"testing"

	g "github.com/anacrolix/generics"
	qt "github.com/go-quicktest/qt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteralRoundTrip(t *testing.T) {
	pieces, err := Parse("abcdef")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Literal("abcdef")}, pieces)
}

func TestParseEscapes(t *testing.T) {
	pieces, err := Parse(`\{\}`)
	require.NoError(t, err)
	assert.Equal(t, []Piece{Literal("{"), Literal("}")}, pieces)

	// Escaped whitespace goes into the literal stream instead of collapsing.
	pieces, err = Parse(`a\ b`)
	require.NoError(t, err)
	assert.Equal(t, []Piece{Literal("a"), Literal(" b")}, pieces)

	_, err = Parse(`abc\`)
	require.Error(t, err)
}

func TestParseWhitespaceCollapses(t *testing.T) {
	pieces, err := Parse("a \t\r\n b")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Literal("a"), Whitespace{}, Literal("b")}, pieces)
}

func TestParseDefaultArgument(t *testing.T) {
	pieces, err := Parse("{}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{}}, pieces)
}

func TestParseUnicodeNames(t *testing.T) {
	want := []Piece{Argument{Position: Position{Kind: PositionNamed, Name: "名前"}}}
	pieces, err := Parse("{名前}")
	require.NoError(t, err)
	assert.Equal(t, want, pieces)
	// Interior whitespace is ignored.
	pieces, err = Parse("{  名前  }")
	require.NoError(t, err)
	assert.Equal(t, want, pieces)
}

func TestParsePositions(t *testing.T) {
	pieces, err := Parse("{3}{*}{x}{}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{
		Argument{Position: Position{Kind: PositionIndexed, Index: 3}},
		Argument{Position: Position{Kind: PositionSuppressed}},
		Argument{Position: Position{Kind: PositionNamed, Name: "x"}},
		Argument{},
	}, pieces)
}

func TestParseFillAlign(t *testing.T) {
	pieces, err := Parse("{:9>foo}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{Spec: ScanSpec{
		Fill:  g.Some('9'),
		Align: AlignRight,
		Type:  "foo",
	}}}, pieces)

	pieces, err = Parse("{:>foo}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{Spec: ScanSpec{
		Align: AlignRight,
		Type:  "foo",
	}}}, pieces)

	_, err = Parse("{:>>>foo}")
	require.Error(t, err)
}

func TestParseScanSpec(t *testing.T) {
	pieces, err := Parse("{:+#10d}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{Spec: ScanSpec{
		Flags: FlagSignPlus | FlagAlternate,
		Width: g.Some[uint](10),
		Type:  "d",
	}}}, pieces)

	pieces, err = Parse("{name:*^-5s}")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{
		Position: Position{Kind: PositionNamed, Name: "name"},
		Spec: ScanSpec{
			Fill:  g.Some('*'),
			Align: AlignCenter,
			Flags: FlagSignMinus,
			Width: g.Some[uint](5),
			Type:  "s",
		},
	}}, pieces)

	// Whitespace between sub-tokens is permitted and ignored.
	pieces, err = Parse("{ 0 : < + # 7 x }")
	require.NoError(t, err)
	assert.Equal(t, []Piece{Argument{
		Position: Position{Kind: PositionIndexed},
		Spec: ScanSpec{
			Align: AlignLeft,
			Flags: FlagSignPlus | FlagAlternate,
			Width: g.Some[uint](7),
			Type:  "x",
		},
	}}, pieces)
}

func TestParseErrors(t *testing.T) {
	for _, format := range []string{
		"}",
		"a}b",
		"{",
		"{name",
		"{:",
		"{:5?}",
		"{:99999999999999999999999999}",
		`\`,
		"{:>>>foo}",
	} {
		_, err := Parse(format)
		qt.Check(t, qt.IsNotNil(err), qt.Commentf("format %q", format))
		var pe *ParseError
		qt.Check(t, qt.ErrorAs(err, &pe), qt.Commentf("format %q", format))
	}
}

func TestParseErrorOffsets(t *testing.T) {
	_, err := Parse("ab}")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Offset)
}

func TestCompileCaching(t *testing.T) {
	a, err := compileCached("{} {}")
	require.NoError(t, err)
	b, err := compileCached("{} {}")
	require.NoError(t, err)
	qt.Assert(t, qt.Equals(a, b))
}
