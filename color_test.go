package gridterm

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteCube(t *testing.T) {
	// 16 is the cube origin, 231 its far corner
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, PaletteColor(16))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, PaletteColor(231))
	// 196 is pure red in the cube
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, PaletteColor(196))
}

func TestPaletteGrayscale(t *testing.T) {
	assert.Equal(t, color.RGBA{8, 8, 8, 255}, PaletteColor(232))
	assert.Equal(t, color.RGBA{238, 238, 238, 255}, PaletteColor(255))
}

func TestResolveBoldBrightens(t *testing.T) {
	plain := Resolve(IndexedColor(1), 0, true)
	bold := Resolve(IndexedColor(1), FlagBold, true)
	assert.Equal(t, PaletteColor(1), plain)
	assert.Equal(t, PaletteColor(9), bold)

	// indices above 7 are not brightened further
	assert.Equal(t, PaletteColor(9), Resolve(IndexedColor(9), FlagBold, true))
	// backgrounds never brighten
	assert.Equal(t, PaletteColor(1), Resolve(IndexedColor(1), FlagBold, false))
}

func TestResolveDim(t *testing.T) {
	full := Resolve(RGBColor(200, 100, 50), 0, true)
	dim := Resolve(RGBColor(200, 100, 50), FlagDim, true)
	assert.Less(t, dim.R, full.R)
	assert.Less(t, dim.G, full.G)
}

func TestResolveDefaults(t *testing.T) {
	assert.Equal(t, color.RGBA{170, 170, 170, 255}, Resolve(DefaultColor(), 0, true))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, Resolve(DefaultColor(), 0, false))
}

func TestSGRBasicAttributes(t *testing.T) {
	term, p := newTestTerm(4, 10)
	feed(term, p, "\x1b[1;4;7m")
	pen := term.active.pen
	assert.NotZero(t, pen.Flags&FlagBold)
	assert.NotZero(t, pen.Flags&FlagUnderline)
	assert.NotZero(t, pen.Flags&FlagInverse)

	feed(term, p, "\x1b[22;24;27m")
	pen = term.active.pen
	assert.Zero(t, pen.Flags)
}

func TestSGRCurlyUnderline(t *testing.T) {
	term, p := newTestTerm(4, 10)
	feed(term, p, "\x1b[4:3m")
	assert.NotZero(t, term.active.pen.Flags&FlagCurlyUnderline)
	feed(term, p, "\x1b[4:0m")
	assert.Zero(t, term.active.pen.Flags&(FlagUnderline|FlagCurlyUnderline|FlagDoubleUnderline))
}

func TestSGRBrightColors(t *testing.T) {
	term, p := newTestTerm(4, 10)
	feed(term, p, "\x1b[91;104m")
	assert.Equal(t, IndexedColor(9), term.active.pen.FG)
	assert.Equal(t, IndexedColor(12), term.active.pen.BG)
}

func TestSGR256Color(t *testing.T) {
	term, p := newTestTerm(4, 10)
	feed(term, p, "\x1b[38;5;123m\x1b[48;5;200m")
	assert.Equal(t, IndexedColor(123), term.active.pen.FG)
	assert.Equal(t, IndexedColor(200), term.active.pen.BG)
}

func TestSGREmptyResets(t *testing.T) {
	term, p := newTestTerm(4, 10)
	feed(term, p, "\x1b[31;1m\x1b[m")
	assert.True(t, term.active.pen.FG.IsDefault())
	assert.Zero(t, term.active.pen.Flags)
}

func TestSGRMalformedExtendedIgnored(t *testing.T) {
	term, p := newTestTerm(4, 10)
	// truncated 38;2 with too few channels leaves the pen alone
	feed(term, p, "\x1b[38;2;10m")
	assert.True(t, term.active.pen.FG.IsDefault())
}
