package gridterm

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CellFlags is a bitmask of per-cell rendering attributes.
type CellFlags uint16

const (
	FlagBold CellFlags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagDoubleUnderline
	FlagCurlyUnderline
	FlagBlink
	FlagInverse
	FlagHidden
	FlagStrike
	// FlagWide marks the leading cell of a double-width glyph.
	FlagWide
	// FlagSpacer marks the trailing half of a double-width glyph. Spacer
	// cells are never addressed independently; they move with their leader.
	FlagSpacer
)

// Attributes is the pen used for the next printed cell.
type Attributes struct {
	FG    Color
	BG    Color
	Flags CellFlags
}

// Cell is one grid position: a base rune plus any combining marks, colors
// and style flags.
type Cell struct {
	Rune      rune
	Combining []rune
	FG        Color
	BG        Color
	Flags     CellFlags
}

func newBlankCell(pen Attributes) Cell {
	// Erased cells keep the pen's background but no text styling.
	return Cell{Rune: ' ', FG: pen.FG, BG: pen.BG}
}

func newCell(r rune, pen Attributes) Cell {
	return Cell{Rune: r, FG: pen.FG, BG: pen.BG, Flags: pen.Flags}
}

// IsWide reports whether this cell leads a double-width glyph.
func (c Cell) IsWide() bool { return c.Flags&FlagWide != 0 }

// IsSpacer reports whether this cell is the trailing half of a wide glyph.
func (c Cell) IsSpacer() bool { return c.Flags&FlagSpacer != 0 }

// String returns the full grapheme cluster stored in the cell.
func (c Cell) String() string {
	if len(c.Combining) == 0 {
		return string(c.Rune)
	}
	var sb strings.Builder
	sb.WriteRune(c.Rune)
	for _, r := range c.Combining {
		sb.WriteRune(r)
	}
	return sb.String()
}

// Line is a fixed-width row of cells. Wrapped marks a soft line break: the
// line continues from the previous one without a hard newline, which affects
// resize reflow and selection text extraction.
type Line struct {
	Cells   []Cell
	Wrapped bool
}

func newLine(cols int, pen Attributes) Line {
	cells := make([]Cell, cols)
	blank := newBlankCell(pen)
	for i := range cells {
		cells[i] = blank
	}
	return Line{Cells: cells}
}

// String returns the text of the line with trailing blanks trimmed.
func (l Line) String() string {
	var sb strings.Builder
	for _, c := range l.Cells {
		if c.IsSpacer() {
			continue
		}
		sb.WriteString(c.String())
	}
	return strings.TrimRight(sb.String(), " ")
}

// DisplayWidth returns the rendered width of the line's text, counting
// grapheme clusters rather than runes.
func (l Line) DisplayWidth() int {
	return uniseg.StringWidth(l.String())
}

// clone returns a deep copy; combining slices are not shared.
func (l Line) clone() Line {
	cells := make([]Cell, len(l.Cells))
	copy(cells, l.Cells)
	for i := range cells {
		if len(cells[i].Combining) > 0 {
			cells[i].Combining = append([]rune(nil), cells[i].Combining...)
		}
	}
	return Line{Cells: cells, Wrapped: l.Wrapped}
}

// setWidth truncates or pads the line to w columns. A wide glyph split by
// truncation loses both halves.
func (l *Line) setWidth(w int, pen Attributes) {
	if len(l.Cells) > w {
		if w > 0 && l.Cells[w-1].IsWide() {
			l.Cells[w-1] = newBlankCell(pen)
		}
		l.Cells = l.Cells[:w]
		return
	}
	blank := newBlankCell(pen)
	for len(l.Cells) < w {
		l.Cells = append(l.Cells, blank)
	}
}

// runeWidth classifies a rune for grid placement: 0 for combining marks,
// 2 for East Asian wide glyphs, 1 otherwise.
func runeWidth(r rune) int {
	return runewidth.RuneWidth(r)
}
