package gridterm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(rows, cols int) *Grid {
	return newGrid(rows, cols, NewScrollback(100))
}

func printString(g *Grid, s string) {
	for _, r := range s {
		g.print(r, runeWidth(r), true, false)
	}
}

func TestGridPrintAdvances(t *testing.T) {
	g := testGrid(4, 10)
	printString(g, "abc")
	assert.Equal(t, "abc", g.Line(0).String())
	assert.Equal(t, 3, g.Cursor().Col)
}

func TestGridAutowrapDeferred(t *testing.T) {
	g := testGrid(4, 5)
	printString(g, "abcde")
	// the cursor parks on the last column until the next print
	assert.Equal(t, 0, g.Cursor().Row)
	assert.Equal(t, 4, g.Cursor().Col)
	assert.True(t, g.wrapPending)

	printString(g, "f")
	assert.Equal(t, 1, g.Cursor().Row)
	assert.Equal(t, 1, g.Cursor().Col)
	assert.Equal(t, "abcde", g.Line(0).String())
	assert.Equal(t, "f", g.Line(1).String())
	assert.True(t, g.Line(1).Wrapped)
}

func TestGridAutowrapLineCount(t *testing.T) {
	// N characters on a W-column screen occupy ceil(N/W) lines
	g := testGrid(10, 8)
	printString(g, strings.Repeat("x", 20))
	assert.Equal(t, 3, g.usedRows())
	assert.False(t, g.Line(0).Wrapped)
	assert.True(t, g.Line(1).Wrapped)
	assert.True(t, g.Line(2).Wrapped)
}

func TestGridNoAutowrapClamps(t *testing.T) {
	g := testGrid(4, 5)
	for _, r := range "abcdefg" {
		g.print(r, 1, false, false)
	}
	// overflow overwrites the last column in place
	assert.Equal(t, "abcdg", g.Line(0).String())
	assert.Equal(t, 0, g.Cursor().Row)
}

func TestGridWideGlyph(t *testing.T) {
	g := testGrid(4, 10)
	printString(g, "世")
	assert.True(t, g.Line(0).Cells[0].IsWide())
	assert.True(t, g.Line(0).Cells[1].IsSpacer())
	assert.Equal(t, 2, g.Cursor().Col)
}

func TestGridWideGlyphDeferredAtLastColumn(t *testing.T) {
	g := testGrid(4, 5)
	printString(g, "abcd")
	printString(g, "世")
	// no spacer half may land on the old line
	assert.Equal(t, "abcd", g.Line(0).String())
	assert.Equal(t, 1, g.Cursor().Row)
	assert.True(t, g.Line(1).Cells[0].IsWide())
	assert.Equal(t, '世', g.Line(1).Cells[0].Rune)
}

func TestGridWideGlyphOnSingleColumn(t *testing.T) {
	g := testGrid(4, 1)
	printString(g, "世a")
	// the glyph has no room for its spacer half and is dropped
	assert.Equal(t, "a", g.Line(0).String())
	assert.Equal(t, 0, g.Cursor().Row)
}

func TestGridWideGlyphDroppedWithoutAutowrap(t *testing.T) {
	g := testGrid(4, 5)
	printString(g, "abcd")
	g.print('世', 2, false, false)
	assert.Equal(t, "abcd", g.Line(0).String())
	assert.Equal(t, 0, g.Cursor().Row)
}

func TestGridOverwritingWideDissolvesIt(t *testing.T) {
	g := testGrid(4, 10)
	printString(g, "世")
	g.moveTo(0, 0)
	printString(g, "a")
	assert.Equal(t, 'a', g.Line(0).Cells[0].Rune)
	assert.False(t, g.Line(0).Cells[1].IsSpacer())
}

func TestGridCombiningMark(t *testing.T) {
	g := testGrid(4, 10)
	printString(g, "e")
	g.print('́', 0, true, false)
	require.Len(t, g.Line(0).Cells[0].Combining, 1)
	assert.Equal(t, "é", g.Line(0).Cells[0].String())
	assert.Equal(t, 1, g.Cursor().Col)
}

func TestGridCombiningAtWrapBoundary(t *testing.T) {
	g := testGrid(4, 5)
	printString(g, "abcde")
	g.print('́', 0, true, false)
	// the mark lands on the last printed cell, not a new line
	assert.Equal(t, "é", g.Line(0).Cells[4].String())
	assert.True(t, g.wrapPending)
}

func TestGridInsertMode(t *testing.T) {
	g := testGrid(4, 10)
	printString(g, "abc")
	g.moveTo(0, 0)
	g.print('X', 1, true, true)
	assert.Equal(t, "Xabc", g.Line(0).String())
}

func TestGridBackspaceConsumesWrapPending(t *testing.T) {
	g := testGrid(4, 5)
	printString(g, "abcde")
	g.backspace()
	assert.False(t, g.wrapPending)
	assert.Equal(t, 4, g.Cursor().Col)
	g.backspace()
	assert.Equal(t, 3, g.Cursor().Col)
}

func TestGridTabStops(t *testing.T) {
	g := testGrid(4, 24)
	g.tab()
	assert.Equal(t, 8, g.Cursor().Col)
	g.tab()
	assert.Equal(t, 16, g.Cursor().Col)
	g.tab()
	// no stop past the margin: park on the last column
	assert.Equal(t, 23, g.Cursor().Col)

	g.moveTo(0, 4)
	g.setTabStop()
	g.moveTo(0, 0)
	g.tab()
	assert.Equal(t, 4, g.Cursor().Col)

	g.clearTabStops(TabClearAll)
	g.moveTo(0, 0)
	g.tab()
	assert.Equal(t, 23, g.Cursor().Col)
}

func TestGridScrollRegion(t *testing.T) {
	g := testGrid(5, 10)
	for i := 0; i < 5; i++ {
		g.moveTo(i, 0)
		printString(g, string(rune('a'+i)))
	}
	g.setScrollRegion(1, 3)
	g.moveTo(3, 0)
	g.linefeed()
	// rows outside the margins are untouched
	assert.Equal(t, "a", g.Line(0).String())
	assert.Equal(t, "c", g.Line(1).String())
	assert.Equal(t, "d", g.Line(2).String())
	assert.Equal(t, "", g.Line(3).String())
	assert.Equal(t, "e", g.Line(4).String())
}

func TestGridScrollRegionNoHistory(t *testing.T) {
	g := testGrid(5, 10)
	g.setScrollRegion(1, 3)
	g.moveTo(3, 0)
	g.linefeed()
	// scrolling inside margins never feeds the scrollback
	assert.Equal(t, 0, g.hist.Len())
}

func TestGridScrollUpFeedsHistory(t *testing.T) {
	g := testGrid(3, 10)
	for i := 0; i < 3; i++ {
		g.moveTo(i, 0)
		printString(g, string(rune('a'+i)))
	}
	g.moveTo(2, 0)
	g.linefeed()
	require.Equal(t, 1, g.hist.Len())
	assert.Equal(t, "a", g.hist.Line(0).String())
	assert.Equal(t, "b", g.Line(0).String())
}

func TestGridReverseLinefeed(t *testing.T) {
	g := testGrid(3, 10)
	printString(g, "top")
	g.moveTo(0, 0)
	g.reverseLinefeed()
	assert.Equal(t, "", g.Line(0).String())
	assert.Equal(t, "top", g.Line(1).String())
}

func TestGridInsertDeleteLines(t *testing.T) {
	g := testGrid(4, 10)
	for i := 0; i < 4; i++ {
		g.moveTo(i, 0)
		printString(g, string(rune('a'+i)))
	}
	g.moveTo(1, 0)
	g.insertLines(1)
	assert.Equal(t, "a", g.Line(0).String())
	assert.Equal(t, "", g.Line(1).String())
	assert.Equal(t, "b", g.Line(2).String())
	assert.Equal(t, "c", g.Line(3).String())

	g.moveTo(1, 0)
	g.deleteLines(1)
	assert.Equal(t, "b", g.Line(1).String())
	assert.Equal(t, "c", g.Line(2).String())
	assert.Equal(t, "", g.Line(3).String())
}

func TestGridLinesOutsideRegionIgnored(t *testing.T) {
	g := testGrid(5, 10)
	printString(g, "keep")
	g.setScrollRegion(2, 4)
	g.moveTo(0, 0)
	g.insertLines(1)
	assert.Equal(t, "keep", g.Line(0).String())
}

func TestGridDeleteChars(t *testing.T) {
	g := testGrid(2, 10)
	printString(g, "abcdef")
	g.moveTo(0, 1)
	g.deleteChars(2)
	assert.Equal(t, "adef", g.Line(0).String())
}

func TestGridEraseChars(t *testing.T) {
	g := testGrid(2, 10)
	printString(g, "abcdef")
	g.moveTo(0, 1)
	g.eraseChars(2)
	assert.Equal(t, "a  def", g.Line(0).String())
}

func TestGridClearLine(t *testing.T) {
	g := testGrid(2, 10)
	printString(g, "abcdef")
	g.moveTo(0, 2)
	g.clearLine(LineClearRight)
	assert.Equal(t, "ab", g.Line(0).String())

	printString(g, "cdef")
	g.moveTo(0, 2)
	g.clearLine(LineClearLeft)
	assert.Equal(t, "   def", g.Line(0).String())
}

func TestGridSaveRestoreCursor(t *testing.T) {
	g := testGrid(4, 10)
	g.moveTo(2, 3)
	g.pen.Flags |= FlagBold
	g.saveCursor()
	g.moveTo(0, 0)
	g.pen.reset()
	g.restoreCursor()
	assert.Equal(t, 2, g.Cursor().Row)
	assert.Equal(t, 3, g.Cursor().Col)
	assert.NotZero(t, g.pen.Flags&FlagBold)
}

func TestGridRestoreWithoutSaveHomes(t *testing.T) {
	g := testGrid(4, 10)
	g.moveTo(2, 3)
	g.restoreCursor()
	assert.Equal(t, 0, g.Cursor().Row)
	assert.Equal(t, 0, g.Cursor().Col)
}

func TestGridResizeColumns(t *testing.T) {
	g := testGrid(2, 10)
	printString(g, "abcdefgh")
	g.resize(2, 4)
	assert.Equal(t, "abcd", g.Line(0).String())
	assert.Equal(t, 3, g.Cursor().Col)

	g.resize(2, 8)
	assert.Equal(t, "abcd", g.Line(0).String())
	assert.Len(t, g.Line(0).Cells, 8)
}

func TestGridResizeShrinkRowsEvictsToHistory(t *testing.T) {
	g := testGrid(4, 10)
	for i := 0; i < 4; i++ {
		g.moveTo(i, 0)
		printString(g, string(rune('a'+i)))
	}
	g.resize(2, 10)
	require.Equal(t, 2, g.hist.Len())
	assert.Equal(t, "a", g.hist.Line(0).String())
	assert.Equal(t, "b", g.hist.Line(1).String())
	assert.Equal(t, "c", g.Line(0).String())
	assert.Equal(t, "d", g.Line(1).String())
	assert.Equal(t, 1, g.Cursor().Row)
}

func TestGridResizeGrowRowsPullsBack(t *testing.T) {
	g := testGrid(4, 10)
	for i := 0; i < 4; i++ {
		g.moveTo(i, 0)
		printString(g, string(rune('a'+i)))
	}
	g.resize(2, 10)
	g.resize(4, 10)
	// shrink then grow restores the evicted lines
	assert.Equal(t, 0, g.hist.Len())
	for i := 0; i < 4; i++ {
		assert.Equal(t, string(rune('a'+i)), g.Line(i).String())
	}
	assert.Equal(t, 3, g.Cursor().Row)
}

func TestGridResizeShrinkBlankBottomNotEvicted(t *testing.T) {
	g := testGrid(10, 10)
	printString(g, "only")
	g.resize(5, 10)
	// unused bottom rows are discarded, not archived
	assert.Equal(t, 0, g.hist.Len())
	assert.Equal(t, "only", g.Line(0).String())
}

func TestGridResizeResetsMargins(t *testing.T) {
	g := testGrid(10, 10)
	g.setScrollRegion(2, 5)
	g.resize(8, 10)
	assert.Equal(t, 0, g.scrollTop)
	assert.Equal(t, 7, g.scrollBottom)
}

func TestGridResizeTruncatedWideGlyphDropped(t *testing.T) {
	g := testGrid(2, 6)
	printString(g, "abcd世")
	g.resize(2, 5)
	assert.Equal(t, "abcd", g.Line(0).String())
}
