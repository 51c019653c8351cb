package gridterm

// CursorShape mirrors the DECSCUSR styles.
type CursorShape uint8

const (
	// CursorShapeBlock is a filled block covering the cell.
	CursorShapeBlock CursorShape = iota
	// CursorShapeUnderline is a line under the cell.
	CursorShapeUnderline
	// CursorShapeBeam is a vertical bar at the cell's left edge.
	CursorShapeBeam
)

// ClearMode selects the region for erase-in-display.
type ClearMode uint8

const (
	// ClearBelow erases from the cursor to the end of the screen.
	ClearBelow ClearMode = iota
	// ClearAbove erases from the start of the screen to the cursor.
	ClearAbove
	// ClearAll erases the entire screen.
	ClearAll
	// ClearSaved erases the scrollback history.
	ClearSaved
)

// LineClearMode selects the region for erase-in-line.
type LineClearMode uint8

const (
	// LineClearRight erases from the cursor to the end of the line.
	LineClearRight LineClearMode = iota
	// LineClearLeft erases from the start of the line through the cursor.
	LineClearLeft
	// LineClearAll erases the whole line.
	LineClearAll
)

// TabClearMode selects the scope for tabulation clear.
type TabClearMode uint8

const (
	// TabClearCurrent removes the stop under the cursor.
	TabClearCurrent TabClearMode = iota
	// TabClearAll removes every stop.
	TabClearAll
)

// CursorState is the addressable cursor: position, visibility and shape.
type CursorState struct {
	Row     int
	Col     int
	Visible bool
	Shape   CursorShape
}

type savedCursor struct {
	row, col    int
	pen         Attributes
	wrapPending bool
	valid       bool
}

const tabWidth = 8

// Grid is the addressable screen buffer: a bounded 2D array of lines, the
// cursor, the current pen and the scroll margins. All methods assume the
// caller holds the terminal's single-writer lock.
type Grid struct {
	rows, cols int
	lines      []Line
	cursor     CursorState
	saved      savedCursor
	pen        Attributes

	// scroll margins, inclusive (DECSTBM)
	scrollTop    int
	scrollBottom int

	wrapPending bool
	tabStops    []bool

	// hist receives lines scrolled off the top; nil for the alternate
	// screen, which keeps no history.
	hist *Scrollback
}

func newGrid(rows, cols int, hist *Scrollback) *Grid {
	g := &Grid{rows: rows, cols: cols, hist: hist}
	g.pen.reset()
	g.lines = make([]Line, rows)
	for i := range g.lines {
		g.lines[i] = newLine(cols, Attributes{})
	}
	g.scrollBottom = rows - 1
	g.cursor.Visible = true
	g.tabStops = defaultTabStops(cols)
	return g
}

func defaultTabStops(cols int) []bool {
	stops := make([]bool, cols)
	for i := tabWidth; i < cols; i += tabWidth {
		stops[i] = true
	}
	return stops
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// Cursor returns the current cursor state.
func (g *Grid) Cursor() CursorState { return g.cursor }

// Line returns row i of the visible screen.
func (g *Grid) Line(i int) Line { return g.lines[i] }

func (g *Grid) line(i int) *Line { return &g.lines[i] }

// moveTo clamps the target into bounds and clears any pending wrap, per the
// xterm deferred-wrap rules.
func (g *Grid) moveTo(row, col int) {
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	g.cursor.Row, g.cursor.Col = row, col
	g.wrapPending = false
}

func (g *Grid) saveCursor() {
	g.saved = savedCursor{
		row: g.cursor.Row, col: g.cursor.Col,
		pen: g.pen, wrapPending: g.wrapPending, valid: true,
	}
}

func (g *Grid) restoreCursor() {
	if !g.saved.valid {
		g.moveTo(0, 0)
		return
	}
	g.moveTo(g.saved.row, g.saved.col)
	g.pen = g.saved.pen
	g.wrapPending = g.saved.wrapPending
}

// print writes one grapheme at the cursor and advances it, honoring deferred
// autowrap, wide-glyph placement and insert mode. It returns the range of
// rows touched.
func (g *Grid) print(r rune, width int, autowrap, insert bool) (int, int) {
	if width == 0 {
		g.printCombining(r)
		return g.cursor.Row, g.cursor.Row
	}

	first := g.cursor.Row
	scrolled := false
	if g.wrapPending {
		g.wrapPending = false
		if autowrap {
			scrolled = g.cursor.Row == g.scrollBottom
			g.cursor.Col = 0
			g.linefeed()
			g.line(g.cursor.Row).Wrapped = true
		}
	}

	// A wide glyph cannot be represented at all on a single-column grid.
	if width == 2 && g.cols < 2 {
		return first, g.cursor.Row
	}

	// A wide glyph never straddles the right margin: with autowrap it is
	// deferred to the next line, without it the glyph is dropped.
	if width == 2 && g.cursor.Col == g.cols-1 {
		if !autowrap {
			return first, g.cursor.Row
		}
		scrolled = scrolled || g.cursor.Row == g.scrollBottom
		g.writeCell(g.cursor.Row, g.cursor.Col, newBlankCell(g.pen))
		g.cursor.Col = 0
		g.linefeed()
		g.line(g.cursor.Row).Wrapped = true
	}

	row, col := g.cursor.Row, g.cursor.Col
	if insert {
		g.shiftRight(row, col, width)
	}

	cell := newCell(r, g.pen)
	if width == 2 {
		cell.Flags |= FlagWide
	}
	g.writeCell(row, col, cell)
	if width == 2 {
		spacer := newBlankCell(g.pen)
		spacer.Flags |= FlagSpacer
		g.writeCell(row, col+1, spacer)
	}

	next := col + width
	if next >= g.cols {
		if autowrap {
			g.cursor.Col = g.cols - 1
			g.wrapPending = true
		} else {
			g.cursor.Col = g.cols - 1
		}
	} else {
		g.cursor.Col = next
	}
	if scrolled {
		// the whole region shifted, not just the printed rows
		return g.scrollTop, g.scrollBottom
	}
	if g.cursor.Row < first {
		return g.cursor.Row, first
	}
	return first, g.cursor.Row
}

// printCombining attaches a zero-width mark to the most recently printed
// cell.
func (g *Grid) printCombining(r rune) {
	row, col := g.cursor.Row, g.cursor.Col
	if g.wrapPending {
		col = g.cols - 1
	} else if col > 0 {
		col--
	} else {
		return
	}
	c := &g.line(row).Cells[col]
	if c.IsSpacer() && col > 0 {
		c = &g.line(row).Cells[col-1]
	}
	c.Combining = append(c.Combining, r)
}

// writeCell stores a cell, first dissolving any wide glyph it overlaps so a
// spacer is never left without its leader.
func (g *Grid) writeCell(row, col int, c Cell) {
	line := g.line(row)
	old := line.Cells[col]
	if old.IsSpacer() && col > 0 {
		line.Cells[col-1] = newBlankCell(Attributes{FG: old.FG, BG: old.BG})
	}
	if old.IsWide() && col+1 < g.cols {
		line.Cells[col+1] = newBlankCell(Attributes{FG: old.FG, BG: old.BG})
	}
	line.Cells[col] = c
}

func (g *Grid) shiftRight(row, col, n int) {
	line := g.line(row)
	copy(line.Cells[col+n:], line.Cells[col:])
	blank := newBlankCell(g.pen)
	for i := col; i < col+n && i < g.cols; i++ {
		line.Cells[i] = blank
	}
}

// linefeed moves the cursor down one row, scrolling the region up when the
// cursor sits on the bottom margin.
func (g *Grid) linefeed() {
	if g.cursor.Row == g.scrollBottom {
		g.scrollUp(1)
	} else if g.cursor.Row < g.rows-1 {
		g.cursor.Row++
	}
}

// reverseLinefeed moves the cursor up one row, scrolling the region down
// when the cursor sits on the top margin.
func (g *Grid) reverseLinefeed() {
	if g.cursor.Row == g.scrollTop {
		g.scrollDown(1)
	} else if g.cursor.Row > 0 {
		g.cursor.Row--
	}
}

func (g *Grid) carriageReturn() {
	g.cursor.Col = 0
	g.wrapPending = false
}

func (g *Grid) backspace() {
	if g.wrapPending {
		g.wrapPending = false
		return
	}
	if g.cursor.Col > 0 {
		g.cursor.Col--
	}
}

// tab advances the cursor to the next tab stop, or the last column.
func (g *Grid) tab() {
	col := g.cursor.Col + 1
	for col < g.cols && !g.tabStops[col] {
		col++
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	g.cursor.Col = col
	g.wrapPending = false
}

func (g *Grid) setTabStop() {
	if g.cursor.Col < len(g.tabStops) {
		g.tabStops[g.cursor.Col] = true
	}
}

func (g *Grid) clearTabStops(mode TabClearMode) {
	switch mode {
	case TabClearCurrent:
		if g.cursor.Col < len(g.tabStops) {
			g.tabStops[g.cursor.Col] = false
		}
	case TabClearAll:
		for i := range g.tabStops {
			g.tabStops[i] = false
		}
	}
}

// setScrollRegion applies DECSTBM margins (0-based, inclusive). Invalid
// regions reset to the full screen.
func (g *Grid) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= g.rows || bottom <= 0 {
		bottom = g.rows - 1
	}
	if top >= bottom {
		top, bottom = 0, g.rows-1
	}
	g.scrollTop, g.scrollBottom = top, bottom
}

// scrollUp moves content within the margins up by n lines; lines leaving a
// top margin at row 0 are pushed into history.
func (g *Grid) scrollUp(n int) {
	if n <= 0 {
		return
	}
	region := g.scrollBottom - g.scrollTop + 1
	if n > region {
		n = region
	}
	if g.scrollTop == 0 && g.hist != nil {
		for i := 0; i < n; i++ {
			g.hist.Push(g.lines[i].clone())
		}
	}
	for i := g.scrollTop; i <= g.scrollBottom-n; i++ {
		g.lines[i] = g.lines[i+n]
	}
	for i := g.scrollBottom - n + 1; i <= g.scrollBottom; i++ {
		g.lines[i] = newLine(g.cols, g.pen)
	}
}

// scrollDown moves content within the margins down by n lines.
func (g *Grid) scrollDown(n int) {
	if n <= 0 {
		return
	}
	region := g.scrollBottom - g.scrollTop + 1
	if n > region {
		n = region
	}
	for i := g.scrollBottom; i >= g.scrollTop+n; i-- {
		g.lines[i] = g.lines[i-n]
	}
	for i := g.scrollTop; i < g.scrollTop+n; i++ {
		g.lines[i] = newLine(g.cols, g.pen)
	}
}

// insertLines shifts lines at the cursor down within the region (CSI L).
func (g *Grid) insertLines(n int) {
	if g.cursor.Row < g.scrollTop || g.cursor.Row > g.scrollBottom {
		return
	}
	max := g.scrollBottom - g.cursor.Row + 1
	if n > max {
		n = max
	}
	for i := g.scrollBottom; i >= g.cursor.Row+n; i-- {
		g.lines[i] = g.lines[i-n]
	}
	for i := g.cursor.Row; i < g.cursor.Row+n; i++ {
		g.lines[i] = newLine(g.cols, g.pen)
	}
}

// deleteLines removes lines at the cursor within the region (CSI M).
func (g *Grid) deleteLines(n int) {
	if g.cursor.Row < g.scrollTop || g.cursor.Row > g.scrollBottom {
		return
	}
	max := g.scrollBottom - g.cursor.Row + 1
	if n > max {
		n = max
	}
	for i := g.cursor.Row; i <= g.scrollBottom-n; i++ {
		g.lines[i] = g.lines[i+n]
	}
	for i := g.scrollBottom - n + 1; i <= g.scrollBottom; i++ {
		g.lines[i] = newLine(g.cols, g.pen)
	}
}

// insertChars inserts n blanks at the cursor, shifting the rest of the line
// right (ICH).
func (g *Grid) insertChars(n int) {
	if n > g.cols-g.cursor.Col {
		n = g.cols - g.cursor.Col
	}
	g.shiftRight(g.cursor.Row, g.cursor.Col, n)
}

// deleteChars removes n cells at the cursor, shifting the rest of the line
// left and back-filling with blanks (DCH).
func (g *Grid) deleteChars(n int) {
	line := g.line(g.cursor.Row)
	col := g.cursor.Col
	if n > g.cols-col {
		n = g.cols - col
	}
	copy(line.Cells[col:], line.Cells[col+n:])
	blank := newBlankCell(g.pen)
	for i := g.cols - n; i < g.cols; i++ {
		line.Cells[i] = blank
	}
}

// eraseChars blanks n cells from the cursor rightward without shifting (ECH).
func (g *Grid) eraseChars(n int) {
	end := g.cursor.Col + n
	if end > g.cols {
		end = g.cols
	}
	blank := newBlankCell(g.pen)
	for i := g.cursor.Col; i < end; i++ {
		g.writeCell(g.cursor.Row, i, blank)
	}
}

// clearLine erases within the cursor's line (EL).
func (g *Grid) clearLine(mode LineClearMode) {
	line := g.line(g.cursor.Row)
	blank := newBlankCell(g.pen)
	switch mode {
	case LineClearRight:
		for i := g.cursor.Col; i < g.cols; i++ {
			line.Cells[i] = blank
		}
	case LineClearLeft:
		for i := 0; i <= g.cursor.Col && i < g.cols; i++ {
			line.Cells[i] = blank
		}
	case LineClearAll:
		for i := 0; i < g.cols; i++ {
			line.Cells[i] = blank
		}
		line.Wrapped = false
	}
}

// clearScreen erases within the display (ED). ClearSaved is handled by the
// terminal, which owns the history.
func (g *Grid) clearScreen(mode ClearMode) {
	switch mode {
	case ClearBelow:
		g.clearLine(LineClearRight)
		for i := g.cursor.Row + 1; i < g.rows; i++ {
			g.lines[i] = newLine(g.cols, g.pen)
		}
	case ClearAbove:
		g.clearLine(LineClearLeft)
		for i := 0; i < g.cursor.Row; i++ {
			g.lines[i] = newLine(g.cols, g.pen)
		}
	case ClearAll:
		for i := range g.lines {
			g.lines[i] = newLine(g.cols, g.pen)
		}
	}
}

// usedRows returns the number of rows considered occupied: everything up to
// the deeper of the cursor and the last line with content.
func (g *Grid) usedRows() int {
	used := g.cursor.Row + 1
	for i := g.rows - 1; i >= used; i-- {
		if g.lines[i].DisplayWidth() > 0 {
			return i + 1
		}
	}
	return used
}

// resize changes the grid dimensions. Shrinking rows moves the overflowed
// top lines into history; growing rows pulls them back while available.
// Columns truncate or pad; no reflow is attempted.
func (g *Grid) resize(rows, cols int) {
	if cols != g.cols {
		for i := range g.lines {
			g.lines[i].setWidth(cols, Attributes{})
		}
		g.cols = cols
		g.tabStops = defaultTabStops(cols)
	}

	if rows < g.rows {
		overflow := g.usedRows() - rows
		if overflow > 0 {
			if g.hist != nil {
				for i := 0; i < overflow; i++ {
					g.hist.Push(g.lines[i])
				}
			}
			g.lines = g.lines[overflow:]
			g.cursor.Row -= overflow
		}
		g.lines = g.lines[:rows]
	} else if rows > g.rows {
		grow := rows - g.rows
		if g.hist != nil {
			for grow > 0 && g.hist.Len() > 0 {
				l, _ := g.hist.Pop()
				l.setWidth(cols, Attributes{})
				g.lines = append([]Line{l}, g.lines...)
				g.cursor.Row++
				grow--
			}
		}
		for len(g.lines) < rows {
			g.lines = append(g.lines, newLine(cols, Attributes{}))
		}
	}
	g.rows = rows
	g.scrollTop = 0
	g.scrollBottom = rows - 1
	if g.cursor.Row >= rows {
		g.cursor.Row = rows - 1
	}
	if g.cursor.Row < 0 {
		g.cursor.Row = 0
	}
	if g.cursor.Col >= cols {
		g.cursor.Col = cols - 1
	}
	g.wrapPending = false
}
