package gridterm

import (
	"strings"
	"unicode"
)

// SelectionMode controls how a drag is expanded into cells.
type SelectionMode int

const (
	// SelectChar selects the exact cell range.
	SelectChar SelectionMode = iota
	// SelectWord snaps the endpoints outward to word boundaries.
	SelectWord
	// SelectLine selects whole lines.
	SelectLine
	// SelectBlock selects the rectangle spanned by the endpoints.
	SelectBlock
)

// Selection is an anchored region of the visible screen. It is cleared by
// any buffer mutation so it can never refer to stale content.
type Selection struct {
	Mode       SelectionMode
	Start, End Position
}

// normalized returns the endpoints in reading order.
func (s *Selection) normalized() (Position, Position) {
	if s.End.Before(s.Start) {
		return s.End, s.Start
	}
	return s.Start, s.End
}

// Contains reports whether the selection covers the given cell.
func (s *Selection) Contains(p Position) bool {
	start, end := s.normalized()
	switch s.Mode {
	case SelectLine:
		return p.Row >= start.Row && p.Row <= end.Row
	case SelectBlock:
		lo, hi := start.Col, end.Col
		if lo > hi {
			lo, hi = hi, lo
		}
		return p.Row >= start.Row && p.Row <= end.Row && p.Col >= lo && p.Col <= hi
	default:
		if p.Row < start.Row || p.Row > end.Row {
			return false
		}
		if p.Row == start.Row && p.Col < start.Col {
			return false
		}
		if p.Row == end.Row && p.Col > end.Col {
			return false
		}
		return true
	}
}

// StartSelection anchors a new selection at pos.
func (t *Terminal) StartSelection(pos Position, mode SelectionMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos = t.clampPos(pos)
	t.sel = &Selection{Mode: mode, Start: pos, End: pos}
	t.damage.markRow(pos.Row)
}

// UpdateSelection extends the active selection to pos; without an active
// selection it is a no-op.
func (t *Terminal) UpdateSelection(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sel == nil {
		return
	}
	pos = t.clampPos(pos)
	old := t.sel.End
	t.sel.End = pos
	lo, hi := old.Row, pos.Row
	if lo > hi {
		lo, hi = hi, lo
	}
	t.damage.markRange(lo, hi)
}

// ClearSelection discards the selection if any.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sel != nil {
		start, end := t.sel.normalized()
		t.damage.markRange(start.Row, end.Row)
		t.sel = nil
	}
}

// Selection returns a copy of the active selection, or nil.
func (t *Terminal) Selection() *Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sel == nil {
		return nil
	}
	s := *t.sel
	return &s
}

// SelectedText extracts the selected content as plain text. Rows that were
// soft-wrapped during printing are joined without a newline so copied text
// matches what was written, not how it was folded.
func (t *Terminal) SelectedText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sel == nil {
		return ""
	}
	start, end := t.sel.normalized()
	g := t.active

	var b strings.Builder
	switch t.sel.Mode {
	case SelectBlock:
		lo, hi := start.Col, end.Col
		if lo > hi {
			lo, hi = hi, lo
		}
		for row := start.Row; row <= end.Row; row++ {
			if row > start.Row {
				b.WriteByte('\n')
			}
			b.WriteString(lineText(g.Line(row), lo, hi))
		}
	case SelectLine:
		for row := start.Row; row <= end.Row; row++ {
			if row > start.Row && !g.Line(row).Wrapped {
				b.WriteByte('\n')
			}
			b.WriteString(lineText(g.Line(row), 0, g.cols-1))
		}
	default:
		s, e := start, end
		if t.sel.Mode == SelectWord {
			s = wordStart(g, s)
			e = wordEnd(g, e)
		}
		for row := s.Row; row <= e.Row; row++ {
			c0, c1 := 0, g.cols-1
			if row == s.Row {
				c0 = s.Col
			}
			if row == e.Row {
				c1 = e.Col
			}
			if row > s.Row && !g.Line(row).Wrapped {
				b.WriteByte('\n')
			}
			b.WriteString(lineText(g.Line(row), c0, c1))
		}
	}
	return b.String()
}

// lineText renders cells [c0, c1] of a line as text, dropping spacers and
// trailing blanks.
func lineText(l Line, c0, c1 int) string {
	if c1 >= len(l.Cells) {
		c1 = len(l.Cells) - 1
	}
	var b strings.Builder
	trailing := 0
	for i := c0; i <= c1; i++ {
		c := l.Cells[i]
		if c.IsSpacer() {
			continue
		}
		if c.Rune == 0 || c.Rune == ' ' {
			trailing++
			continue
		}
		for ; trailing > 0; trailing-- {
			b.WriteByte(' ')
		}
		b.WriteRune(c.Rune)
		for _, m := range c.Combining {
			b.WriteRune(m)
		}
	}
	// interior runs of spaces were flushed above; what remains is trailing
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func cellWordRune(g *Grid, row, col int) (rune, bool) {
	c := g.Line(row).Cells[col]
	if c.IsSpacer() {
		if col == 0 {
			return 0, false
		}
		c = g.Line(row).Cells[col-1]
	}
	if c.Rune == 0 {
		return 0, false
	}
	return c.Rune, true
}

func wordStart(g *Grid, p Position) Position {
	for p.Col > 0 {
		r, ok := cellWordRune(g, p.Row, p.Col-1)
		if !ok || !isWordRune(r) {
			break
		}
		p.Col--
	}
	return p
}

func wordEnd(g *Grid, p Position) Position {
	for p.Col < g.cols-1 {
		r, ok := cellWordRune(g, p.Row, p.Col+1)
		if !ok || !isWordRune(r) {
			break
		}
		p.Col++
	}
	return p
}

func (t *Terminal) clampPos(p Position) Position {
	g := t.active
	if p.Row < 0 {
		p.Row = 0
	} else if p.Row >= g.rows {
		p.Row = g.rows - 1
	}
	if p.Col < 0 {
		p.Col = 0
	} else if p.Col >= g.cols {
		p.Col = g.cols - 1
	}
	return p
}
