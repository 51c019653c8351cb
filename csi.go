package gridterm

import (
	"bytes"
	"fmt"
)

// csiSeq is a parsed control sequence handed to a dispatch handler.
type csiSeq struct {
	params        [][]uint16
	intermediates []byte
}

// param returns parameter i or def when absent or zero.
func (s *csiSeq) param(i, def int) int {
	if i >= len(s.params) || len(s.params[i]) == 0 || s.params[i][0] == 0 {
		return def
	}
	return int(s.params[i][0])
}

// rawParam returns parameter i without the zero-means-default rule.
func (s *csiSeq) rawParam(i int) int {
	if i >= len(s.params) || len(s.params[i]) == 0 {
		return 0
	}
	return int(s.params[i][0])
}

func (s *csiSeq) private() bool {
	return bytes.ContainsAny(s.intermediates, "<=>?")
}

var csiHandlers = map[byte]func(*Terminal, *csiSeq){
	'@': func(t *Terminal, s *csiSeq) { // ICH
		t.active.insertChars(s.param(0, 1))
		t.damage.markRow(t.active.cursor.Row)
	},
	'A': func(t *Terminal, s *csiSeq) { // CUU
		t.moveCursorBy(-s.param(0, 1), 0)
	},
	'B': func(t *Terminal, s *csiSeq) { // CUD
		t.moveCursorBy(s.param(0, 1), 0)
	},
	'C': func(t *Terminal, s *csiSeq) { // CUF
		t.moveCursorBy(0, s.param(0, 1))
	},
	'D': func(t *Terminal, s *csiSeq) { // CUB
		t.moveCursorBy(0, -s.param(0, 1))
	},
	'E': func(t *Terminal, s *csiSeq) { // CNL
		t.moveCursorBy(s.param(0, 1), 0)
		t.active.carriageReturn()
	},
	'F': func(t *Terminal, s *csiSeq) { // CPL
		t.moveCursorBy(-s.param(0, 1), 0)
		t.active.carriageReturn()
	},
	'G': func(t *Terminal, s *csiSeq) { // CHA
		g := t.active
		g.moveTo(g.cursor.Row, s.param(0, 1)-1)
	},
	'H': csiCursorPosition,
	'f': csiCursorPosition, // HVP
	'I': func(t *Terminal, s *csiSeq) { // CHT
		for i := 0; i < s.param(0, 1); i++ {
			t.active.tab()
		}
	},
	'J': func(t *Terminal, s *csiSeq) { // ED
		mode := ClearMode(s.rawParam(0))
		if mode == ClearSaved {
			t.history.Clear()
			return
		}
		t.active.clearScreen(mode)
		t.damage.markAll()
	},
	'K': func(t *Terminal, s *csiSeq) { // EL
		t.active.clearLine(LineClearMode(s.rawParam(0)))
		t.damage.markRow(t.active.cursor.Row)
	},
	'L': func(t *Terminal, s *csiSeq) { // IL
		t.active.insertLines(s.param(0, 1))
		t.damage.markRange(t.active.cursor.Row, t.active.scrollBottom)
	},
	'M': func(t *Terminal, s *csiSeq) { // DL
		t.active.deleteLines(s.param(0, 1))
		t.damage.markRange(t.active.cursor.Row, t.active.scrollBottom)
	},
	'P': func(t *Terminal, s *csiSeq) { // DCH
		t.active.deleteChars(s.param(0, 1))
		t.damage.markRow(t.active.cursor.Row)
	},
	'S': func(t *Terminal, s *csiSeq) { // SU
		t.active.scrollUp(s.param(0, 1))
		t.damage.markRange(t.active.scrollTop, t.active.scrollBottom)
	},
	'T': func(t *Terminal, s *csiSeq) { // SD
		t.active.scrollDown(s.param(0, 1))
		t.damage.markRange(t.active.scrollTop, t.active.scrollBottom)
	},
	'X': func(t *Terminal, s *csiSeq) { // ECH
		t.active.eraseChars(s.param(0, 1))
		t.damage.markRow(t.active.cursor.Row)
	},
	'Z': func(t *Terminal, s *csiSeq) { // CBT
		g := t.active
		for i := 0; i < s.param(0, 1); i++ {
			col := g.cursor.Col - 1
			for col > 0 && !g.tabStops[col] {
				col--
			}
			if col < 0 {
				col = 0
			}
			g.cursor.Col = col
		}
		g.wrapPending = false
	},
	'`': func(t *Terminal, s *csiSeq) { // HPA
		g := t.active
		g.moveTo(g.cursor.Row, s.param(0, 1)-1)
	},
	'a': func(t *Terminal, s *csiSeq) { // HPR
		t.moveCursorBy(0, s.param(0, 1))
	},
	'b': func(t *Terminal, s *csiSeq) { // REP
		if t.lastPrint == 0 {
			return
		}
		n := s.param(0, 1)
		for i := 0; i < n; i++ {
			first, last := t.active.print(t.lastPrint, t.lastPrintWidth,
				t.modes.Has(ModeAutowrap), t.modes.Has(ModeInsert))
			t.damage.markRange(first, last)
		}
	},
	'c': func(t *Terminal, s *csiSeq) { // DA
		if bytes.ContainsRune(s.intermediates, '>') {
			t.writeReply([]byte("\x1b[>1;10;0c"))
			return
		}
		// VT102 with advanced video
		t.writeReply([]byte("\x1b[?6c"))
	},
	'd': func(t *Terminal, s *csiSeq) { // VPA
		t.moveCursorAbs(s.param(0, 1)-1, t.active.cursor.Col)
	},
	'e': func(t *Terminal, s *csiSeq) { // VPR
		t.moveCursorBy(s.param(0, 1), 0)
	},
	'g': func(t *Terminal, s *csiSeq) { // TBC
		switch s.rawParam(0) {
		case 0:
			t.active.clearTabStops(TabClearCurrent)
		case 3:
			t.active.clearTabStops(TabClearAll)
		}
	},
	'h': func(t *Terminal, s *csiSeq) { t.setModes(s, true) },
	'l': func(t *Terminal, s *csiSeq) { t.setModes(s, false) },
	'i': func(t *Terminal, s *csiSeq) { // MC
		switch s.rawParam(0) {
		case 5:
			t.startPrinting()
		case 4:
			t.stopPrinting()
		}
	},
	'm': func(t *Terminal, s *csiSeq) { // SGR
		t.handleSGR(s.params)
	},
	'n': func(t *Terminal, s *csiSeq) { // DSR
		switch s.rawParam(0) {
		case 5:
			t.writeReply([]byte("\x1b[0n"))
		case 6:
			g := t.active
			row := g.cursor.Row
			if t.modes.Has(ModeOrigin) {
				row -= g.scrollTop
			}
			t.writeReply([]byte(fmt.Sprintf("\x1b[%d;%dR", row+1, g.cursor.Col+1)))
		}
	},
	'p': func(t *Terminal, s *csiSeq) {
		if bytes.ContainsRune(s.intermediates, '!') { // DECSTR
			t.softReset()
		}
	},
	'q': func(t *Terminal, s *csiSeq) {
		if !bytes.ContainsRune(s.intermediates, ' ') {
			return
		}
		// DECSCUSR; blink variants map to the same shape
		switch s.rawParam(0) {
		case 0, 1, 2:
			t.active.cursor.Shape = CursorShapeBlock
		case 3, 4:
			t.active.cursor.Shape = CursorShapeUnderline
		case 5, 6:
			t.active.cursor.Shape = CursorShapeBeam
		}
	},
	'r': func(t *Terminal, s *csiSeq) { // DECSTBM
		if s.private() {
			return
		}
		g := t.active
		g.setScrollRegion(s.param(0, 1)-1, s.param(1, g.rows)-1)
		g.moveTo(originRow(t), 0)
		t.damage.markAll()
	},
	's': func(t *Terminal, s *csiSeq) { // SCOSC
		t.active.saveCursor()
		t.savedOrigin = t.modes.Has(ModeOrigin)
	},
	'u': func(t *Terminal, s *csiSeq) { // SCORC
		t.active.restoreCursor()
		t.modes.set(ModeOrigin, t.savedOrigin)
		t.damage.markRow(t.active.cursor.Row)
	},
	't': func(t *Terminal, s *csiSeq) { // XTWINOPS, report text area size only
		switch s.rawParam(0) {
		case 18:
			t.writeReply([]byte(fmt.Sprintf("\x1b[8;%d;%dt", t.active.rows, t.active.cols)))
		}
	},
}

func csiCursorPosition(t *Terminal, s *csiSeq) {
	t.moveCursorAbs(s.param(0, 1)-1, s.param(1, 1)-1)
}

// CsiDispatch implements Performer.
func (t *Terminal) CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, final byte) {
	if ignore {
		t.logger.Debug("oversized control sequence dropped", "final", string(final))
		return
	}
	h, ok := csiHandlers[final]
	if !ok {
		t.logger.Debug("unrecognised control sequence", "final", string(final), "params", params)
		return
	}
	h(t, &csiSeq{params: params, intermediates: intermediates})
}

// originRow is the home row honoring origin mode.
func originRow(t *Terminal) int {
	if t.modes.Has(ModeOrigin) {
		return t.active.scrollTop
	}
	return 0
}

// moveCursorAbs addresses the cursor absolutely, relative to the scroll
// region when origin mode is set.
func (t *Terminal) moveCursorAbs(row, col int) {
	g := t.active
	old := g.cursor.Row
	if t.modes.Has(ModeOrigin) {
		row += g.scrollTop
		if row > g.scrollBottom {
			row = g.scrollBottom
		}
	}
	g.moveTo(row, col)
	t.damage.markRow(old)
	t.damage.markRow(g.cursor.Row)
}

// moveCursorBy moves the cursor relatively. Vertical movement stops at the
// scroll margins when the cursor starts inside them.
func (t *Terminal) moveCursorBy(dr, dc int) {
	g := t.active
	old := g.cursor.Row
	row := g.cursor.Row + dr
	if dr < 0 && old >= g.scrollTop && row < g.scrollTop {
		row = g.scrollTop
	}
	if dr > 0 && old <= g.scrollBottom && row > g.scrollBottom {
		row = g.scrollBottom
	}
	g.moveTo(row, g.cursor.Col+dc)
	t.damage.markRow(old)
	t.damage.markRow(g.cursor.Row)
}

// setModes applies SM/RM and DECSET/DECRST.
func (t *Terminal) setModes(s *csiSeq, on bool) {
	if s.private() {
		for i := range s.params {
			t.setPrivateMode(s.rawParam(i), on)
		}
		return
	}
	for i := range s.params {
		switch s.rawParam(i) {
		case 4:
			t.modes.set(ModeInsert, on)
		case 20:
			t.modes.set(ModeNewLine, on)
		default:
			t.logger.Debug("unrecognised mode", "mode", s.rawParam(i), "set", on)
		}
	}
}

func (t *Terminal) setPrivateMode(mode int, on bool) {
	switch mode {
	case 1:
		t.modes.set(ModeAppCursorKeys, on)
	case 6:
		t.modes.set(ModeOrigin, on)
		t.active.moveTo(originRow(t), 0)
	case 7:
		t.modes.set(ModeAutowrap, on)
	case 9:
		t.modes.set(ModeMouseX10, on)
	case 12:
		// cursor blink is a renderer concern
	case 25:
		t.modes.set(ModeShowCursor, on)
		t.damage.markRow(t.active.cursor.Row)
	case 47:
		if on {
			t.enterAlt(false)
		} else {
			t.exitAlt()
		}
	case 1000:
		t.modes.set(ModeMouseNormal, on)
	case 1002:
		t.modes.set(ModeMouseButtonEvent, on)
	case 1003:
		t.modes.set(ModeMouseAnyEvent, on)
	case 1004:
		t.modes.set(ModeFocusReport, on)
	case 1006:
		t.modes.set(ModeMouseSGR, on)
	case 1047:
		if on {
			t.enterAlt(true)
		} else {
			t.exitAlt()
		}
	case 1048:
		if on {
			t.active.saveCursor()
			t.savedOrigin = t.modes.Has(ModeOrigin)
		} else {
			t.active.restoreCursor()
			t.modes.set(ModeOrigin, t.savedOrigin)
		}
	case 1049:
		if on {
			t.main.saveCursor()
			t.savedOrigin = t.modes.Has(ModeOrigin)
			t.enterAlt(true)
		} else {
			t.exitAlt()
			t.main.restoreCursor()
			t.modes.set(ModeOrigin, t.savedOrigin)
		}
	case 2004:
		t.modes.set(ModeBracketedPaste, on)
	default:
		t.logger.Debug("unrecognised private mode", "mode", mode, "set", on)
	}
}
