package gridterm

// Modes is the set of boolean terminal modes toggled by SM/RM and
// DECSET/DECRST.
type Modes uint32

const (
	// ModeShowCursor (DECTCEM) makes the cursor visible.
	ModeShowCursor Modes = 1 << iota
	// ModeAutowrap (DECAWM) wraps printing past the last column.
	ModeAutowrap
	// ModeOrigin (DECOM) makes cursor addressing relative to the scroll
	// region.
	ModeOrigin
	// ModeInsert (IRM) shifts cells right instead of overwriting.
	ModeInsert
	// ModeAppCursorKeys (DECCKM) switches cursor keys to SS3 encoding.
	ModeAppCursorKeys
	// ModeAppKeypad (DECKPAM) switches the numeric keypad to application
	// sequences.
	ModeAppKeypad
	// ModeNewLine (LNM) makes LF also return to column 0.
	ModeNewLine
	// ModeBracketedPaste wraps pasted text in 200~/201~ markers.
	ModeBracketedPaste
	// ModeAltScreen is set while the alternate screen buffer is active.
	ModeAltScreen
	// ModeMouseX10 reports button presses only.
	ModeMouseX10
	// ModeMouseNormal reports presses and releases.
	ModeMouseNormal
	// ModeMouseButtonEvent additionally reports motion while a button is
	// held.
	ModeMouseButtonEvent
	// ModeMouseAnyEvent reports all motion.
	ModeMouseAnyEvent
	// ModeMouseSGR selects the SGR extended coordinate encoding.
	ModeMouseSGR
	// ModeFocusReport sends CSI I / CSI O on focus changes.
	ModeFocusReport
)

// Has reports whether all bits in m are set.
func (ms Modes) Has(m Modes) bool { return ms&m == m }

func (ms *Modes) set(m Modes, on bool) {
	if on {
		*ms |= m
	} else {
		*ms &^= m
	}
}

// mouseReporting reports whether any mouse protocol is active.
func (ms Modes) mouseReporting() bool {
	return ms&(ModeMouseX10|ModeMouseNormal|ModeMouseButtonEvent|ModeMouseAnyEvent) != 0
}

func defaultModes() Modes {
	return ModeShowCursor | ModeAutowrap
}
