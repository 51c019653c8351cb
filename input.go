package gridterm

import (
	"fmt"
	"strings"
)

// Key identifies a non-printing key. Printing keys use KeyRune with the
// Rune field set.
type Key int

const (
	// KeyRune is a printable character carried in KeyEvent.Rune.
	KeyRune Key = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is one key press from the embedding application.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Shift bool
	Alt   bool
	Ctrl  bool
}

func (ev KeyEvent) modifierCode() int {
	code := 1
	if ev.Shift {
		code++
	}
	if ev.Alt {
		code += 2
	}
	if ev.Ctrl {
		code += 4
	}
	return code
}

// cursor key final bytes, CSI or SS3 depending on DECCKM
var cursorKeyFinals = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

var tildeKeyCodes = map[Key]int{
	KeyInsert:   2,
	KeyDelete:   3,
	KeyPageUp:   5,
	KeyPageDown: 6,
	KeyF5:       15,
	KeyF6:       17,
	KeyF7:       18,
	KeyF8:       19,
	KeyF9:       20,
	KeyF10:      21,
	KeyF11:      23,
	KeyF12:      24,
}

var ss3FunctionFinals = map[Key]byte{
	KeyF1: 'P',
	KeyF2: 'Q',
	KeyF3: 'R',
	KeyF4: 'S',
}

// EncodeKey renders a key press as the byte sequence the hosted program
// expects, honoring DECCKM and LNM. It never mutates the buffer; callers
// write the result to the PTY themselves.
func (t *Terminal) EncodeKey(ev KeyEvent) []byte {
	t.mu.Lock()
	appCursor := t.modes.Has(ModeAppCursorKeys)
	newline := t.modes.Has(ModeNewLine)
	t.mu.Unlock()

	mod := ev.modifierCode()

	if final, ok := cursorKeyFinals[ev.Key]; ok {
		if mod > 1 {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final))
		}
		if appCursor {
			return []byte{asciiEscape, 'O', final}
		}
		return []byte{asciiEscape, '[', final}
	}
	if code, ok := tildeKeyCodes[ev.Key]; ok {
		if mod > 1 {
			return []byte(fmt.Sprintf("\x1b[%d;%d~", code, mod))
		}
		return []byte(fmt.Sprintf("\x1b[%d~", code))
	}
	if final, ok := ss3FunctionFinals[ev.Key]; ok {
		if mod > 1 {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final))
		}
		return []byte{asciiEscape, 'O', final}
	}

	switch ev.Key {
	case KeyEnter:
		if newline {
			return []byte("\r\n")
		}
		return []byte{'\r'}
	case KeyTab:
		if ev.Shift {
			return []byte("\x1b[Z")
		}
		return []byte{'\t'}
	case KeyBackspace:
		if ev.Alt {
			return []byte{asciiEscape, 0x7f}
		}
		return []byte{0x7f}
	case KeyEscape:
		return []byte{asciiEscape}
	case KeyRune:
		return encodeRuneKey(ev)
	}
	return nil
}

func encodeRuneKey(ev KeyEvent) []byte {
	r := ev.Rune
	if ev.Ctrl {
		if folded, ok := ctrlFold(r); ok {
			if ev.Alt {
				return []byte{asciiEscape, folded}
			}
			return []byte{folded}
		}
	}
	b := []byte(string(r))
	if ev.Alt {
		return append([]byte{asciiEscape}, b...)
	}
	return b
}

// ctrlFold maps a Ctrl chord onto its C0 byte (Ctrl+A..Z to 1..26 plus the
// punctuation chords).
func ctrlFold(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	}
	switch r {
	case '@', ' ':
		return 0, true
	case '[':
		return asciiEscape, true
	case '\\':
		return 0x1c, true
	case ']':
		return 0x1d, true
	case '^':
		return 0x1e, true
	case '_', '/':
		return 0x1f, true
	case '?':
		return 0x7f, true
	}
	return 0, false
}

// EncodePaste renders pasted text for the hosted program. With bracketed
// paste active the text is wrapped in the 200~/201~ markers and any
// embedded markers are stripped so a paste cannot break out of the
// bracket.
func (t *Terminal) EncodePaste(text string) []byte {
	t.mu.Lock()
	bracketed := t.modes.Has(ModeBracketedPaste)
	t.mu.Unlock()

	if !bracketed {
		return []byte(text)
	}
	text = strings.ReplaceAll(text, "\x1b[200~", "")
	text = strings.ReplaceAll(text, "\x1b[201~", "")
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	out = append(out, "\x1b[201~"...)
	return out
}

// EncodeFocus reports a focus change when focus reporting is enabled.
func (t *Terminal) EncodeFocus(focused bool) []byte {
	t.mu.Lock()
	enabled := t.modes.Has(ModeFocusReport)
	t.mu.Unlock()
	if !enabled {
		return nil
	}
	if focused {
		return []byte("\x1b[I")
	}
	return []byte("\x1b[O")
}
