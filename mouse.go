package gridterm

import "fmt"

// MouseButton identifies the button involved in a mouse event.
type MouseButton int

const (
	// MouseNone is used for motion with no button held.
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseAction distinguishes presses, releases and motion.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMotion
)

// MouseEvent is one pointer event from the embedding application.
type MouseEvent struct {
	Button MouseButton
	Action MouseAction
	Pos    Position
	Shift  bool
	Alt    bool
	Ctrl   bool
}

// EncodeMouse renders a mouse event for the hosted program per the active
// reporting mode, or nil when the event should not be reported. Wheel
// events are treated as presses.
func (t *Terminal) EncodeMouse(ev MouseEvent) []byte {
	t.mu.Lock()
	modes := t.modes
	t.mu.Unlock()

	if !modes.mouseReporting() {
		return nil
	}

	x10Only := modes.Has(ModeMouseX10) &&
		modes&(ModeMouseNormal|ModeMouseButtonEvent|ModeMouseAnyEvent) == 0

	switch ev.Action {
	case MousePress:
	case MouseRelease:
		if x10Only {
			return nil
		}
	case MouseMotion:
		if modes.Has(ModeMouseAnyEvent) {
			break
		}
		if modes.Has(ModeMouseButtonEvent) && ev.Button != MouseNone {
			break
		}
		return nil
	}

	code, ok := mouseButtonCode(ev.Button)
	if !ok {
		return nil
	}
	if ev.Action == MouseMotion {
		code += 32
	}
	if x10Only {
		// X10 carries no modifiers
	} else {
		if ev.Shift {
			code += 4
		}
		if ev.Alt {
			code += 8
		}
		if ev.Ctrl {
			code += 16
		}
	}

	if modes.Has(ModeMouseSGR) {
		final := byte('M')
		if ev.Action == MouseRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, ev.Pos.Col+1, ev.Pos.Row+1, final))
	}

	// legacy encoding reports releases as button 3 and cannot address
	// cells past 222
	if ev.Action == MouseRelease {
		code = (code &^ 0x3) | 3
	}
	col, row := ev.Pos.Col+1, ev.Pos.Row+1
	if col > 222 || row > 222 {
		return nil
	}
	return []byte{asciiEscape, '[', 'M', byte(32 + code), byte(32 + col), byte(32 + row)}
}

func mouseButtonCode(b MouseButton) (int, bool) {
	switch b {
	case MouseLeft:
		return 0, true
	case MouseMiddle:
		return 1, true
	case MouseRight:
		return 2, true
	case MouseNone:
		return 3, true
	case MouseWheelUp:
		return 64, true
	case MouseWheelDown:
		return 65, true
	}
	return 0, false
}
