package gridterm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeMouseNoReporting(t *testing.T) {
	term, _ := newTestTerm(24, 80)
	assert.Nil(t, term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress}))
}

func TestEncodeMouseLegacy(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?1000h")

	got := term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress, Pos: Position{Row: 4, Col: 9}})
	assert.Equal(t, []byte{0x1b, '[', 'M', 32, 32 + 10, 32 + 5}, got)

	// releases report as button 3
	got = term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MouseRelease, Pos: Position{Row: 4, Col: 9}})
	assert.Equal(t, []byte{0x1b, '[', 'M', 32 + 3, 32 + 10, 32 + 5}, got)

	// motion is not reported in normal mode
	assert.Nil(t, term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MouseMotion}))
}

func TestEncodeMouseSGR(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?1000h\x1b[?1006h")

	got := term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress, Pos: Position{Row: 4, Col: 9}})
	assert.Equal(t, "\x1b[<0;10;5M", string(got))

	got = term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MouseRelease, Pos: Position{Row: 4, Col: 9}})
	assert.Equal(t, "\x1b[<0;10;5m", string(got))

	got = term.EncodeMouse(MouseEvent{Button: MouseWheelUp, Action: MousePress, Pos: Position{Row: 0, Col: 0}})
	assert.Equal(t, "\x1b[<64;1;1M", string(got))
}

func TestEncodeMouseModifiers(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?1000h\x1b[?1006h")

	got := term.EncodeMouse(MouseEvent{Button: MouseRight, Action: MousePress, Ctrl: true, Shift: true})
	assert.Equal(t, "\x1b[<22;1;1M", string(got))
}

func TestEncodeMouseMotion(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?1002h\x1b[?1006h")

	// drag with a button held reports; hover does not
	got := term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MouseMotion, Pos: Position{Row: 2, Col: 2}})
	assert.Equal(t, "\x1b[<32;3;3M", string(got))
	assert.Nil(t, term.EncodeMouse(MouseEvent{Button: MouseNone, Action: MouseMotion}))

	// any-event mode reports hover too
	feed(term, p, "\x1b[?1003h")
	got = term.EncodeMouse(MouseEvent{Button: MouseNone, Action: MouseMotion, Pos: Position{Row: 2, Col: 2}})
	assert.Equal(t, "\x1b[<35;3;3M", string(got))
}

func TestEncodeMouseX10(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?9h")

	// presses report without modifier bits
	got := term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress, Ctrl: true})
	assert.Equal(t, []byte{0x1b, '[', 'M', 32, 33, 33}, got)

	// releases are not reported at all
	assert.Nil(t, term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MouseRelease}))
}

func TestEncodeMouseLegacyCoordinateLimit(t *testing.T) {
	term, p := newTestTerm(24, 80)
	feed(term, p, "\x1b[?1000h")
	assert.Nil(t, term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress, Pos: Position{Row: 0, Col: 300}}))

	feed(term, p, "\x1b[?1006h")
	got := term.EncodeMouse(MouseEvent{Button: MouseLeft, Action: MousePress, Pos: Position{Row: 0, Col: 300}})
	assert.Equal(t, "\x1b[<0;301;1M", string(got))
}
