package gridterm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKeyCursorKeys(t *testing.T) {
	term, p := newTestTerm(4, 10)

	assert.Equal(t, "\x1b[A", string(term.EncodeKey(KeyEvent{Key: KeyUp})))
	assert.Equal(t, "\x1b[D", string(term.EncodeKey(KeyEvent{Key: KeyLeft})))

	// DECCKM switches to SS3
	feed(term, p, "\x1b[?1h")
	assert.Equal(t, "\x1bOA", string(term.EncodeKey(KeyEvent{Key: KeyUp})))

	// modified keys use the CSI form regardless of DECCKM
	assert.Equal(t, "\x1b[1;5C", string(term.EncodeKey(KeyEvent{Key: KeyRight, Ctrl: true})))
	assert.Equal(t, "\x1b[1;2A", string(term.EncodeKey(KeyEvent{Key: KeyUp, Shift: true})))
}

func TestEncodeKeyTildeKeys(t *testing.T) {
	term, _ := newTestTerm(4, 10)
	tests := map[string]struct {
		ev   KeyEvent
		want string
	}{
		"page up":      {KeyEvent{Key: KeyPageUp}, "\x1b[5~"},
		"page down":    {KeyEvent{Key: KeyPageDown}, "\x1b[6~"},
		"insert":       {KeyEvent{Key: KeyInsert}, "\x1b[2~"},
		"delete":       {KeyEvent{Key: KeyDelete}, "\x1b[3~"},
		"f5":           {KeyEvent{Key: KeyF5}, "\x1b[15~"},
		"f12":          {KeyEvent{Key: KeyF12}, "\x1b[24~"},
		"shift delete": {KeyEvent{Key: KeyDelete, Shift: true}, "\x1b[3;2~"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(term.EncodeKey(tt.ev)))
		})
	}
}

func TestEncodeKeyFunctionKeys(t *testing.T) {
	term, _ := newTestTerm(4, 10)
	assert.Equal(t, "\x1bOP", string(term.EncodeKey(KeyEvent{Key: KeyF1})))
	assert.Equal(t, "\x1bOS", string(term.EncodeKey(KeyEvent{Key: KeyF4})))
	assert.Equal(t, "\x1b[1;5P", string(term.EncodeKey(KeyEvent{Key: KeyF1, Ctrl: true})))
}

func TestEncodeKeyRunes(t *testing.T) {
	term, _ := newTestTerm(4, 10)

	assert.Equal(t, "x", string(term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'x'})))
	assert.Equal(t, "é", string(term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'é'})))

	// ctrl folding
	assert.Equal(t, []byte{0x03}, term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'c', Ctrl: true}))
	assert.Equal(t, []byte{0x01}, term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'A', Ctrl: true}))
	assert.Equal(t, []byte{0x00}, term.EncodeKey(KeyEvent{Key: KeyRune, Rune: ' ', Ctrl: true}))
	assert.Equal(t, []byte{0x1c}, term.EncodeKey(KeyEvent{Key: KeyRune, Rune: '\\', Ctrl: true}))

	// alt prefixes ESC
	assert.Equal(t, "\x1bx", string(term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'x', Alt: true})))
	assert.Equal(t, []byte{0x1b, 0x03}, term.EncodeKey(KeyEvent{Key: KeyRune, Rune: 'c', Ctrl: true, Alt: true}))
}

func TestEncodeKeySpecials(t *testing.T) {
	term, p := newTestTerm(4, 10)

	assert.Equal(t, "\r", string(term.EncodeKey(KeyEvent{Key: KeyEnter})))
	assert.Equal(t, "\t", string(term.EncodeKey(KeyEvent{Key: KeyTab})))
	assert.Equal(t, "\x1b[Z", string(term.EncodeKey(KeyEvent{Key: KeyTab, Shift: true})))
	assert.Equal(t, []byte{0x7f}, term.EncodeKey(KeyEvent{Key: KeyBackspace}))
	assert.Equal(t, []byte{0x1b}, term.EncodeKey(KeyEvent{Key: KeyEscape}))

	// LNM makes Enter send CR LF
	feed(term, p, "\x1b[20h")
	assert.Equal(t, "\r\n", string(term.EncodeKey(KeyEvent{Key: KeyEnter})))
}

func TestEncodePaste(t *testing.T) {
	term, p := newTestTerm(4, 10)

	assert.Equal(t, "plain", string(term.EncodePaste("plain")))

	feed(term, p, "\x1b[?2004h")
	assert.Equal(t, "\x1b[200~wrapped\x1b[201~", string(term.EncodePaste("wrapped")))

	// embedded bracket markers cannot escape the paste
	got := string(term.EncodePaste("a\x1b[201~rm -rf\x1b[200~b"))
	assert.Equal(t, "\x1b[200~arm -rfb\x1b[201~", got)

	feed(term, p, "\x1b[?2004l")
	assert.Equal(t, "plain", string(term.EncodePaste("plain")))
}

func TestEncodeFocus(t *testing.T) {
	term, p := newTestTerm(4, 10)
	assert.Nil(t, term.EncodeFocus(true))

	feed(term, p, "\x1b[?1004h")
	assert.Equal(t, "\x1b[I", string(term.EncodeFocus(true)))
	assert.Equal(t, "\x1b[O", string(term.EncodeFocus(false)))
}
