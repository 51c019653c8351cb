package gridterm

import (
	"bytes"
	"fmt"
	"strings"
)

// Hook implements Performer; it begins a device control string. The final
// byte is the first character of the content for prefix routing, so
// "DCS tmux; ..." hooks with final 't'.
func (t *Terminal) Hook(params [][]uint16, intermediates []byte, ignore bool, final byte) {
	t.dcsBuf = t.dcsBuf[:0]
	if ignore {
		t.dcsBuf = nil
		return
	}
	if bytes.ContainsRune(intermediates, '$') && final == 'q' {
		// DECRQSS: the payload names the setting being queried
		t.dcsBuf = append(t.dcsBuf, '$', 'q')
		return
	}
	t.dcsBuf = append(t.dcsBuf, final)
}

// Put implements Performer; it streams one payload byte of the current
// device control string.
func (t *Terminal) Put(b byte) {
	if t.dcsBuf == nil {
		return
	}
	if len(t.dcsBuf) < maxOscBytes {
		t.dcsBuf = append(t.dcsBuf, b)
	}
}

// Unhook implements Performer; the device control string is complete.
func (t *Terminal) Unhook() {
	data := string(t.dcsBuf)
	t.dcsBuf = nil
	if data == "" {
		return
	}
	if rest, ok := strings.CutPrefix(data, "$q"); ok {
		t.reportSetting(rest)
		return
	}
	for prefix, h := range t.dcsHandlers {
		if strings.HasPrefix(data, prefix) {
			h(t, data)
			return
		}
	}
	t.logger.Debug("unrecognised device control string", "data", data)
}

// reportSetting answers DECRQSS for the settings this terminal models.
func (t *Terminal) reportSetting(name string) {
	g := t.active
	switch name {
	case "r": // DECSTBM
		t.writeReply([]byte(fmt.Sprintf("\x1bP1$r%d;%dr\x1b\\", g.scrollTop+1, g.scrollBottom+1)))
	case " q": // DECSCUSR
		shape := map[CursorShape]int{
			CursorShapeBlock:     2,
			CursorShapeUnderline: 4,
			CursorShapeBeam:      6,
		}[g.cursor.Shape]
		t.writeReply([]byte(fmt.Sprintf("\x1bP1$r%d q\x1b\\", shape)))
	default:
		t.writeReply([]byte("\x1bP0$r\x1b\\"))
	}
}

// ApcDispatch implements Performer; application program commands are routed
// by registered prefix and otherwise dropped.
func (t *Terminal) ApcDispatch(data []byte) {
	s := string(data)
	for prefix, h := range t.apcHandlers {
		if strings.HasPrefix(s, prefix) {
			h(t, s)
			return
		}
	}
	t.logger.Debug("unrecognised apc", "data", s)
}
