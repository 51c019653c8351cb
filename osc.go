package gridterm

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// OscDispatch implements Performer. The command number is the first
// segment; the remaining segments are rejoined since titles and payloads
// may themselves contain semicolons.
func (t *Terminal) OscDispatch(params [][]byte, bellTerminated bool) {
	if len(params) == 0 {
		return
	}
	command, err := strconv.Atoi(string(params[0]))
	if err != nil {
		t.logger.Debug("osc with non-numeric command", "command", string(params[0]))
		return
	}
	segs := make([]string, 0, len(params)-1)
	for _, p := range params[1:] {
		segs = append(segs, string(p))
	}
	data := strings.Join(segs, ";")

	if h, ok := t.oscHandlers[command]; ok {
		h(t, data)
		return
	}

	switch command {
	case 0, 2: // icon name and window title / window title
		t.setTitle(data)
	case 1: // icon name only
	case 7:
		t.setWorkingDir(data)
	case 10, 11:
		// default fg/bg query or set; colors are fixed, answer queries only
		if data == "?" {
			color := "rgb:ffff/ffff/ffff"
			if command == 11 {
				color = "rgb:0000/0000/0000"
			}
			t.writeReply([]byte(fmt.Sprintf("\x1b]%d;%s\x1b\\", command, color)))
		}
	case 52:
		t.handleClipboard(data)
	case 104, 110, 111, 112:
		// palette and color resets; the palette is immutable here
	case 133:
		// shell integration prompt marks carry no buffer effect
	default:
		t.logger.Debug("unrecognised osc", "command", command, "data", data)
	}
}

func (t *Terminal) setTitle(title string) {
	t.title = title
	if t.onTitle != nil {
		t.onTitle(title)
	}
}

// setWorkingDir records an OSC 7 file:// URL, decoding the path portion.
func (t *Terminal) setWorkingDir(raw string) {
	dir := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme == "file" {
		dir = u.Path
	}
	t.workingDir = dir
	if t.onCwd != nil {
		t.onCwd(dir)
	}
}

// handleClipboard implements OSC 52 set and query against the registered
// clipboard collaborator. Without one, both directions are inert.
func (t *Terminal) handleClipboard(data string) {
	if t.clipboard == nil {
		return
	}
	sel, payload, ok := strings.Cut(data, ";")
	if !ok {
		return
	}
	if payload == "?" {
		text, ok := t.clipboard.GetClipboard()
		if !ok {
			return
		}
		enc := base64.StdEncoding.EncodeToString([]byte(text))
		t.writeReply([]byte(fmt.Sprintf("\x1b]52;%s;%s\x1b\\", sel, enc)))
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.logger.Debug("osc 52 with invalid base64 payload")
		return
	}
	t.clipboard.SetClipboard(string(decoded))
}
