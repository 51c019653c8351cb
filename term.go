package gridterm

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	asciiBell      = 7
	asciiBackspace = 8
	asciiEscape    = 27

	maxRows = 1000
	maxCols = 4000

	defaultScrollback = 10000
)

// ErrResizeOutOfBounds is returned when requested dimensions are zero or
// exceed the sane maximum; the previous dimensions are retained.
var ErrResizeOutOfBounds = errors.New("gridterm: resize out of bounds")

// Printer receives spooled data when media-copy (CSI 5i/4i) is active.
type Printer interface {
	Print([]byte)
}

// PrinterFunc is a helper to implement Printer with a function.
type PrinterFunc func([]byte)

// Print calls the PrinterFunc.
func (p PrinterFunc) Print(d []byte) { p(d) }

// Clipboard is the collaborator behind OSC 52 set/query sequences.
type Clipboard interface {
	SetClipboard(text string)
	GetClipboard() (string, bool)
}

// DcsHandler receives the payload of a device control string whose content
// starts with the registered prefix.
type DcsHandler func(t *Terminal, data string)

// ApcHandler receives the payload of an application program command whose
// content starts with the registered prefix.
type ApcHandler func(t *Terminal, data string)

// Terminal is the orchestrator: it owns the screen grids, the scrollback,
// the mode flags, the selection and the damage record, and applies parser
// actions as buffer mutations. Exactly one goroutine may mutate it at a
// time; the mutex enforces that single-writer discipline for apply, resize
// and snapshot.
type Terminal struct {
	mu sync.Mutex

	main   *Grid
	alt    *Grid
	active *Grid

	history *Scrollback
	modes   Modes
	damage  Damage
	sel     *Selection

	title      string
	workingDir string

	g0, g1 charSet
	useG1  bool

	// origin mode is saved alongside the cursor by DECSC
	savedOrigin bool

	reply     io.Writer
	onTitle   func(string)
	onBell    func()
	onCwd     func(string)
	clipboard Clipboard
	printer   Printer

	printing  bool
	printData []byte

	// last printed rune and width, for REP (CSI b)
	lastPrint      rune
	lastPrintWidth int

	dcsHandlers map[string]DcsHandler
	dcsBuf      []byte
	apcHandlers map[string]ApcHandler

	oscHandlers map[int]func(*Terminal, string)

	logger *log.Logger
}

var _ Performer = (*Terminal)(nil)

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithLogger sets the structured logger used for unsupported sequences.
func WithLogger(l *log.Logger) Option {
	return func(t *Terminal) { t.logger = l }
}

// WithReply sets the writer that receives terminal responses (DSR, DA,
// cursor position reports). Usually the PTY input. Responses are discarded
// when unset.
func WithReply(w io.Writer) Option {
	return func(t *Terminal) { t.reply = w }
}

// WithTitleHandler registers the window-title collaborator.
func WithTitleHandler(f func(string)) Option {
	return func(t *Terminal) { t.onTitle = f }
}

// WithBellHandler registers the bell collaborator.
func WithBellHandler(f func()) Option {
	return func(t *Terminal) { t.onBell = f }
}

// WithWorkingDirHandler registers the OSC 7 working-directory collaborator.
func WithWorkingDirHandler(f func(string)) Option {
	return func(t *Terminal) { t.onCwd = f }
}

// WithClipboard registers the OSC 52 clipboard collaborator.
func WithClipboard(c Clipboard) Option {
	return func(t *Terminal) { t.clipboard = c }
}

// WithPrinter sets the printer spool target for media-copy mode.
func WithPrinter(p Printer) Option {
	return func(t *Terminal) { t.printer = p }
}

// WithScrollback overrides the default scrollback capacity.
func WithScrollback(lines int) Option {
	return func(t *Terminal) { t.history = NewScrollback(lines) }
}

// New creates a terminal with the given visible dimensions.
func New(rows, cols int, opts ...Option) *Terminal {
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	t := &Terminal{
		modes:       defaultModes(),
		logger:      log.Default(),
		oscHandlers: make(map[int]func(*Terminal, string)),
		dcsHandlers: make(map[string]DcsHandler),
		apcHandlers: make(map[string]ApcHandler),
	}
	for _, o := range opts {
		o(t)
	}
	if t.history == nil {
		t.history = NewScrollback(defaultScrollback)
	}
	t.main = newGrid(rows, cols, t.history)
	t.alt = newGrid(rows, cols, nil)
	t.active = t.main
	return t
}

// Process feeds a chunk of PTY output through the parser into this terminal
// under the single-writer lock. The parser persists across calls, so chunk
// boundaries may fall anywhere.
func (t *Terminal) Process(p *Parser, buf []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// any buffer mutation invalidates selection coordinates
	t.sel = nil
	p.Advance(buf)
}

// Resize applies new dimensions to both screens, exchanging rows with the
// scrollback per the resize policy. It must be applied before processing
// further bytes from a resized PTY.
func (t *Terminal) Resize(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > maxRows || cols > maxCols {
		return fmt.Errorf("%w: %dx%d", ErrResizeOutOfBounds, rows, cols)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if rows == t.active.rows && cols == t.active.cols {
		return nil
	}
	t.main.resize(rows, cols)
	t.alt.resize(rows, cols)
	t.sel = nil
	t.damage.markAll()
	return nil
}

// Size returns the current dimensions.
func (t *Terminal) Size() (rows, cols int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.rows, t.active.cols
}

// Title returns the last OSC-set window title.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// Snapshot is the pull-based renderer view: deep copies of the visible
// lines plus cursor, selection and the damage accumulated since the last
// snapshot.
type Snapshot struct {
	Rows, Cols int
	Lines      []Line
	Cursor     CursorState
	Modes      Modes
	Title      string
	Selection  *Selection
	Damage     DamageRegion
}

// Snapshot atomically captures the visible content and takes the damage
// region. Damage marks are delivered exactly once: a second call with no
// intervening mutation reports an empty region.
func (t *Terminal) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]Line, t.active.rows)
	for i := range lines {
		lines[i] = t.active.Line(i).clone()
	}
	cur := t.active.cursor
	cur.Visible = t.modes.Has(ModeShowCursor)
	var sel *Selection
	if t.sel != nil {
		s := *t.sel
		sel = &s
	}
	return Snapshot{
		Rows:      t.active.rows,
		Cols:      t.active.cols,
		Lines:     lines,
		Cursor:    cur,
		Modes:     t.modes,
		Title:     t.title,
		Selection: sel,
		Damage:    t.damage.take(),
	}
}

// TakeDamage returns and clears the damage region without copying content.
func (t *Terminal) TakeDamage() DamageRegion {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.damage.take()
}

// HistoryLen returns the number of scrollback lines currently stored.
func (t *Terminal) HistoryLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Len()
}

// HistoryView returns a read-only window of scrollback lines for rendering
// while scrolled back; offset counts back from the newest stored line.
func (t *Terminal) HistoryView(offset, count int) []Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	view := t.history.View(offset, count)
	out := make([]Line, len(view))
	for i := range view {
		out[i] = view[i].clone()
	}
	return out
}

// Text returns the visible buffer joined with newlines, no style
// information.
func (t *Terminal) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := ""
	for i := 0; i < t.active.rows; i++ {
		if i > 0 {
			out += "\n"
		}
		out += t.active.Line(i).String()
	}
	return out
}

// RegisterOSCHandler overrides handling for one OSC command number. The
// handler runs with the terminal lock held and receives the raw data
// portion.
func (t *Terminal) RegisterOSCHandler(command int, handler func(*Terminal, string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.oscHandlers[command] = handler
}

// RegisterDCSHandler routes device control strings starting with the given
// prefix (e.g. "tmux;") to handler.
func (t *Terminal) RegisterDCSHandler(prefix string, handler DcsHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dcsHandlers[prefix] = handler
}

// RegisterAPCHandler routes application program commands starting with the
// given prefix to handler.
func (t *Terminal) RegisterAPCHandler(prefix string, handler ApcHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apcHandlers[prefix] = handler
}

// writeReply sends a response sequence toward the hosted program.
func (t *Terminal) writeReply(b []byte) {
	if t.reply == nil {
		return
	}
	_, _ = t.reply.Write(b)
}

// Print implements Performer. The rune is translated through the active
// charset and written at the cursor.
func (t *Terminal) Print(r rune) {
	if t.printing {
		t.printData = append(t.printData, []byte(string(r))...)
		return
	}
	if t.useG1 {
		r = charSetMap[t.g1](r)
	} else {
		r = charSetMap[t.g0](r)
	}
	w := runeWidth(r)
	if w > 0 {
		t.lastPrint, t.lastPrintWidth = r, w
	}
	first, last := t.active.print(r, w, t.modes.Has(ModeAutowrap), t.modes.Has(ModeInsert))
	t.damage.markRange(first, last)
}

// Execute implements Performer for C0 control bytes.
func (t *Terminal) Execute(b byte) {
	if t.printing {
		t.printData = append(t.printData, b)
		return
	}
	g := t.active
	switch b {
	case asciiBell:
		if t.onBell != nil {
			t.onBell()
		}
	case asciiBackspace:
		g.backspace()
	case '\t':
		g.tab()
	case '\n', '\v', '\f':
		// LF starts a fresh line; hosted programs that want bare index
		// motion use ESC D
		from := g.cursor.Row
		atBottom := from == g.scrollBottom
		g.linefeed()
		g.carriageReturn()
		if atBottom {
			t.damage.markRange(g.scrollTop, g.scrollBottom)
		} else {
			t.damage.markRange(from, g.cursor.Row)
		}
	case '\r':
		g.carriageReturn()
	case 0x0e: // SO: switch to G1
		t.useG1 = true
	case 0x0f: // SI: switch to G0
		t.useG1 = false
	default:
		// NUL and friends are dropped
	}
}

// EscDispatch implements Performer for plain escape sequences.
func (t *Terminal) EscDispatch(intermediates []byte, ignore bool, final byte) {
	if ignore {
		return
	}
	if len(intermediates) > 0 {
		t.designateCharset(intermediates[0], final)
		return
	}
	g := t.active
	switch final {
	case '7': // DECSC
		g.saveCursor()
		t.savedOrigin = t.modes.Has(ModeOrigin)
	case '8': // DECRC
		g.restoreCursor()
		t.modes.set(ModeOrigin, t.savedOrigin)
		t.damage.markRow(g.cursor.Row)
	case 'D': // IND
		t.index()
	case 'E': // NEL
		t.index()
		g.carriageReturn()
	case 'M': // RI
		if g.cursor.Row == g.scrollTop {
			g.reverseLinefeed()
			t.damage.markRange(g.scrollTop, g.scrollBottom)
		} else {
			g.reverseLinefeed()
		}
	case 'H': // HTS
		g.setTabStop()
	case 'c': // RIS
		t.reset()
	case '=': // DECKPAM
		t.modes.set(ModeAppKeypad, true)
	case '>': // DECKPNM
		t.modes.set(ModeAppKeypad, false)
	case '\\': // ST terminating a string; nothing left to do
	default:
		t.logger.Debug("unrecognised escape", "final", string(final))
	}
}

// index moves the cursor down, scrolling within the region at the bottom
// margin.
func (t *Terminal) index() {
	g := t.active
	if g.cursor.Row == g.scrollBottom {
		g.linefeed()
		t.damage.markRange(g.scrollTop, g.scrollBottom)
	} else {
		g.linefeed()
	}
}

func (t *Terminal) designateCharset(intermediate, final byte) {
	var cs charSet
	switch final {
	case '0':
		cs = charSetDECSpecialGraphics
	case 'A':
		cs = charSetAlternate
	case 'B':
		cs = charSetANSII
	default:
		t.logger.Debug("unhandled charset", "designator", string(final))
		return
	}
	switch intermediate {
	case '(':
		t.g0 = cs
	case ')':
		t.g1 = cs
	}
}

// reset performs a full reset equivalent to RIS (ESC c).
func (t *Terminal) reset() {
	rows, cols := t.active.rows, t.active.cols
	t.main = newGrid(rows, cols, t.history)
	t.alt = newGrid(rows, cols, nil)
	t.active = t.main
	t.modes = defaultModes()
	t.g0, t.g1 = charSetANSII, charSetANSII
	t.useG1 = false
	t.sel = nil
	t.printing = false
	t.printData = nil
	t.damage.markAll()
}

// softReset implements DECSTR: modes and attributes reset, screen and
// scrollback retained.
func (t *Terminal) softReset() {
	g := t.active
	t.modes = defaultModes()
	t.g0, t.g1 = charSetANSII, charSetANSII
	t.useG1 = false
	g.pen.reset()
	g.scrollTop = 0
	g.scrollBottom = g.rows - 1
	g.moveTo(0, 0)
	g.saved = savedCursor{}
	t.damage.markRow(0)
}

// enterAlt switches to the alternate screen. The primary screen and its
// scrollback stay intact but inert.
func (t *Terminal) enterAlt(clear bool) {
	if t.modes.Has(ModeAltScreen) {
		return
	}
	t.modes.set(ModeAltScreen, true)
	t.active = t.alt
	if clear {
		t.alt.moveTo(0, 0)
		t.alt.clearScreen(ClearAll)
	}
	t.sel = nil
	t.damage.markAll()
}

func (t *Terminal) exitAlt() {
	if !t.modes.Has(ModeAltScreen) {
		return
	}
	t.modes.set(ModeAltScreen, false)
	t.active = t.main
	t.sel = nil
	t.damage.markAll()
}

// startPrinting begins spooling output to the printer collaborator
// (CSI 5 i).
func (t *Terminal) startPrinting() {
	t.printing = true
	t.printData = nil
}

// stopPrinting ends media-copy mode and delivers the spool (CSI 4 i).
func (t *Terminal) stopPrinting() {
	if !t.printing {
		return
	}
	t.printing = false
	if t.printer != nil {
		t.printer.Print(t.printData)
	} else if len(t.printData) > 0 {
		t.logger.Debug("print data received but no printer is set")
	}
	t.printData = nil
}
