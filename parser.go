package gridterm

import (
	"bytes"
	"unicode/utf8"
)

// Performer receives the discrete actions decoded from the byte stream. The
// Terminal implements it; tests may substitute recorders.
type Performer interface {
	// Print draws a single decoded rune at the cursor.
	Print(r rune)
	// Execute handles a C0 control byte (BS, TAB, LF, CR, BEL, SO, SI...).
	Execute(b byte)
	// CsiDispatch handles a complete control sequence. params holds one
	// slice per parameter; colon-separated subparameters extend that slice.
	// ignore is set when the sequence overflowed its parameter or
	// intermediate capacity and should not be trusted beyond logging.
	CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, final byte)
	// EscDispatch handles a completed escape sequence.
	EscDispatch(intermediates []byte, ignore bool, final byte)
	// OscDispatch handles an operating system command; params are the
	// semicolon-separated segments.
	OscDispatch(params [][]byte, bellTerminated bool)
	// Hook begins a device control string; Put streams its payload bytes
	// and Unhook ends it.
	Hook(params [][]uint16, intermediates []byte, ignore bool, final byte)
	Put(b byte)
	Unhook()
	// ApcDispatch handles an application program command string.
	ApcDispatch(data []byte)
}

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateOscString
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsPassthrough
	stateDcsIgnore
	stateSosPmApcString
)

const (
	maxParams        = 32
	maxSubparams     = 6
	maxIntermediates = 2
	maxOscBytes      = 4096
	maxParamValue    = 65535
)

// Parser is a table-driven VT escape sequence decoder. It persists across
// Advance calls so sequences may span arbitrary chunk boundaries; feeding a
// byte stream in any segmentation yields the same action sequence.
type Parser struct {
	perform Performer
	state   parserState

	params        [][]uint16
	curParam      []uint16
	curValue      uint16
	ignore        bool
	intermediates []byte

	oscBuf []byte

	// stringKind distinguishes SOS (X), PM (^) and APC (_) strings.
	stringKind byte
	strBuf     []byte

	inDcs bool

	utf8Buf  [4]byte
	utf8Len  int
	utf8Need int
}

// NewParser returns a parser in the Ground state delivering actions to p.
func NewParser(p Performer) *Parser {
	return &Parser{perform: p}
}

// Reset aborts any partial sequence and returns to the Ground state.
func (p *Parser) Reset() {
	if p.state == stateDcsPassthrough {
		p.perform.Unhook()
	}
	p.state = stateGround
	p.clearSeq()
	p.utf8Len, p.utf8Need = 0, 0
}

func (p *Parser) clearSeq() {
	p.params = p.params[:0]
	p.curParam = nil
	p.curValue = 0
	p.ignore = false
	p.intermediates = p.intermediates[:0]
	p.oscBuf = p.oscBuf[:0]
	p.strBuf = p.strBuf[:0]
}

// Advance feeds a chunk of raw PTY output through the state machine.
func (p *Parser) Advance(buf []byte) {
	for _, b := range buf {
		p.advanceByte(b)
	}
}

func (p *Parser) advanceByte(b byte) {
	// Pending UTF-8 assembly (Ground only) takes priority so continuation
	// bytes are never misread as C1 controls.
	if p.utf8Need > 0 {
		if b&0xc0 == 0x80 {
			p.utf8Buf[p.utf8Len] = b
			p.utf8Len++
			if p.utf8Len == p.utf8Need {
				r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.utf8Len, p.utf8Need = 0, 0
				if r != utf8.RuneError {
					p.perform.Print(r)
				}
			}
			return
		}
		// Truncated sequence: drop it and process b normally.
		p.utf8Len, p.utf8Need = 0, 0
	}

	// Anywhere transitions take priority over state rules.
	switch b {
	case 0x18, 0x1a: // CAN, SUB abort any sequence with no visible output
		if p.state == stateDcsPassthrough {
			p.perform.Unhook()
		}
		p.state = stateGround
		p.clearSeq()
		return
	case 0x1b:
		p.terminateString(false)
		p.state = stateEscape
		p.clearSeq()
		return
	}
	if b >= 0x80 && b <= 0x9f {
		p.handleC1(b)
		return
	}

	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateEscapeIntermediate:
		p.escapeIntermediate(b)
	case stateCsiEntry:
		p.csiEntry(b)
	case stateCsiParam:
		p.csiParam(b)
	case stateCsiIntermediate:
		p.csiIntermediate(b)
	case stateCsiIgnore:
		p.csiIgnore(b)
	case stateOscString:
		p.oscString(b)
	case stateDcsEntry:
		p.dcsEntry(b)
	case stateDcsParam:
		p.dcsParam(b)
	case stateDcsIntermediate:
		p.dcsIntermediate(b)
	case stateDcsPassthrough:
		p.dcsPassthrough(b)
	case stateDcsIgnore:
		p.dcsIgnore(b)
	case stateSosPmApcString:
		p.sosPmApcString(b)
	}
}

// terminateString finishes any in-flight OSC/DCS/APC string, used when an
// ESC or ST arrives.
func (p *Parser) terminateString(bell bool) {
	switch p.state {
	case stateOscString:
		p.dispatchOsc(bell)
	case stateDcsPassthrough:
		p.perform.Unhook()
	case stateSosPmApcString:
		if p.stringKind == '_' {
			p.perform.ApcDispatch(append([]byte(nil), p.strBuf...))
		}
	}
}

// handleC1 maps 8-bit C1 controls onto their 7-bit equivalents. Inside
// string states only ST (0x9c) is meaningful.
func (p *Parser) handleC1(b byte) {
	switch p.state {
	case stateOscString, stateDcsPassthrough, stateSosPmApcString, stateDcsIgnore, stateCsiIgnore:
		if b == 0x9c { // ST
			p.terminateString(false)
			p.state = stateGround
			p.clearSeq()
			return
		}
		if p.state == stateOscString {
			p.putOsc(b)
		} else if p.state == stateDcsPassthrough {
			p.perform.Put(b)
		}
		return
	}
	if p.state != stateGround {
		return
	}
	switch b {
	case 0x84: // IND
		p.perform.EscDispatch(nil, false, 'D')
	case 0x85: // NEL
		p.perform.EscDispatch(nil, false, 'E')
	case 0x88: // HTS
		p.perform.EscDispatch(nil, false, 'H')
	case 0x8d: // RI
		p.perform.EscDispatch(nil, false, 'M')
	case 0x90: // DCS
		p.state = stateDcsEntry
		p.clearSeq()
	case 0x9b: // CSI
		p.state = stateCsiEntry
		p.clearSeq()
	case 0x9d: // OSC
		p.state = stateOscString
		p.clearSeq()
	case 0x98, 0x9e, 0x9f: // SOS, PM, APC
		p.state = stateSosPmApcString
		p.clearSeq()
		p.stringKind = map[byte]byte{0x98: 'X', 0x9e: '^', 0x9f: '_'}[b]
	}
}

func (p *Parser) ground(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x7f:
		p.perform.Print(rune(b))
	case b == 0x7f:
		// DEL is ignored on output
	case b&0xe0 == 0xc0:
		p.startUtf8(b, 2)
	case b&0xf0 == 0xe0:
		p.startUtf8(b, 3)
	case b&0xf8 == 0xf0:
		p.startUtf8(b, 4)
	default:
		// stray continuation or invalid lead byte
	}
}

func (p *Parser) startUtf8(b byte, need int) {
	p.utf8Buf[0] = b
	p.utf8Len = 1
	p.utf8Need = need
}

func (p *Parser) escape(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x30:
		p.collect(b)
		p.state = stateEscapeIntermediate
	case b == '[':
		p.state = stateCsiEntry
		p.clearSeq()
	case b == ']':
		p.state = stateOscString
		p.clearSeq()
	case b == 'P':
		p.state = stateDcsEntry
		p.clearSeq()
	case b == 'X' || b == '^' || b == '_':
		p.state = stateSosPmApcString
		p.clearSeq()
		p.stringKind = b
	case b < 0x7f:
		p.perform.EscDispatch(p.takeIntermediates(), p.ignore, b)
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) escapeIntermediate(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x30:
		p.collect(b)
	case b < 0x7f:
		p.perform.EscDispatch(p.takeIntermediates(), p.ignore, b)
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) csiEntry(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x30:
		p.collect(b)
		p.state = stateCsiIntermediate
	case b <= '9' || b == ';' || b == ':':
		p.paramByte(b)
		p.state = stateCsiParam
	case b >= 0x3c && b <= 0x3f: // private markers < = > ?
		p.collect(b)
		p.state = stateCsiParam
	case b <= 0x7e:
		p.perform.CsiDispatch(p.takeParams(), p.takeIntermediates(), p.ignore, b)
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) csiParam(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x30:
		p.collect(b)
		p.state = stateCsiIntermediate
	case b <= '9' || b == ';' || b == ':':
		p.paramByte(b)
	case b >= 0x3c && b <= 0x3f:
		p.state = stateCsiIgnore
	case b <= 0x7e:
		p.finishParam()
		p.perform.CsiDispatch(p.takeParams(), p.takeIntermediates(), p.ignore, b)
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) csiIntermediate(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b < 0x30:
		p.collect(b)
	case b < 0x40:
		p.state = stateCsiIgnore
	case b <= 0x7e:
		p.finishParam()
		p.perform.CsiDispatch(p.takeParams(), p.takeIntermediates(), p.ignore, b)
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) csiIgnore(b byte) {
	switch {
	case b < 0x20:
		p.perform.Execute(b)
	case b >= 0x40 && b <= 0x7e:
		p.state = stateGround
		p.clearSeq()
	}
}

func (p *Parser) oscString(b byte) {
	switch {
	case b == 0x07:
		p.dispatchOsc(true)
		p.state = stateGround
		p.clearSeq()
	case b < 0x20:
		// other controls are dropped inside OSC
	default:
		p.putOsc(b)
	}
}

func (p *Parser) putOsc(b byte) {
	if len(p.oscBuf) < maxOscBytes {
		p.oscBuf = append(p.oscBuf, b)
	}
}

func (p *Parser) dispatchOsc(bell bool) {
	if len(p.oscBuf) == 0 {
		return
	}
	segs := bytes.Split(p.oscBuf, []byte{';'})
	params := make([][]byte, len(segs))
	for i, s := range segs {
		params[i] = append([]byte(nil), s...)
	}
	p.perform.OscDispatch(params, bell)
}

func (p *Parser) dcsEntry(b byte) {
	switch {
	case b < 0x20:
		// ignored in DCS entry
	case b < 0x30:
		p.collect(b)
		p.state = stateDcsIntermediate
	case b <= '9' || b == ';' || b == ':':
		p.paramByte(b)
		p.state = stateDcsParam
	case b >= 0x3c && b <= 0x3f:
		p.collect(b)
		p.state = stateDcsParam
	case b <= 0x7e:
		p.hook(b)
	}
}

func (p *Parser) dcsParam(b byte) {
	switch {
	case b < 0x20:
	case b < 0x30:
		p.collect(b)
		p.state = stateDcsIntermediate
	case b <= '9' || b == ';' || b == ':':
		p.paramByte(b)
	case b >= 0x3c && b <= 0x3f:
		p.state = stateDcsIgnore
	case b <= 0x7e:
		p.hook(b)
	}
}

func (p *Parser) dcsIntermediate(b byte) {
	switch {
	case b < 0x20:
	case b < 0x30:
		p.collect(b)
	case b < 0x40:
		p.state = stateDcsIgnore
	case b <= 0x7e:
		p.hook(b)
	}
}

func (p *Parser) hook(final byte) {
	p.finishParam()
	p.perform.Hook(p.takeParams(), p.takeIntermediates(), p.ignore, final)
	p.state = stateDcsPassthrough
}

func (p *Parser) dcsPassthrough(b byte) {
	p.perform.Put(b)
}

func (p *Parser) dcsIgnore(b byte) {
	// consumed until ST, ESC or CAN/SUB (handled by anywhere rules)
}

func (p *Parser) sosPmApcString(b byte) {
	if p.stringKind == '_' && len(p.strBuf) < maxOscBytes {
		p.strBuf = append(p.strBuf, b)
	}
}

func (p *Parser) collect(b byte) {
	if len(p.intermediates) < maxIntermediates {
		p.intermediates = append(p.intermediates, b)
	} else {
		p.ignore = true
	}
}

// paramByte accumulates one byte of the parameter list. Overflowing values
// and counts are clamped, never rejected, so a malformed sequence cannot
// desync the stream.
func (p *Parser) paramByte(b byte) {
	switch b {
	case ';':
		p.finishParam()
	case ':':
		if len(p.curParam) < maxSubparams {
			p.curParam = append(p.curParam, p.curValue)
		}
		p.curValue = 0
	default: // '0'..'9'
		v := uint32(p.curValue)*10 + uint32(b-'0')
		if v > maxParamValue {
			v = maxParamValue
		}
		p.curValue = uint16(v)
	}
}

func (p *Parser) finishParam() {
	if len(p.curParam) < maxSubparams {
		p.curParam = append(p.curParam, p.curValue)
	}
	if len(p.params) < maxParams {
		p.params = append(p.params, p.curParam)
	} else {
		p.ignore = true
	}
	p.curParam = nil
	p.curValue = 0
}

func (p *Parser) takeParams() [][]uint16 {
	if len(p.params) == 0 {
		return nil
	}
	out := make([][]uint16, len(p.params))
	copy(out, p.params)
	return out
}

func (p *Parser) takeIntermediates() []byte {
	if len(p.intermediates) == 0 {
		return nil
	}
	return append([]byte(nil), p.intermediates...)
}
