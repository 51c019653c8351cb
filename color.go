package gridterm

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorMode selects how a Color value is interpreted.
type ColorMode uint8

const (
	// ColorModeDefault defers to the renderer's default foreground or
	// background.
	ColorModeDefault ColorMode = iota
	// ColorModeIndexed references the 256-color xterm palette.
	ColorModeIndexed
	// ColorModeRGB is a 24-bit truecolor value.
	ColorModeRGB
)

// Color is a renderer-independent cell color.
type Color struct {
	Mode    ColorMode
	Index   uint8
	R, G, B uint8
}

// DefaultColor returns the renderer-default color.
func DefaultColor() Color { return Color{} }

// IndexedColor returns a palette color.
func IndexedColor(i uint8) Color { return Color{Mode: ColorModeIndexed, Index: i} }

// RGBColor returns a truecolor value.
func RGBColor(r, g, b uint8) Color { return Color{Mode: ColorModeRGB, R: r, G: g, B: b} }

// IsDefault reports whether the color defers to the renderer default.
func (c Color) IsDefault() bool { return c.Mode == ColorModeDefault }

var colourBands = []uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

// base16 holds the conventional VGA values for ANSI colors 0-15. Renderers
// may theme these; the palette exists so the engine can answer concrete RGB
// queries without a renderer attached.
var base16 = [16]color.RGBA{
	{0, 0, 0, 255}, {170, 0, 0, 255}, {0, 170, 0, 255}, {170, 170, 0, 255},
	{0, 0, 170, 255}, {170, 0, 170, 255}, {0, 170, 170, 255}, {170, 170, 170, 255},
	{85, 85, 85, 255}, {255, 85, 85, 255}, {85, 255, 85, 255}, {255, 255, 85, 255},
	{85, 85, 255, 255}, {255, 85, 255, 255}, {85, 255, 255, 255}, {255, 255, 255, 255},
}

var xtermPalette = buildPalette()

func buildPalette() [256]color.RGBA {
	var p [256]color.RGBA
	copy(p[:16], base16[:])
	// 6x6x6 color cube
	for i := 16; i <= 231; i++ {
		id := i - 16
		b := id % 6
		g := (id / 6) % 6
		r := id / 36
		p[i] = color.RGBA{colourBands[r], colourBands[g], colourBands[b], 255}
	}
	// grayscale ramp
	for i := 232; i <= 255; i++ {
		y := uint8(8 + (i-232)*10)
		p[i] = color.RGBA{y, y, y, 255}
	}
	return p
}

// PaletteColor returns the concrete RGB value of palette index i.
func PaletteColor(i uint8) color.RGBA { return xtermPalette[i] }

// Resolve maps a cell color plus its flags to a concrete RGB value using the
// built-in palette. Bold brightens the basic 8 colors per xterm convention;
// dim blends toward black.
func Resolve(c Color, flags CellFlags, foreground bool) color.RGBA {
	var out color.RGBA
	switch c.Mode {
	case ColorModeDefault:
		if foreground {
			out = base16[7]
		} else {
			out = base16[0]
		}
	case ColorModeIndexed:
		idx := c.Index
		if foreground && flags&FlagBold != 0 && idx < 8 {
			idx += 8
		}
		out = xtermPalette[idx]
	case ColorModeRGB:
		out = color.RGBA{c.R, c.G, c.B, 255}
	}
	if foreground && flags&FlagDim != 0 {
		dimmed := rgbaToColorful(out).BlendRgb(colorful.Color{}, 0.4)
		r, g, b := dimmed.RGB255()
		out = color.RGBA{r, g, b, 255}
	}
	return out
}

func rgbaToColorful(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// handleSGR applies a Select Graphic Rendition parameter list to the pen.
// Subparameters (colon forms such as 4:3 or 38:2:r:g:b) are accepted.
func (t *Terminal) handleSGR(params [][]uint16) {
	pen := &t.active.pen
	if len(params) == 0 {
		pen.reset()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		if len(p) == 0 {
			continue
		}
		switch p[0] {
		case 0:
			pen.reset()
		case 1:
			pen.Flags |= FlagBold
		case 2:
			pen.Flags |= FlagDim
		case 3:
			pen.Flags |= FlagItalic
		case 4:
			// 4:<n> selects underline style; 4:0 clears.
			if len(p) > 1 {
				switch p[1] {
				case 0:
					pen.Flags &^= FlagUnderline | FlagDoubleUnderline | FlagCurlyUnderline
				case 2:
					pen.Flags |= FlagDoubleUnderline
				case 3:
					pen.Flags |= FlagCurlyUnderline
				default:
					pen.Flags |= FlagUnderline
				}
			} else {
				pen.Flags |= FlagUnderline
			}
		case 5, 6:
			pen.Flags |= FlagBlink
		case 7:
			pen.Flags |= FlagInverse
		case 8:
			pen.Flags |= FlagHidden
		case 9:
			pen.Flags |= FlagStrike
		case 21:
			pen.Flags |= FlagDoubleUnderline
		case 22:
			pen.Flags &^= FlagBold | FlagDim
		case 23:
			pen.Flags &^= FlagItalic
		case 24:
			pen.Flags &^= FlagUnderline | FlagDoubleUnderline | FlagCurlyUnderline
		case 25:
			pen.Flags &^= FlagBlink
		case 27:
			pen.Flags &^= FlagInverse
		case 28:
			pen.Flags &^= FlagHidden
		case 29:
			pen.Flags &^= FlagStrike
		case 30, 31, 32, 33, 34, 35, 36, 37:
			pen.FG = IndexedColor(uint8(p[0] - 30))
		case 38:
			c, skip, ok := extendedColor(params, i, p)
			if ok {
				pen.FG = c
			}
			i += skip
		case 39:
			pen.FG = DefaultColor()
		case 40, 41, 42, 43, 44, 45, 46, 47:
			pen.BG = IndexedColor(uint8(p[0] - 40))
		case 48:
			c, skip, ok := extendedColor(params, i, p)
			if ok {
				pen.BG = c
			}
			i += skip
		case 49:
			pen.BG = DefaultColor()
		case 90, 91, 92, 93, 94, 95, 96, 97:
			pen.FG = IndexedColor(uint8(p[0] - 90 + 8))
		case 100, 101, 102, 103, 104, 105, 106, 107:
			pen.BG = IndexedColor(uint8(p[0] - 100 + 8))
		default:
			t.logger.Debug("unsupported graphics mode", "sgr", p[0])
		}
	}
}

// extendedColor decodes the 38/48 extended color forms. Both the semicolon
// style (38;5;n spread across separate parameters) and the colon style
// (38:5:n packed into subparameters) occur in the wild; ECMA-48 permits both.
// It returns the color, how many following parameters were consumed, and
// whether decoding succeeded.
func extendedColor(params [][]uint16, i int, p []uint16) (Color, int, bool) {
	if len(p) > 1 {
		switch p[1] {
		case 5:
			if len(p) > 2 {
				return IndexedColor(uint8(p[2])), 0, true
			}
		case 2:
			if len(p) > 4 {
				return RGBColor(uint8(p[2]), uint8(p[3]), uint8(p[4])), 0, true
			}
		}
		return Color{}, 0, false
	}
	if i+1 >= len(params) || len(params[i+1]) == 0 {
		return Color{}, 0, false
	}
	switch params[i+1][0] {
	case 5:
		if i+2 < len(params) && len(params[i+2]) > 0 {
			return IndexedColor(uint8(params[i+2][0])), 2, true
		}
		return Color{}, 1, false
	case 2:
		if i+4 < len(params) {
			return RGBColor(uint8(params[i+2][0]), uint8(params[i+3][0]), uint8(params[i+4][0])), 4, true
		}
		return Color{}, len(params) - i - 1, false
	}
	return Color{}, 1, false
}

func (a *Attributes) reset() {
	a.FG = DefaultColor()
	a.BG = DefaultColor()
	a.Flags = 0
}
