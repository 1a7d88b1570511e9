package model

import "fmt"

// Color is an RGBA colour with 8-bit channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// White is the neutral colour used for unassigned shapes.
var White = Color{R: 255, G: 255, B: 255, A: 255}

// RGB builds an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex formats the colour as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Brightness returns the perceived luminance in 0..255.
func (c Color) Brightness() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// TextColor returns black or white, whichever reads better on this colour.
func (c Color) TextColor() Color {
	if c.Brightness() > 128 {
		return Color{A: 255}
	}
	return White
}

// ParseHexColor parses #RGB, #RRGGBB or #RRGGBBAA (leading '#' optional).
func ParseHexColor(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	hexVal := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	pair := func(i int) (uint8, bool) {
		hi, ok1 := hexVal(s[i])
		lo, ok2 := hexVal(s[i+1])
		return hi<<4 | lo, ok1 && ok2
	}
	c := Color{A: 255}
	switch len(s) {
	case 3:
		channels := [3]*uint8{&c.R, &c.G, &c.B}
		for i, ch := range []byte(s) {
			v, ok := hexVal(ch)
			if !ok {
				return Color{}, fmt.Errorf("invalid hex colour %q", s)
			}
			*channels[i] = v<<4 | v
		}
		return c, nil
	case 8:
		a, ok := pair(6)
		if !ok {
			return Color{}, fmt.Errorf("invalid hex colour %q", s)
		}
		c.A = a
		fallthrough
	case 6:
		var ok1, ok2, ok3 bool
		c.R, ok1 = pair(0)
		c.G, ok2 = pair(2)
		c.B, ok3 = pair(4)
		if !ok1 || !ok2 || !ok3 {
			return Color{}, fmt.Errorf("invalid hex colour %q", s)
		}
		return c, nil
	}
	return Color{}, fmt.Errorf("invalid hex colour %q", s)
}

// Palette holds the high-contrast cell colours used by raster classification.
// The sequence is tuned so neighbouring cells get visually distant colours
// that survive colour-range segmentation.
var Palette = []Color{
	RGB(255, 0, 0), RGB(0, 255, 0), RGB(0, 0, 255),
	RGB(255, 255, 0), RGB(255, 0, 255), RGB(0, 255, 255),
	RGB(255, 128, 0), RGB(128, 0, 255), RGB(255, 0, 128),
	RGB(0, 128, 255), RGB(128, 255, 0), RGB(255, 64, 64),
	RGB(64, 255, 64), RGB(64, 64, 255), RGB(255, 255, 64),
	RGB(255, 64, 255), RGB(64, 255, 255), RGB(192, 0, 0),
	RGB(0, 192, 0), RGB(0, 0, 192), RGB(192, 192, 0),
	RGB(192, 0, 192), RGB(0, 192, 192), RGB(255, 96, 0),
	RGB(255, 0, 96), RGB(96, 255, 0), RGB(0, 255, 96),
	RGB(96, 0, 255), RGB(0, 96, 255), RGB(255, 192, 0),
	RGB(255, 0, 192), RGB(192, 255, 0), RGB(0, 255, 192),
	RGB(192, 0, 255), RGB(0, 192, 255), RGB(128, 64, 0),
}

// CellColor returns the palette colour for a cell index.
func CellColor(cellIndex int) Color {
	if cellIndex < 0 {
		return White
	}
	return Palette[cellIndex%len(Palette)]
}
