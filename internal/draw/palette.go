package draw

import (
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/tomz197/survival/internal/render"
)

// ANSI escape sequences.
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
)

// Palette assigns small indices to scene colors and caches their 24-bit ANSI
// sequences. Index 0 is reserved for "no color".
type Palette struct {
	index map[render.Color]uint8
	fg    []string
	bg    []string
}

// NewPalette creates a palette preloaded with the game colors.
func NewPalette() *Palette {
	p := &Palette{
		index: make(map[render.Color]uint8),
		fg:    []string{""},
		bg:    []string{""},
	}
	for _, c := range []render.Color{
		render.ColorPlayer, render.ColorEnemy, render.ColorWarning, render.ColorLethal,
		render.ColorDebris, render.ColorText, render.ColorHint,
	} {
		p.Index(c)
	}
	return p
}

// RGB resolves a color name ("red", "slateblue") or "#rrggbb" value.
func RGB(c render.Color) (r, g, b int32, ok bool) {
	tc := tcell.GetColor(string(c))
	if tc == tcell.ColorDefault {
		return 0, 0, 0, false
	}
	r, g, b = tc.RGB()
	return r, g, b, r >= 0
}

// Index returns the palette index of c, registering it on first use.
// Unknown names map to white. The palette holds at most 255 colors; further
// colors share the last slot.
func (p *Palette) Index(c render.Color) uint8 {
	if i, ok := p.index[c]; ok {
		return i
	}
	if len(p.fg) > 255 {
		return uint8(len(p.fg) - 1)
	}

	r, g, b, ok := RGB(c)
	if !ok {
		r, g, b = 255, 255, 255
	}
	i := uint8(len(p.fg))
	p.fg = append(p.fg, sgr(38, r, g, b))
	p.bg = append(p.bg, sgr(48, r, g, b))
	p.index[c] = i
	return i
}

// FG returns the foreground sequence for index i ("" for 0).
func (p *Palette) FG(i uint8) string {
	if int(i) >= len(p.fg) {
		return ""
	}
	return p.fg[i]
}

// BG returns the background sequence for index i ("" for 0).
func (p *Palette) BG(i uint8) string {
	if int(i) >= len(p.bg) {
		return ""
	}
	return p.bg[i]
}

// sgr builds a 24-bit color sequence: mode 38 is foreground, 48 background.
func sgr(mode int, r, g, b int32) string {
	buf := make([]byte, 0, 20)
	buf = append(buf, "\033["...)
	buf = strconv.AppendInt(buf, int64(mode), 10)
	buf = append(buf, ";2;"...)
	buf = strconv.AppendInt(buf, int64(r), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(g), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(b), 10)
	buf = append(buf, 'm')
	return string(buf)
}
