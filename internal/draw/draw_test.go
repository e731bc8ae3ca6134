package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

func TestPaletteResolvesNames(t *testing.T) {
	p := NewPalette()

	red := p.Index(render.ColorEnemy)
	require.NotZero(t, red)
	assert.Equal(t, red, p.Index(render.ColorEnemy))
	assert.Equal(t, "\033[38;2;255;0;0m", p.FG(red))
	assert.Equal(t, "\033[48;2;255;0;0m", p.BG(red))

	hex := p.Index("#102030")
	assert.Equal(t, "\033[38;2;16;32;48m", p.FG(hex))

	// Unknown names fall back to white.
	assert.Equal(t, "\033[38;2;255;255;255m", p.FG(p.Index("no-such-color")))
	assert.Empty(t, p.FG(0))
}

func TestRGB(t *testing.T) {
	r, g, b, ok := RGB(render.ColorPlayer)
	require.True(t, ok)
	assert.Equal(t, [3]int32{0, 255, 255}, [3]int32{r, g, b})

	_, _, _, ok = RGB("not a color")
	assert.False(t, ok)
}

func TestRGBKnowsSceneColors(t *testing.T) {
	for _, c := range []render.Color{
		render.ColorPlayer, render.ColorEnemy, render.ColorWarning, render.ColorLethal,
		render.ColorDebris, render.ColorText, render.ColorHint,
	} {
		_, _, _, ok := RGB(c)
		assert.True(t, ok, "color %q", c)
	}
}

func TestFillRectScales(t *testing.T) {
	// 100x50 terminal = 100x100 pixels for an 800x800 arena: 8 units per pixel.
	c := NewScaledCanvas(100, 50, 800, 800)
	c.FillRect(physics.Rect(80, 80, 24, 24), render.ColorPlayer)

	idx := c.Palette().Index(render.ColorPlayer)
	assert.Equal(t, idx, c.Pixel(10, 10))
	assert.Equal(t, idx, c.Pixel(12, 12))
	assert.Zero(t, c.Pixel(13, 10))
	assert.Zero(t, c.Pixel(9, 10))

	// Tiny boxes still cover a pixel; boxes off the canvas are clipped.
	c.Clear()
	c.FillRect(physics.Square(405, 405, 1), render.ColorDebris)
	assert.NotZero(t, c.Pixel(50, 50))
	c.FillRect(physics.Rect(-50, -50, 2000, 100), render.ColorEnemy)
	assert.NotZero(t, c.Pixel(0, 0))
	assert.NotZero(t, c.Pixel(99, 6))
	assert.Zero(t, c.Pixel(99, 7))
}

func TestRenderOnlyEmitsChanges(t *testing.T) {
	c := NewScaledCanvas(20, 10, 200, 200)
	var buf bytes.Buffer

	c.FillRect(physics.Rect(0, 0, 20, 20), render.ColorEnemy)
	c.Render(&buf)
	first := buf.String()
	assert.Contains(t, first, string(BlockFull))
	assert.Equal(t, 20*10, strings.Count(first, "H"))

	// Same pixels: nothing to draw.
	buf.Reset()
	c.Render(&buf)
	assert.Empty(t, buf.String())

	// Text over a cell makes it repaint.
	c.MarkTextDirty(1, 1, 3)
	c.Render(&buf)
	assert.Equal(t, 3, strings.Count(buf.String(), "H"))

	buf.Reset()
	c.ForceRedraw()
	c.Render(&buf)
	assert.Equal(t, 20*10, strings.Count(buf.String(), "H"))
}

func TestRenderHalfBlocks(t *testing.T) {
	c := NewScaledCanvas(1, 1, 1, 2)
	var buf bytes.Buffer

	c.FillRect(physics.Rect(0, 0, 1, 1), render.ColorEnemy)
	c.Render(&buf)
	assert.Contains(t, buf.String(), string(BlockUpperHalf))

	buf.Reset()
	c.Clear()
	c.FillRect(physics.Rect(0, 1, 1, 1), render.ColorEnemy)
	c.Render(&buf)
	assert.Contains(t, buf.String(), string(BlockLowerHalf))

	// Two colors in one cell use foreground and background.
	buf.Reset()
	c.FillRect(physics.Rect(0, 0, 1, 1), render.ColorPlayer)
	c.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, c.Palette().FG(c.Palette().Index(render.ColorPlayer)))
	assert.Contains(t, out, c.Palette().BG(c.Palette().Index(render.ColorEnemy)))
}

func TestResizeForcesRedraw(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	var buf bytes.Buffer
	c.Render(&buf)

	buf.Reset()
	c.Resize(12, 6)
	c.Render(&buf)
	assert.Equal(t, 12*6, strings.Count(buf.String(), "H"))
	assert.Equal(t, 12, c.TerminalWidth())
	assert.Equal(t, 6, c.TerminalHeight())
}

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)

	cw.WriteAt(1, 1, "hi")
	cw.WriteStyledAt(3, 4, ColorBold, "x")
	assert.Positive(t, cw.buf.Len())
	require.NoError(t, cw.Flush())

	assert.Equal(t, "\033[2;3Hhi\033[5;5H"+ColorBold+"x"+ColorReset, out.String())
	assert.Zero(t, cw.buf.Len())

	// Large payloads are written completely.
	out.Reset()
	cw.WriteString(strings.Repeat("a", 5000))
	require.NoError(t, cw.Flush())
	assert.Equal(t, 5000, out.Len())
}
