// Package draw rasterizes the game scene onto a terminal using colored
// half-block characters.
package draw

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// maxChunkSize is the maximum bytes to write at once. It stays below a
// 1500 byte MTU once SSH and TCP headers are added.
const maxChunkSize = 1400

// cell is one terminal cell: palette indices of its upper and lower half.
type cell struct {
	top, bottom uint8
}

// dirtyCell never matches a real cell, forcing a redraw.
var dirtyCell = cell{top: 0xff, bottom: 0xff}

// Canvas is a color drawing buffer with 2x vertical resolution using
// half-block characters. Game objects are drawn in logical coordinates and
// scaled to terminal pixels. Render only emits cells that changed since the
// previous frame.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []uint8 // Flat slice: [y * termWidth + x] - palette index, 0 if empty
	prev           []cell  // Cells as last rendered: [row * termWidth + col]
	forceRedraw    bool

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	palette   *Palette
	renderBuf strings.Builder // Buffer for batching render output
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the game.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		palette:       NewPalette(),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]uint8, subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.forceRedraw = true
	}

	// Update scale factors
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Palette returns the canvas color palette.
func (c *Canvas) Palette() *Palette {
	return c.palette
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render emit every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// MarkTextDirty marks length cells starting at the 1-based canvas position
// (col, row) as overwritten by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, length int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < col-1+length && x < c.termWidth; x++ {
		c.prev[r*c.termWidth+x] = dirtyCell
	}
}

// FillRect fills a logical-space box. Every non-empty box covers at least
// one pixel so small objects never vanish at low resolutions.
func (c *Canvas) FillRect(b physics.AABB, color render.Color) {
	idx := c.palette.Index(color)

	x0 := int(math.Floor(b.MinX * c.scaleX))
	x1 := int(math.Ceil(b.MaxX*c.scaleX)) - 1
	y0 := int(math.Floor(b.MinY * c.scaleY))
	y1 := int(math.Ceil(b.MaxY*c.scaleY)) - 1
	x1 = max(x1, x0)
	y1 = max(y1, y0)

	x0, x1 = max(x0, 0), min(x1, c.termWidth-1)
	y0, y1 = max(y0, 0), min(y1, c.subPixelHeight-1)
	for y := y0; y <= y1; y++ {
		row := c.pixels[y*c.termWidth : (y+1)*c.termWidth]
		for x := x0; x <= x1; x++ {
			row[x] = idx
		}
	}
}

// Pixel returns the palette index at terminal pixel (x, y), 0 when out of range.
func (c *Canvas) Pixel(x, y int) uint8 {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return 0
	}
	return c.pixels[y*c.termWidth+x]
}

// Render outputs the changed cells to the writer using half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	force := c.forceRedraw
	c.forceRedraw = false

	style := ""
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			i := row*c.termWidth + col
			if !force && c.prev[i] == cur {
				continue
			}
			c.prev[i] = cur

			want, ch := c.cellStyle(cur)
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH", row+1+c.offsetRow, col+1+c.offsetCol)
			if want != style {
				c.renderBuf.WriteString(ColorReset)
				c.renderBuf.WriteString(want)
				style = want
			}
			c.renderBuf.WriteRune(ch)
		}
	}
	if style != "" {
		c.renderBuf.WriteString(ColorReset)
	}

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// cellStyle picks the SGR sequence and glyph for a cell.
func (c *Canvas) cellStyle(cl cell) (string, rune) {
	switch {
	case cl.top == 0 && cl.bottom == 0:
		return "", ' '
	case cl.top == cl.bottom:
		return c.palette.FG(cl.top), BlockFull
	case cl.bottom == 0:
		return c.palette.FG(cl.top), BlockUpperHalf
	case cl.top == 0:
		return c.palette.FG(cl.bottom), BlockLowerHalf
	default:
		return c.palette.FG(cl.top) + c.palette.BG(cl.bottom), BlockUpperHalf
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	bar := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, bar)
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, bar)
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, bar)
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, bar)
		}
	}

	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based canvas position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}
