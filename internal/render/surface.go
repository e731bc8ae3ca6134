// Package render defines the drawing surface the game core draws onto and a
// retained in-memory scene implementing it. Frontends read scene snapshots
// and rasterize them however they like (terminal canvas, browser canvas).
package render

import "github.com/tomz197/survival/internal/physics"

// Handle identifies an item on a surface. The zero value is never issued.
type Handle uint64

// Color is a named or "#rrggbb" color.
type Color string

// Palette used by the game.
const (
	ColorPlayer  Color = "aqua"
	ColorEnemy   Color = "red"
	ColorWarning Color = "dimgray"
	ColorLethal  Color = "orangered"
	ColorDebris  Color = "slateblue"
	ColorText    Color = "white"
	ColorHint    Color = "gray"
)

// Anchor selects which point of a text item sits at its position.
type Anchor int

const (
	AnchorCenter Anchor = iota
	AnchorNorthWest
)

// TextStyle is a coarse size hint for text items.
type TextStyle int

const (
	TextNormal TextStyle = iota
	TextTitle
	TextSmall
)

// Surface is a retained-mode drawing target: items stay until deleted.
// Operations on unknown handles are ignored.
type Surface interface {
	CreateRect(bounds physics.AABB, color Color) Handle
	MoveRect(h Handle, dx, dy float64)
	SetRectBounds(h Handle, bounds physics.AABB)
	RectBounds(h Handle) (physics.AABB, bool)
	SetRectColor(h Handle, color Color)
	CreateText(x, y float64, anchor Anchor, text string, style TextStyle) Handle
	SetText(h Handle, text string)
	Delete(h Handle)
	// Clear deletes every item.
	Clear()
}
