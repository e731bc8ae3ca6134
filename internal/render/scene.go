package render

import (
	"slices"
	"sync"

	"github.com/tomz197/survival/internal/physics"
)

// ItemKind distinguishes scene items.
type ItemKind int

const (
	KindRect ItemKind = iota
	KindText
)

// Item is one drawable element of a scene snapshot.
type Item struct {
	Handle Handle
	Kind   ItemKind
	Bounds physics.AABB // rect bounds; for text only MinX/MinY (the position) are used
	Color  Color
	Text   string
	Anchor Anchor
	Style  TextStyle
}

// Scene is an in-memory Surface. Writers (the game actor) and readers
// (render loops) may live on different goroutines.
type Scene struct {
	mu     sync.RWMutex
	items  map[Handle]*Item
	next   Handle
	width  float64
	height float64
}

// Compile-time check that Scene implements Surface.
var _ Surface = (*Scene)(nil)

// NewScene creates an empty scene for a width x height arena.
func NewScene(width, height float64) *Scene {
	return &Scene{
		items:  make(map[Handle]*Item),
		width:  width,
		height: height,
	}
}

// Size returns the logical arena size.
func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}

func (s *Scene) add(it *Item) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	it.Handle = s.next
	s.items[it.Handle] = it
	return it.Handle
}

// CreateRect adds a filled rectangle.
func (s *Scene) CreateRect(bounds physics.AABB, color Color) Handle {
	return s.add(&Item{Kind: KindRect, Bounds: bounds, Color: color})
}

// MoveRect translates a rectangle.
func (s *Scene) MoveRect(h Handle, dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[h]; ok && it.Kind == KindRect {
		it.Bounds = it.Bounds.Translate(dx, dy)
	}
}

// SetRectBounds repositions and resizes a rectangle.
func (s *Scene) SetRectBounds(h Handle, bounds physics.AABB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[h]; ok && it.Kind == KindRect {
		it.Bounds = bounds
	}
}

// RectBounds returns a rectangle's bounds.
func (s *Scene) RectBounds(h Handle) (physics.AABB, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[h]
	if !ok || it.Kind != KindRect {
		return physics.AABB{}, false
	}
	return it.Bounds, true
}

// SetRectColor recolors a rectangle.
func (s *Scene) SetRectColor(h Handle, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[h]; ok && it.Kind == KindRect {
		it.Color = color
	}
}

// CreateText adds a text item at (x, y).
func (s *Scene) CreateText(x, y float64, anchor Anchor, text string, style TextStyle) Handle {
	color := ColorText
	if style == TextSmall {
		color = ColorHint
	}
	return s.add(&Item{
		Kind:   KindText,
		Bounds: physics.AABB{MinX: x, MinY: y, MaxX: x, MaxY: y},
		Color:  color,
		Text:   text,
		Anchor: anchor,
		Style:  style,
	})
}

// SetText replaces a text item's content.
func (s *Scene) SetText(h Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[h]; ok && it.Kind == KindText {
		it.Text = text
	}
}

// Delete removes an item.
func (s *Scene) Delete(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, h)
}

// Clear removes every item.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
}

// Len returns the number of items.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot copies the current items into buf (reused when large enough),
// ordered by creation so later items paint over earlier ones.
func (s *Scene) Snapshot(buf []Item) []Item {
	s.mu.RLock()
	buf = buf[:0]
	for _, it := range s.items {
		buf = append(buf, *it)
	}
	s.mu.RUnlock()

	slices.SortFunc(buf, func(a, b Item) int {
		switch {
		case a.Handle < b.Handle:
			return -1
		case a.Handle > b.Handle:
			return 1
		}
		return 0
	})
	return buf
}
