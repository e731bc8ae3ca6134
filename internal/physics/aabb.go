package physics

// AABB is an axis-aligned bounding box given by its min and max corners.
type AABB struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Square returns the AABB of a square centered at (cx, cy) with the given half-extent.
func Square(cx, cy, half float64) AABB {
	return AABB{MinX: cx - half, MinY: cy - half, MaxX: cx + half, MaxY: cy + half}
}

// Rect returns the AABB with top-left corner (x, y) and the given size.
func Rect(x, y, w, h float64) AABB {
	return AABB{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns the box width.
func (b AABB) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the box height.
func (b AABB) Height() float64 {
	return b.MaxY - b.MinY
}

// Center returns the box center.
func (b AABB) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// Translate returns the box moved by (dx, dy).
func (b AABB) Translate(dx, dy float64) AABB {
	return AABB{MinX: b.MinX + dx, MinY: b.MinY + dy, MaxX: b.MaxX + dx, MaxY: b.MaxY + dy}
}

// Intersects reports whether two boxes overlap.
// Boxes that only touch along an edge count as overlapping.
func (b AABB) Intersects(o AABB) bool {
	return !(b.MaxX < o.MinX || b.MinX > o.MaxX || b.MaxY < o.MinY || b.MinY > o.MaxY)
}

// Within reports whether b lies entirely inside o.
func (b AABB) Within(o AABB) bool {
	return b.MinX >= o.MinX && b.MaxX <= o.MaxX && b.MinY >= o.MinY && b.MaxY <= o.MaxY
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
