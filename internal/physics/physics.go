// Package physics provides bounding boxes, distance utilities and a
// broad-phase grid for the arena.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Rotate rotates (x, y) about (cx, cy) by angle radians.
// Positive angles turn clockwise in screen coordinates (y grows downward).
func Rotate(x, y, cx, cy, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	dx := x - cx
	dy := y - cy
	return cx + dx*cos - dy*sin, cy + dx*sin + dy*cos
}
