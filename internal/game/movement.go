package game

import (
	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/physics"
)

// StepPlayer moves the player one tick along the pressed directions and
// keeps its AABB inside the arena.
func StepPlayer(p *Player, keys input.KeySet, arena physics.AABB) {
	var dx, dy float64
	if keys.Has(input.KeyUp) {
		dy--
	}
	if keys.Has(input.KeyDown) {
		dy++
	}
	if keys.Has(input.KeyLeft) {
		dx--
	}
	if keys.Has(input.KeyRight) {
		dx++
	}

	p.X = physics.Clamp(p.X+dx*p.Speed, arena.MinX+p.Half, arena.MaxX-p.Half)
	p.Y = physics.Clamp(p.Y+dy*p.Speed, arena.MinY+p.Half, arena.MaxY-p.Half)
}

// StepEnemies advances every enemy by one movement tick: wall bounces first,
// then pairwise collisions in registry order, then integration.
func StepEnemies(enemies []*Enemy, arena physics.AABB) {
	for _, e := range enemies {
		bounceWalls(e, arena)
	}

	// Pairs are resolved one after another; later pairs see the positions
	// and velocities written by earlier ones.
	for i := 0; i < len(enemies); i++ {
		for j := i + 1; j < len(enemies); j++ {
			ResolvePair(enemies[i], enemies[j])
		}
	}

	for _, e := range enemies {
		e.X += e.VX
		e.Y += e.VY
	}
}

// bounceWalls reflects the velocity component of e that points into an arena
// edge it touches or has crossed.
func bounceWalls(e *Enemy, arena physics.AABB) {
	b := e.Bounds()
	if (b.MinX <= arena.MinX && e.VX < 0) || (b.MaxX >= arena.MaxX && e.VX > 0) {
		e.VX = -e.VX
	}
	if (b.MinY <= arena.MinY && e.VY < 0) || (b.MaxY >= arena.MaxY && e.VY > 0) {
		e.VY = -e.VY
	}
}

// ResolvePair separates two enemies whose centers are closer than their
// combined half-extents and exchanges their velocity components along the
// collision normal. It reports whether the pair collided.
func ResolvePair(a, b *Enemy) bool {
	dist := physics.Distance(a.X, a.Y, b.X, b.Y)
	minDist := a.Half + b.Half
	if dist >= minDist || dist == 0 {
		return false
	}

	// Collision normal (from b to a)
	nx := (a.X - b.X) / dist
	ny := (a.Y - b.Y) / dist

	// Push each enemy out by half the overlap
	push := (minDist - dist) / 2
	a.X += nx * push
	a.Y += ny * push
	b.X -= nx * push
	b.Y -= ny * push

	// Relative velocity along the normal
	dvn := (a.VX-b.VX)*nx + (a.VY-b.VY)*ny

	a.VX -= dvn * nx
	a.VY -= dvn * ny
	b.VX += dvn * nx
	b.VY += dvn * ny
	return true
}
