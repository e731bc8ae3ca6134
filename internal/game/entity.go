package game

import (
	"slices"

	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

// Player is the avatar controlled by the pressed-key set.
type Player struct {
	X, Y   float64 // center
	Half   float64
	Speed  float64
	Handle render.Handle
}

// Bounds returns the player's AABB.
func (p *Player) Bounds() physics.AABB {
	return physics.Square(p.X, p.Y, p.Half)
}

// EnemyID identifies an enemy for the lifetime of a session. IDs are never reused.
type EnemyID uint64

// Enemy is a bouncing square hazard.
type Enemy struct {
	ID     EnemyID
	X, Y   float64 // center
	VX, VY float64
	Half   float64
	Handle render.Handle
}

// Bounds returns the enemy's AABB.
func (e *Enemy) Bounds() physics.AABB {
	return physics.Square(e.X, e.Y, e.Half)
}

// Registry holds the live enemies in insertion order.
type Registry struct {
	enemies []*Enemy
	byID    map[EnemyID]*Enemy
	nextID  EnemyID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[EnemyID]*Enemy)}
}

// Add assigns e a fresh ID and appends it.
func (r *Registry) Add(e *Enemy) EnemyID {
	r.nextID++
	e.ID = r.nextID
	r.enemies = append(r.enemies, e)
	r.byID[e.ID] = e
	return e.ID
}

// Get looks up an enemy by ID.
func (r *Registry) Get(id EnemyID) (*Enemy, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Remove deletes an enemy, keeping the order of the rest.
// Removing an ID that is already gone reports false and does nothing.
func (r *Registry) Remove(id EnemyID) (*Enemy, bool) {
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	if i := slices.Index(r.enemies, e); i >= 0 {
		r.enemies = slices.Delete(r.enemies, i, i+1)
	}
	return e, true
}

// All returns the live enemies in insertion order. The slice must not be
// modified and is invalidated by Add, Remove and Clear.
func (r *Registry) All() []*Enemy {
	return r.enemies
}

// Len returns the number of live enemies.
func (r *Registry) Len() int {
	return len(r.enemies)
}

// Clear removes every enemy and returns them.
func (r *Registry) Clear() []*Enemy {
	removed := r.enemies
	r.enemies = nil
	clear(r.byID)
	return removed
}
