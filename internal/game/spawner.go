package game

import (
	"math/rand"

	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

// Difficulty bounds the number of enemies spawned per cycle. Both bounds
// only ever grow.
type Difficulty struct {
	Min, Max int
}

// LevelUp raises both bounds.
func (d *Difficulty) LevelUp(minStep, maxStep int) {
	d.Min += max(minStep, 0)
	d.Max += max(maxStep, 0)
	if d.Max < d.Min {
		d.Max = d.Min
	}
}

// Roll draws a spawn count uniformly from [Min, Max].
func (d Difficulty) Roll(rng *rand.Rand) int {
	if d.Max <= d.Min {
		return max(d.Min, 0)
	}
	return d.Min + rng.Intn(d.Max-d.Min+1)
}

// PointSampler yields candidate spawn positions.
type PointSampler func() (x, y float64)

// PlaceEnemy rejection-samples a spawn position whose distance to the player
// center (px, py) exceeds clearance. It gives up after attempts candidates
// and returns ok=false; tried is the number of candidates drawn.
func PlaceEnemy(sample PointSampler, px, py, clearance float64, attempts int) (x, y float64, tried int, ok bool) {
	for tried < attempts {
		tried++
		x, y = sample()
		if physics.Distance(x, y, px, py) > clearance {
			return x, y, tried, true
		}
	}
	return 0, 0, tried, false
}

// spawnSampler returns the default candidate source: integer positions that
// keep the enemy inside the arena and below the HUD band.
func spawnSampler(rng *rand.Rand, r Rules) PointSampler {
	size := int(r.EnemySize())
	minX, maxX := size, int(r.Width)-size
	minY, maxY := size+int(r.HUDHeight), int(r.Height)-size
	return func() (float64, float64) {
		return float64(randBetween(rng, minX, maxX)), float64(randBetween(rng, minY, maxY))
	}
}

// randDirection returns -speed or +speed with equal probability.
func randDirection(rng *rand.Rand, speed float64) float64 {
	if rng.Intn(2) == 0 {
		return -speed
	}
	return speed
}

// randBetween returns an int in [lo, hi].
func randBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// spawnEnemies runs one spawn cycle.
func (s *Session) spawnEnemies() {
	s.boss.ClearDebris()
	if s.boss.Engaged() {
		s.log.Debug("spawn suspended during boss", "session", s.ID)
		return
	}

	n := s.Difficulty.Roll(s.rng)
	skipped := 0
	for range n {
		x, y, _, ok := PlaceEnemy(s.sample, s.Player.X, s.Player.Y, s.rules.SpawnClearance, s.rules.SpawnAttempts)
		if !ok {
			skipped++
			continue
		}
		s.SpawnEnemyAt(x, y, randDirection(s.rng, s.rules.EnemySpeed), randDirection(s.rng, s.rules.EnemySpeed))
	}
	if skipped > 0 {
		s.log.Debug("spawn skipped", "session", s.ID, "skipped", skipped, "requested", n)
	}
}

// SpawnEnemyAt adds an enemy and schedules its expiry.
func (s *Session) SpawnEnemyAt(x, y, vx, vy float64) EnemyID {
	e := &Enemy{X: x, Y: y, VX: vx, VY: vy, Half: s.rules.EnemyHalf}
	e.Handle = s.surface.CreateRect(e.Bounds(), render.ColorEnemy)
	id := s.Enemies.Add(e)
	s.tasks.Schedule(s.rules.EnemyLifetime, func() {
		s.removeEnemy(id)
	})
	return id
}

// removeEnemy deletes an enemy and its drawable. Unknown IDs are ignored.
func (s *Session) removeEnemy(id EnemyID) {
	e, ok := s.Enemies.Remove(id)
	if !ok {
		return
	}
	s.surface.Delete(e.Handle)
}

// clearEnemies removes every enemy.
func (s *Session) clearEnemies() {
	for _, e := range s.Enemies.Clear() {
		s.surface.Delete(e.Handle)
	}
}
