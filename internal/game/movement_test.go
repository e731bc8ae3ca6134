package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/survival/internal/input"
)

func TestStepPlayerStaysInArena(t *testing.T) {
	rules := DefaultRules()
	arena := rules.Arena()
	rng := rand.New(rand.NewSource(7))

	p := Player{X: rules.Width / 2, Y: rules.Height / 2, Half: rules.PlayerHalf, Speed: rules.PlayerSpeed}
	var keys input.KeySet
	for i := 0; i < 5000; i++ {
		// Change the held keys every few ticks so the player reaches every edge.
		if i%40 == 0 {
			keys.Clear()
			for _, k := range input.Keys {
				if rng.Intn(2) == 0 {
					keys.Add(k)
				}
			}
		}
		StepPlayer(&p, keys, arena)
		require.True(t, p.Bounds().Within(arena), "step %d: %+v", i, p.Bounds())
	}
}

func TestStepPlayerDirections(t *testing.T) {
	arena := DefaultRules().Arena()
	tests := []struct {
		name   string
		keys   []input.Key
		dx, dy float64
	}{
		{"none", nil, 0, 0},
		{"up", []input.Key{input.KeyUp}, 0, -6},
		{"down right", []input.Key{input.KeyDown, input.KeyRight}, 6, 6},
		{"opposites cancel", []input.Key{input.KeyLeft, input.KeyRight}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys input.KeySet
			for _, k := range tt.keys {
				keys.Add(k)
			}
			p := Player{X: 400, Y: 300, Half: 15, Speed: 6}
			StepPlayer(&p, keys, arena)
			assert.Equal(t, 400+tt.dx, p.X)
			assert.Equal(t, 300+tt.dy, p.Y)
		})
	}
}

func TestStepPlayerClampsAtEdge(t *testing.T) {
	arena := DefaultRules().Arena()
	var keys input.KeySet
	keys.Add(input.KeyLeft)
	keys.Add(input.KeyUp)

	p := Player{X: 18, Y: 16, Half: 15, Speed: 6}
	StepPlayer(&p, keys, arena)
	assert.Equal(t, 15.0, p.X)
	assert.Equal(t, 15.0, p.Y)
}

func TestResolvePairHeadOn(t *testing.T) {
	const v = 6.9
	a := &Enemy{X: 100, Y: 300, VX: v, Half: 12.5}
	b := &Enemy{X: 124, Y: 300, VX: -v, Half: 12.5}

	require.True(t, ResolvePair(a, b))
	assert.InDelta(t, -v, a.VX, 1e-9)
	assert.InDelta(t, v, b.VX, 1e-9)
	assert.InDelta(t, 0, a.VY, 1e-9)
	assert.InDelta(t, 0, b.VY, 1e-9)

	// The pair is pushed apart to exactly one enemy size, without crossing.
	assert.InDelta(t, 25, b.X-a.X, 1e-9)
	assert.Less(t, a.X, b.X)
}

func TestResolvePairConservesNormalVelocity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := &Enemy{X: 400, Y: 300, Half: 12.5}
		angle := rng.Float64() * 2 * math.Pi
		dist := 0.5 + rng.Float64()*24
		b := &Enemy{X: 400 + dist*math.Cos(angle), Y: 300 + dist*math.Sin(angle), Half: 12.5}
		a.VX, a.VY = rng.Float64()*14-7, rng.Float64()*14-7
		b.VX, b.VY = rng.Float64()*14-7, rng.Float64()*14-7

		nx, ny := (a.X-b.X)/dist, (a.Y-b.Y)/dist
		before := a.VX*nx + a.VY*ny + b.VX*nx + b.VY*ny
		tangentA := -a.VX*ny + a.VY*nx

		require.True(t, ResolvePair(a, b))

		after := a.VX*nx + a.VY*ny + b.VX*nx + b.VY*ny
		assert.InDelta(t, before, after, 1e-9)
		assert.InDelta(t, tangentA, -a.VX*ny+a.VY*nx, 1e-9)
		assert.InDelta(t, 25, math.Hypot(a.X-b.X, a.Y-b.Y), 1e-9)
	}
}

func TestResolvePairIgnoresNonOverlapping(t *testing.T) {
	a := &Enemy{X: 100, Y: 100, VX: 1, Half: 12.5}
	b := &Enemy{X: 125, Y: 100, VX: -1, Half: 12.5}
	assert.False(t, ResolvePair(a, b))
	assert.Equal(t, 1.0, a.VX)

	// Coincident centers have no collision normal.
	c := &Enemy{X: 100, Y: 100, VX: 1, Half: 12.5}
	assert.False(t, ResolvePair(a, c))
	assert.Equal(t, 100.0, c.X)
}

func TestStepEnemiesWallBounce(t *testing.T) {
	arena := DefaultRules().Arena()

	into := &Enemy{X: 10, Y: 300, VX: -6.9, VY: 6.9, Half: 12.5}
	away := &Enemy{X: 790, Y: 300, VX: -6.9, VY: 0, Half: 12.5}
	corner := &Enemy{X: 795, Y: 595, VX: 6.9, VY: 6.9, Half: 12.5}

	StepEnemies([]*Enemy{into, away, corner}, arena)

	assert.Equal(t, 6.9, into.VX)
	assert.Equal(t, 6.9, into.VY)
	assert.InDelta(t, 16.9, into.X, 1e-9)

	// Touching the right wall while already moving left keeps the velocity.
	assert.Equal(t, -6.9, away.VX)

	assert.Equal(t, -6.9, corner.VX)
	assert.Equal(t, -6.9, corner.VY)
}

func TestStepEnemiesResolvesPairsSequentially(t *testing.T) {
	arena := DefaultRules().Arena()
	mk := func() []*Enemy {
		return []*Enemy{
			{X: 300, Y: 300, VX: 6.9, VY: 6.9, Half: 12.5},
			{X: 320, Y: 305, VX: -6.9, VY: 6.9, Half: 12.5},
			{X: 310, Y: 318, VX: 6.9, VY: -6.9, Half: 12.5},
		}
	}

	got := mk()
	StepEnemies(got, arena)

	want := mk()
	ResolvePair(want[0], want[1])
	ResolvePair(want[0], want[2])
	ResolvePair(want[1], want[2])
	for _, e := range want {
		e.X += e.VX
		e.Y += e.VY
	}

	for i := range want {
		assert.Equal(t, *want[i], *got[i], "enemy %d", i)
	}
}
