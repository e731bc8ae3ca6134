package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsInsertionOrder(t *testing.T) {
	r := NewRegistry()
	var ids []EnemyID
	for i := 0; i < 5; i++ {
		ids = append(ids, r.Add(&Enemy{X: float64(i)}))
	}
	require.Equal(t, 5, r.Len())

	e, ok := r.Remove(ids[1])
	require.True(t, ok)
	assert.Equal(t, 1.0, e.X)

	var xs []float64
	for _, e := range r.All() {
		xs = append(xs, e.X)
	}
	assert.Equal(t, []float64{0, 2, 3, 4}, xs)
}

func TestRegistryRemoveIsTolerant(t *testing.T) {
	r := NewRegistry()
	id := r.Add(&Enemy{})

	_, ok := r.Remove(id)
	assert.True(t, ok)
	_, ok = r.Remove(id)
	assert.False(t, ok)
	_, ok = r.Remove(EnemyID(999))
	assert.False(t, ok)
}

func TestRegistryIDsAreNotReused(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&Enemy{})
	r.Clear()
	b := r.Add(&Enemy{})
	assert.NotEqual(t, a, b)

	_, ok := r.Get(a)
	assert.False(t, ok)
	got, ok := r.Get(b)
	require.True(t, ok)
	assert.Equal(t, b, got.ID)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Add(&Enemy{})
	r.Add(&Enemy{})

	removed := r.Clear()
	assert.Len(t, removed, 2)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.All())
}
