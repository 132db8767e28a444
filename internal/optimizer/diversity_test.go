package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

func TestPerturbPool_DeterministicForSeedAndIndex(t *testing.T) {
	pool := nflPool()

	a := PerturbPool(pool, 3, 10, 42)
	b := PerturbPool(pool, 3, 10, 42)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Projection, b[i].Projection, "player %s diverged", a[i].ID)
	}
}

func TestPerturbPool_DifferentIndexDifferentNoise(t *testing.T) {
	pool := nflPool()

	a := PerturbPool(pool, 0, 10, 42)
	b := PerturbPool(pool, 1, 10, 42)

	same := true
	for i := range a {
		if a[i].Projection != b[i].Projection {
			same = false
			break
		}
	}
	assert.False(t, same, "different lineup indices should perturb differently")
}

func TestPerturbPool_ZeroRandomnessIsIdentity(t *testing.T) {
	pool := nflPool()

	perturbed := PerturbPool(pool, 5, 0, 42)
	for i := range pool {
		assert.Equal(t, pool[i].Projection, perturbed[i].Projection)
	}
}

func TestPerturbPool_NeverNegative(t *testing.T) {
	pool := []types.Player{
		{ID: "p1", Position: "WR", Salary: 3000, Projection: 0.5},
	}

	// Huge randomness makes negative draws certain without clamping.
	for idx := 0; idx < 50; idx++ {
		perturbed := PerturbPool(pool, idx, 500, 42)
		assert.GreaterOrEqual(t, perturbed[0].Projection, 0.0)
	}
}

func TestPerturbPool_DoesNotMutateInput(t *testing.T) {
	pool := nflPool()
	before := pool[0].Projection

	PerturbPool(pool, 0, 25, 42)
	assert.Equal(t, before, pool[0].Projection)
}

func TestPerturbPool_ConsumesCustomProjection(t *testing.T) {
	custom := 30.0
	pool := []types.Player{
		{ID: "p1", Position: "WR", Salary: 3000, Projection: 10, CustomProjection: &custom},
	}

	perturbed := PerturbPool(pool, 0, 0, 42)
	assert.Nil(t, perturbed[0].CustomProjection)
	assert.InDelta(t, 30.0, perturbed[0].Projection, 0.001, "override becomes the perturbation base")
}
