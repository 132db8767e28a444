package optimizer

import (
	"math/rand"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// PerturbPool returns a fresh copy of the pool with each player's projection
// perturbed by Gaussian noise, sigma = randomnessPct/100 of the projection.
// The stream is seeded from (seed + lineupIndex), so the same batch replayed
// with the same seed reproduces identical pools regardless of how lineup
// solves are scheduled. This is the sole source of lineup-to-lineup
// diversity; there is no uniqueness constraint between lineups.
func PerturbPool(pool []types.Player, lineupIndex int, randomnessPct float64, seed int64) []types.Player {
	rng := rand.New(rand.NewSource(seed + int64(lineupIndex)))

	perturbed := make([]types.Player, len(pool))
	for i, p := range pool {
		base := p.BaseProjection()
		next := base + rng.NormFloat64()*(randomnessPct/100)*base
		if next < 0 {
			next = 0
		}
		// Construct a new value; the shared pool is never edited. The
		// perturbed figure becomes the single effective base downstream,
		// so the custom override is consumed here.
		copy := p
		copy.Projection = next
		copy.CustomProjection = nil
		perturbed[i] = copy
	}
	return perturbed
}
