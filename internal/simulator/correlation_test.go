package simulator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

func gamePool() []types.Player {
	return []types.Player{
		{ID: "qb_a", Position: "QB", Team: "KC", Opponent: "BUF", Salary: 8000, Projection: 22},
		{ID: "wr_a", Position: "WR", Team: "KC", Opponent: "BUF", Salary: 7000, Projection: 18},
		{ID: "te_a", Position: "TE", Team: "KC", Opponent: "BUF", Salary: 5000, Projection: 12},
		{ID: "rb_a", Position: "RB", Team: "KC", Opponent: "BUF", Salary: 6000, Projection: 15},
		{ID: "wr_b", Position: "WR", Team: "BUF", Opponent: "KC", Salary: 6500, Projection: 16},
		{ID: "dst_b", Position: "DST", Team: "BUF", Opponent: "KC", Salary: 3000, Projection: 8},
	}
}

func TestPairCorrelation_Rules(t *testing.T) {
	pool := gamePool()
	byID := make(map[string]types.Player)
	for _, p := range pool {
		byID[p.ID] = p
	}
	s := 1.0

	// Same-team QB to pass catcher is the strongest positive.
	assert.InDelta(t, 0.8, pairCorrelation(byID["qb_a"], byID["wr_a"], s), 0.001)
	assert.InDelta(t, 0.8, pairCorrelation(byID["qb_a"], byID["te_a"], s), 0.001)
	// Same-team skill pair.
	assert.InDelta(t, 0.3, pairCorrelation(byID["wr_a"], byID["rb_a"], s), 0.001)
	// Opposing QB and DST.
	assert.InDelta(t, -0.3, pairCorrelation(byID["qb_a"], byID["dst_b"], s), 0.001)
	// Generic opposing pair.
	assert.InDelta(t, -0.1, pairCorrelation(byID["qb_a"], byID["wr_b"], s), 0.001)
}

func TestPairCorrelation_ScalesWithStrength(t *testing.T) {
	pool := gamePool()
	full := pairCorrelation(pool[0], pool[1], 1.0)
	half := pairCorrelation(pool[0], pool[1], 0.5)
	assert.InDelta(t, full/2, half, 0.001)
}

func TestPairCorrelation_SamePositionDifferentTeams(t *testing.T) {
	a := types.Player{ID: "w1", Position: "WR", Team: "KC"}
	b := types.Player{ID: "w2", Position: "WR", Team: "DAL"}
	assert.InDelta(t, -0.2, pairCorrelation(a, b, 1.0), 0.001)
}

func TestPairCorrelation_MissingMatchupNotOpposing(t *testing.T) {
	a := types.Player{ID: "q", Position: "QB", Team: "KC"}
	b := types.Player{ID: "d", Position: "DST", Team: "BUF"}
	// Without mutual opponent data the pair is uncorrelated.
	assert.InDelta(t, 0.0, pairCorrelation(a, b, 1.0), 0.001)
}

func TestBuildCorrelationMatrix_Shape(t *testing.T) {
	cm, err := BuildCorrelationMatrix(gamePool(), 0.6)
	require.NoError(t, err)

	n := cm.Dim()
	require.Equal(t, 6, n)
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, cm.At(i, i), 0.001, "diagonal must stay unit")
		for j := 0; j < n; j++ {
			assert.InDelta(t, cm.At(j, i), cm.At(i, j), 1e-9, "matrix must be symmetric")
			if i != j {
				assert.LessOrEqual(t, cm.At(i, j), 0.8)
				assert.GreaterOrEqual(t, cm.At(i, j), -0.8)
			}
		}
	}
}

func TestBuildCorrelationMatrix_ZeroStrengthIsIdentity(t *testing.T) {
	cm, err := BuildCorrelationMatrix(gamePool(), 0)
	require.NoError(t, err)

	for i := 0; i < cm.Dim(); i++ {
		for j := 0; j < cm.Dim(); j++ {
			if i == j {
				assert.InDelta(t, 1.0, cm.At(i, j), 0.001)
			} else {
				assert.InDelta(t, 0.0, cm.At(i, j), 0.001)
			}
		}
	}
}

func TestBuildCorrelationMatrix_FactorizableAtFullStrength(t *testing.T) {
	// A dense same-team cluster produces a raw matrix that needs eigenvalue
	// flooring before a Cholesky factorization can exist.
	pool := make([]types.Player, 0, 8)
	for i := 0; i < 4; i++ {
		pool = append(pool, types.Player{
			ID: fmt.Sprintf("wr%d", i), Position: "WR", Team: "KC", Opponent: "BUF",
			Salary: 5000, Projection: 12,
		})
	}
	pool = append(pool,
		types.Player{ID: "qb", Position: "QB", Team: "KC", Opponent: "BUF", Salary: 8000, Projection: 22},
		types.Player{ID: "te", Position: "TE", Team: "KC", Opponent: "BUF", Salary: 4500, Projection: 10},
		types.Player{ID: "dst", Position: "DST", Team: "BUF", Opponent: "KC", Salary: 3000, Projection: 8},
		types.Player{ID: "rb", Position: "RB", Team: "BUF", Opponent: "KC", Salary: 6000, Projection: 14},
	)

	cm, err := BuildCorrelationMatrix(pool, 1.0)
	require.NoError(t, err)
	assert.NotNil(t, cm.lowerFactor())
}

func TestBuildCorrelationMatrix_EmptyPool(t *testing.T) {
	cm, err := BuildCorrelationMatrix(nil, 0.5)
	assert.Error(t, err)
	assert.Nil(t, cm)
}

func TestCorrelationMatrix_IndexOf(t *testing.T) {
	cm, err := BuildCorrelationMatrix(gamePool(), 0.5)
	require.NoError(t, err)

	i, ok := cm.IndexOf("wr_b")
	assert.True(t, ok)
	assert.Equal(t, 4, i)

	_, ok = cm.IndexOf("missing")
	assert.False(t, ok)
}
