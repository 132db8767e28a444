package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

func TestGenerateLineups_FullBatch(t *testing.T) {
	cfg := BatchConfig{NumLineups: 3, RandomnessPct: 0, Seed: 99}

	batch, err := GenerateLineups("slate-1", nflPool(), nflConstraints(), nil, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.TotalGenerated)
	assert.Equal(t, 0, batch.Infeasible)
	assert.Len(t, batch.Lineups, 3)
	assert.NotEmpty(t, batch.Exposures)
	assert.NotEmpty(t, batch.StackAudit)
}

func TestGenerateLineups_ZeroRandomnessIsHomogeneous(t *testing.T) {
	cfg := BatchConfig{NumLineups: 3, RandomnessPct: 0, Seed: 7}

	batch, err := GenerateLineups("slate-1", nflPool(), nflConstraints(), nil, cfg, nil)
	require.NoError(t, err)
	require.Len(t, batch.Lineups, 3)

	first := batch.Lineups[0]
	for _, lineup := range batch.Lineups[1:] {
		assert.Equal(t, first.TotalSalary, lineup.TotalSalary)
		assert.InDelta(t, first.TotalProjection, lineup.TotalProjection, 0.001)
	}
	// The deterministic optimum drops wr2 and keeps the KC trio.
	assert.Equal(t, "QB+2 Stack", first.StackLabel)
}

func TestGenerateLineups_DeterministicForSeed(t *testing.T) {
	cfg := BatchConfig{NumLineups: 5, RandomnessPct: 15, Seed: 1234}

	a, err := GenerateLineups("slate-1", nflPool(), nflConstraints(), nil, cfg, nil)
	require.NoError(t, err)
	b, err := GenerateLineups("slate-1", nflPool(), nflConstraints(), nil, cfg, nil)
	require.NoError(t, err)

	require.Equal(t, a.TotalGenerated, b.TotalGenerated)
	for i := range a.Lineups {
		assert.Equal(t, a.Lineups[i].TotalSalary, b.Lineups[i].TotalSalary)
		assert.InDelta(t, a.Lineups[i].TotalProjection, b.Lineups[i].TotalProjection, 0.000001)
	}
}

func TestGenerateLineups_InfeasibleIndicesSkipped(t *testing.T) {
	cons := nflConstraints()
	cons.SalaryCap = 10000
	cfg := BatchConfig{NumLineups: 4, RandomnessPct: 0, Seed: 7}

	batch, err := GenerateLineups("slate-1", nflPool(), cons, nil, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.TotalGenerated)
	assert.Equal(t, 4, batch.Infeasible)
	assert.Empty(t, batch.Lineups)

	// Reports stay non-nil so responses marshal as empty arrays.
	assert.NotNil(t, batch.Lineups)
	assert.NotNil(t, batch.Exposures)
	assert.NotNil(t, batch.StackAudit)
}

func TestGenerateLineups_EmptyPoolFails(t *testing.T) {
	pool := nflPool()
	for i := range pool {
		pool[i].Banned = true
	}
	cfg := BatchConfig{NumLineups: 2, RandomnessPct: 0, Seed: 7}

	batch, err := GenerateLineups("slate-1", pool, nflConstraints(), nil, cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, batch)
}

func TestGenerateLineups_ProgressUpdates(t *testing.T) {
	cfg := BatchConfig{NumLineups: 3, RandomnessPct: 0, Seed: 7}
	progress := make(chan types.ProgressUpdate, 16)

	_, err := GenerateLineups("slate-1", nflPool(), nflConstraints(), nil, cfg, progress)
	require.NoError(t, err)
	close(progress)

	updates := 0
	maxProgress := 0.0
	for update := range progress {
		updates++
		if update.Progress > maxProgress {
			maxProgress = update.Progress
		}
		assert.Equal(t, "optimization", update.Type)
		assert.Equal(t, "slate-1", update.SlateID)
		assert.Equal(t, 3, update.TotalSteps)
	}
	require.Equal(t, 3, updates)
	assert.InDelta(t, 1.0, maxProgress, 0.001)
}
