package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

func TestPlayerSigma_PositionFractions(t *testing.T) {
	none := VarianceInputs{}

	qb := types.Player{ID: "q", Position: "QB", Projection: 20}
	assert.InDelta(t, 6.0, playerSigma(qb, none), 0.001)

	dst := types.Player{ID: "d", Position: "DST", Projection: 10}
	assert.InDelta(t, 5.5, playerSigma(dst, none), 0.001)

	unknown := types.Player{ID: "u", Position: "K", Projection: 10}
	assert.InDelta(t, 4.0, playerSigma(unknown, none), 0.001, "unknown position uses the default fraction")
}

func TestPlayerSigma_ZeroProjectionFallback(t *testing.T) {
	p := types.Player{ID: "p", Position: "WR", Projection: 0}
	assert.InDelta(t, fallbackSigma, playerSigma(p, VarianceInputs{}), 0.001)
}

func TestPlayerSigma_VolatileSignalInflates(t *testing.T) {
	base := types.Player{ID: "p", Position: "WR", Projection: 10}
	volatile := base
	volatile.BoomRate = 0.4

	assert.InDelta(t, playerSigma(base, VarianceInputs{})*1.2, playerSigma(volatile, VarianceInputs{}), 0.001)
}

func TestPlayerSigma_InjuryStatus(t *testing.T) {
	base := types.Player{ID: "p", Position: "RB", Projection: 15}
	sigma := playerSigma(base, VarianceInputs{})

	questionable := base
	questionable.InjuryStatus = "Q"
	assert.InDelta(t, sigma*1.15, playerSigma(questionable, VarianceInputs{}), 0.001)

	doubtful := base
	doubtful.InjuryStatus = "doubtful"
	assert.InDelta(t, sigma*1.30, playerSigma(doubtful, VarianceInputs{}), 0.001)
}

func TestPlayerSigma_WeatherAndInjuryAdjustments(t *testing.T) {
	p := types.Player{ID: "p", Position: "WR", Team: "GB", Projection: 10}
	sigma := playerSigma(p, VarianceInputs{})

	inputs := VarianceInputs{
		WeatherAdjustments: map[string]float64{"GB": 1.5},
		InjuryAdjustments:  map[string]float64{"p": 1.1},
	}
	assert.InDelta(t, sigma*1.5*1.1, playerSigma(p, inputs), 0.001)
}

func TestPlayerSigma_IgnoresNonPositiveMultipliers(t *testing.T) {
	p := types.Player{ID: "p", Position: "WR", Team: "GB", Projection: 10}
	sigma := playerSigma(p, VarianceInputs{})

	inputs := VarianceInputs{
		WeatherAdjustments: map[string]float64{"GB": 0},
		InjuryAdjustments:  map[string]float64{"p": -1},
	}
	assert.InDelta(t, sigma, playerSigma(p, inputs), 0.001)
}
