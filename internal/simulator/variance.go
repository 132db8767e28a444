package simulator

import (
	"strings"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// Position-based spread of outcomes as a fraction of projection. Defenses
// and wide receivers swing hardest week to week.
var positionSigmaFraction = map[string]float64{
	"QB":  0.30,
	"RB":  0.40,
	"WR":  0.45,
	"TE":  0.45,
	"DST": 0.55,
}

const defaultSigmaFraction = 0.40

// volatileSignalThreshold marks boom/bust signal scores high enough to
// inflate the spread.
const volatileSignalThreshold = 0.30

// fallbackSigma keeps zero-projection players from degenerating to a point
// mass.
const fallbackSigma = 3.0

// VarianceInputs are the request-level variance modifiers.
type VarianceInputs struct {
	WeatherAdjustments map[string]float64 // team -> sigma multiplier
	InjuryAdjustments  map[string]float64 // player id -> sigma multiplier
}

// playerSigma derives one player's outcome standard deviation from the
// position heuristic, inflated by volatility signals, weather, and injury
// designations.
func playerSigma(p types.Player, inputs VarianceInputs) float64 {
	fraction, ok := positionSigmaFraction[p.Position]
	if !ok {
		fraction = defaultSigmaFraction
	}

	sigma := p.BaseProjection() * fraction
	if sigma <= 0 {
		sigma = fallbackSigma
	}

	if p.BoomRate > volatileSignalThreshold || p.BustRate > volatileSignalThreshold {
		sigma *= 1.2
	}

	switch strings.ToUpper(p.InjuryStatus) {
	case "Q", "QUESTIONABLE":
		sigma *= 1.15
	case "D", "DOUBTFUL", "O", "OUT":
		sigma *= 1.30
	}

	if mult, ok := inputs.WeatherAdjustments[p.Team]; ok && mult > 0 {
		sigma *= mult
	}
	if mult, ok := inputs.InjuryAdjustments[p.ID]; ok && mult > 0 {
		sigma *= mult
	}

	return sigma
}
