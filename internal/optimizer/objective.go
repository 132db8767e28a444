package optimizer

import (
	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// EffectiveProjection is the weighted objective value for one player:
// the base (or operator-overridden) projection, scaled by the percentage
// boost, then by a capped leverage multiplier for contrarian upside.
func EffectiveProjection(p types.Player) float64 {
	proj := p.BaseProjection() * (1 + p.ProjectionBoost/100)
	if p.Leverage > 1 {
		mult := p.Leverage * 0.1
		if mult > 0.5 {
			mult = 0.5
		}
		proj *= 1 + mult
	}
	return proj
}
