package simulator

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// Supported distribution families. Anything else falls back to normal.
const (
	DistributionNormal    = "normal"
	DistributionLognormal = "lognormal"
	DistributionEmpirical = "empirical"
)

// marginal transforms a standard-normal draw into a player outcome for one
// distribution family. The transform keeps the correlated z-scores intact:
// correlation is imposed once on the z vector, the marginal only reshapes
// each coordinate.
type marginal struct {
	family string
	mean   float64
	sigma  float64
	// lognormal parameters, moment-matched to (mean, sigma)
	mu float64
	s  float64
}

// newMarginal resolves the family for one player. Lognormal requires a
// positive projection and spread; degenerate inputs recover locally by
// falling back to the normal path rather than failing the request.
func newMarginal(family string, p types.Player, sigma float64) marginal {
	m := marginal{family: DistributionNormal, mean: p.BaseProjection(), sigma: sigma}

	if family == DistributionLognormal && m.mean > 0 && sigma > 0 {
		v := sigma * sigma
		m.family = DistributionLognormal
		m.mu = math.Log(m.mean * m.mean / math.Sqrt(v+m.mean*m.mean))
		m.s = math.Sqrt(math.Log(1 + v/(m.mean*m.mean)))
	}

	return m
}

// transform maps a standard-normal z to an outcome sample.
func (m marginal) transform(z float64) float64 {
	if m.family == DistributionLognormal {
		return math.Exp(m.mu + m.s*z)
	}
	return m.mean + m.sigma*z
}

// standardNormalSource yields i.i.d. standard-normal draws from an explicit
// seeded source, so trial streams stay deterministic under parallelism.
func standardNormalSource(seed int64) distuv.Normal {
	return distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewSource(uint64(seed)),
	}
}

// resolveFamily normalizes the requested distribution type; empirical data
// is not available at this boundary, so empirical requests use the normal
// path.
func resolveFamily(requested string) string {
	switch requested {
	case DistributionLognormal:
		return DistributionLognormal
	case DistributionNormal, DistributionEmpirical, "":
		return DistributionNormal
	default:
		return DistributionNormal
	}
}
