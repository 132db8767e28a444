package simulator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// correlationBound caps every off-diagonal entry.
const correlationBound = 0.8

// eigenFloor is the minimum eigenvalue after regularization; keeping it
// strictly positive makes the matrix Cholesky-factorizable.
const eigenFloor = 0.01

// CorrelationMatrix is a symmetric, unit-diagonal, positive-definite matrix
// over the players of one simulation request. Rebuilt fresh per request and
// never mutated.
type CorrelationMatrix struct {
	players []types.Player
	index   map[string]int
	sym     *mat.SymDense
	chol    *mat.Cholesky
}

// BuildCorrelationMatrix derives pairwise correlations from team/position
// relationship rules scaled by strength, then regularizes the result to a
// valid correlation matrix via eigenvalue flooring.
func BuildCorrelationMatrix(players []types.Player, strength float64) (*CorrelationMatrix, error) {
	n := len(players)
	if n == 0 {
		return nil, fmt.Errorf("no players for correlation matrix")
	}

	cm := &CorrelationMatrix{
		players: players,
		index:   make(map[string]int, n),
		sym:     mat.NewSymDense(n, nil),
	}
	for i, p := range players {
		cm.index[p.ID] = i
	}

	for i := 0; i < n; i++ {
		cm.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			cm.sym.SetSym(i, j, pairCorrelation(players[i], players[j], strength))
		}
	}

	if err := cm.regularize(); err != nil {
		return nil, err
	}
	return cm, nil
}

// pairCorrelation applies the relationship rules in precedence order and
// clamps the result. Missing matchup data means "not opposing".
func pairCorrelation(a, b types.Player, strength float64) float64 {
	value := 0.0
	switch {
	case sameTeam(a, b) && qbPassCatcher(a, b):
		value = 0.8 * strength
	case sameTeam(a, b) && isSkill(a.Position) && isSkill(b.Position):
		value = 0.3 * strength
	case sameTeam(a, b) && rbDstPair(a, b):
		value = 0.4 * strength
	case opposing(a, b) && qbDstPair(a, b):
		value = -0.3 * strength
	case opposing(a, b):
		value = -0.1 * strength
	case a.Position == b.Position && isSkill(a.Position):
		value = -0.2 * strength
	}
	return clamp(value, -correlationBound, correlationBound)
}

func sameTeam(a, b types.Player) bool {
	return a.Team != "" && a.Team == b.Team
}

// opposing needs real matchup data; both players must name each other's
// team as the opponent. Anything less is treated as not opposing.
func opposing(a, b types.Player) bool {
	if a.Team == "" || b.Team == "" || a.Team == b.Team {
		return false
	}
	return a.Opponent == b.Team && b.Opponent == a.Team
}

func isSkill(position string) bool {
	return position == "RB" || position == "WR" || position == "TE"
}

func qbPassCatcher(a, b types.Player) bool {
	return (a.Position == "QB" && (b.Position == "WR" || b.Position == "TE")) ||
		(b.Position == "QB" && (a.Position == "WR" || a.Position == "TE"))
}

func rbDstPair(a, b types.Player) bool {
	return (a.Position == "RB" && b.Position == "DST") ||
		(b.Position == "RB" && a.Position == "DST")
}

func qbDstPair(a, b types.Player) bool {
	return (a.Position == "QB" && b.Position == "DST") ||
		(b.Position == "QB" && a.Position == "DST")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// regularize eigen-decomposes the raw matrix, floors the eigenvalues,
// reconstructs, and rescales to unit diagonal. The congruence rescale keeps
// the matrix positive definite, so the Cholesky factorization taken here
// always succeeds.
func (cm *CorrelationMatrix) regularize() error {
	n := cm.sym.SymmetricDim()

	var eig mat.EigenSym
	if !eig.Factorize(cm.sym, true) {
		return fmt.Errorf("correlation matrix eigen decomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	for i := range values {
		if values[i] < eigenFloor {
			values[i] = eigenFloor
		}
	}

	// V * diag(values) * V^T
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vectors.At(i, j)*values[j])
		}
	}
	var rebuilt mat.Dense
	rebuilt.Mul(scaled, vectors.T())

	// Rescale to unit diagonal and re-clamp off-diagonals.
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		diag[i] = math.Sqrt(rebuilt.At(i, i))
	}
	for i := 0; i < n; i++ {
		cm.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			v := rebuilt.At(i, j) / (diag[i] * diag[j])
			cm.sym.SetSym(i, j, clamp(v, -correlationBound, correlationBound))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(cm.sym) {
		// Clamping can shave the smallest eigenvalue below zero by a hair;
		// a touch of ridge on the diagonal restores factorizability.
		for i := 0; i < n; i++ {
			cm.sym.SetSym(i, i, 1+eigenFloor)
		}
		if !chol.Factorize(cm.sym) {
			return fmt.Errorf("correlation matrix is not positive definite after regularization")
		}
		for i := 0; i < n; i++ {
			cm.sym.SetSym(i, i, 1)
		}
	}
	cm.chol = &chol

	return nil
}

// Dim returns the matrix dimension.
func (cm *CorrelationMatrix) Dim() int {
	return len(cm.players)
}

// At returns the correlation between players i and j.
func (cm *CorrelationMatrix) At(i, j int) float64 {
	return cm.sym.At(i, j)
}

// IndexOf returns the matrix row for a player id.
func (cm *CorrelationMatrix) IndexOf(playerID string) (int, bool) {
	i, ok := cm.index[playerID]
	return i, ok
}

// lowerFactor extracts the lower-triangular Cholesky factor used to impose
// the correlation structure on independent normal draws.
func (cm *CorrelationMatrix) lowerFactor() *mat.TriDense {
	var lower mat.TriDense
	cm.chol.LTo(&lower)
	return &lower
}
