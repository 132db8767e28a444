package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// ErrInfeasible signals that no assignment satisfies the constraint model.
// Callers skip the lineup index and continue the batch.
var ErrInfeasible = errors.New("no feasible lineup for constraints")

// DefaultMaxNodes bounds the branch-and-bound search per solve.
const DefaultMaxNodes = 2000000

type candidate struct {
	player types.Player
	score  float64
}

// stackCap bounds the number of players drawn from one active stack's
// team/position set. Minimum-inclusion is deliberately not enforced; stacks
// steer, they do not require.
type stackCap struct {
	stack types.Stack
	cap   int
}

type bucketPick struct {
	position string
	need     int
	cands    []candidate
	// suffix bounds over cands, index i covers cands[i:]
	sufMinSalary []int
	sufMaxSalary []int
}

type searchState struct {
	cons       types.Constraints
	maxNodes   int
	nodes      int
	aborted    bool
	bestFound  bool
	bestScore  float64
	best       []types.Player
	chosen     []types.Player
	curSalary  int
	curScore   float64
	teamCounts map[string]int
	stackCaps  []stackCap
	stackUsed  []int
}

// Solve builds one optimal lineup for the given pool, constraints, and
// active stacks, or reports ErrInfeasible. Every invocation constructs and
// discards its own search state, so concurrent solves never share anything.
func Solve(pool []types.Player, cons types.Constraints, stacks []types.Stack, maxNodes int, log *logrus.Entry) (*types.Lineup, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	eligible := make([]types.Player, 0, len(pool))
	for _, p := range pool {
		if p.Banned {
			continue
		}
		if _, ok := cons.Positions[p.Position]; !ok {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) < cons.UniquePlayers {
		return nil, ErrInfeasible
	}

	byPosition := make(map[string][]candidate)
	lockedByPosition := make(map[string][]types.Player)
	totalLocked := 0
	for _, p := range eligible {
		if p.Locked {
			lockedByPosition[p.Position] = append(lockedByPosition[p.Position], p)
			totalLocked++
			continue
		}
		byPosition[p.Position] = append(byPosition[p.Position], candidate{player: p, score: EffectiveProjection(p)})
	}
	if totalLocked > cons.UniquePlayers {
		return nil, ErrInfeasible
	}
	for pos, r := range cons.Positions {
		if len(lockedByPosition[pos]) > r.Max {
			return nil, ErrInfeasible
		}
	}

	// Deterministic search order: best score first, id tie-break.
	for pos := range byPosition {
		cands := byPosition[pos]
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].score != cands[j].score {
				return cands[i].score > cands[j].score
			}
			return cands[i].player.ID < cands[j].player.ID
		})
	}

	state := &searchState{
		cons:       cons,
		maxNodes:   maxNodes,
		bestScore:  -1,
		chosen:     make([]types.Player, 0, cons.UniquePlayers),
		teamCounts: make(map[string]int),
		stackCaps:  buildStackCaps(stacks, eligible),
		stackUsed:  nil,
	}
	state.stackUsed = make([]int, len(state.stackCaps))

	positions := make([]string, 0, len(cons.Positions))
	for pos := range cons.Positions {
		positions = append(positions, pos)
	}
	// Tightest buckets first so infeasible vectors fail fast.
	sort.Slice(positions, func(i, j int) bool {
		fi := len(byPosition[positions[i]]) + len(lockedByPosition[positions[i]])
		fj := len(byPosition[positions[j]]) + len(lockedByPosition[positions[j]])
		if fi != fj {
			return fi < fj
		}
		return positions[i] < positions[j]
	})

	counts := make(map[string]int, len(positions))
	enumerateCountVectors(positions, 0, cons.UniquePlayers, cons, byPosition, lockedByPosition, counts, func() {
		state.searchCountVector(positions, counts, byPosition, lockedByPosition)
	})

	if state.aborted && log != nil {
		log.WithFields(logrus.Fields{
			"max_nodes": maxNodes,
		}).Warn("Solver node budget exhausted, returning best incumbent")
	}
	if !state.bestFound {
		return nil, ErrInfeasible
	}

	return assembleLineup(state.best), nil
}

// enumerateCountVectors walks every per-position count assignment that
// respects the [min,max] ranges and sums to the roster size.
func enumerateCountVectors(positions []string, idx, remaining int, cons types.Constraints, byPosition map[string][]candidate, lockedByPosition map[string][]types.Player, counts map[string]int, emit func()) {
	if idx == len(positions) {
		if remaining == 0 {
			emit()
		}
		return
	}
	pos := positions[idx]
	r := cons.Positions[pos]
	available := len(byPosition[pos]) + len(lockedByPosition[pos])
	lo := r.Min
	if l := len(lockedByPosition[pos]); l > lo {
		lo = l
	}
	hi := r.Max
	if available < hi {
		hi = available
	}
	for c := lo; c <= hi && c <= remaining; c++ {
		counts[pos] = c
		enumerateCountVectors(positions, idx+1, remaining-c, cons, byPosition, lockedByPosition, counts, emit)
	}
	delete(counts, pos)
}

func (s *searchState) searchCountVector(positions []string, counts map[string]int, byPosition map[string][]candidate, lockedByPosition map[string][]types.Player) {
	if s.aborted {
		return
	}

	// Reset per-vector selection state.
	s.chosen = s.chosen[:0]
	s.curSalary = 0
	s.curScore = 0
	for k := range s.teamCounts {
		delete(s.teamCounts, k)
	}
	for i := range s.stackUsed {
		s.stackUsed[i] = 0
	}

	// Locked players are forced in before the search begins; a conflict with
	// the team or stack caps makes this vector a dead end.
	for _, pos := range positions {
		for _, p := range lockedByPosition[pos] {
			if !s.place(p, EffectiveProjection(p)) {
				return
			}
		}
	}

	picks := make([]bucketPick, 0, len(positions))
	for _, pos := range positions {
		need := counts[pos] - len(lockedByPosition[pos])
		if need == 0 {
			continue
		}
		bp := bucketPick{position: pos, need: need, cands: byPosition[pos]}
		bp.sufMinSalary, bp.sufMaxSalary = salarySuffixBounds(bp.cands)
		picks = append(picks, bp)
	}

	s.pick(picks, 0, 0)
}

// pick fills picks[pi] choosing candidates from index ci onward.
func (s *searchState) pick(picks []bucketPick, pi, ci int) {
	if s.aborted {
		return
	}
	if pi == len(picks) {
		if s.curSalary >= s.cons.MinSalary() && s.curSalary <= s.cons.SalaryCap {
			if !s.bestFound || s.curScore > s.bestScore {
				s.bestFound = true
				s.bestScore = s.curScore
				s.best = append(s.best[:0], s.chosen...)
			}
		}
		return
	}

	bp := &picks[pi]
	needHere := bp.need - pickedFrom(s.chosen, picks, pi)
	if needHere == 0 {
		s.pick(picks, pi+1, 0)
		return
	}

	remainingCands := len(bp.cands) - ci
	if remainingCands < needHere {
		return
	}

	// Salary reachability and projection bound pruning.
	minRest, maxRest := restSalaryBounds(picks, pi, ci, needHere)
	if s.curSalary+minRest > s.cons.SalaryCap {
		return
	}
	if s.curSalary+maxRest < s.cons.MinSalary() {
		return
	}
	if s.bestFound && s.curScore+restScoreBound(picks, pi, ci, needHere) <= s.bestScore {
		return
	}

	// Branch: take cands[ci], or skip it.
	cand := bp.cands[ci]
	s.nodes++
	if s.nodes > s.maxNodes {
		s.aborted = true
		return
	}
	if s.place(cand.player, cand.score) {
		s.pick(picks, pi, ci+1)
		s.unplace(cand.player, cand.score)
	}
	s.pick(picks, pi, ci+1)
}

// place adds a player if the team and stack caps allow it.
func (s *searchState) place(p types.Player, score float64) bool {
	if s.curSalary+p.Salary > s.cons.SalaryCap {
		return false
	}
	if s.teamCounts[p.Team]+1 > s.cons.MaxFromTeam {
		return false
	}
	for i, sc := range s.stackCaps {
		if sc.stack.Covers(p) && s.stackUsed[i]+1 > sc.cap {
			return false
		}
	}
	s.chosen = append(s.chosen, p)
	s.curSalary += p.Salary
	s.curScore += score
	s.teamCounts[p.Team]++
	for i, sc := range s.stackCaps {
		if sc.stack.Covers(p) {
			s.stackUsed[i]++
		}
	}
	return true
}

func (s *searchState) unplace(p types.Player, score float64) {
	s.chosen = s.chosen[:len(s.chosen)-1]
	s.curSalary -= p.Salary
	s.curScore -= score
	s.teamCounts[p.Team]--
	for i, sc := range s.stackCaps {
		if sc.stack.Covers(p) {
			s.stackUsed[i]--
		}
	}
}

// pickedFrom counts how many already-chosen players came from picks[pi]'s
// bucket (locked players are placed before the search, so only non-locked
// selections from this bucket count).
func pickedFrom(chosen []types.Player, picks []bucketPick, pi int) int {
	count := 0
	for _, p := range chosen {
		if p.Locked {
			continue
		}
		if p.Position == picks[pi].position {
			count++
		}
	}
	return count
}

// restSalaryBounds returns loose lower/upper bounds on the salary still to
// be committed: the current bucket from index ci, plus all later buckets.
func restSalaryBounds(picks []bucketPick, pi, ci, needHere int) (int, int) {
	minRest := suffixSalaryLow(&picks[pi], ci, needHere)
	maxRest := suffixSalaryHigh(&picks[pi], ci, needHere)
	for j := pi + 1; j < len(picks); j++ {
		need := picks[j].need
		minRest += suffixSalaryLow(&picks[j], 0, need)
		maxRest += suffixSalaryHigh(&picks[j], 0, need)
	}
	return minRest, maxRest
}

func suffixSalaryLow(bp *bucketPick, ci, k int) int {
	if k <= 0 || ci >= len(bp.cands) {
		return 0
	}
	return k * bp.sufMinSalary[ci]
}

func suffixSalaryHigh(bp *bucketPick, ci, k int) int {
	if k <= 0 || ci >= len(bp.cands) {
		return 0
	}
	return k * bp.sufMaxSalary[ci]
}

// restScoreBound is an admissible upper bound on the projection still
// attainable: candidates are score-sorted, so the top of each suffix is the
// best any selection from it can do.
func restScoreBound(picks []bucketPick, pi, ci, needHere int) float64 {
	bound := topScores(picks[pi].cands, ci, needHere)
	for j := pi + 1; j < len(picks); j++ {
		bound += topScores(picks[j].cands, 0, picks[j].need)
	}
	return bound
}

func topScores(cands []candidate, from, k int) float64 {
	sum := 0.0
	for i := from; i < len(cands) && k > 0; i++ {
		sum += cands[i].score
		k--
	}
	return sum
}

func salarySuffixBounds(cands []candidate) (low, high []int) {
	n := len(cands)
	low = make([]int, n)
	high = make([]int, n)
	minSal, maxSal := 0, 0
	for i := n - 1; i >= 0; i-- {
		sal := cands[i].player.Salary
		if i == n-1 {
			minSal, maxSal = sal, sal
		} else {
			if sal < minSal {
				minSal = sal
			}
			if sal > maxSal {
				maxSal = sal
			}
		}
		low[i] = minSal
		high[i] = maxSal
	}
	return low, high
}

func buildStackCaps(stacks []types.Stack, pool []types.Player) []stackCap {
	caps := make([]stackCap, 0, len(stacks))
	for _, st := range stacks {
		if !st.Enabled {
			continue
		}
		eligible := 0
		for _, p := range pool {
			if st.Covers(p) {
				eligible++
			}
		}
		limit := st.MaxFromStack
		if eligible < limit {
			limit = eligible
		}
		caps = append(caps, stackCap{stack: st, cap: limit})
	}
	return caps
}

func assembleLineup(players []types.Player) *types.Lineup {
	lineup := &types.Lineup{
		ID:      fmt.Sprintf("lineup_%s", uuid.New().String()[:8]),
		Players: append([]types.Player(nil), players...),
	}
	var ownership, leverage float64
	for _, p := range players {
		lineup.TotalSalary += p.Salary
		lineup.TotalProjection += p.BaseProjection()
		ownership += p.EffectiveOwnership()
		leverage += p.Leverage
	}
	if n := float64(len(players)); n > 0 {
		lineup.AvgOwnership = ownership / n
		lineup.AvgLeverage = leverage / n
	}
	return lineup
}
