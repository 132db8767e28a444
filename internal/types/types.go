package types

import (
	"fmt"
	"time"
)

// Player is an immutable snapshot of one candidate in the slate pool.
// Perturbation and overrides always construct a new value; nothing in the
// engine mutates a Player after it enters a request.
type Player struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Position          string   `json:"position"`
	Team              string   `json:"team"`
	Opponent          string   `json:"opponent,omitempty"`
	Salary            int      `json:"salary"`
	Projection        float64  `json:"projection"`
	Ownership         float64  `json:"ownership"`
	Locked            bool     `json:"locked"`
	Banned            bool     `json:"banned"`
	MinExposure       float64  `json:"min_exposure"`
	MaxExposure       float64  `json:"max_exposure"`
	CustomProjection  *float64 `json:"custom_projection,omitempty"`
	ProjectionBoost   float64  `json:"projection_boost"`
	OwnershipOverride *float64 `json:"ownership_override,omitempty"`
	Leverage          float64  `json:"leverage"`
	BoomRate          float64  `json:"boom_rate"`
	BustRate          float64  `json:"bust_rate"`
	InjuryStatus      string   `json:"injury_status,omitempty"`
}

// BaseProjection returns the projection the objective works from:
// the custom override when one is set, the slate projection otherwise.
func (p Player) BaseProjection() float64 {
	if p.CustomProjection != nil {
		return *p.CustomProjection
	}
	return p.Projection
}

// EffectiveOwnership returns the ownership estimate with any operator
// override applied.
func (p Player) EffectiveOwnership() float64 {
	if p.OwnershipOverride != nil {
		return *p.OwnershipOverride
	}
	return p.Ownership
}

// MaxExposureOrDefault treats an unset (zero) max exposure as uncapped.
func (p Player) MaxExposureOrDefault() float64 {
	if p.MaxExposure <= 0 {
		return 100
	}
	return p.MaxExposure
}

// Validate checks the per-player invariants.
func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player missing id")
	}
	if p.Salary <= 0 {
		return fmt.Errorf("player %s: salary must be positive, got %d", p.ID, p.Salary)
	}
	if p.Projection < 0 {
		return fmt.Errorf("player %s: projection must be non-negative, got %.2f", p.ID, p.Projection)
	}
	if p.Locked && p.Banned {
		return fmt.Errorf("player %s: cannot be both locked and banned", p.ID)
	}
	if p.MinExposure < 0 || p.MinExposure > 100 {
		return fmt.Errorf("player %s: min_exposure must be within [0,100], got %.1f", p.ID, p.MinExposure)
	}
	if p.MaxExposure < 0 || p.MaxExposure > 100 {
		return fmt.Errorf("player %s: max_exposure must be within [0,100], got %.1f", p.ID, p.MaxExposure)
	}
	if p.MaxExposure > 0 && p.MinExposure > p.MaxExposure {
		return fmt.Errorf("player %s: min_exposure %.1f exceeds max_exposure %.1f", p.ID, p.MinExposure, p.MaxExposure)
	}
	return nil
}

// Stack describes a same-team positional bundle the optimizer should steer
// toward. Disabled stacks are ignored entirely.
type Stack struct {
	Team         string   `json:"team"`
	Positions    []string `json:"positions"`
	MinFromStack int      `json:"min_from_stack"`
	MaxFromStack int      `json:"max_from_stack"`
	Enabled      bool     `json:"enabled"`
}

// Validate checks the stack invariants.
func (s Stack) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Team == "" {
		return fmt.Errorf("stack missing team")
	}
	if len(s.Positions) == 0 {
		return fmt.Errorf("stack for %s has no positions", s.Team)
	}
	if s.MinFromStack > s.MaxFromStack {
		return fmt.Errorf("stack for %s: min_from_stack %d exceeds max_from_stack %d", s.Team, s.MinFromStack, s.MaxFromStack)
	}
	return nil
}

// Covers reports whether a player is eligible for this stack.
func (s Stack) Covers(p Player) bool {
	if p.Team != s.Team {
		return false
	}
	for _, pos := range s.Positions {
		if pos == p.Position {
			return true
		}
	}
	return false
}

// PositionRange is an inclusive [min,max] bound on a position bucket.
type PositionRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Constraints is the roster composition rule set for one contest.
type Constraints struct {
	SalaryCap     int                      `json:"salary_cap"`
	Positions     map[string]PositionRange `json:"positions"`
	MaxFromTeam   int                      `json:"max_from_team"`
	UniquePlayers int                      `json:"unique_players"`
}

// MinSalary is the floor of the tight-salary-utilization window.
func (c Constraints) MinSalary() int {
	return int(float64(c.SalaryCap) * 0.98)
}

// Validate checks that the rule set is internally consistent. Pool-level
// feasibility is the solver's verdict, not a pre-check.
func (c Constraints) Validate() error {
	if c.SalaryCap <= 0 {
		return fmt.Errorf("salary_cap must be positive, got %d", c.SalaryCap)
	}
	if c.UniquePlayers <= 0 {
		return fmt.Errorf("unique_players must be positive, got %d", c.UniquePlayers)
	}
	if c.MaxFromTeam <= 0 {
		return fmt.Errorf("max_from_team must be positive, got %d", c.MaxFromTeam)
	}
	if len(c.Positions) == 0 {
		return fmt.Errorf("position ranges are required")
	}
	sumMin, sumMax := 0, 0
	for pos, r := range c.Positions {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("position %s: invalid range [%d,%d]", pos, r.Min, r.Max)
		}
		sumMin += r.Min
		sumMax += r.Max
	}
	if sumMin > c.UniquePlayers {
		return fmt.Errorf("sum of position minimums %d exceeds roster size %d", sumMin, c.UniquePlayers)
	}
	if sumMax < c.UniquePlayers {
		return fmt.Errorf("sum of position maximums %d below roster size %d", sumMax, c.UniquePlayers)
	}
	return nil
}

// Lineup is one completed roster. Created by a single solver invocation and
// immutable afterwards.
type Lineup struct {
	ID              string   `json:"id"`
	Players         []Player `json:"players"`
	TotalSalary     int      `json:"total_salary"`
	TotalProjection float64  `json:"total_projection"`
	AvgOwnership    float64  `json:"avg_ownership"`
	AvgLeverage     float64  `json:"avg_leverage"`
	StackLabel      string   `json:"stack_label"`
}

// ExposureRow reports one player's realized exposure across a batch.
type ExposureRow struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	Team        string  `json:"team"`
	Position    string  `json:"position"`
	Count       int     `json:"count"`
	Exposure    float64 `json:"exposure"`
	MinExposure float64 `json:"min_exposure"`
	MaxExposure float64 `json:"max_exposure"`
	Status      string  `json:"status"` // "over", "under", "within"
}

// StackAuditRow aggregates one stack classification across a batch.
type StackAuditRow struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// VarianceSettings controls the diversity injector.
type VarianceSettings struct {
	// Randomness is the perturbation magnitude as a percentage of each
	// player's projection (10 means sigma = 0.10 * projection).
	Randomness float64 `json:"randomness"`
	Seed       int64   `json:"seed"`
}

// OptimizationRequest is the lineup-generation entry contract.
type OptimizationRequest struct {
	SlateID          string            `json:"slate_id"`
	Players          []Player          `json:"players"`
	Constraints      Constraints       `json:"constraints"`
	Stacks           []Stack           `json:"stacks,omitempty"`
	NumLineups       int               `json:"num_lineups"`
	VarianceSettings *VarianceSettings `json:"variance_settings,omitempty"`
}

// Validate checks the whole request surface before any solving happens.
func (r OptimizationRequest) Validate() error {
	if len(r.Players) == 0 {
		return fmt.Errorf("player pool is empty")
	}
	if r.NumLineups <= 0 {
		return fmt.Errorf("num_lineups must be positive, got %d", r.NumLineups)
	}
	seen := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate player id %s in pool", p.ID)
		}
		seen[p.ID] = true
	}
	if err := r.Constraints.Validate(); err != nil {
		return err
	}
	for _, s := range r.Stacks {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if r.VarianceSettings != nil && r.VarianceSettings.Randomness < 0 {
		return fmt.Errorf("variance randomness must be non-negative")
	}
	return nil
}

// OptimizationResponse is the lineup-generation exit contract. A failed
// batch still reports how many lineups did succeed.
type OptimizationResponse struct {
	Success        bool            `json:"success"`
	Lineups        []Lineup        `json:"lineups"`
	Exposures      []ExposureRow   `json:"exposures"`
	StackAudit     []StackAuditRow `json:"stack_audit"`
	TotalGenerated int             `json:"total_generated"`
	Message        string          `json:"message"`
}

// LineupEntry references an externally supplied lineup by player ids. The
// simulator consumes arbitrary lineups, not only ones this engine built.
type LineupEntry struct {
	ID        string   `json:"id"`
	PlayerIDs []string `json:"player_ids"`
}

// SimulationRequest is the outcome-simulation entry contract.
type SimulationRequest struct {
	SlateID             string             `json:"slate_id"`
	Players             []Player           `json:"players"`
	Lineups             []LineupEntry      `json:"lineups"`
	NumSimulations      int                `json:"num_simulations"`
	Seed                int64              `json:"seed"`
	DistributionType    string             `json:"distribution_type"`
	CorrelationStrength float64            `json:"correlation_strength"`
	WeatherAdjustments  map[string]float64 `json:"weather_adjustments,omitempty"`
	InjuryAdjustments   map[string]float64 `json:"injury_adjustments,omitempty"`
	EntryFee            float64            `json:"entry_fee,omitempty"`
	PayoutMultiplier    float64            `json:"payout_multiplier,omitempty"`
}

// Validate checks the simulation request surface.
func (r SimulationRequest) Validate() error {
	if len(r.Players) == 0 {
		return fmt.Errorf("player pool is empty")
	}
	index := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		if err := p.Validate(); err != nil {
			return err
		}
		if index[p.ID] {
			return fmt.Errorf("duplicate player id %s in pool", p.ID)
		}
		index[p.ID] = true
	}
	for _, l := range r.Lineups {
		if len(l.PlayerIDs) == 0 {
			return fmt.Errorf("lineup %s has no players", l.ID)
		}
		for _, id := range l.PlayerIDs {
			if !index[id] {
				return fmt.Errorf("lineup %s references unknown player %s", l.ID, id)
			}
		}
	}
	if r.NumSimulations < 0 {
		return fmt.Errorf("num_simulations must be non-negative")
	}
	if r.CorrelationStrength < 0 || r.CorrelationStrength > 1 {
		return fmt.Errorf("correlation_strength must be within [0,1], got %.2f", r.CorrelationStrength)
	}
	switch r.DistributionType {
	case "", "normal", "lognormal", "empirical":
	default:
		return fmt.Errorf("unknown distribution_type %q", r.DistributionType)
	}
	return nil
}

// PlayerOutcome summarizes one player's sampled distribution.
type PlayerOutcome struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Mean     float64 `json:"mean"`
	P5       float64 `json:"p5"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
	P95      float64 `json:"p95"`
	BoomRate float64 `json:"boom_rate"`
	BustRate float64 `json:"bust_rate"`
	Variance float64 `json:"variance"`
}

// LineupResult summarizes one lineup's simulated score distribution.
type LineupResult struct {
	LineupID       string  `json:"lineup_id"`
	MeanScore      float64 `json:"mean_score"`
	PercentileRank float64 `json:"percentile_rank"`
	BoomRate       float64 `json:"boom_rate"`
	BustRate       float64 `json:"bust_rate"`
	WinProbability float64 `json:"win_probability"`
	MeanROI        float64 `json:"mean_roi"`
}

// ROIDistribution summarizes ROI across all simulated lineups.
type ROIDistribution struct {
	MeanROI         float64 `json:"mean_roi"`
	BestROI         float64 `json:"best_roi"`
	WorstROI        float64 `json:"worst_roi"`
	ProfitableShare float64 `json:"profitable_share"`
}

// SimulationStats echoes the run parameters plus timing.
type SimulationStats struct {
	NumSimulations      int     `json:"num_simulations"`
	NumPlayers          int     `json:"num_players"`
	NumLineups          int     `json:"num_lineups"`
	DistributionType    string  `json:"distribution_type"`
	CorrelationStrength float64 `json:"correlation_strength"`
	ElapsedMs           int64   `json:"elapsed_ms"`
}

// SimulationResponse is the outcome-simulation exit contract.
type SimulationResponse struct {
	Success         bool            `json:"success"`
	PlayerOutcomes  []PlayerOutcome `json:"player_outcomes"`
	LineupResults   []LineupResult  `json:"lineup_results"`
	ROIDistribution ROIDistribution `json:"roi_distribution"`
	SimulationStats SimulationStats `json:"simulation_stats"`
	Message         string          `json:"message"`
}

// ProgressUpdate is streamed over the websocket hub during long batches.
type ProgressUpdate struct {
	Type        string    `json:"type"`
	SlateID     string    `json:"slate_id"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// ErrorResponse is the structured failure envelope for non-engine errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}
