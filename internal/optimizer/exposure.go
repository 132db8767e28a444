package optimizer

import (
	"sort"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// Exposure classification statuses.
const (
	ExposureOver   = "over"
	ExposureUnder  = "under"
	ExposureWithin = "within"
)

// ExposureTracker accumulates how often each player appears across a batch.
// It is reporting-only: targets are advisory and never feed back into
// subsequent solves.
type ExposureTracker struct {
	counts       map[string]int
	totalLineups int
}

// NewExposureTracker creates an empty tracker.
func NewExposureTracker() *ExposureTracker {
	return &ExposureTracker{counts: make(map[string]int)}
}

// Record accumulates one completed lineup.
func (t *ExposureTracker) Record(lineup *types.Lineup) {
	for _, p := range lineup.Players {
		t.counts[p.ID]++
	}
	t.totalLineups++
}

// Count returns how many recorded lineups contain the player.
func (t *ExposureTracker) Count(playerID string) int {
	return t.counts[playerID]
}

// TotalLineups returns the number of recorded lineups.
func (t *ExposureTracker) TotalLineups() int {
	return t.totalLineups
}

// Report compares realized exposure against each player's configured range.
// Every pool player gets a row, including those absent from all lineups.
func (t *ExposureTracker) Report(pool []types.Player) []types.ExposureRow {
	rows := make([]types.ExposureRow, 0, len(pool))
	if t.totalLineups == 0 {
		return rows
	}

	for _, p := range pool {
		count := t.counts[p.ID]
		pct := float64(count) / float64(t.totalLineups) * 100
		maxExp := p.MaxExposureOrDefault()

		status := ExposureWithin
		switch {
		case pct > maxExp:
			status = ExposureOver
		case pct < p.MinExposure:
			status = ExposureUnder
		}

		rows = append(rows, types.ExposureRow{
			PlayerID:    p.ID,
			Name:        p.Name,
			Team:        p.Team,
			Position:    p.Position,
			Count:       count,
			Exposure:    pct,
			MinExposure: p.MinExposure,
			MaxExposure: maxExp,
			Status:      status,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Exposure != rows[j].Exposure {
			return rows[i].Exposure > rows[j].Exposure
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows
}
