package optimizer

import (
	"fmt"
	"sort"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// NoStackLabel is the classification for lineups with no concentration
// pattern worth reporting.
const NoStackLabel = "No Stack"

func isPassCatcher(position string) bool {
	return position == "WR" || position == "TE"
}

// ClassifyStack labels a completed lineup by its team/position
// concentration: a quarterback with same-team pass catchers first, then a
// cross-team game stack, otherwise no stack. Order of players is irrelevant
// and the function has no side effects.
func ClassifyStack(lineup *types.Lineup) string {
	catchersByTeam := make(map[string]int)
	teamCounts := make(map[string]int)
	var qbs []types.Player

	for _, p := range lineup.Players {
		teamCounts[p.Team]++
		if p.Position == "QB" {
			qbs = append(qbs, p)
		}
		if isPassCatcher(p.Position) {
			catchersByTeam[p.Team]++
		}
	}

	bestQBStack := 0
	for _, qb := range qbs {
		if n := catchersByTeam[qb.Team]; n > bestQBStack {
			bestQBStack = n
		}
	}
	if bestQBStack >= 1 {
		return fmt.Sprintf("QB+%d Stack", bestQBStack)
	}

	teamsWithPair := 0
	for _, count := range teamCounts {
		if count >= 2 {
			teamsWithPair++
		}
	}
	if teamsWithPair >= 2 {
		return "Game Stack"
	}

	return NoStackLabel
}

// AuditStacks aggregates stack labels across a batch into counts and
// percentages for reporting.
func AuditStacks(lineups []types.Lineup) []types.StackAuditRow {
	if len(lineups) == 0 {
		return []types.StackAuditRow{}
	}

	counts := make(map[string]int)
	for i := range lineups {
		label := lineups[i].StackLabel
		if label == "" {
			label = ClassifyStack(&lineups[i])
		}
		counts[label]++
	}

	rows := make([]types.StackAuditRow, 0, len(counts))
	total := float64(len(lineups))
	for label, count := range counts {
		rows = append(rows, types.StackAuditRow{
			Label:      label,
			Count:      count,
			Percentage: float64(count) / total * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
