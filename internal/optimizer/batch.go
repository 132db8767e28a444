package optimizer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/logger"
)

// BatchConfig controls one lineup-generation batch.
type BatchConfig struct {
	NumLineups    int
	RandomnessPct float64
	Seed          int64
	MaxNodes      int
	Workers       int
}

// BatchResult carries the lineups that solved plus the batch-level reports.
type BatchResult struct {
	Lineups        []types.Lineup
	Exposures      []types.ExposureRow
	StackAudit     []types.StackAuditRow
	TotalGenerated int
	Infeasible     int
}

// GenerateLineups runs the full batch: perturb, solve, record, report. Each
// lineup index is an independent pure solve of its own perturbed pool, so
// indices are fanned out across workers; an infeasible index is logged and
// skipped without aborting the rest. Progress updates are sent best-effort
// when a channel is supplied.
func GenerateLineups(slateID string, pool []types.Player, cons types.Constraints, stacks []types.Stack, cfg BatchConfig, progress chan<- types.ProgressUpdate) (*BatchResult, error) {
	optimizationID := uuid.New().String()
	start := time.Now()

	log := logger.WithOptimizationContext(optimizationID, slateID)
	log.WithFields(logrus.Fields{
		"total_players": len(pool),
		"salary_cap":    cons.SalaryCap,
		"num_lineups":   cfg.NumLineups,
		"randomness":    cfg.RandomnessPct,
		"seed":          cfg.Seed,
	}).Info("Starting lineup generation")

	eligible := 0
	for _, p := range pool {
		if !p.Banned {
			eligible++
		}
	}
	if eligible == 0 {
		return nil, fmt.Errorf("no players available after filtering")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.NumLineups {
		workers = cfg.NumLineups
	}

	results := make([]*types.Lineup, cfg.NumLineups)
	indexChan := make(chan int, cfg.NumLineups)
	var wg sync.WaitGroup
	var completed int64
	var mu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				lineupLog := logger.WithLineupContext(optimizationID, i)
				perturbed := PerturbPool(pool, i, cfg.RandomnessPct, cfg.Seed)
				lineup, err := Solve(perturbed, cons, stacks, cfg.MaxNodes, lineupLog)
				if err != nil {
					lineupLog.WithError(err).Debug("Lineup solve skipped")
				} else {
					lineup.StackLabel = ClassifyStack(lineup)
					results[i] = lineup
				}

				mu.Lock()
				completed++
				done := completed
				mu.Unlock()
				if progress != nil {
					select {
					case progress <- types.ProgressUpdate{
						Type:        "optimization",
						SlateID:     slateID,
						Progress:    float64(done) / float64(cfg.NumLineups),
						Message:     fmt.Sprintf("Solved %d/%d lineups", done, cfg.NumLineups),
						CurrentStep: int(done),
						TotalSteps:  cfg.NumLineups,
						Timestamp:   time.Now(),
					}:
					default:
					}
				}
			}
		}()
	}

	for i := 0; i < cfg.NumLineups; i++ {
		indexChan <- i
	}
	close(indexChan)
	wg.Wait()

	tracker := NewExposureTracker()
	// Reports marshal as empty arrays, never null, even on total failure.
	batch := &BatchResult{Lineups: []types.Lineup{}}
	for _, lineup := range results {
		if lineup == nil {
			batch.Infeasible++
			continue
		}
		tracker.Record(lineup)
		batch.Lineups = append(batch.Lineups, *lineup)
	}
	batch.TotalGenerated = len(batch.Lineups)
	batch.Exposures = tracker.Report(pool)
	batch.StackAudit = AuditStacks(batch.Lineups)

	log.WithFields(logrus.Fields{
		"generated":       batch.TotalGenerated,
		"infeasible":      batch.Infeasible,
		"optimization_ms": time.Since(start).Milliseconds(),
	}).Info("Lineup generation completed")

	return batch, nil
}
