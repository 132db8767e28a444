package simulator

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/logger"
)

// Default run parameters applied when the request leaves them unset.
const (
	DefaultNumSimulations   = 1000
	DefaultEntryFee         = 10.0
	DefaultPayoutMultiplier = 4.5
	// payoutPercentile is the simulated-field cutoff above which the fixed
	// payout triggers. A simplified, replaceable payout-curve assumption.
	payoutPercentile = 0.80

	boomFactor = 1.5
	bustFactor = 0.5
	// Lineup boom/bust band around the projected total.
	lineupBoomFactor = 1.2
	lineupBustFactor = 0.8
)

// Simulate draws correlated outcome samples for every player across the
// requested number of trials and aggregates per-player and per-lineup
// statistics. For a fixed seed, distribution type, and correlation strength
// the output is bit-for-bit reproducible: every trial owns an RNG stream
// seeded from (seed + trial), so worker scheduling cannot reorder draws.
func Simulate(req types.SimulationRequest) (*types.SimulationResponse, error) {
	simulationID := uuid.New().String()
	start := time.Now()

	log := logger.WithSimulationContext(simulationID, req.SlateID)

	numSims := req.NumSimulations
	if numSims <= 0 {
		numSims = DefaultNumSimulations
	}
	family := resolveFamily(req.DistributionType)
	entryFee := req.EntryFee
	if entryFee <= 0 {
		entryFee = DefaultEntryFee
	}
	payoutMult := req.PayoutMultiplier
	if payoutMult <= 0 {
		payoutMult = DefaultPayoutMultiplier
	}

	log.WithFields(logrus.Fields{
		"num_simulations":      numSims,
		"num_players":          len(req.Players),
		"num_lineups":          len(req.Lineups),
		"distribution":         family,
		"correlation_strength": req.CorrelationStrength,
		"seed":                 req.Seed,
	}).Info("Starting Monte Carlo simulation")

	cm, err := BuildCorrelationMatrix(req.Players, req.CorrelationStrength)
	if err != nil {
		return nil, err
	}

	inputs := VarianceInputs{
		WeatherAdjustments: req.WeatherAdjustments,
		InjuryAdjustments:  req.InjuryAdjustments,
	}
	n := len(req.Players)
	marginals := make([]marginal, n)
	for i, p := range req.Players {
		marginals[i] = newMarginal(family, p, playerSigma(p, inputs))
	}

	samples := runTrials(cm, marginals, numSims, req.Seed)

	outcomes := aggregatePlayerOutcomes(req.Players, samples)
	lineupResults, roiDist := aggregateLineupResults(req, cm, samples, entryFee, payoutMult)

	resp := &types.SimulationResponse{
		Success:         true,
		PlayerOutcomes:  outcomes,
		LineupResults:   lineupResults,
		ROIDistribution: roiDist,
		SimulationStats: types.SimulationStats{
			NumSimulations:      numSims,
			NumPlayers:          n,
			NumLineups:          len(req.Lineups),
			DistributionType:    family,
			CorrelationStrength: req.CorrelationStrength,
			ElapsedMs:           time.Since(start).Milliseconds(),
		},
		Message: fmt.Sprintf("Simulated %d trials for %d players", numSims, n),
	}

	log.WithFields(logrus.Fields{
		"elapsed_ms": resp.SimulationStats.ElapsedMs,
	}).Info("Simulation completed")

	return resp, nil
}

// runTrials fills a trials x players sample matrix. Trials are independent
// and embarrassingly parallel; each worker writes disjoint rows.
func runTrials(cm *CorrelationMatrix, marginals []marginal, numSims int, seed int64) [][]float64 {
	n := cm.Dim()
	lower := cm.lowerFactor()

	samples := make([][]float64, numSims)
	workers := runtime.NumCPU()
	if workers > numSims {
		workers = numSims
	}

	trialChan := make(chan int, numSims)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eps := make([]float64, n)
			for t := range trialChan {
				src := standardNormalSource(seed + int64(t) + 1)
				for i := range eps {
					eps[i] = src.Rand()
				}

				row := make([]float64, n)
				for i := 0; i < n; i++ {
					z := 0.0
					for j := 0; j <= i; j++ {
						z += lower.At(i, j) * eps[j]
					}
					row[i] = marginals[i].transform(z)
				}
				samples[t] = row
			}
		}()
	}
	for t := 0; t < numSims; t++ {
		trialChan <- t
	}
	close(trialChan)
	wg.Wait()

	return samples
}

func aggregatePlayerOutcomes(players []types.Player, samples [][]float64) []types.PlayerOutcome {
	numSims := len(samples)
	outcomes := make([]types.PlayerOutcome, len(players))

	column := make([]float64, numSims)
	for i, p := range players {
		for t := 0; t < numSims; t++ {
			column[t] = samples[t][i]
		}
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)

		proj := p.BaseProjection()
		booms, busts := 0, 0
		for _, v := range column {
			if v >= boomFactor*proj {
				booms++
			}
			if v <= bustFactor*proj {
				busts++
			}
		}

		outcomes[i] = types.PlayerOutcome{
			PlayerID: p.ID,
			Name:     p.Name,
			Mean:     stat.Mean(sorted, nil),
			P5:       stat.Quantile(0.05, stat.Empirical, sorted, nil),
			P25:      stat.Quantile(0.25, stat.Empirical, sorted, nil),
			P50:      stat.Quantile(0.50, stat.Empirical, sorted, nil),
			P75:      stat.Quantile(0.75, stat.Empirical, sorted, nil),
			P95:      stat.Quantile(0.95, stat.Empirical, sorted, nil),
			BoomRate: float64(booms) / float64(numSims) * 100,
			BustRate: float64(busts) / float64(numSims) * 100,
			Variance: stat.Variance(sorted, nil),
		}
	}
	return outcomes
}

func aggregateLineupResults(req types.SimulationRequest, cm *CorrelationMatrix, samples [][]float64, entryFee, payoutMult float64) ([]types.LineupResult, types.ROIDistribution) {
	numLineups := len(req.Lineups)
	if numLineups == 0 {
		return []types.LineupResult{}, types.ROIDistribution{}
	}
	numSims := len(samples)

	// Per-lineup score per trial; samples clamp at zero when summed.
	indices := make([][]int, numLineups)
	projTotals := make([]float64, numLineups)
	playerByID := make(map[string]types.Player, len(req.Players))
	for _, p := range req.Players {
		playerByID[p.ID] = p
	}
	for l, entry := range req.Lineups {
		idxs := make([]int, 0, len(entry.PlayerIDs))
		for _, id := range entry.PlayerIDs {
			if i, ok := cm.IndexOf(id); ok {
				idxs = append(idxs, i)
				projTotals[l] += playerByID[id].BaseProjection()
			}
		}
		indices[l] = idxs
	}

	scores := make([][]float64, numLineups)
	field := make([]float64, 0, numLineups*numSims)
	for l := 0; l < numLineups; l++ {
		scores[l] = make([]float64, numSims)
		for t := 0; t < numSims; t++ {
			total := 0.0
			for _, i := range indices[l] {
				total += math.Max(0, samples[t][i])
			}
			scores[l][t] = total
		}
		field = append(field, scores[l]...)
	}
	sort.Float64s(field)
	payoutLine := stat.Quantile(payoutPercentile, stat.Empirical, field, nil)

	results := make([]types.LineupResult, numLineups)
	var roiSum, roiBest, roiWorst float64
	profitable := 0
	for l := 0; l < numLineups; l++ {
		mean := stat.Mean(scores[l], nil)

		booms, busts, wins := 0, 0, 0
		roiTotal := 0.0
		for t := 0; t < numSims; t++ {
			score := scores[l][t]
			if score >= lineupBoomFactor*projTotals[l] {
				booms++
			}
			if score <= lineupBustFactor*projTotals[l] {
				busts++
			}
			best := true
			for k := 0; k < numLineups; k++ {
				if scores[k][t] > score {
					best = false
					break
				}
			}
			if best {
				wins++
			}
			payout := 0.0
			if score >= payoutLine {
				payout = entryFee * payoutMult
			}
			roiTotal += (payout - entryFee) / entryFee * 100
		}

		meanROI := roiTotal / float64(numSims)
		results[l] = types.LineupResult{
			LineupID:       req.Lineups[l].ID,
			MeanScore:      mean,
			PercentileRank: percentileRank(field, mean),
			BoomRate:       float64(booms) / float64(numSims) * 100,
			BustRate:       float64(busts) / float64(numSims) * 100,
			WinProbability: float64(wins) / float64(numSims) * 100,
			MeanROI:        meanROI,
		}

		roiSum += meanROI
		if l == 0 || meanROI > roiBest {
			roiBest = meanROI
		}
		if l == 0 || meanROI < roiWorst {
			roiWorst = meanROI
		}
		if meanROI > 0 {
			profitable++
		}
	}

	dist := types.ROIDistribution{
		MeanROI:         roiSum / float64(numLineups),
		BestROI:         roiBest,
		WorstROI:        roiWorst,
		ProfitableShare: float64(profitable) / float64(numLineups) * 100,
	}
	return results, dist
}

// percentileRank reports the share of the sorted field strictly below the
// value, as a percentage.
func percentileRank(sortedField []float64, value float64) float64 {
	idx := sort.SearchFloat64s(sortedField, value)
	return float64(idx) / float64(len(sortedField)) * 100
}
