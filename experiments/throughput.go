package experiments

import "chessmcts/experiments/metrics"

// ThroughputExperiment plays every budget against itself, for the same
// playing strength and similar game length, to measure iterations per second.
func ThroughputExperiment() Experiment {
	configs := []metrics.AgentConfig{
		{ID: 1, Iterations: 100, Temperature: Temperature},
		{ID: 2, Iterations: 500, Temperature: Temperature},
		{ID: 3, Iterations: 1000, Temperature: Temperature},
		{ID: 4, Iterations: 2000, Temperature: Temperature},
	}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return Experiment{Name: "throughput", Configs: configs, MatchUps: matchUps}
}

// throughput averages completed iterations per second for each agent over all
// of its moves.
func throughput(games []metrics.GameRecord, moves []metrics.MoveRecord) map[int]float64 {
	colours := make(map[int][2]int, len(games))
	for _, g := range games {
		colours[g.ID] = [2]int{g.White, g.Black}
	}

	episodes := map[int]int{}
	seconds := map[int]float64{}
	for _, m := range moves {
		ids, ok := colours[m.Game]
		if !ok {
			continue
		}
		id := ids[1]
		if m.White {
			id = ids[0]
		}
		episodes[id] += m.Episodes
		seconds[id] += m.Duration.Seconds()
	}

	result := make(map[int]float64, len(episodes))
	for id, n := range episodes {
		if seconds[id] > 0 {
			result[id] = float64(n) / seconds[id]
		}
	}
	return result
}
