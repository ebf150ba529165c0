package experiments

import (
	"context"
	"fmt"
	"time"

	"chessmcts/agent"
	"chessmcts/engine"
	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/searcher"

	"github.com/rs/zerolog/log"
)

const (
	NumGames    = 10 // Per match up
	Temperature = 0.5
)

// Experiment is a list of match-ups between agent configurations. Both agents
// of a match-up alternate colours from game to game.
type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
}

// IterationsExperiment pairs agents with growing search budgets against a
// small baseline.
func IterationsExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Iterations: 100, Temperature: Temperature}
	configs := []metrics.AgentConfig{
		{ID: 1, Iterations: 100, Temperature: Temperature}, // Baseline equivalent
		{ID: 2, Iterations: 250, Temperature: Temperature},
		{ID: 3, Iterations: 500, Temperature: Temperature},
		{ID: 4, Iterations: 1000, Temperature: Temperature},
	}
	return againstBaseline("iterations", baseline, configs)
}

// CutoffExperiment pairs agents with shorter rollouts against the default
// rollout depth.
func CutoffExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Iterations: 300, Temperature: Temperature} // Default depth limit
	configs := []metrics.AgentConfig{
		{ID: 1, Iterations: baseline.Iterations, Temperature: Temperature}, // Baseline equivalent
		{ID: 2, Iterations: baseline.Iterations, Temperature: Temperature, Cutoff: 10},
		{ID: 3, Iterations: baseline.Iterations, Temperature: Temperature, Cutoff: 25},
		{ID: 4, Iterations: baseline.Iterations, Temperature: Temperature, Cutoff: 50},
	}
	return againstBaseline("cutoff", baseline, configs)
}

// ExpansionExperiment compares partial expansion against full expansion and
// root branching limits.
func ExpansionExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Iterations: 300, Temperature: Temperature} // Partial, unlimited
	configs := []metrics.AgentConfig{
		{ID: 1, Iterations: baseline.Iterations, Temperature: Temperature, FullExpansion: true},
		{ID: 2, Iterations: baseline.Iterations, Temperature: Temperature, BranchingFactor: 10},
		{ID: 3, Iterations: baseline.Iterations, Temperature: Temperature, BranchingFactor: 5},
	}
	return againstBaseline("expansion", baseline, configs)
}

// Lookup returns the experiment registered under name.
func Lookup(name string) (Experiment, error) {
	switch name {
	case "iterations":
		return IterationsExperiment(), nil
	case "cutoff":
		return CutoffExperiment(), nil
	case "expansion":
		return ExpansionExperiment(), nil
	case "throughput":
		return ThroughputExperiment(), nil
	}
	return Experiment{}, fmt.Errorf("unknown experiment %q", name)
}

func againstBaseline(name string, baseline metrics.AgentConfig, configs []metrics.AgentConfig) Experiment {
	// Each matchup pairs the baseline agent against another agent
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{
		Name:     name,
		Configs:  append([]metrics.AgentConfig{baseline}, configs...),
		MatchUps: matchUps,
	}
}

// Runner plays experiments with one set of rules and stores their records.
type Runner struct {
	Rules    game.Rules
	Start    game.Position
	Games    int    // per match up
	MaxTurns int    // plies before a game is drawn
	Seed     uint64 // base seed, varied per game
	OutDir   string
}

func (r *Runner) Run(ctx context.Context, exp Experiment) (metrics.Summary, error) {
	started := time.Now()
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	results := make([]metrics.MatchUpResult, 0, len(exp.MatchUps))

	log.Info().Msgf("starting %s experiment...", exp.Name)

	for mi, matchUp := range exp.MatchUps {
		config1, config2 := matchUp[0], matchUp[1]
		result := metrics.MatchUpResult{Agent1: config1.ID, Agent2: config2.ID}

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(exp.MatchUps), config1, config2)

		for i := 0; i < r.Games; i++ {
			count++
			white, black := config1, config2
			if i%2 == 1 {
				white, black = config2, config1
			}

			seed := r.Seed + uint64(count)
			e := engine.NewLocalEngine(r.Rules, r.newAgent(white, seed), r.newAgent(black, seed+1), r.Start, r.MaxTurns)
			gameMetric, moveMetrics, err := e.Run(ctx)
			if err != nil {
				return metrics.Summary{}, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				White:      white.ID,
				Black:      black.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			tally(&result, gameMetric.Winner, white.ID == config1.ID)

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %q", mi+1, len(exp.MatchUps), i+1, gameMetric.Winner)
		}
		results = append(results, result)
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(exp.MatchUps))
	}

	log.Info().Msgf("completed %s experiment", exp.Name)

	summary := metrics.Summary{
		Experiment: exp.Name,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started),
		Agents:     exp.Configs,
		MatchUps:   results,
		Throughput: throughput(gameRecords, moveRecords),
	}
	if err := r.store(exp, summary, gameRecords, moveRecords); err != nil {
		return metrics.Summary{}, err
	}
	return summary, nil
}

func (r *Runner) newAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	options := []searcher.Option{searcher.WithSeed(seed)}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithMaxDepth(config.Cutoff))
	}
	if config.BranchingFactor > 0 {
		options = append(options, searcher.WithBranchingFactor(config.BranchingFactor))
	}
	if config.FullExpansion {
		options = append(options, searcher.WithFullExpansion())
	}
	return agent.NewSamplingAgent(r.Rules, config.Iterations, config.Temperature, seed, options...)
}

func (r *Runner) store(exp Experiment, summary metrics.Summary, games []metrics.GameRecord, moves []metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(r.OutDir, exp.Name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(exp.Configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err := writer.WriteGameRecords(games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	if err := writer.WriteSummary(summary); err != nil {
		return err
	}
	log.Info().Str("run", writer.RunID()).Msgf("stored summary in %s", writer.Dir())
	return nil
}

// tally credits a finished game to the match-up. agent1White tells which
// colour the first agent played.
func tally(result *metrics.MatchUpResult, winner string, agent1White bool) {
	result.Games++
	switch {
	case winner == "":
		result.Draws++
	case (winner == engine.White) == agent1White:
		result.Agent1Wins++
	default:
		result.Agent2Wins++
	}
}
