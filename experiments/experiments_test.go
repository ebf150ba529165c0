package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chessmcts/engine"
	"chessmcts/experiments/metrics"
	"chessmcts/game"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"iterations", "cutoff", "expansion", "throughput"} {
		exp, err := Lookup(name)
		require.NoError(t, err)
		require.Equal(t, name, exp.Name)
		require.NotEmpty(t, exp.MatchUps)
	}

	_, err := Lookup("parallelization")
	require.Error(t, err)
}

func TestRunnerRun(t *testing.T) {
	rules, err := game.NewChessRules()
	require.NoError(t, err)
	t.Cleanup(rules.Close)

	a := metrics.AgentConfig{ID: 0, Iterations: 5, Cutoff: 5}
	b := metrics.AgentConfig{ID: 1, Iterations: 5, Cutoff: 5, FullExpansion: true, Temperature: 1}
	exp := Experiment{Name: "smoke", Configs: []metrics.AgentConfig{a, b}, MatchUps: [][2]metrics.AgentConfig{{a, b}}}
	runner := &Runner{Rules: rules, Start: game.StartPosition, Games: 2, MaxTurns: 4, Seed: 1, OutDir: t.TempDir()}

	summary, err := runner.Run(context.Background(), exp)

	require.NoError(t, err)
	require.Len(t, summary.MatchUps, 1)
	result := summary.MatchUps[0]
	require.Equal(t, 2, result.Games)
	require.Equal(t, 2, result.Draws, "Four plies from the start cannot be decisive")
	require.Contains(t, summary.Throughput, 0)
	require.Contains(t, summary.Throughput, 1)

	runs, err := os.ReadDir(filepath.Join(runner.OutDir, "smoke"))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "experiment.yaml"} {
		require.FileExists(t, filepath.Join(runner.OutDir, "smoke", runs[0].Name(), name))
	}
}

func TestTally(t *testing.T) {
	result := metrics.MatchUpResult{}

	tally(&result, engine.White, true)
	tally(&result, engine.White, false)
	tally(&result, engine.Black, false)
	tally(&result, "", true)

	require.Equal(t, metrics.MatchUpResult{Games: 4, Agent1Wins: 2, Agent2Wins: 1, Draws: 1}, result)
}

func TestThroughput(t *testing.T) {
	games := []metrics.GameRecord{{ID: 1, White: 7, Black: 8}}
	moves := []metrics.MoveRecord{
		{Game: 1, MoveMetric: metrics.MoveMetric{White: true, SearchMetric: metrics.SearchMetric{Episodes: 100, Duration: time.Second}}},
		{Game: 1, MoveMetric: metrics.MoveMetric{White: false, SearchMetric: metrics.SearchMetric{Episodes: 50, Duration: time.Second}}},
		{Game: 1, MoveMetric: metrics.MoveMetric{White: true, SearchMetric: metrics.SearchMetric{Episodes: 300, Duration: time.Second}}},
		{Game: 2, MoveMetric: metrics.MoveMetric{White: true, SearchMetric: metrics.SearchMetric{Episodes: 1, Duration: time.Second}}},
	}

	got := throughput(games, moves)

	require.InDelta(t, 200.0, got[7], 1e-9)
	require.InDelta(t, 50.0, got[8], 1e-9)
	require.Len(t, got, 2, "Moves of unknown games should be ignored")
}
