package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCollector(t *testing.T) {
	t.Run("counts playouts by result", func(t *testing.T) {
		c := NewCollector()
		c.Start(10, 50)
		for _, p := range []Playout{PlayoutWin, PlayoutWin, PlayoutLoss, PlayoutDraw, PlayoutAborted, PlayoutSkipped, PlayoutCutoff} {
			c.AddPlayout(p)
			c.AddEpisode()
		}
		c.AddDefect()
		c.SetTreeSize(42)

		metric := c.Complete()

		require.Equal(t, 10, metric.Iterations)
		require.Equal(t, 50, metric.Cutoff)
		require.Equal(t, 7, metric.Episodes)
		require.Equal(t, 3, metric.FullPlayouts, "Only wins and losses reach a lost condition")
		require.Equal(t, 2, metric.Wins)
		require.Equal(t, 1, metric.Losses)
		require.Equal(t, 1, metric.Aborted)
		require.Equal(t, 1, metric.Defects)
		require.Equal(t, 42, metric.TreeSize)
		require.GreaterOrEqual(t, metric.Duration, time.Duration(0))
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(10, 50)
		c.AddEpisode()
		c.AddPlayout(PlayoutWin)

		require.Equal(t, SearchMetric{}, c.Complete())
	})

	t.Run("playout names", func(t *testing.T) {
		require.Equal(t, "win", PlayoutWin.String())
		require.Equal(t, "cutoff", PlayoutCutoff.String())
		require.Equal(t, "unknown", Playout(99).String())
	})
}

func TestPrometheus(t *testing.T) {
	t.Run("records into the registry", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		p, err := NewPrometheus(reg)
		require.NoError(t, err)

		c := p.NewCollector()
		c.Start(3, 10)
		c.AddPlayout(PlayoutWin)
		c.AddEpisode()
		c.AddPlayout(PlayoutCutoff)
		c.AddEpisode()
		c.AddDefect()
		metric := c.Complete()

		require.Equal(t, 2, metric.Episodes, "Per-search summary should still be collected")
		require.Equal(t, 2.0, testutil.ToFloat64(p.episodes))
		require.Equal(t, 1.0, testutil.ToFloat64(p.playouts.WithLabelValues("win")))
		require.Equal(t, 1.0, testutil.ToFloat64(p.defects))
		require.Equal(t, 1.0, testutil.ToFloat64(p.searches))
	})

	t.Run("registering twice fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := NewPrometheus(reg)
		require.NoError(t, err)

		_, err = NewPrometheus(reg)
		require.Error(t, err)
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "cutoff")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(w.Dir(), filepath.Join(root, "cutoff")))
	require.NotEmpty(t, w.RunID())

	t.Run("agent configs", func(t *testing.T) {
		require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Iterations: 100, Cutoff: 20, Temperature: 0.5}}))

		rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Equal(t, []string{"id", "iterations", "cutoff", "branching_factor", "full_expansion", "temperature"}, rows[0])
		require.Equal(t, []string{"1", "100", "20", "0", "false", "0.5"}, rows[1])
	})

	t.Run("game records", func(t *testing.T) {
		record := GameRecord{ID: 1, White: 1, Black: 2, GameMetric: GameMetric{
			ID: "g", Winner: "black", Termination: "checkmate", TotalMoves: 4, StartFEN: "start, with comma",
		}}
		require.NoError(t, w.WriteGameRecords([]GameRecord{record}))

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"1", "g", "1", "2", "black", "checkmate", "4", "start, with comma"}, rows[1][:8])
	})

	t.Run("move records", func(t *testing.T) {
		record := MoveRecord{Game: 1, MoveMetric: MoveMetric{Step: 2, SearchMetric: SearchMetric{Episodes: 5, TreeSize: 6}}}
		require.NoError(t, w.WriteMoveRecords([]MoveRecord{record}))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "1", rows[1][0])
		require.Equal(t, "2", rows[1][1])
		require.Equal(t, "false", rows[1][2])
		require.Equal(t, "5", rows[1][6])
		require.Equal(t, "6", rows[1][12])
	})

	t.Run("summary", func(t *testing.T) {
		summary := Summary{
			Experiment: "cutoff",
			MatchUps:   []MatchUpResult{{Agent1: 0, Agent2: 1, Games: 2, Agent1Wins: 1, Draws: 1}},
			Throughput: map[int]float64{0: 1500},
		}
		require.NoError(t, w.WriteSummary(summary))

		data, err := os.ReadFile(filepath.Join(w.Dir(), "experiment.yaml"))
		require.NoError(t, err)
		var got Summary
		require.NoError(t, yaml.Unmarshal(data, &got))
		require.Equal(t, w.RunID(), got.RunID, "Summary should carry the run ID")
		require.Equal(t, summary.MatchUps, got.MatchUps)
	})
}
