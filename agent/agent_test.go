package agent

import (
	"context"
	"math"
	"testing"

	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/searcher"

	"github.com/stretchr/testify/require"
)

const (
	loneKings      game.Position = "8/8/4k3/8/4K3/8/8/8 w - - 0 1"
	singleResponse game.Position = "k7/8/1K6/8/8/8/8/7R b - - 0 1"
	foolsMate      game.Position = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
)

func newRules(t *testing.T) *game.ChessRules {
	t.Helper()
	rules, err := game.NewChessRules()
	require.NoError(t, err)
	t.Cleanup(rules.Close)
	return rules
}

func TestEvaluationAgent(t *testing.T) {
	rules := newRules(t)

	t.Run("finds a legal move with metrics", func(t *testing.T) {
		a := NewEvaluationAgent(rules, 100, searcher.WithMaxDepth(10))

		move, metric, err := a.FindMove(context.Background(), loneKings)

		require.NoError(t, err)
		require.Contains(t, rules.LegalMoves(loneKings), move)
		require.Equal(t, 100, metric.Iterations)
		require.Equal(t, 100, metric.Episodes)
		require.Equal(t, 10, metric.Cutoff)
		require.Greater(t, metric.TreeSize, 1)
	})

	t.Run("decisions are independent", func(t *testing.T) {
		a := NewEvaluationAgent(rules, 50, searcher.WithMaxDepth(10))

		first, _, err := a.FindMove(context.Background(), loneKings)
		require.NoError(t, err)
		second, _, err := a.FindMove(context.Background(), loneKings)
		require.NoError(t, err)

		require.Equal(t, first, second, "A fresh tree with the same seed should reach the same decision")
	})

	t.Run("no move in a lost position", func(t *testing.T) {
		a := NewEvaluationAgent(rules, 10)

		move, _, err := a.FindMove(context.Background(), foolsMate)

		require.NoError(t, err)
		require.Equal(t, game.NoMove, move)
	})

	t.Run("uses the supplied collector", func(t *testing.T) {
		calls := 0
		a := NewInstrumentedAgent(rules, 10, func() metrics.Collector {
			calls++
			return metrics.NewCollector()
		})

		_, metric, err := a.FindMove(context.Background(), singleResponse)

		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Equal(t, 10, metric.Episodes)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := NewEvaluationAgent(rules, 10)

		_, _, err := a.FindMove(ctx, loneKings)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSamplingAgent(t *testing.T) {
	rules := newRules(t)

	t.Run("zero temperature plays the most visited move", func(t *testing.T) {
		options := []searcher.Option{searcher.WithMaxDepth(10)}
		greedy := NewSamplingAgent(rules, 60, 0, 3, options...)
		eval := NewEvaluationAgent(rules, 60, options...)

		got, _, err := greedy.FindMove(context.Background(), loneKings)
		require.NoError(t, err)
		want, _, err := eval.FindMove(context.Background(), loneKings)
		require.NoError(t, err)

		require.Equal(t, want, got)
	})

	t.Run("sampled move is legal", func(t *testing.T) {
		a := NewSamplingAgent(rules, 60, 1.0, 3, searcher.WithMaxDepth(10))

		for i := 0; i < 5; i++ {
			move, _, err := a.FindMove(context.Background(), loneKings)
			require.NoError(t, err)
			require.Contains(t, rules.LegalMoves(loneKings), move)
		}
	})
}

func TestAdjustTemperature(t *testing.T) {
	children := []searcher.NodeStats{{Visits: 1}, {Visits: 3}, {Visits: 0}}

	t.Run("temperature one is proportional to visits", func(t *testing.T) {
		policy := adjustTemperature(children, 1.0)

		require.InDeltaSlice(t, []float64{0.25, 0.75, 0}, policy, 1e-9)
	})

	t.Run("low temperature sharpens", func(t *testing.T) {
		policy := adjustTemperature(children, 0.5)

		require.InDeltaSlice(t, []float64{0.1, 0.9, 0}, policy, 1e-9)
	})

	t.Run("near zero temperature picks the most visited move", func(t *testing.T) {
		skewed := []searcher.NodeStats{{Move: "a", Visits: 900}, {Move: "b", Visits: 50}, {Move: "c", Visits: 50}}

		policy := adjustTemperature(skewed, 0.005)

		for i, prob := range policy {
			require.False(t, math.IsNaN(prob), "Probability %d should be a number", i)
		}
		require.InDeltaSlice(t, []float64{1, 0, 0}, policy, 1e-9)
		require.Equal(t, 0, sample(policy, 0.999))
	})
}

func TestSample(t *testing.T) {
	policy := []float64{0.25, 0.75, 0}

	require.Equal(t, 0, sample(policy, 0.1))
	require.Equal(t, 1, sample(policy, 0.3))
	require.Equal(t, 1, sample(policy, 0.9999999999), "Unvisited moves should never be sampled")
	require.Equal(t, 1, sample(policy, 1.5), "Rounding overflow should fall back to the last possible move")
}
