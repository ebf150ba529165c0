package agent

import (
	"context"

	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/searcher"
)

type evaluationAgent struct {
	rules      game.Rules
	iterations int
	collectors func() metrics.Collector
	options    []searcher.Option
}

// NewEvaluationAgent returns an agent that builds a fresh search tree for
// every decision and discards it afterwards.
func NewEvaluationAgent(rules game.Rules, iterations int, options ...searcher.Option) Agent {
	return NewInstrumentedAgent(rules, iterations, metrics.NewCollector, options...)
}

// NewInstrumentedAgent is NewEvaluationAgent with a custom collector per
// search, e.g. one reporting to Prometheus.
func NewInstrumentedAgent(rules game.Rules, iterations int, collectors func() metrics.Collector, options ...searcher.Option) Agent {
	return &evaluationAgent{
		rules:      rules,
		iterations: iterations,
		collectors: collectors,
		options:    options,
	}
}

func (a *evaluationAgent) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric, error) {
	if err := ctx.Err(); err != nil {
		return game.NoMove, metrics.SearchMetric{}, err
	}

	options := append([]searcher.Option{searcher.WithMetrics(a.collectors())}, a.options...)
	mcts := searcher.NewMCTS(a.rules, position, a.rules.LegalMoves(position), options...)
	defer mcts.Close()

	move, metric := mcts.Search(a.iterations)
	return move, metric, nil
}
