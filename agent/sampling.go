package agent

import (
	"context"
	"math"
	"sync"

	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/searcher"

	"golang.org/x/exp/rand"
)

type samplingAgent struct {
	rules       game.Rules
	iterations  int
	temperature float64
	options     []searcher.Option

	mu     sync.Mutex
	random *rand.Rand
}

// NewSamplingAgent returns an agent that searches like the evaluation agent
// but draws its move from the root visit counts raised to 1/temperature.
// Self-play uses it to vary otherwise identical games. A non-positive
// temperature always plays the most visited move.
func NewSamplingAgent(rules game.Rules, iterations int, temperature float64, seed uint64, options ...searcher.Option) Agent {
	return &samplingAgent{
		rules:       rules,
		iterations:  iterations,
		temperature: temperature,
		options:     options,
		random:      rand.New(rand.NewSource(seed)),
	}
}

func (a *samplingAgent) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric, error) {
	if err := ctx.Err(); err != nil {
		return game.NoMove, metrics.SearchMetric{}, err
	}

	collector := metrics.NewCollector()
	options := append([]searcher.Option{searcher.WithMetrics(collector)}, a.options...)
	mcts := searcher.NewMCTS(a.rules, position, a.rules.LegalMoves(position), options...)
	defer mcts.Close()

	best := mcts.BestMove(a.iterations)
	metric := collector.Complete()
	if a.temperature <= 0 || best == game.NoMove {
		return best, metric, nil
	}

	children := mcts.Children()
	a.mu.Lock()
	i := sample(adjustTemperature(children, a.temperature), a.random.Float64())
	a.mu.Unlock()
	return children[i].Move, metric, nil
}

// adjustTemperature turns visit counts into a probability distribution.
// Counts are scaled by the largest one first so that low temperatures
// sharpen towards the most visited move instead of overflowing.
func adjustTemperature(children []searcher.NodeStats, temperature float64) []float64 {
	policy := make([]float64, len(children))
	most := 0
	for _, child := range children {
		most = max(most, child.Visits)
	}
	if most == 0 {
		return policy
	}

	exponent := 1.0 / temperature
	sum := 0.0
	for i, child := range children {
		prob := math.Pow(float64(child.Visits)/float64(most), exponent)
		sum += prob
		policy[i] = prob
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

// sample picks the index whose cumulative probability first exceeds sampled.
func sample(policy []float64, sampled float64) int {
	cumulative := 0.0
	last := 0
	for i, prob := range policy {
		if prob == 0 {
			continue
		}
		last = i
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return last // Fallback in case of rounding errors
}
