package engine

import (
	"context"

	"chessmcts/experiments/metrics"
)

// Termination reasons reported in metrics.GameMetric.
const (
	Checkmate   = "checkmate"
	Stalemate   = "stalemate"
	MaxTurns    = "max turns"
	NoMove      = "no move"
	IllegalMove = "illegal move"
)

const (
	White = "white"
	Black = "black"
)

type Engine interface {
	// Run plays a game till there's a result or a max number of turns is reached
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
