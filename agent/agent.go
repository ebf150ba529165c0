package agent

import (
	"context"

	"chessmcts/experiments/metrics"
	"chessmcts/game"
)

type Agent interface {
	// FindMove returns the chosen move and the metrics of the search that
	// produced it. game.NoMove means there is nothing to play.
	FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric, error)
}

// FindMoveRequest is the body of POST /findmove.
type FindMoveRequest struct {
	Position   string `json:"position"`
	Iterations int    `json:"iterations,omitempty"`
}

// FindMoveResponse is the reply to POST /findmove. An empty move means there
// is nothing to play.
type FindMoveResponse struct {
	Move   string              `json:"move"`
	Metric metrics.SearchMetric `json:"metric"`
}
