package engine

import (
	"context"
	"fmt"
	"time"

	"chessmcts/agent"
	"chessmcts/experiments/metrics"
	"chessmcts/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LocalEngine struct {
	rules    game.Rules
	white    agent.Agent
	black    agent.Agent
	start    game.Position
	maxTurns int
}

// NewLocalEngine sets up a game between two agents from start. The game is
// drawn after maxTurns plies.
func NewLocalEngine(rules game.Rules, white, black agent.Agent, start game.Position, maxTurns int) *LocalEngine {
	return &LocalEngine{
		rules:    rules,
		white:    white,
		black:    black,
		start:    start,
		maxTurns: maxTurns,
	}
}

var _ Engine = (*LocalEngine)(nil)

// Run executes the entire game loop until the game is decided. Agent errors
// abort the game and are returned along with the metrics so far.
func (e *LocalEngine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:        uuid.NewString(),
		StartFEN:  string(e.start),
		StartTime: time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Str("game", gameMetric.ID).Msgf("starting game from %s", e.start)

	position := e.start
	for turn := 1; ; turn++ {
		white := e.rules.FirstPlayerToMove(position)

		if e.rules.IsTerminal(position) {
			gameMetric.Winner = opponent(white)
			gameMetric.Termination = Checkmate
			break
		}
		if len(e.rules.LegalMoves(position)) == 0 {
			gameMetric.Termination = Stalemate
			break
		}
		if turn > e.maxTurns {
			gameMetric.Termination = MaxTurns
			break
		}

		current := e.black
		if white {
			current = e.white
		}
		move, searchMetric, err := current.FindMove(ctx, position)
		if err != nil {
			e.complete(&gameMetric, position, len(moveMetrics))
			return gameMetric, moveMetrics, fmt.Errorf("turn %d: %w", turn, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         turn,
			White:        white,
			SearchMetric: searchMetric,
		})

		if move == game.NoMove {
			log.Warn().Str("game", gameMetric.ID).Msgf("%s found no move on turn %d", side(white), turn)
			gameMetric.Winner = opponent(white)
			gameMetric.Termination = NoMove
			break
		}

		next, err := e.rules.Apply(position, move)
		if err != nil {
			log.Warn().Err(err).Str("game", gameMetric.ID).Msgf("%s forfeits on turn %d", side(white), turn)
			gameMetric.Winner = opponent(white)
			gameMetric.Termination = IllegalMove
			break
		}
		log.Debug().Str("game", gameMetric.ID).Int("turn", turn).Str("move", string(move)).Msg(side(white))
		position = next
	}

	e.complete(&gameMetric, position, len(moveMetrics))
	log.Info().
		Str("game", gameMetric.ID).
		Str("winner", gameMetric.Winner).
		Str("termination", gameMetric.Termination).
		Int("moves", gameMetric.TotalMoves).
		Msg("game over")
	return gameMetric, moveMetrics, nil
}

func (e *LocalEngine) complete(gameMetric *metrics.GameMetric, position game.Position, moves int) {
	gameMetric.FinalFEN = string(position)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = moves
}

func side(white bool) string {
	if white {
		return White
	}
	return Black
}

func opponent(white bool) string {
	return side(!white)
}
