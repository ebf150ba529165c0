package player

import (
	"context"
	"errors"
	"io"

	"chessmcts/agent"
	"chessmcts/communication"
	"chessmcts/game"
	"chessmcts/meta"

	"github.com/rs/zerolog/log"
)

// Player answers every position it receives with one move.
type Player struct {
	Communicator communication.Communicator
	Agent        agent.Agent
	Notation     game.Notation
}

// NewPlayer creates a new Player instance.
func NewPlayer(comm communication.Communicator, a agent.Agent, notation game.Notation) *Player {
	return &Player{
		Communicator: comm,
		Agent:        a,
		Notation:     notation,
	}
}

// Play runs the receive/answer loop until the input is exhausted, which is
// a clean exit.
func (p *Player) Play(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := p.Communicator.ReceivePosition()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, communication.ErrEmptyInput):
			log.Warn().Msg("skipping empty position")
			continue
		case err != nil:
			return err
		}

		if err := p.Communicator.SendMove(p.TakeTurn(ctx, input)); err != nil {
			return err
		}
	}
}

// TakeTurn decides on the move to output for one input line. Anything that
// prevents a move from being found yields meta.NO_MOVE.
func (p *Player) TakeTurn(ctx context.Context, input string) string {
	position, err := p.Notation.ParsePosition(input)
	if err != nil {
		log.Error().Err(err).Str("input", input).Msg("cannot read position")
		return meta.NO_MOVE
	}

	move, metric, err := p.Agent.FindMove(ctx, position)
	if err != nil {
		log.Error().Err(err).Str("position", string(position)).Msg("search failed")
		return meta.NO_MOVE
	}
	if move == game.NoMove {
		log.Info().Str("position", string(position)).Msg("no move available")
		return meta.NO_MOVE
	}

	log.Debug().
		Str("move", string(move)).
		Int("episodes", metric.Episodes).
		Dur("duration", metric.Duration).
		Msg("move found")
	return string(move)
}
