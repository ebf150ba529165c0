package game

import "errors"

// Position is an opaque encoding of the full game state (board, side to move
// and any state needed for legality). For chess it is a FEN string.
type Position string

// Move is an opaque encoding of a transition between two positions. For chess
// it is a move in UCI long algebraic notation.
type Move string

// NoMove is returned when no move can be selected.
const NoMove Move = ""

var (
	// ErrInvalidMove is returned when a move is illegal or malformed for the
	// position it is applied to.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidPosition is returned when a position cannot be decoded.
	ErrInvalidPosition = errors.New("invalid position")
)

// Rules is everything a searcher needs to know about a two-player,
// perfect-information, turn-based game. Implementations must be stateless with
// respect to positions: every call depends only on its arguments.
type Rules interface {
	// LegalMoves lists the legal moves in the position, in a stable order.
	// An empty result signals that no move is possible.
	LegalMoves(Position) []Move
	// Apply plays the move and returns the resulting position. It fails with
	// ErrInvalidMove if the move is not legal in the position.
	Apply(Position, Move) (Position, error)
	// IsTerminal reports whether the side to move has lost (e.g. checkmate).
	IsTerminal(Position) bool
	// IsCheck reports whether the side to move is in check.
	IsCheck(Position) bool
	// FirstPlayerToMove reports whether the first player is to move.
	FirstPlayerToMove(Position) bool
}

// Notation is a Rules that can also read positions supplied by a user.
type Notation interface {
	Rules
	// ParsePosition validates textual input and returns it as a Position. It
	// fails with ErrInvalidPosition.
	ParsePosition(input string) (Position, error)
}
