package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/notnil/chess"
)

// StartPosition is the standard chess starting position.
const StartPosition Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// DefaultCacheSize is the number of analysed positions kept by ChessRules.
const DefaultCacheSize = 1 << 14

type ChessOption func(r *ChessRules)

// WithCacheSize bounds the number of analysed positions kept in memory. A size
// of zero disables caching.
func WithCacheSize(entries int64) ChessOption {
	return func(r *ChessRules) {
		if entries >= 0 {
			r.cacheSize = entries
		}
	}
}

// ChessRules implements Rules for standard chess over FEN positions and UCI
// moves. It is safe for concurrent use.
type ChessRules struct {
	cacheSize int64
	cache     *ristretto.Cache[string, *analysis]
}

// analysis is everything derived from a single position. It is immutable once
// cached.
type analysis struct {
	pos    *chess.Position
	moves  []Move
	status chess.Method
	check  bool
}

func (a *analysis) lost() bool {
	return a.status == chess.Checkmate
}

func (a *analysis) stalemate() bool {
	return a.status == chess.Stalemate
}

func (a *analysis) legal(move Move) bool {
	i := sort.Search(len(a.moves), func(i int) bool { return a.moves[i] >= move })
	return i < len(a.moves) && a.moves[i] == move
}

func NewChessRules(options ...ChessOption) (*ChessRules, error) {
	r := &ChessRules{cacheSize: DefaultCacheSize}
	for _, option := range options {
		option(r)
	}

	if r.cacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *analysis]{
			NumCounters: r.cacheSize * 10,
			MaxCost:     r.cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create position cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Close releases the position cache.
func (r *ChessRules) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

// ParsePosition validates a FEN and returns it in canonical form.
func (r *ChessRules) ParsePosition(fen string) (Position, error) {
	pos, err := decode(Position(fen))
	if err != nil {
		return "", err
	}
	return Position(pos.String()), nil
}

func (r *ChessRules) LegalMoves(position Position) []Move {
	a, err := r.analyse(position)
	if err != nil {
		return nil
	}
	moves := make([]Move, len(a.moves))
	copy(moves, a.moves)
	return moves
}

func (r *ChessRules) Apply(position Position, move Move) (Position, error) {
	a, err := r.analyse(position)
	if err != nil {
		return "", fmt.Errorf("cannot apply %q: %w: %w", move, ErrInvalidMove, err)
	}
	if !a.legal(move) {
		return "", fmt.Errorf("cannot apply %q to %q: %w", move, position, ErrInvalidMove)
	}
	m, err := chess.UCINotation{}.Decode(a.pos, string(move))
	if err != nil {
		return "", fmt.Errorf("cannot apply %q: %w: %w", move, ErrInvalidMove, err)
	}
	return Position(a.pos.Update(m).String()), nil
}

// CanApply reports whether the move is legal in the position.
func (r *ChessRules) CanApply(position Position, move Move) bool {
	a, err := r.analyse(position)
	if err != nil {
		return false
	}
	return a.legal(move)
}

// IsTerminal reports checkmate of the side to move.
func (r *ChessRules) IsTerminal(position Position) bool {
	a, err := r.analyse(position)
	if err != nil {
		return false
	}
	return a.lost()
}

// IsStalemate reports that the side to move has no legal move but is not in
// check.
func (r *ChessRules) IsStalemate(position Position) bool {
	a, err := r.analyse(position)
	if err != nil {
		return false
	}
	return a.stalemate()
}

func (r *ChessRules) IsCheck(position Position) bool {
	a, err := r.analyse(position)
	if err != nil {
		return false
	}
	return a.check
}

// FirstPlayerToMove reports whether white is to move.
func (r *ChessRules) FirstPlayerToMove(position Position) bool {
	fields := strings.Fields(string(position))
	return len(fields) < 2 || fields[1] != "b"
}

func (r *ChessRules) analyse(position Position) (*analysis, error) {
	key := string(position)
	if r.cache != nil {
		if a, ok := r.cache.Get(key); ok {
			return a, nil
		}
	}

	pos, err := decode(position)
	if err != nil {
		return nil, err
	}

	notation := chess.UCINotation{}
	valid := pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, Move(notation.Encode(pos, m)))
	}
	// The generator's order is an implementation detail; sort for stable output
	sort.Slice(moves, func(i, j int) bool { return moves[i] < moves[j] })

	// ValidMoves above memoizes the move list, so Status and later reads of
	// pos never write to it again.
	a := &analysis{
		pos:    pos,
		moves:  moves,
		status: pos.Status(),
		check:  inCheck(pos.Board(), pos.Turn()),
	}
	if r.cache != nil {
		r.cache.Set(key, a, 1)
	}
	return a, nil
}

func decode(position Position) (*chess.Position, error) {
	fen := strings.TrimSpace(string(position))
	if fen == "" {
		return nil, fmt.Errorf("empty FEN: %w", ErrInvalidPosition)
	}
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPosition, err)
	}
	return chess.NewGame(option).Position(), nil
}
