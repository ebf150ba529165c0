package game

import "github.com/notnil/chess"

var (
	knightJumps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	orthogonals = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// inCheck reports whether the king of the given colour is attacked.
func inCheck(board *chess.Board, color chess.Color) bool {
	for sq, piece := range board.SquareMap() {
		if piece.Type() == chess.King && piece.Color() == color {
			return attacked(board, sq, color.Other())
		}
	}
	return false
}

// attacked reports whether any piece of colour by attacks the square.
func attacked(board *chess.Board, sq chess.Square, by chess.Color) bool {
	file, rank := int(sq.File()), int(sq.Rank())

	is := func(f, r int, types ...chess.PieceType) bool {
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return false
		}
		p := board.Piece(chess.Square(r*8 + f))
		if p == chess.NoPiece || p.Color() != by {
			return false
		}
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
		return false
	}

	// Pawns capture towards the opponent, so look one rank behind the square
	pawnRank := rank - 1
	if by == chess.Black {
		pawnRank = rank + 1
	}
	if is(file-1, pawnRank, chess.Pawn) || is(file+1, pawnRank, chess.Pawn) {
		return true
	}

	for _, d := range knightJumps {
		if is(file+d[0], rank+d[1], chess.Knight) {
			return true
		}
	}
	for _, d := range kingSteps {
		if is(file+d[0], rank+d[1], chess.King) {
			return true
		}
	}

	slide := func(dirs [4][2]int, types ...chess.PieceType) bool {
		for _, d := range dirs {
			f, r := file+d[0], rank+d[1]
			for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
				p := board.Piece(chess.Square(r*8 + f))
				if p != chess.NoPiece {
					if is(f, r, types...) {
						return true
					}
					break
				}
				f, r = f+d[0], r+d[1]
			}
		}
		return false
	}
	return slide(orthogonals, chess.Rook, chess.Queen) || slide(diagonals, chess.Bishop, chess.Queen)
}
