package searcher

import (
	"math"

	"chessmcts/game"
)

// EXPLORATION is the UCB1 exploration constant C.
const EXPLORATION = math.Sqrt2

type Searcher interface {
	BestMove(iterations int) game.Move
}
