// meta/meta.go
package meta

// ITERATIONS defines the number of MCTS iterations per move search.
const ITERATIONS = 1000

// MAX_ITERATIONS bounds the search budget a server request may ask for.
const MAX_ITERATIONS = 100_000

// BRANCHING_FACTOR defines how many candidate moves the root considers, 0
// for all of them.
const BRANCHING_FACTOR = 0

// MAX_DEPTH defines the rollout depth limit.
const MAX_DEPTH = 100

// SEED defines the default seed of the search random source.
const SEED = 1

// MAX_TURNS defines the number of plies after which a self-play game is drawn.
const MAX_TURNS = 300

// NO_MOVE is what the driver writes when there is nothing to play.
const NO_MOVE = "none"
