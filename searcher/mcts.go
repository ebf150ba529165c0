package searcher

import (
	"errors"
	"fmt"
	"slices"

	"chessmcts/experiments/metrics"
	"chessmcts/game"
	"chessmcts/meta"

	"github.com/rs/zerolog/log"
)

type Option func(m *MCTS)

type MCTS struct {
	rules           game.Rules
	tree            *tree
	random          RandomSource
	seed            uint64
	branchingFactor int
	maxDepth        int
	exploration     float64
	fullExpansion   bool
	metrics         metrics.Collector
}

// WithBranchingFactor restricts the root to the first n candidate moves.
// Zero or a negative value keeps every candidate.
func WithBranchingFactor(n int) Option {
	return func(m *MCTS) {
		m.branchingFactor = n
	}
}

func WithMaxDepth(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.maxDepth = depth
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

// WithRandomSource overrides the seeded source built from WithSeed.
func WithRandomSource(random RandomSource) Option {
	return func(m *MCTS) {
		if random != nil {
			m.random = random
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

// WithFullExpansion makes every expansion materialize all pending moves at
// once instead of one random move per visit.
func WithFullExpansion() Option {
	return func(m *MCTS) {
		m.fullExpansion = true
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

// NewMCTS builds a search tree rooted at position. The root only considers
// the given candidate moves, typically rules.LegalMoves(position).
func NewMCTS(rules game.Rules, position game.Position, candidates []game.Move, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		rules:       rules,
		seed:        meta.SEED,
		maxDepth:    meta.MAX_DEPTH,
		exploration: EXPLORATION,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.random == nil {
		m.random = NewRandomSource(m.seed)
	}
	m.tree = newTree(position, candidates, m.branchingFactor)
	return m
}

// Run performs the given number of select, expand, rollout and
// backpropagate iterations.
func (m *MCTS) Run(iterations int) {
	if m.tree.root == nil {
		return
	}
	m.metrics.Start(iterations, m.maxDepth)
	for i := 0; i < iterations; i++ {
		if m.simulate() {
			m.metrics.AddEpisode()
		}
	}
	m.metrics.SetTreeSize(m.tree.size)
}

// BestMove runs the search and returns the most visited root move, or
// game.NoMove when no root child was ever visited.
func (m *MCTS) BestMove(iterations int) game.Move {
	m.Run(iterations)
	if m.tree.root == nil {
		return game.NoMove
	}
	best := mostVisited(m.tree.root)
	if best == nil {
		return game.NoMove
	}
	return best.move
}

// Search is BestMove plus the metrics of this search.
func (m *MCTS) Search(iterations int) (game.Move, metrics.SearchMetric) {
	move := m.BestMove(iterations)
	metric := m.metrics.Complete()

	log.Debug().
		Str("move", string(move)).
		Int("iterations", iterations).
		Int("tree", metric.TreeSize).
		Int("wins", metric.Wins).
		Int("losses", metric.Losses).
		Dur("duration", metric.Duration).
		Msg("search complete")
	return move, metric
}

func (m *MCTS) Root() NodeStats {
	if m.tree.root == nil {
		return NodeStats{}
	}
	return m.tree.root.stats()
}

// Children returns the statistics of the root children in expansion order.
func (m *MCTS) Children() []NodeStats {
	if m.tree.root == nil {
		return nil
	}
	stats := make([]NodeStats, 0, len(m.tree.root.children))
	for _, child := range m.tree.root.children {
		stats = append(stats, child.stats())
	}
	return stats
}

func (m *MCTS) Size() int {
	return m.tree.size
}

// Close releases the whole tree. The engine is unusable afterwards.
func (m *MCTS) Close() {
	m.tree.release()
}

// simulate runs one iteration and reports whether it completed.
func (m *MCTS) simulate() bool {
	leaf := m.selectLeaf()
	child, err := m.expand(leaf)
	if err != nil {
		log.Error().Err(err).Str("position", string(leaf.position)).Msg("expansion rejected a legal move")
		m.metrics.AddDefect()
	}
	if child == nil {
		return false
	}
	m.metrics.AddPlayout(m.rollout(child))
	backup(child)
	return true
}

func (m *MCTS) selectLeaf() *node {
	n := m.tree.root
	for len(n.pending) == 0 && !n.isTerminal(m.rules) {
		n = pickChild(n, m.exploration)
	}
	return n
}

// expand returns the node to roll out from. A nil node means the iteration
// has to be abandoned.
func (m *MCTS) expand(n *node) (*node, error) {
	if len(n.pending) == 0 || n.isTerminal(m.rules) {
		return n, nil
	}
	if m.fullExpansion {
		return m.expandAll(n)
	}

	i := m.random.Intn(len(n.pending))
	move := n.pending[i]
	n.pending = slices.Delete(n.pending, i, i+1)
	return m.addChild(n, move)
}

func (m *MCTS) expandAll(n *node) (*node, error) {
	moves := n.pending
	n.pending = nil

	var first *node
	var errs []error
	for _, move := range moves {
		child, err := m.addChild(n, move)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if first == nil {
			first = child
		}
	}
	return first, errors.Join(errs...)
}

func (m *MCTS) addChild(parent *node, move game.Move) (*node, error) {
	position, err := m.rules.Apply(parent.position, move)
	if err != nil {
		return nil, fmt.Errorf("failed to expand move %q: %w", move, err)
	}
	child := m.tree.attachChild(parent, move, position)
	child.pending = slices.Clone(m.rules.LegalMoves(position))
	return child, nil
}

// rollout plays random moves from n and records a single win or loss on n
// when the simulation ends on a lost condition.
func (m *MCTS) rollout(n *node) metrics.Playout {
	if n.isTerminal(m.rules) {
		return metrics.PlayoutSkipped
	}

	position := n.position
	depth := 0
	for depth < m.maxDepth && !m.rules.IsTerminal(position) {
		moves := m.rules.LegalMoves(position)
		if len(moves) == 0 {
			return metrics.PlayoutDraw
		}
		move := moves[m.random.Intn(len(moves))] // Random rollout policy
		next, err := m.rules.Apply(position, move)
		if err != nil {
			log.Warn().Err(err).Str("position", string(position)).Msg("rollout aborted")
			return metrics.PlayoutAborted
		}
		position = next
		depth++
	}

	if !m.rules.IsTerminal(position) {
		return metrics.PlayoutCutoff
	}
	if attribute(n.turn(), depth) {
		n.wins = 1
		return metrics.PlayoutWin
	}
	n.losses = 1
	return metrics.PlayoutLoss
}

// attribute decides whether a lost condition reached after depth plies is a
// win for a node whose side to move is the root's (turn) or the opponent's.
func attribute(turn bool, depth int) bool {
	odd := depth%2 == 1
	return (turn && odd) || (!turn && !odd)
}

// backup adds the rollout result of n to every node from n up to the root,
// n included.
func backup(n *node) {
	wins, losses := n.wins, n.losses
	for cur := n; cur != nil; cur = cur.parent {
		cur.visits++
		cur.wins += wins
		cur.losses += losses
	}
}
