package searcher

import "chessmcts/game"

type node struct {
	position game.Position
	move     game.Move // move played from the parent, empty for the root
	parent   *node     // back-reference only, children are owned by their parent
	children []*node
	pending  []game.Move // legal moves not yet expanded into children
	wins     int
	losses   int
	visits   int
	depth    int
}

func (n *node) q() int {
	return n.wins - n.losses
}

// turn reports whether the side to move at this node is the side to move at
// the root.
func (n *node) turn() bool {
	return n.depth%2 == 0
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0 && len(n.pending) == 0
}

// isTerminal is derived on every call: either the rules report a lost
// condition or there is no continuation at all.
func (n *node) isTerminal(rules game.Rules) bool {
	return n.isLeaf() || rules.IsTerminal(n.position)
}

func (n *node) stats() NodeStats {
	return NodeStats{
		Move:     n.move,
		Position: n.position,
		Visits:   n.visits,
		Wins:     n.wins,
		Losses:   n.losses,
		Depth:    n.depth,
		Children: len(n.children),
		Pending:  len(n.pending),
	}
}

// NodeStats is a read-only snapshot of a node.
type NodeStats struct {
	Move     game.Move
	Position game.Position
	Visits   int
	Wins     int
	Losses   int
	Depth    int
	Children int
	Pending  int
}
