package searcher

import "math"

// ucb scores a node for selection from its parent. Unvisited nodes always
// win, so every new child is tried once before its siblings are revisited.
func ucb(n *node, c float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}

	exploitation := float64(n.q()) / float64(n.visits)
	if n.parent == nil {
		return exploitation
	}
	// UCB1 = q/n + C*sqrt(ln(N)/n)
	return exploitation + c*math.Sqrt(math.Log(float64(n.parent.visits))/float64(n.visits))
}

// pickChild returns the child with the highest UCB score, the first one on
// ties.
func pickChild(parent *node, c float64) *node {
	var best *node
	maxScore := math.Inf(-1)
	for _, child := range parent.children {
		score := ucb(child, c)
		if math.IsInf(score, 1) {
			return child
		}
		if best == nil || score > maxScore {
			maxScore = score
			best = child
		}
	}
	return best
}

// mostVisited returns the child with the most visits among visited children,
// the first one on ties, or nil.
func mostVisited(parent *node) *node {
	var best *node
	maxVisits := 0
	for _, child := range parent.children {
		if child.visits > maxVisits {
			maxVisits = child.visits
			best = child
		}
	}
	return best
}
