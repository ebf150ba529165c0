package searcher

import (
	"slices"

	"chessmcts/game"
)

type tree struct {
	root *node
	size int
}

// newTree creates the root from the caller's candidate moves. A positive
// branching factor restricts the root to the first candidates; it is clamped
// to the number of candidates and never widens the list.
func newTree(position game.Position, candidates []game.Move, branchingFactor int) *tree {
	limit := len(candidates)
	if branchingFactor > 0 {
		limit = min(branchingFactor, len(candidates))
	}

	root := &node{
		position: position,
		pending:  slices.Clone(candidates[:limit]),
	}
	return &tree{root: root, size: 1}
}

// attachChild appends a new node to parent. Removing the move from the
// parent's pending moves is left to the caller.
func (t *tree) attachChild(parent *node, move game.Move, position game.Position) *node {
	child := &node{
		position: position,
		move:     move,
		parent:   parent,
		depth:    parent.depth + 1,
	}
	parent.children = append(parent.children, child)
	t.size++
	return child
}

// walk visits nodes in pre-order until fn returns false.
func (t *tree) walk(fn func(n *node) bool) {
	if t.root == nil {
		return
	}
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}

// release drops every node exactly once, children before parents, using an
// explicit stack so deep trees do not grow the call stack. It returns the
// number of released nodes.
func (t *tree) release() int {
	if t.root == nil {
		return 0
	}

	released := 0
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		if len(n.children) > 0 {
			// n stays on the stack below its children and is released after them
			stack = append(stack, n.children...)
			n.children = nil
			continue
		}
		stack = stack[:len(stack)-1]
		n.parent = nil
		n.pending = nil
		released++
	}

	t.root = nil
	t.size = 0
	return released
}

// path returns the nodes from n up to the root.
func path(n *node) []*node {
	var nodes []*node
	for ; n != nil; n = n.parent {
		nodes = append(nodes, n)
	}
	return nodes
}
