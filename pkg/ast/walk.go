package ast

// Inspect traverses the tree rooted at n depth-first in source order. If f
// returns false the children of the current node are skipped.
func Inspect(n Node, f func(Node) bool) {
	InspectWithParent(n, func(n, _ Node) bool { return f(n) })
}

// InspectWithParent is like Inspect but also passes the parent of each node
// (nil for the root).
func InspectWithParent(root Node, f func(n, parent Node) bool) {
	if root == nil {
		return
	}
	type item struct {
		n, parent Node
	}
	stack := []item{{n: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f(it.n, it.parent) {
			continue
		}
		kids := it.n.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] != nil {
				stack = append(stack, item{n: kids[i], parent: it.n})
			}
		}
	}
}

// CountNamed returns the number of named nodes in the subtree rooted at n,
// n included.
func CountNamed(n Node) int {
	count := 0
	Inspect(n, func(n Node) bool {
		if IsNamed(n) {
			count++
		}
		return true
	})
	return count
}
