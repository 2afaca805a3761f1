package treesitter

// FirstError returns the first ERROR or MISSING node in document order, or
// nil for a clean subtree.
func FirstError(n Node) Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := range n.ChildCount() {
		if found := FirstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// Leaves calls visit for every node without children, in document order.
// When descend returns false for a node, that node is passed to visit as a
// whole and its children are skipped.
func Leaves(n Node, descend func(Node) bool, visit func(Node)) {
	if n == nil {
		return
	}
	if n.ChildCount() == 0 || (descend != nil && !descend(n)) {
		visit(n)
		return
	}
	for i := range n.ChildCount() {
		Leaves(n.Child(i), descend, visit)
	}
}
