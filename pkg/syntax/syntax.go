// Package syntax defines the concrete-syntax-tree surface consumed by the
// AST builder. A Node is whatever a parser front end produced: a category
// string, ordered children, the raw matched source text, and 0-based
// line/column coordinates. Both the built-in Solidity parser and the
// tree-sitter adapter produce this shape.
package syntax

// Point is a 0-based (row, column) position in the source text.
type Point struct {
	Row    int
	Column int
}

// Node is a single concrete-syntax-tree node.
type Node interface {
	// Type returns the grammar category string (e.g. "contract_declaration").
	// Anonymous token nodes report their literal text (e.g. "=", ";").
	Type() string

	// ChildCount returns the number of direct children.
	ChildCount() int

	// Child returns the i-th direct child, or nil if out of range.
	Child(i int) Node

	// Text returns the raw source text this node matched.
	Text() string

	// StartPoint and EndPoint are the 0-based source coordinates.
	StartPoint() Point
	EndPoint() Point
}

// Parser turns source text into a syntax tree. Parse returns a nil root when
// there is nothing to analyze; it does not return an error for malformed
// input (unrecognized regions become generic nodes).
type Parser interface {
	Parse(source []byte) Node
}

// Children collects the direct children of n into a slice.
func Children(n Node) []Node {
	if n == nil {
		return nil
	}
	out := make([]Node, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
