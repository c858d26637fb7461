package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// tsNode adapts a tree-sitter node to the Node interface. The source slice is
// shared across the whole tree; tree-sitter nodes only carry byte offsets.
type tsNode struct {
	node   *sitter.Node
	source []byte
}

// FromTreeSitter wraps a parsed tree-sitter node so it can feed the AST
// builder. Callers that have a Solidity grammar (or any other grammar) for
// the smacker binding can use this instead of the built-in parser. Returns
// nil for a nil node.
func FromTreeSitter(node *sitter.Node, source []byte) Node {
	if node == nil {
		return nil
	}
	return tsNode{node: node, source: source}
}

func (n tsNode) Type() string {
	return n.node.Type()
}

func (n tsNode) ChildCount() int {
	return int(n.node.ChildCount())
}

func (n tsNode) Child(i int) Node {
	c := n.node.Child(i)
	if c == nil {
		return nil
	}
	return tsNode{node: c, source: n.source}
}

func (n tsNode) Text() string {
	return n.node.Content(n.source)
}

func (n tsNode) StartPoint() Point {
	p := n.node.StartPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n tsNode) EndPoint() Point {
	p := n.node.EndPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}
