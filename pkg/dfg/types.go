// Package dfg derives a data-flow graph from a typed Solidity AST: a
// property graph of definitions, uses, structural containment, and
// heuristic call relationships, plus the classification and filtering
// policy that sizes the graph for downstream consumers.
package dfg

import (
	"github.com/soligraph/soligraph/pkg/ast"
)

// EdgeType is the closed tag of a graph edge.
type EdgeType string

const (
	EdgeDataDependency    EdgeType = "data_dependency"
	EdgeControlDependency EdgeType = "control_dependency"
	EdgeFunctionCall      EdgeType = "function_call"
	EdgeDefinition        EdgeType = "definition"
	EdgeUsage             EdgeType = "usage"
	EdgeModifies          EdgeType = "modifies"
)

// Node is a graph node. AST is a borrowed reference to the originating
// AST node; the AST outlives the graph.
type Node struct {
	ID         string
	AST        ast.ASTNode
	Type       string
	Name       string
	DataType   string
	Scope      string
	Properties map[string]any
}

// Text returns the originating node's source text, empty for synthesized
// nodes without AST backing.
func (n *Node) Text() string {
	if n.AST == nil {
		return ""
	}
	return n.AST.Base().Text
}

// Edge connects two nodes by id. Endpoints may be synthetic sentinel ids
// (contract_<base>, init_<nodeID>) that have no Node; see Graph.
type Edge struct {
	ID         string
	Source     string
	Target     string
	Type       EdgeType
	Label      string
	Weight     int
	Properties map[string]any
}

// Graph is the data-flow graph for one contract. Node and edge maps are
// keyed by id; insertion order is preserved separately for deterministic
// iteration.
//
// Edge endpoints are either node ids present in Nodes or one of two
// synthetic forms kept dangling on purpose: contract_<baseName> for an
// inherited base outside the analyzed unit, and init_<nodeID> for
// unmodeled initializer flow. Consumers must treat those as sentinels,
// not as broken references.
type Graph struct {
	ContractName    string
	SolidityVersion string
	Nodes           map[string]*Node
	Edges           map[string]*Edge
	EntryNodeID     string
	Metadata        map[string]any

	nodeOrder []string
	edgeOrder []string
}

// NewGraph returns an empty graph for the named contract.
func NewGraph(contractName, solidityVersion string) *Graph {
	return &Graph{
		ContractName:    contractName,
		SolidityVersion: solidityVersion,
		Nodes:           map[string]*Node{},
		Edges:           map[string]*Edge{},
		Metadata:        map[string]any{},
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *Node) {
	if _, exists := g.Nodes[n.ID]; !exists {
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}
	g.Nodes[n.ID] = n
}

// AddEdge inserts or replaces an edge.
func (g *Graph) AddEdge(e *Edge) {
	if _, exists := g.Edges[e.ID]; !exists {
		g.edgeOrder = append(g.edgeOrder, e.ID)
	}
	g.Edges[e.ID] = e
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.Nodes[id] }

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *Edge { return g.Edges[id] }

// NodesInOrder returns the nodes in insertion order.
func (g *Graph) NodesInOrder() []*Node {
	nodes := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if n, ok := g.Nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// EdgesInOrder returns the edges in insertion order.
func (g *Graph) EdgesInOrder() []*Edge {
	edges := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		if e, ok := g.Edges[id]; ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// OutgoingEdges returns edges whose source is nodeID, in insertion order.
func (g *Graph) OutgoingEdges(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.EdgesInOrder() {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns edges whose target is nodeID, in insertion order.
func (g *Graph) IncomingEdges(nodeID string) []*Edge {
	var in []*Edge
	for _, e := range g.EdgesInOrder() {
		if e.Target == nodeID {
			in = append(in, e)
		}
	}
	return in
}

// RemoveNode deletes a node; edges referencing it are the caller's concern.
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
}

// RemoveEdge deletes an edge.
func (g *Graph) RemoveEdge(id string) {
	delete(g.Edges, id)
}
