package dfg

import (
	"fmt"
	"strings"

	"github.com/soligraph/soligraph/pkg/ast"
)

// GlobalScope is the root of every scope stack. State variable
// definitions are always reachable through it during use-resolution.
const GlobalScope = "global"

// Builder walks a typed AST and produces the data-flow graph for one
// contract per Build call. Node and edge counters are instance state and
// never reset, so successive builds on one instance produce globally
// unique ids; use a fresh Builder when per-contract id isolation matters.
// Not safe for concurrent use.
type Builder struct {
	version string

	graph        *Graph
	scopeStack   []string
	variableDefs map[string]*Node
	functionDefs map[string]*Node
	functionOrder []string

	nodeCounter int
	edgeCounter int
}

// NewBuilder returns a Builder that stamps graphs with the given source
// language version.
func NewBuilder(solidityVersion string) *Builder {
	return &Builder{version: solidityVersion}
}

// Build constructs the graph for root. Returns nil for a nil root; any
// other fault propagates to the caller.
func (b *Builder) Build(root ast.ASTNode, contractName string) *Graph {
	if root == nil {
		return nil
	}

	b.graph = NewGraph(contractName, b.version)
	b.scopeStack = []string{GlobalScope}
	b.variableDefs = map[string]*Node{}
	b.functionDefs = map[string]*Node{}
	b.functionOrder = nil

	b.buildNode(root)
	b.resolveCalls()

	return b.graph
}

func (b *Builder) nextNodeID() string {
	b.nodeCounter++
	return fmt.Sprintf("dfg_node_%d", b.nodeCounter)
}

func (b *Builder) nextEdgeID() string {
	b.edgeCounter++
	return fmt.Sprintf("dfg_edge_%d", b.edgeCounter)
}

func (b *Builder) currentScope() string {
	return b.scopeStack[len(b.scopeStack)-1]
}

func (b *Builder) enterScope(name string) {
	b.scopeStack = append(b.scopeStack, name)
}

func (b *Builder) exitScope() {
	if len(b.scopeStack) > 1 {
		b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	}
}

func (b *Builder) buildNode(n ast.ASTNode) *Node {
	if n == nil {
		return nil
	}

	node := b.createNode(n)

	switch typed := n.(type) {
	case *ast.Contract:
		b.buildContract(typed, node)
	case *ast.Function:
		b.buildFunction(typed, node)
	case *ast.Variable:
		b.buildVariable(typed, node)
	case *ast.Expression:
		b.buildExpression(typed, node)
	default:
		b.buildGeneric(typed, node)
	}

	return node
}

func (b *Builder) createNode(n ast.ASTNode) *Node {
	base := n.Base()
	node := &Node{
		ID:         b.nextNodeID(),
		AST:        n,
		Type:       Classify(n),
		Name:       base.Name,
		DataType:   dataTypeOf(n),
		Scope:      b.currentScope(),
		Properties: map[string]any{},
	}
	if base.Loc.Line > 0 {
		node.Properties["source_location"] = map[string]any{
			"line":   base.Loc.Line,
			"column": base.Loc.Column,
		}
	}
	b.graph.AddNode(node)
	return node
}

// Classify maps an AST node to its graph node tag, which is distinct
// from the AST kind tag.
func Classify(n ast.ASTNode) string {
	switch typed := n.(type) {
	case *ast.Contract:
		switch typed.Kind {
		case ast.KindInterfaceDeclaration:
			return "interface"
		case ast.KindLibraryDeclaration:
			return "library"
		}
		return "contract"
	case *ast.Function:
		if typed.IsConstructor {
			return "constructor_function"
		}
		return "function"
	case *ast.Variable:
		if typed.IsStateVariable {
			return "state_variable"
		}
		return "local_variable"
	case *ast.Expression:
		return "expression"
	default:
		if n.Base().Kind == ast.KindModifierDefinition {
			return "modifier"
		}
		return string(n.Base().Kind)
	}
}

func dataTypeOf(n ast.ASTNode) string {
	if v, ok := n.(*ast.Variable); ok {
		return v.DataType
	}
	return ""
}

func (b *Builder) buildContract(contract *ast.Contract, node *Node) {
	scope := contract.Name
	if scope == "" {
		scope = "contract"
	}
	b.enterScope(scope)
	defer b.exitScope()

	for _, child := range contract.Children {
		if childNode := b.buildNode(child); childNode != nil {
			b.addEdge(node.ID, childNode.ID, EdgeDefinition, nil)
		}
	}

	for _, base := range contract.BaseContracts {
		b.addEdge(node.ID, "contract_"+base, EdgeDefinition,
			map[string]any{"inheritance_type": "base_contract"})
	}
}

func (b *Builder) buildFunction(fn *ast.Function, node *Node) {
	scopeName := fn.Name
	if scopeName == "" {
		scopeName = "anonymous"
	}
	b.enterScope(scopeName + "_function")
	defer b.exitScope()

	if fn.Name != "" {
		if _, seen := b.functionDefs[fn.Name]; !seen {
			b.functionOrder = append(b.functionOrder, fn.Name)
		}
		b.functionDefs[fn.Name] = node
	}

	for _, param := range fn.Parameters {
		paramNode := b.createParameterNode(param, fn, false)
		b.addEdge(node.ID, paramNode.ID, EdgeDefinition, nil)
	}

	for _, child := range fn.Children {
		if childNode := b.buildNode(child); childNode != nil {
			b.addEdge(node.ID, childNode.ID, EdgeControlDependency, nil)
		}
	}

	for _, ret := range fn.ReturnParameters {
		retNode := b.createParameterNode(ret, fn, true)
		b.addEdge(node.ID, retNode.ID, EdgeDefinition, nil)
	}
}

// createParameterNode mints a graph-only parameter node backed by a
// virtual AST record; declared parameters never become AST children.
func (b *Builder) createParameterNode(param ast.Parameter, fn *ast.Function, isReturn bool) *Node {
	name := param.Name
	if name == "" {
		name = fmt.Sprintf("param_%d", b.nodeCounter)
	}
	dataType := param.Type
	if dataType == "" {
		dataType = "unknown"
	}

	virtual := &ast.Node{
		Kind: ast.KindParameter,
		Name: name,
		Metadata: map[string]any{
			"parameter_type": dataType,
			"is_return":      isReturn,
		},
	}

	node := &Node{
		ID:       b.nextNodeID(),
		AST:      virtual,
		Type:     "parameter",
		Name:     name,
		DataType: dataType,
		Scope:    b.currentScope(),
		Properties: map[string]any{
			"is_return": isReturn,
			"function":  fn.Name,
		},
	}
	b.graph.AddNode(node)
	return node
}

func (b *Builder) buildVariable(v *ast.Variable, node *Node) {
	if v.Name != "" {
		b.variableDefs[b.currentScope()+"."+v.Name] = node
		// State variables stay resolvable from any function scope.
		if v.IsStateVariable {
			b.variableDefs[GlobalScope+"."+v.Name] = node
		}
	}

	if v.InitialValue != "" {
		b.addEdge(node.ID, "init_"+node.ID, EdgeDataDependency,
			map[string]any{"initialization": true})
	}
}

func (b *Builder) buildExpression(expr *ast.Expression, node *Node) {
	if expr.Left != nil {
		if left := b.buildNode(expr.Left); left != nil {
			b.addEdge(left.ID, node.ID, EdgeDataDependency, nil)
		}
	}
	if expr.Right != nil {
		if right := b.buildNode(expr.Right); right != nil {
			b.addEdge(right.ID, node.ID, EdgeDataDependency, nil)
		}
	}
	for _, arg := range expr.Arguments {
		if arg == nil {
			continue
		}
		if argNode := b.buildNode(arg); argNode != nil {
			b.addEdge(argNode.ID, node.ID, EdgeDataDependency, nil)
		}
	}

	b.resolveUse(expr.Name, node)
}

func (b *Builder) buildGeneric(n ast.ASTNode, node *Node) {
	base := n.Base()
	for _, child := range base.Children {
		if childNode := b.buildNode(child); childNode != nil {
			b.addEdge(node.ID, childNode.ID, EdgeControlDependency, nil)
		}
	}

	// A named identifier is a variable reference; wire it to its
	// definition when one is in scope.
	if base.Kind == ast.KindIdentifier && base.Name != "" {
		b.resolveUse(base.Name, node)
	}
}

// resolveUse links a referencing node to the definition of name: current
// scope first (def-use), then the global scope where state variables
// live (state-var-use). A miss in both is a free identifier and adds
// nothing.
func (b *Builder) resolveUse(name string, node *Node) {
	if name == "" {
		return
	}
	if def, ok := b.variableDefs[b.currentScope()+"."+name]; ok {
		b.addEdge(def.ID, node.ID, EdgeDataDependency,
			map[string]any{"relation": "def-use"})
		return
	}
	if def, ok := b.variableDefs[GlobalScope+"."+name]; ok {
		b.addEdge(def.ID, node.ID, EdgeDataDependency,
			map[string]any{"relation": "state-var-use"})
	}
}

// resolveCalls is the textual call heuristic: every expression node whose
// source text contains "<name>(" gets a function_call edge from the
// function of that name. Shadowed names and string contents can
// false-positive; accepted approximation.
func (b *Builder) resolveCalls() {
	for _, fnName := range b.functionOrder {
		fnNode := b.functionDefs[fnName]
		needle := fnName + "("
		for _, node := range b.graph.NodesInOrder() {
			if node.Type != "expression" {
				continue
			}
			if strings.Contains(node.Text(), needle) {
				b.addEdge(fnNode.ID, node.ID, EdgeFunctionCall, nil)
			}
		}
	}
}

func (b *Builder) addEdge(source, target string, edgeType EdgeType, properties map[string]any) {
	if properties == nil {
		properties = map[string]any{}
	}
	b.graph.AddEdge(&Edge{
		ID:         b.nextEdgeID(),
		Source:     source,
		Target:     target,
		Type:       edgeType,
		Weight:     1,
		Properties: properties,
	})
}

// DataDependencies returns the data-dependency edges flowing into nodeID.
func DataDependencies(g *Graph, nodeID string) []*Edge {
	var edges []*Edge
	for _, e := range g.IncomingEdges(nodeID) {
		if e.Type == EdgeDataDependency {
			edges = append(edges, e)
		}
	}
	return edges
}

// ControlDependencies returns the control-dependency edges flowing into
// nodeID.
func ControlDependencies(g *Graph, nodeID string) []*Edge {
	var edges []*Edge
	for _, e := range g.IncomingEdges(nodeID) {
		if e.Type == EdgeControlDependency {
			edges = append(edges, e)
		}
	}
	return edges
}

// FunctionCalls returns the function-call edges leaving nodeID.
func FunctionCalls(g *Graph, nodeID string) []*Edge {
	var edges []*Edge
	for _, e := range g.OutgoingEdges(nodeID) {
		if e.Type == EdgeFunctionCall {
			edges = append(edges, e)
		}
	}
	return edges
}

// DataFlowPath finds one path from start to end along data-dependency
// edges, returning the intermediate node ids, or nil when unreachable.
func DataFlowPath(g *Graph, start, end string) []string {
	visited := map[string]bool{}
	var path []string

	var dfs func(current string, trail []string) bool
	dfs = func(current string, trail []string) bool {
		if current == end {
			path = append(path, trail...)
			return true
		}
		if visited[current] {
			return false
		}
		visited[current] = true
		trail = append(trail, current)
		for _, e := range g.OutgoingEdges(current) {
			if e.Type != EdgeDataDependency {
				continue
			}
			if dfs(e.Target, append([]string(nil), trail...)) {
				return true
			}
		}
		return false
	}

	dfs(start, nil)
	return path
}
