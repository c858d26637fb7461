// Package ast converts concrete syntax trees into a typed Solidity AST.
// It defines the node variants shared by the downstream data-flow analysis
// and the builder that assigns identity and source locations.
package ast

// Kind is the closed type tag of an AST node. Unrecognized syntax categories
// collapse to KindIdentifier.
type Kind string

const (
	KindContractDeclaration  Kind = "contract_declaration"
	KindInterfaceDeclaration Kind = "interface_declaration"
	KindLibraryDeclaration   Kind = "library_declaration"

	KindFunctionDefinition        Kind = "function_definition"
	KindConstructorDefinition     Kind = "constructor_definition"
	KindFallbackReceiveDefinition Kind = "fallback_receive_definition"
	KindModifierDefinition        Kind = "modifier_definition"

	KindStateVariableDeclaration Kind = "state_variable_declaration"
	KindVariableDeclaration      Kind = "variable_declaration"
	KindParameter                Kind = "parameter"

	KindExpressionStatement Kind = "expression_statement"
	KindIfStatement         Kind = "if_statement"
	KindForStatement        Kind = "for_statement"
	KindWhileStatement      Kind = "while_statement"
	KindReturnStatement     Kind = "return_statement"
	KindBlock               Kind = "block"

	KindBinaryExpression     Kind = "binary_expression"
	KindUnaryExpression      Kind = "unary_expression"
	KindAssignmentExpression Kind = "assignment_expression"
	KindCallExpression       Kind = "call_expression"
	KindMemberExpression     Kind = "member_expression"
	KindIdentifier           Kind = "identifier"
	KindNumberLiteral        Kind = "number_literal"
	KindStringLiteral        Kind = "string_literal"
	KindBooleanLiteral       Kind = "boolean_literal"

	KindTypeName        Kind = "type_name"
	KindPrimitiveType   Kind = "primitive_type"
	KindUserDefinedType Kind = "user_defined_type"
	KindMappingType     Kind = "mapping_type"
	KindArrayType       Kind = "array_type"

	KindPragmaDirective    Kind = "pragma_directive"
	KindImportDirective    Kind = "import_directive"
	KindEventDefinition    Kind = "event_definition"
	KindStructDeclaration  Kind = "struct_declaration"
	KindEnumDeclaration    Kind = "enum_declaration"
)

var knownKinds = map[Kind]bool{
	KindContractDeclaration: true, KindInterfaceDeclaration: true, KindLibraryDeclaration: true,
	KindFunctionDefinition: true, KindConstructorDefinition: true, KindFallbackReceiveDefinition: true,
	KindModifierDefinition: true,
	KindStateVariableDeclaration: true, KindVariableDeclaration: true, KindParameter: true,
	KindExpressionStatement: true, KindIfStatement: true, KindForStatement: true,
	KindWhileStatement: true, KindReturnStatement: true, KindBlock: true,
	KindBinaryExpression: true, KindUnaryExpression: true, KindAssignmentExpression: true,
	KindCallExpression: true, KindMemberExpression: true, KindIdentifier: true,
	KindNumberLiteral: true, KindStringLiteral: true, KindBooleanLiteral: true,
	KindTypeName: true, KindPrimitiveType: true, KindUserDefinedType: true,
	KindMappingType: true, KindArrayType: true,
	KindPragmaDirective: true, KindImportDirective: true, KindEventDefinition: true,
	KindStructDeclaration: true, KindEnumDeclaration: true,
}

// KindFromCategory maps a raw syntax category to a Kind, defaulting to
// KindIdentifier for categories outside the closed set.
func KindFromCategory(category string) Kind {
	k := Kind(category)
	if knownKinds[k] {
		return k
	}
	return KindIdentifier
}

// Visibility is a declaration visibility keyword. Empty means unspecified.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
	VisibilityExternal Visibility = "external"
)

// StateMutability is a function/variable mutability keyword. Empty means
// unspecified.
type StateMutability string

const (
	MutabilityPure     StateMutability = "pure"
	MutabilityView     StateMutability = "view"
	MutabilityPayable  StateMutability = "payable"
	MutabilityConstant StateMutability = "constant" // 0.4.x only
)

// SourceLocation is a 1-based source span.
type SourceLocation struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndLine   int `json:"end_line,omitempty"`
	EndColumn int `json:"end_column,omitempty"`
}

// Node is the base AST entity. Specializations embed it; plain *Node values
// represent generic constructs with no extra attributes.
//
// Parent is a non-owning back-reference: every non-root node's Parent points
// at the node whose Children list owns it.
type Node struct {
	ID       int
	Kind     Kind
	Name     string
	Loc      SourceLocation
	Children []ASTNode
	Parent   ASTNode
	Text     string
	Metadata map[string]any
}

// ASTNode is the closed sum of AST variants. Use a type switch over
// *Contract, *Function, *Variable, *Expression and fall through to *Node for
// generic nodes.
type ASTNode interface {
	Base() *Node
}

// Base returns the node itself, making *Node the generic variant.
func (n *Node) Base() *Node { return n }

// Parameter is a name/type pair from a parameter or return-parameter list.
type Parameter struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Contract is a contract, interface, or library declaration.
type Contract struct {
	Node
	BaseContracts []string
}

// Function is a function, constructor, or fallback/receive definition.
type Function struct {
	Node
	Parameters       []Parameter
	ReturnParameters []Parameter
	Visibility       Visibility
	StateMutability  StateMutability
	Modifiers        []string
	IsConstructor    bool
	IsFallback       bool
	IsReceive        bool
}

// Variable is a state or local variable declaration.
type Variable struct {
	Node
	DataType        string
	IsConstant      bool
	IsStateVariable bool
	IsImmutable     bool
	Visibility      Visibility
	InitialValue    string
}

// Expression is a binary, unary, assignment, call, or member expression.
// Operands beyond Left and Right overflow into Arguments in encounter order.
type Expression struct {
	Node
	Operator  string
	Left      ASTNode
	Right     ASTNode
	Arguments []ASTNode
}

// Walk visits n and every descendant in pre-order, following Children as
// well as expression operand slots. The visit function returning false
// prunes the subtree.
func Walk(n ASTNode, visit func(ASTNode) bool) {
	if n == nil || !visit(n) {
		return
	}
	if expr, ok := n.(*Expression); ok {
		Walk(expr.Left, visit)
		Walk(expr.Right, visit)
		for _, arg := range expr.Arguments {
			Walk(arg, visit)
		}
	}
	for _, child := range n.Base().Children {
		Walk(child, visit)
	}
}

// Count returns the number of nodes reachable from n.
func Count(n ASTNode) int {
	total := 0
	Walk(n, func(ASTNode) bool {
		total++
		return true
	})
	return total
}
