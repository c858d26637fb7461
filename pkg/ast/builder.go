package ast

import (
	"strings"

	"github.com/soligraph/soligraph/pkg/syntax"
)

// versionPrefixes are the known major.minor prefixes, oldest first.
var versionPrefixes = []string{"0.4", "0.5", "0.6", "0.7", "0.8"}

// DefaultVersion is assumed when no pragma is present or recognized.
const DefaultVersion = "0.4.0"

// operatorTokens are the syntax categories that represent an operator token
// inside an expression node.
var operatorTokens = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true, "<<": true, ">>": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true,
}

// punctuationTokens are skipped when assigning expression operand slots.
var punctuationTokens = map[string]bool{
	";": true, ",": true, "(": true, ")": true, "{": true, "}": true,
}

var expressionCategories = map[string]bool{
	"binary_expression":     true,
	"unary_expression":      true,
	"assignment_expression": true,
	"call_expression":       true,
	"member_expression":     true,
}

// Builder converts syntax trees into typed ASTs. It assigns strictly
// increasing pre-order ids; counters carry across Build calls on the same
// instance, so use a fresh Builder when per-unit id isolation matters.
// Not safe for concurrent use.
type Builder struct {
	parser  syntax.Parser
	nextID  int
	version string
}

// NewBuilder returns a Builder reading syntax trees from p.
func NewBuilder(p syntax.Parser) *Builder {
	return &Builder{parser: p, version: DefaultVersion}
}

// Version reports the source-language version detected by the last Build.
func (b *Builder) Version() string { return b.version }

// Build parses source and returns the typed AST root, or nil when the parser
// yields no root. Missing optional grammar productions never fail the build;
// absent attributes resolve to zero values.
func (b *Builder) Build(source []byte) ASTNode {
	root := b.parser.Parse(source)
	return b.BuildFromSyntax(root)
}

// BuildFromSyntax converts an already-parsed syntax tree. This is the entry
// point for callers with their own parser front end.
func (b *Builder) BuildFromSyntax(root syntax.Node) ASTNode {
	if root == nil {
		return nil
	}
	b.version = DetectVersion(root)
	return b.buildNode(root, nil)
}

// DetectVersion sniffs the declared language version from a pragma
// directive, best-effort, defaulting to the oldest supported version.
func DetectVersion(root syntax.Node) string {
	if root == nil {
		return DefaultVersion
	}
	for _, child := range syntax.Children(root) {
		if child.Type() != "pragma_directive" {
			continue
		}
		for _, pragmaChild := range syntax.Children(child) {
			if pragmaChild.Type() != "solidity_pragma_token" {
				continue
			}
			text := pragmaChild.Text()
			for _, prefix := range versionPrefixes {
				if strings.Contains(text, prefix) {
					return prefix + ".x"
				}
			}
		}
	}
	return DefaultVersion
}

func (b *Builder) nodeID() int {
	b.nextID++
	return b.nextID
}

func (b *Builder) base(n syntax.Node, kind Kind, parent ASTNode) Node {
	start := n.StartPoint()
	end := n.EndPoint()
	return Node{
		ID:   b.nodeID(),
		Kind: kind,
		Loc: SourceLocation{
			Line:      start.Row + 1,
			Column:    start.Column + 1,
			EndLine:   end.Row + 1,
			EndColumn: end.Column + 1,
		},
		Parent:   parent,
		Text:     n.Text(),
		Metadata: map[string]any{"solidity_version": b.version},
	}
}

func (b *Builder) buildNode(n syntax.Node, parent ASTNode) ASTNode {
	if n == nil {
		return nil
	}
	switch category := n.Type(); {
	case category == "contract_declaration" || category == "interface_declaration" || category == "library_declaration":
		return b.buildContract(n, parent)
	case category == "function_definition":
		return b.buildFunction(n, parent, KindFunctionDefinition)
	case category == "constructor_definition":
		return b.buildConstructor(n, parent)
	case category == "fallback_receive_definition":
		return b.buildFunction(n, parent, KindFallbackReceiveDefinition)
	case category == "state_variable_declaration":
		return b.buildVariable(n, parent, true)
	case category == "variable_declaration":
		return b.buildVariable(n, parent, false)
	case expressionCategories[category]:
		return b.buildExpression(n, parent)
	default:
		return b.buildGeneric(n, parent)
	}
}

func (b *Builder) buildContract(n syntax.Node, parent ASTNode) *Contract {
	contract := &Contract{
		Node:          b.base(n, KindFromCategory(n.Type()), parent),
		BaseContracts: extractBaseContracts(n),
	}
	contract.Name = firstIdentifierText(n)

	for _, child := range syntax.Children(n) {
		if child.Type() != "contract_body" {
			continue
		}
		for _, member := range syntax.Children(child) {
			if built := b.buildNode(member, contract); built != nil {
				contract.Children = append(contract.Children, built)
			}
		}
	}
	return contract
}

func (b *Builder) buildFunction(n syntax.Node, parent ASTNode, kind Kind) *Function {
	fn := &Function{
		Node:             b.base(n, kind, parent),
		Parameters:       extractParameters(n, "parameter_list"),
		ReturnParameters: extractParameters(n, "return_type_definition"),
		Visibility:       extractVisibility(n),
		StateMutability:  extractMutability(n),
		Modifiers:        extractModifiers(n),
		IsFallback:       kind == KindFallbackReceiveDefinition,
	}
	fn.Name = firstIdentifierText(n)
	b.buildBody(n, fn)
	return fn
}

func (b *Builder) buildConstructor(n syntax.Node, parent ASTNode) *Function {
	fn := &Function{
		Node:            b.base(n, KindConstructorDefinition, parent),
		Parameters:      extractParameters(n, "parameter_list"),
		Visibility:      extractVisibility(n),
		StateMutability: extractMutability(n),
		Modifiers:       extractModifiers(n),
		IsConstructor:   true,
	}
	fn.Name = "constructor"
	b.buildBody(n, fn)
	return fn
}

func (b *Builder) buildBody(n syntax.Node, fn *Function) {
	for _, child := range syntax.Children(n) {
		if child.Type() != "function_body" {
			continue
		}
		for _, stmt := range syntax.Children(child) {
			if built := b.buildNode(stmt, fn); built != nil {
				fn.Children = append(fn.Children, built)
			}
		}
	}
}

func (b *Builder) buildVariable(n syntax.Node, parent ASTNode, state bool) *Variable {
	kind := KindVariableDeclaration
	if state {
		kind = KindStateVariableDeclaration
	}
	v := &Variable{
		Node:            b.base(n, kind, parent),
		DataType:        childText(n, "type_name"),
		IsStateVariable: state,
		IsConstant:      hasMutabilityKeyword(n, "constant"),
		IsImmutable:     hasTokenChild(n, "immutable"),
		Visibility:      extractVisibility(n),
		InitialValue:    childText(n, "expression"),
	}
	v.Name = firstIdentifierText(n)
	return v
}

func (b *Builder) buildExpression(n syntax.Node, parent ASTNode) *Expression {
	expr := &Expression{
		Node:     b.base(n, KindFromCategory(n.Type()), parent),
		Operator: extractOperator(n),
	}

	// Operands fill left, then right; everything after overflows into the
	// argument list. Pure punctuation children are skipped.
	for _, child := range syntax.Children(n) {
		if punctuationTokens[child.Type()] {
			continue
		}
		built := b.buildNode(child, expr)
		if built == nil {
			continue
		}
		switch {
		case expr.Left == nil:
			expr.Left = built
		case expr.Right == nil:
			expr.Right = built
		default:
			expr.Arguments = append(expr.Arguments, built)
		}
	}
	return expr
}

func (b *Builder) buildGeneric(n syntax.Node, parent ASTNode) *Node {
	node := b.base(n, KindFromCategory(n.Type()), parent)
	generic := &node
	if n.Type() == "identifier" {
		generic.Name = n.Text()
	}
	for _, child := range syntax.Children(n) {
		if built := b.buildNode(child, generic); built != nil {
			generic.Children = append(generic.Children, built)
		}
	}
	return generic
}

func firstIdentifierText(n syntax.Node) string {
	for _, child := range syntax.Children(n) {
		if child.Type() == "identifier" {
			return child.Text()
		}
	}
	return ""
}

func childText(n syntax.Node, category string) string {
	for _, child := range syntax.Children(n) {
		if child.Type() == category {
			return child.Text()
		}
	}
	return ""
}

func hasTokenChild(n syntax.Node, category string) bool {
	for _, child := range syntax.Children(n) {
		if child.Type() == category {
			return true
		}
	}
	return false
}

func hasMutabilityKeyword(n syntax.Node, keyword string) bool {
	for _, child := range syntax.Children(n) {
		if child.Type() == "state_mutability" && child.Text() == keyword {
			return true
		}
	}
	return false
}

func extractBaseContracts(n syntax.Node) []string {
	var bases []string
	for _, child := range syntax.Children(n) {
		if child.Type() != "inheritance_specifier" {
			continue
		}
		for _, id := range syntax.Children(child) {
			if id.Type() == "identifier" {
				bases = append(bases, id.Text())
			}
		}
	}
	return bases
}

func extractParameters(n syntax.Node, listCategory string) []Parameter {
	var params []Parameter
	for _, child := range syntax.Children(n) {
		if child.Type() != listCategory {
			continue
		}
		for _, p := range syntax.Children(child) {
			if p.Type() != "parameter" {
				continue
			}
			param := Parameter{}
			for _, field := range syntax.Children(p) {
				switch field.Type() {
				case "type_name":
					param.Type = field.Text()
				case "identifier":
					param.Name = field.Text()
				}
			}
			if param != (Parameter{}) {
				params = append(params, param)
			}
		}
	}
	return params
}

func extractVisibility(n syntax.Node) Visibility {
	switch childText(n, "visibility") {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	case "internal":
		return VisibilityInternal
	case "external":
		return VisibilityExternal
	}
	return ""
}

func extractMutability(n syntax.Node) StateMutability {
	switch childText(n, "state_mutability") {
	case "pure":
		return MutabilityPure
	case "view":
		return MutabilityView
	case "payable":
		return MutabilityPayable
	case "constant":
		return MutabilityConstant
	}
	return ""
}

func extractModifiers(n syntax.Node) []string {
	var modifiers []string
	for _, child := range syntax.Children(n) {
		if child.Type() != "modifier_invocation" {
			continue
		}
		for _, id := range syntax.Children(child) {
			if id.Type() == "identifier" {
				modifiers = append(modifiers, id.Text())
			}
		}
	}
	return modifiers
}

func extractOperator(n syntax.Node) string {
	for _, child := range syntax.Children(n) {
		if operatorTokens[child.Type()] {
			return child.Text()
		}
	}
	return ""
}
