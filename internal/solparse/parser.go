// Package solparse is a lightweight recursive-descent Solidity parser that
// emits syntax trees in the shape the AST builder consumes. Node categories
// follow the tree-sitter-solidity grammar so a real grammar can be swapped in
// through the syntax package without touching downstream code.
//
// The parser is deliberately forgiving: unrecognized constructs degrade to
// generic token nodes instead of failing, matching the "missing production
// is not an error" contract of the analysis core.
package solparse

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/soligraph/soligraph/pkg/syntax"
)

// node is a concrete syntax node backed by a shared source slice.
type node struct {
	category string
	src      []byte
	startOff int
	endOff   int
	start    syntax.Point
	end      syntax.Point
	children []*node
}

func (n *node) Type() string             { return n.category }
func (n *node) ChildCount() int          { return len(n.children) }
func (n *node) Text() string             { return string(n.src[n.startOff:n.endOff]) }
func (n *node) StartPoint() syntax.Point { return n.start }
func (n *node) EndPoint() syntax.Point   { return n.end }

func (n *node) Child(i int) syntax.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// keywords lex as anonymous token nodes whose category is the keyword
// itself, the way tree-sitter reports unnamed tokens.
var keywords = map[string]bool{
	"pragma": true, "import": true, "contract": true, "interface": true,
	"library": true, "is": true, "function": true, "constructor": true,
	"modifier": true, "struct": true, "enum": true, "event": true,
	"mapping": true, "returns": true, "return": true, "if": true,
	"else": true, "for": true, "while": true, "do": true, "break": true,
	"continue": true, "emit": true, "new": true, "delete": true,
	"using": true, "assembly": true, "throw": true,
	"memory": true, "storage": true, "calldata": true,
}

var visibilityWords = map[string]bool{
	"public": true, "private": true, "internal": true, "external": true,
}

var mutabilityWords = map[string]bool{
	"pure": true, "view": true, "payable": true, "constant": true,
}

var assignmentOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// binaryLevels orders binary operators from loosest to tightest binding.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
	{"**"},
}

// Parser parses Solidity source into syntax trees. The zero value is ready
// to use and safe to share: all parse state lives per call.
type Parser struct{}

// New returns a ready Parser.
func New() *Parser { return &Parser{} }

// Parse tokenizes and parses source. Returns nil when the source holds no
// tokens at all; malformed input still produces a best-effort tree.
func (p *Parser) Parse(source []byte) syntax.Node {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil
	}
	s := &parseState{src: source, toks: tokenize(source)}
	if len(s.toks) <= 1 {
		return nil
	}
	return s.parseSourceFile()
}

type parseState struct {
	src  []byte
	toks []token
	pos  int
}

func (s *parseState) cur() token { return s.toks[s.pos] }
func (s *parseState) done() bool { return s.cur().kind == tokenEOF }

func (s *parseState) at(text string) bool {
	return !s.done() && s.cur().text == text
}

func (s *parseState) atIdent() bool { return s.cur().kind == tokenIdent }

func (s *parseState) peekText(ahead int) string {
	if s.pos+ahead >= len(s.toks) {
		return ""
	}
	return s.toks[s.pos+ahead].text
}

// leaf consumes the current token into a leaf node.
func (s *parseState) leaf() *node {
	t := s.cur()
	if t.kind != tokenEOF {
		s.pos++
	}
	category := t.text
	switch t.kind {
	case tokenIdent:
		switch {
		case t.text == "true" || t.text == "false":
			category = "boolean_literal"
		case keywords[t.text]:
			category = t.text
		default:
			category = "identifier"
		}
	case tokenNumber:
		category = "number_literal"
	case tokenString:
		category = "string_literal"
	}
	return &node{
		category: category, src: s.src,
		startOff: t.startOff, endOff: t.endOff,
		start: t.start, end: t.end,
	}
}

// wrap builds an interior node spanning its children.
func (s *parseState) wrap(category string, children []*node) *node {
	n := &node{category: category, src: s.src, children: children}
	if len(children) > 0 {
		first, last := children[0], children[len(children)-1]
		n.startOff, n.start = first.startOff, first.start
		n.endOff, n.end = last.endOff, last.end
	}
	return n
}

func (s *parseState) expect(text string, children []*node) []*node {
	if s.at(text) {
		children = append(children, s.leaf())
	}
	return children
}

func (s *parseState) parseSourceFile() *node {
	var children []*node
	for !s.done() {
		before := s.pos
		switch {
		case s.at("pragma"):
			children = append(children, s.parsePragma())
		case s.at("import"):
			children = append(children, s.parseImport())
		case s.at("contract") || s.at("interface") || s.at("library"):
			children = append(children, s.parseContract())
		default:
			children = append(children, s.leaf())
		}
		if s.pos == before {
			s.pos++ // never stall
		}
	}
	return s.wrap("source_file", children)
}

func (s *parseState) parsePragma() *node {
	children := []*node{s.leaf()} // pragma
	var body []*node
	for !s.done() && !s.at(";") {
		body = append(body, s.leaf())
	}
	if len(body) > 0 {
		children = append(children, s.wrap("solidity_pragma_token", body))
	}
	children = s.expect(";", children)
	return s.wrap("pragma_directive", children)
}

func (s *parseState) parseImport() *node {
	children := []*node{s.leaf()} // import
	for !s.done() && !s.at(";") {
		children = append(children, s.leaf())
	}
	children = s.expect(";", children)
	return s.wrap("import_directive", children)
}

func (s *parseState) parseContract() *node {
	keyword := s.cur().text
	category := "contract_declaration"
	switch keyword {
	case "interface":
		category = "interface_declaration"
	case "library":
		category = "library_declaration"
	}

	children := []*node{s.leaf()} // contract/interface/library
	if s.atIdent() {
		children = append(children, s.leaf()) // name
	}
	if s.at("is") {
		children = append(children, s.leaf())
		for !s.done() && !s.at("{") {
			if s.at(",") {
				children = append(children, s.leaf())
				continue
			}
			children = append(children, s.parseInheritanceSpecifier())
		}
	}
	if s.at("{") {
		children = append(children, s.parseContractBody())
	}
	return s.wrap(category, children)
}

func (s *parseState) parseInheritanceSpecifier() *node {
	var children []*node
	if s.atIdent() {
		children = append(children, s.leaf())
	} else {
		children = append(children, s.leaf()) // recover
	}
	if s.at("(") {
		children = append(children, s.consumeBalanced("(", ")")...)
	}
	return s.wrap("inheritance_specifier", children)
}

func (s *parseState) parseContractBody() *node {
	children := []*node{s.leaf()} // {
	for !s.done() && !s.at("}") {
		before := s.pos
		children = append(children, s.parseMember())
		if s.pos == before {
			s.pos++
		}
	}
	children = s.expect("}", children)
	return s.wrap("contract_body", children)
}

func (s *parseState) parseMember() *node {
	switch {
	case s.at("function"):
		return s.parseFunction()
	case s.at("constructor"):
		return s.parseConstructor()
	case s.at("modifier"):
		return s.parseModifierDefinition()
	case s.at("struct"):
		return s.parseBracedDefinition("struct_declaration")
	case s.at("enum"):
		return s.parseBracedDefinition("enum_declaration")
	case s.at("event"):
		return s.parseEventDefinition()
	case s.at("using"):
		return s.parseToSemicolon("using_for_directive")
	default:
		return s.parseStateVariable()
	}
}

func (s *parseState) parseFunction() *node {
	children := []*node{s.leaf()} // function
	category := "function_definition"
	if s.atIdent() {
		children = append(children, s.leaf()) // name
	} else if s.at("(") {
		category = "fallback_receive_definition"
	}
	if s.at("(") {
		children = append(children, s.parseParameterList())
	}
	children = s.parseFunctionHeader(children)
	children = s.parseFunctionTail(children)
	return s.wrap(category, children)
}

func (s *parseState) parseConstructor() *node {
	children := []*node{s.leaf()} // constructor
	if s.at("(") {
		children = append(children, s.parseParameterList())
	}
	children = s.parseFunctionHeader(children)
	children = s.parseFunctionTail(children)
	return s.wrap("constructor_definition", children)
}

func (s *parseState) parseFunctionHeader(children []*node) []*node {
	for !s.done() && !s.at("{") && !s.at(";") {
		before := s.pos
		switch {
		case s.atIdent() && visibilityWords[s.cur().text]:
			children = append(children, s.wrap("visibility", []*node{s.leaf()}))
		case s.atIdent() && mutabilityWords[s.cur().text]:
			children = append(children, s.wrap("state_mutability", []*node{s.leaf()}))
		case s.at("returns"):
			children = append(children, s.parseReturnTypeDefinition())
		case s.atIdent() && (s.cur().text == "virtual" || s.cur().text == "override"):
			children = append(children, s.leaf())
		case s.atIdent():
			children = append(children, s.parseModifierInvocation())
		default:
			children = append(children, s.leaf())
		}
		if s.pos == before {
			s.pos++
		}
	}
	return children
}

func (s *parseState) parseFunctionTail(children []*node) []*node {
	if s.at("{") {
		body := []*node{s.leaf()}
		for !s.done() && !s.at("}") {
			before := s.pos
			body = append(body, s.parseStatement())
			if s.pos == before {
				s.pos++
			}
		}
		body = s.expect("}", body)
		children = append(children, s.wrap("function_body", body))
	} else {
		children = s.expect(";", children)
	}
	return children
}

func (s *parseState) parseReturnTypeDefinition() *node {
	children := []*node{s.leaf()} // returns
	if s.at("(") {
		children = append(children, s.leaf())
		for !s.done() && !s.at(")") {
			if s.at(",") {
				children = append(children, s.leaf())
				continue
			}
			children = append(children, s.parseParameter())
		}
		children = s.expect(")", children)
	}
	return s.wrap("return_type_definition", children)
}

func (s *parseState) parseModifierInvocation() *node {
	children := []*node{s.leaf()} // identifier
	if s.at("(") {
		children = append(children, s.leaf())
		for !s.done() && !s.at(")") {
			if s.at(",") {
				children = append(children, s.leaf())
				continue
			}
			children = append(children, s.parseExpression())
		}
		children = s.expect(")", children)
	}
	return s.wrap("modifier_invocation", children)
}

func (s *parseState) parseParameterList() *node {
	children := []*node{s.leaf()} // (
	for !s.done() && !s.at(")") {
		if s.at(",") {
			children = append(children, s.leaf())
			continue
		}
		children = append(children, s.parseParameter())
	}
	children = s.expect(")", children)
	return s.wrap("parameter_list", children)
}

func (s *parseState) parseParameter() *node {
	children := []*node{s.parseTypeName()}
	for s.at("memory") || s.at("storage") || s.at("calldata") {
		children = append(children, s.leaf())
	}
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	return s.wrap("parameter", children)
}

func (s *parseState) parseTypeName() *node {
	var children []*node
	if s.at("mapping") {
		children = append(children, s.leaf())
		if s.at("(") {
			children = append(children, s.leaf())
			children = append(children, s.parseTypeName())
			children = s.expect("=>", children)
			children = append(children, s.parseTypeName())
			children = s.expect(")", children)
		}
	} else if s.atIdent() {
		children = append(children, s.leaf())
		for s.at(".") {
			children = append(children, s.leaf())
			if s.atIdent() {
				children = append(children, s.leaf())
			}
		}
	} else if !s.done() {
		children = append(children, s.leaf()) // recover
	}
	for s.at("[") {
		children = append(children, s.leaf())
		if !s.at("]") && !s.done() {
			children = append(children, s.parseExpression())
		}
		children = s.expect("]", children)
	}
	return s.wrap("type_name", children)
}

func (s *parseState) parseStateVariable() *node {
	children := []*node{s.parseTypeName()}
	for s.atIdent() {
		if visibilityWords[s.cur().text] {
			children = append(children, s.wrap("visibility", []*node{s.leaf()}))
			continue
		}
		if s.cur().text == "constant" {
			children = append(children, s.wrap("state_mutability", []*node{s.leaf()}))
			continue
		}
		if s.cur().text == "immutable" {
			children = append(children, s.wrap("immutable", []*node{s.leaf()}))
			continue
		}
		break
	}
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	if s.at("=") {
		children = append(children, s.leaf())
		children = append(children, s.wrap("expression", []*node{s.parseExpression()}))
	}
	children = s.expect(";", children)
	return s.wrap("state_variable_declaration", children)
}

func (s *parseState) parseEventDefinition() *node {
	children := []*node{s.leaf()} // event
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	for !s.done() && !s.at(";") {
		children = append(children, s.leaf())
	}
	children = s.expect(";", children)
	return s.wrap("event_definition", children)
}

func (s *parseState) parseModifierDefinition() *node {
	children := []*node{s.leaf()} // modifier
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	if s.at("(") {
		children = append(children, s.parseParameterList())
	}
	children = s.parseFunctionTail(children)
	return s.wrap("modifier_definition", children)
}

func (s *parseState) parseBracedDefinition(category string) *node {
	children := []*node{s.leaf()} // struct/enum
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	if s.at("{") {
		children = append(children, s.consumeBalanced("{", "}")...)
	}
	return s.wrap(category, children)
}

func (s *parseState) parseToSemicolon(category string) *node {
	var children []*node
	for !s.done() && !s.at(";") {
		children = append(children, s.leaf())
	}
	children = s.expect(";", children)
	return s.wrap(category, children)
}

// consumeBalanced eats a balanced open...close region as raw leaves.
func (s *parseState) consumeBalanced(open, close string) []*node {
	var out []*node
	depth := 0
	for !s.done() {
		if s.at(open) {
			depth++
		} else if s.at(close) {
			depth--
		}
		out = append(out, s.leaf())
		if depth == 0 {
			break
		}
	}
	return out
}

// ---- statements ----

func (s *parseState) parseStatement() *node {
	switch {
	case s.at("{"):
		return s.parseBlock()
	case s.at("return"):
		children := []*node{s.leaf()}
		if !s.at(";") && !s.done() {
			children = append(children, s.parseExpression())
		}
		children = s.expect(";", children)
		return s.wrap("return_statement", children)
	case s.at("if"):
		return s.parseIf()
	case s.at("for"):
		return s.parseFor()
	case s.at("while"):
		return s.parseWhile()
	case s.at("do"):
		return s.parseDoWhile()
	case s.at("emit"):
		children := []*node{s.leaf()}
		children = append(children, s.parseExpression())
		children = s.expect(";", children)
		return s.wrap("emit_statement", children)
	case s.at("throw"):
		children := []*node{s.leaf()}
		children = s.expect(";", children)
		return s.wrap("throw_statement", children)
	case s.at("break"), s.at("continue"):
		category := s.cur().text + "_statement"
		children := []*node{s.leaf()}
		children = s.expect(";", children)
		return s.wrap(category, children)
	case s.at("assembly"):
		children := []*node{s.leaf()}
		if s.at("{") {
			children = append(children, s.consumeBalanced("{", "}")...)
		}
		return s.wrap("assembly_statement", children)
	case s.looksLikeLocalDeclaration():
		return s.parseLocalDeclaration()
	default:
		children := []*node{s.parseExpression()}
		children = s.expect(";", children)
		return s.wrap("expression_statement", children)
	}
}

func (s *parseState) parseBlock() *node {
	children := []*node{s.leaf()} // {
	for !s.done() && !s.at("}") {
		before := s.pos
		children = append(children, s.parseStatement())
		if s.pos == before {
			s.pos++
		}
	}
	children = s.expect("}", children)
	return s.wrap("block", children)
}

func (s *parseState) parseIf() *node {
	children := []*node{s.leaf()} // if
	children = s.expect("(", children)
	children = append(children, s.parseExpression())
	children = s.expect(")", children)
	children = append(children, s.parseStatement())
	if s.at("else") {
		children = append(children, s.leaf())
		children = append(children, s.parseStatement())
	}
	return s.wrap("if_statement", children)
}

func (s *parseState) parseFor() *node {
	children := []*node{s.leaf()} // for
	children = s.expect("(", children)
	if s.at(";") {
		children = append(children, s.leaf())
	} else if s.looksLikeLocalDeclaration() {
		children = append(children, s.parseLocalDeclaration())
	} else {
		children = append(children, s.parseExpression())
		children = s.expect(";", children)
	}
	if !s.at(";") && !s.at(")") && !s.done() {
		children = append(children, s.parseExpression())
	}
	children = s.expect(";", children)
	if !s.at(")") && !s.done() {
		children = append(children, s.parseExpression())
	}
	children = s.expect(")", children)
	children = append(children, s.parseStatement())
	return s.wrap("for_statement", children)
}

func (s *parseState) parseWhile() *node {
	children := []*node{s.leaf()} // while
	children = s.expect("(", children)
	children = append(children, s.parseExpression())
	children = s.expect(")", children)
	children = append(children, s.parseStatement())
	return s.wrap("while_statement", children)
}

func (s *parseState) parseDoWhile() *node {
	children := []*node{s.leaf()} // do
	children = append(children, s.parseStatement())
	children = s.expect("while", children)
	children = s.expect("(", children)
	children = append(children, s.parseExpression())
	children = s.expect(")", children)
	children = s.expect(";", children)
	return s.wrap("do_while_statement", children)
}

func (s *parseState) looksLikeLocalDeclaration() bool {
	if !s.atIdent() {
		return s.at("mapping")
	}
	text := s.cur().text
	if isElementaryType(text) || text == "var" {
		return true
	}
	// UserType name; or UserType[] name;
	if s.peekTokenKind(1) == tokenIdent && !assignmentOps[s.peekText(1)] {
		return true
	}
	return s.peekText(1) == "[" && s.peekText(2) == "]"
}

func (s *parseState) peekTokenKind(ahead int) tokenKind {
	if s.pos+ahead >= len(s.toks) {
		return tokenEOF
	}
	return s.toks[s.pos+ahead].kind
}

func (s *parseState) parseLocalDeclaration() *node {
	children := []*node{s.parseTypeName()}
	for s.at("memory") || s.at("storage") || s.at("calldata") {
		children = append(children, s.leaf())
	}
	if s.atIdent() {
		children = append(children, s.leaf())
	}
	if s.at("=") {
		children = append(children, s.leaf())
		children = append(children, s.wrap("expression", []*node{s.parseExpression()}))
	}
	children = s.expect(";", children)
	return s.wrap("variable_declaration", children)
}

// ---- expressions ----

func (s *parseState) parseExpression() *node {
	return s.parseAssignment()
}

func (s *parseState) parseAssignment() *node {
	left := s.parseTernary()
	if !s.done() && assignmentOps[s.cur().text] {
		op := s.leaf()
		right := s.parseAssignment()
		return s.wrap("assignment_expression", []*node{left, op, right})
	}
	return left
}

func (s *parseState) parseTernary() *node {
	cond := s.parseBinary(0)
	if s.at("?") {
		children := []*node{cond, s.leaf()}
		children = append(children, s.parseExpression())
		children = s.expect(":", children)
		children = append(children, s.parseExpression())
		return s.wrap("ternary_expression", children)
	}
	return cond
}

func (s *parseState) parseBinary(level int) *node {
	if level >= len(binaryLevels) {
		return s.parseUnary()
	}
	left := s.parseBinary(level + 1)
	for !s.done() {
		matched := false
		for _, op := range binaryLevels[level] {
			if s.at(op) {
				opLeaf := s.leaf()
				right := s.parseBinary(level + 1)
				left = s.wrap("binary_expression", []*node{left, opLeaf, right})
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return left
}

func (s *parseState) parseUnary() *node {
	if s.at("!") || s.at("~") || s.at("-") || s.at("+") || s.at("++") || s.at("--") || s.at("delete") || s.at("new") {
		op := s.leaf()
		operand := s.parseUnary()
		return s.wrap("unary_expression", []*node{op, operand})
	}
	return s.parsePostfix()
}

func (s *parseState) parsePostfix() *node {
	expr := s.parsePrimary()
	for !s.done() {
		switch {
		case s.at("("):
			children := []*node{expr, s.leaf()}
			for !s.done() && !s.at(")") {
				if s.at(",") {
					children = append(children, s.leaf())
					continue
				}
				children = append(children, s.parseExpression())
			}
			children = s.expect(")", children)
			expr = s.wrap("call_expression", children)
		case s.at("."):
			children := []*node{expr, s.leaf()}
			if s.atIdent() {
				children = append(children, s.leaf())
			}
			expr = s.wrap("member_expression", children)
		case s.at("["):
			children := []*node{expr, s.leaf()}
			if !s.at("]") && !s.done() {
				children = append(children, s.parseExpression())
			}
			children = s.expect("]", children)
			expr = s.wrap("array_access", children)
		case s.at("++") || s.at("--"):
			expr = s.wrap("update_expression", []*node{expr, s.leaf()})
		default:
			return expr
		}
	}
	return expr
}

func (s *parseState) parsePrimary() *node {
	switch s.cur().kind {
	case tokenIdent, tokenNumber, tokenString:
		return s.leaf()
	case tokenPunct:
		if s.at("(") {
			children := []*node{s.leaf()}
			for !s.done() && !s.at(")") {
				if s.at(",") {
					children = append(children, s.leaf())
					continue
				}
				children = append(children, s.parseExpression())
			}
			children = s.expect(")", children)
			return s.wrap("tuple_expression", children)
		}
		return s.leaf() // recover on stray punctuation
	default:
		return s.leaf()
	}
}

// isElementaryType reports whether word names a built-in value type.
func isElementaryType(word string) bool {
	switch word {
	case "address", "bool", "string", "byte", "fixed", "ufixed":
		return true
	}
	for _, prefix := range []string{"uint", "int", "bytes"} {
		if rest, ok := strings.CutPrefix(word, prefix); ok {
			if rest == "" {
				return true
			}
			if _, err := strconv.Atoi(rest); err == nil {
				return true
			}
		}
	}
	return false
}
