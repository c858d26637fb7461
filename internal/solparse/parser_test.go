package solparse

import (
	"strings"
	"testing"

	"github.com/soligraph/soligraph/pkg/syntax"
)

const tokenContract = `pragma solidity ^0.4.24;

contract Token is Ownable {
    uint256 public totalSupply;
    mapping(address => uint256) balances;

    event Transfer(address from, address to, uint256 value);

    function Token(uint256 supply) public {
        totalSupply = supply;
    }

    function transfer(address to, uint256 value) public returns (bool) {
        if (balances[msg.sender] >= value) {
            balances[to] += value;
            return true;
        }
        return false;
    }
}
`

func findAll(n syntax.Node, category string) []syntax.Node {
	var found []syntax.Node
	if n == nil {
		return nil
	}
	if n.Type() == category {
		found = append(found, n)
	}
	for _, child := range syntax.Children(n) {
		found = append(found, findAll(child, category)...)
	}
	return found
}

func firstOf(t *testing.T, root syntax.Node, category string) syntax.Node {
	t.Helper()
	all := findAll(root, category)
	if len(all) == 0 {
		t.Fatalf("no %s node in tree", category)
	}
	return all[0]
}

// directChild matches immediate children only, for cases where the category
// also occurs deeper in the subtree.
func directChild(t *testing.T, n syntax.Node, category string) syntax.Node {
	t.Helper()
	for _, child := range syntax.Children(n) {
		if child.Type() == category {
			return child
		}
	}
	t.Fatalf("no direct %s child", category)
	return nil
}

func TestParseEmpty(t *testing.T) {
	p := New()
	if p.Parse(nil) != nil {
		t.Error("nil source should yield nil root")
	}
	if p.Parse([]byte("  \n\t")) != nil {
		t.Error("blank source should yield nil root")
	}
	if p.Parse([]byte("// only a comment")) != nil {
		t.Error("comment-only source should yield nil root")
	}
}

func TestParseSourceFile(t *testing.T) {
	root := New().Parse([]byte(tokenContract))
	if root == nil {
		t.Fatal("expected non-nil root")
	}
	if root.Type() != "source_file" {
		t.Fatalf("root type = %q, want source_file", root.Type())
	}

	pragma := firstOf(t, root, "pragma_directive")
	version := firstOf(t, pragma, "solidity_pragma_token")
	if !strings.Contains(version.Text(), "0.4") {
		t.Errorf("pragma token text = %q, want it to mention 0.4", version.Text())
	}

	contract := firstOf(t, root, "contract_declaration")
	name := firstOf(t, contract, "identifier")
	if name.Text() != "Token" {
		t.Errorf("contract name = %q, want Token", name.Text())
	}
	base := firstOf(t, contract, "inheritance_specifier")
	if base.Text() != "Ownable" {
		t.Errorf("base contract = %q, want Ownable", base.Text())
	}
	firstOf(t, contract, "contract_body")
}

func TestParseContractMembers(t *testing.T) {
	root := New().Parse([]byte(tokenContract))

	stateVars := findAll(root, "state_variable_declaration")
	if len(stateVars) != 2 {
		t.Fatalf("state variable count = %d, want 2", len(stateVars))
	}

	supply := stateVars[0]
	if got := firstOf(t, supply, "type_name").Text(); got != "uint256" {
		t.Errorf("type = %q, want uint256", got)
	}
	if got := firstOf(t, supply, "visibility").Text(); got != "public" {
		t.Errorf("visibility = %q, want public", got)
	}
	if got := directChild(t, supply, "identifier").Text(); got != "totalSupply" {
		t.Errorf("name = %q, want totalSupply", got)
	}

	balances := stateVars[1]
	if got := firstOf(t, balances, "type_name").Text(); !strings.HasPrefix(got, "mapping") {
		t.Errorf("mapping type = %q, want mapping(...)", got)
	}

	if events := findAll(root, "event_definition"); len(events) != 1 {
		t.Errorf("event count = %d, want 1", len(events))
	}

	fns := findAll(root, "function_definition")
	if len(fns) != 2 {
		t.Fatalf("function count = %d, want 2", len(fns))
	}
	if got := firstOf(t, fns[0], "identifier").Text(); got != "Token" {
		t.Errorf("first function name = %q, want Token", got)
	}
}

func TestParseFunctionHeader(t *testing.T) {
	root := New().Parse([]byte(tokenContract))
	fns := findAll(root, "function_definition")
	transfer := fns[1]

	params := findAll(firstOf(t, transfer, "parameter_list"), "parameter")
	if len(params) != 2 {
		t.Fatalf("parameter count = %d, want 2", len(params))
	}
	if got := firstOf(t, params[0], "type_name").Text(); got != "address" {
		t.Errorf("first param type = %q, want address", got)
	}
	if got := firstOf(t, transfer, "visibility").Text(); got != "public" {
		t.Errorf("visibility = %q, want public", got)
	}

	returns := firstOf(t, transfer, "return_type_definition")
	retParams := findAll(returns, "parameter")
	if len(retParams) != 1 {
		t.Fatalf("return parameter count = %d, want 1", len(retParams))
	}
	if got := firstOf(t, retParams[0], "type_name").Text(); got != "bool" {
		t.Errorf("return type = %q, want bool", got)
	}

	firstOf(t, transfer, "function_body")
	firstOf(t, transfer, "if_statement")
}

func TestParseExpressions(t *testing.T) {
	src := `contract C { function f() public { x = y + z * 2; emit Done(x); } }`
	root := New().Parse([]byte(src))

	assign := firstOf(t, root, "assignment_expression")
	if assign.ChildCount() != 3 {
		t.Fatalf("assignment child count = %d, want 3", assign.ChildCount())
	}
	if got := assign.Child(1).Type(); got != "=" {
		t.Errorf("assignment operator = %q, want =", got)
	}

	add := firstOf(t, root, "binary_expression")
	if got := add.Child(1).Type(); got != "+" {
		t.Errorf("outer operator = %q, want +", got)
	}
	inner := findAll(add.Child(2), "binary_expression")
	if len(inner) != 1 || inner[0].Child(1).Type() != "*" {
		t.Error("expected * to bind tighter than +")
	}

	calls := findAll(root, "call_expression")
	if len(calls) != 1 {
		t.Fatalf("call count = %d, want 1", len(calls))
	}
	if got := calls[0].Child(0).Text(); got != "Done" {
		t.Errorf("callee = %q, want Done", got)
	}
}

func TestParseMemberAndIndex(t *testing.T) {
	src := `contract C { function f() public { balances[msg.sender] = 1; } }`
	root := New().Parse([]byte(src))

	access := firstOf(t, root, "array_access")
	if got := access.Child(0).Text(); got != "balances" {
		t.Errorf("indexed object = %q, want balances", got)
	}
	member := firstOf(t, access, "member_expression")
	if member.Text() != "msg.sender" {
		t.Errorf("member text = %q, want msg.sender", member.Text())
	}
}

func TestParseConstructorAndFallback(t *testing.T) {
	src := `contract C {
		constructor(uint a) public {}
		function () public payable {}
	}`
	root := New().Parse([]byte(src))

	ctor := firstOf(t, root, "constructor_definition")
	if params := findAll(ctor, "parameter"); len(params) != 1 {
		t.Errorf("constructor parameter count = %d, want 1", len(params))
	}

	fallback := firstOf(t, root, "fallback_receive_definition")
	if got := firstOf(t, fallback, "state_mutability").Text(); got != "payable" {
		t.Errorf("fallback mutability = %q, want payable", got)
	}
}

func TestParseLocalDeclarations(t *testing.T) {
	src := `contract C {
		function f() public {
			uint total = 0;
			Counter c = Counter(addr);
			for (uint i = 0; i < 10; i++) { total += i; }
		}
	}`
	root := New().Parse([]byte(src))

	locals := findAll(root, "variable_declaration")
	if len(locals) != 3 {
		t.Fatalf("local declaration count = %d, want 3", len(locals))
	}
	if got := firstOf(t, locals[1], "type_name").Text(); got != "Counter" {
		t.Errorf("user type = %q, want Counter", got)
	}

	loop := firstOf(t, root, "for_statement")
	if got := findAll(loop, "update_expression"); len(got) != 1 {
		t.Errorf("update expression count = %d, want 1", len(got))
	}
}

func TestParseInterfaceAndLibrary(t *testing.T) {
	src := `interface IToken { function total() external returns (uint); }
library SafeMath { function add(uint a, uint b) internal pure returns (uint) { return a + b; } }`
	root := New().Parse([]byte(src))

	firstOf(t, root, "interface_declaration")
	lib := firstOf(t, root, "library_declaration")
	if got := firstOf(t, lib, "identifier").Text(); got != "SafeMath" {
		t.Errorf("library name = %q, want SafeMath", got)
	}
}

func TestParseMalformedInputRecovers(t *testing.T) {
	sources := []string{
		"contract {",
		"function orphan() {}",
		"???",
		"contract C { uint }",
	}
	for _, src := range sources {
		if root := New().Parse([]byte(src)); root == nil {
			t.Errorf("Parse(%q) returned nil, want best-effort tree", src)
		}
	}
}
