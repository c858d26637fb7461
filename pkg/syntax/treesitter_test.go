package syntax

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// The adapter is grammar-agnostic, so exercise it with a grammar bundled in
// the binding.
func TestFromTreeSitter(t *testing.T) {
	source := []byte("var x = 1;\nvar y = x;")

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree := parser.Parse(nil, source)
	defer tree.Close()

	root := FromTreeSitter(tree.RootNode(), source)
	if root == nil {
		t.Fatal("expected non-nil root")
	}

	if root.Type() != "program" {
		t.Errorf("root type = %q, want %q", root.Type(), "program")
	}
	if root.Text() != string(source) {
		t.Errorf("root text = %q, want full source", root.Text())
	}
	if got := root.StartPoint(); got.Row != 0 || got.Column != 0 {
		t.Errorf("start point = %+v, want (0,0)", got)
	}
	if got := root.EndPoint(); got.Row != 1 {
		t.Errorf("end point row = %d, want 1", got.Row)
	}

	if root.ChildCount() != 2 {
		t.Fatalf("child count = %d, want 2", root.ChildCount())
	}
	second := root.Child(1)
	if second == nil {
		t.Fatal("expected second child")
	}
	if got := second.StartPoint(); got.Row != 1 {
		t.Errorf("second statement row = %d, want 1", got.Row)
	}
}

func TestFromTreeSitterNil(t *testing.T) {
	if FromTreeSitter(nil, nil) != nil {
		t.Error("expected nil for nil node")
	}
}

func TestChildren(t *testing.T) {
	source := []byte("f(a, b)")

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree := parser.Parse(nil, source)
	defer tree.Close()

	root := FromTreeSitter(tree.RootNode(), source)
	kids := Children(root)
	if len(kids) != root.ChildCount() {
		t.Errorf("Children returned %d nodes, want %d", len(kids), root.ChildCount())
	}

	if Children(nil) != nil {
		t.Error("Children(nil) should be nil")
	}
}
