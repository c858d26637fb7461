package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/soligraph/soligraph/internal/solparse"
	"github.com/soligraph/soligraph/pkg/ast"
	"github.com/spf13/cobra"
)

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Print the typed syntax tree of a Solidity file",
	Long: `Parses a Solidity file and prints its typed syntax tree, one node
per line with kind, name and source location. Use --json for a nested
machine-readable form.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runAST(args[0], jsonOutput)
	},
}

func runAST(path string, jsonOutput bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	builder := ast.NewBuilder(solparse.New())
	root := builder.Build(source)
	if root == nil {
		return fmt.Errorf("no parseable content in %s", path)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(astRecord(root), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Version: %s (%d nodes)\n", builder.Version(), ast.Count(root))
	printASTNode(root, 0)
	return nil
}

func printASTNode(n ast.ASTNode, depth int) {
	if n == nil {
		return
	}
	base := n.Base()

	line := string(base.Kind)
	if base.Name != "" {
		line += " " + base.Name
	}
	if base.Loc.Line > 0 {
		line += fmt.Sprintf(" (line %d)", base.Loc.Line)
	}
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), line)

	if expr, ok := n.(*ast.Expression); ok {
		printASTNode(expr.Left, depth+1)
		printASTNode(expr.Right, depth+1)
		for _, arg := range expr.Arguments {
			printASTNode(arg, depth+1)
		}
	}
	for _, child := range base.Children {
		printASTNode(child, depth+1)
	}
}

// astRecord converts a node into a JSON-friendly nested map, including
// the variant-specific attributes.
func astRecord(n ast.ASTNode) map[string]any {
	if n == nil {
		return nil
	}
	base := n.Base()

	record := map[string]any{
		"id":   base.ID,
		"kind": string(base.Kind),
	}
	if base.Name != "" {
		record["name"] = base.Name
	}
	if base.Loc.Line > 0 {
		record["location"] = base.Loc
	}

	switch v := n.(type) {
	case *ast.Contract:
		if len(v.BaseContracts) > 0 {
			record["base_contracts"] = v.BaseContracts
		}
	case *ast.Function:
		if len(v.Parameters) > 0 {
			record["parameters"] = v.Parameters
		}
		if len(v.ReturnParameters) > 0 {
			record["return_parameters"] = v.ReturnParameters
		}
		if v.Visibility != "" {
			record["visibility"] = string(v.Visibility)
		}
		if v.StateMutability != "" {
			record["state_mutability"] = string(v.StateMutability)
		}
		if v.IsConstructor {
			record["is_constructor"] = true
		}
	case *ast.Variable:
		if v.DataType != "" {
			record["data_type"] = v.DataType
		}
		record["is_state_variable"] = v.IsStateVariable
		if v.Visibility != "" {
			record["visibility"] = string(v.Visibility)
		}
		if v.InitialValue != "" {
			record["initial_value"] = v.InitialValue
		}
	case *ast.Expression:
		if v.Operator != "" {
			record["operator"] = v.Operator
		}
	}

	var children []map[string]any
	if expr, ok := n.(*ast.Expression); ok {
		for _, operand := range append([]ast.ASTNode{expr.Left, expr.Right}, expr.Arguments...) {
			if operand != nil {
				children = append(children, astRecord(operand))
			}
		}
	}
	for _, child := range base.Children {
		children = append(children, astRecord(child))
	}
	if len(children) > 0 {
		record["children"] = children
	}

	return record
}

func init() {
	astCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(astCmd)
}
