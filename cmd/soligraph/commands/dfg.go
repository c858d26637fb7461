package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soligraph/soligraph/internal/solparse"
	"github.com/soligraph/soligraph/pkg/ast"
	"github.com/soligraph/soligraph/pkg/dfg"
	"github.com/soligraph/soligraph/pkg/legacy"
	"github.com/spf13/cobra"
)

var dfgCmd = &cobra.Command{
	Use:   "dfg <file>",
	Short: "Print the data-flow graph of a Solidity file",
	Long: `Builds the data-flow graph for a Solidity file and prints the
serialized JSON document to stdout. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		contract, _ := cmd.Flags().GetString("contract")
		summary, _ := cmd.Flags().GetBool("summary")
		return runDFG(args[0], mode, contract, summary)
	},
}

func runDFG(path, mode, contractOverride string, summaryOnly bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	builder := ast.NewBuilder(solparse.New())
	root := builder.Build(source)
	if root == nil {
		return fmt.Errorf("no parseable content in %s", path)
	}

	version := builder.Version()
	if strings.HasPrefix(version, "0.4") {
		legacy.NewAnnotator().Annotate(root)
		version = legacy.Version
	}

	name := contractOverride
	if name == "" {
		name = firstContractName(root)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	graph := dfg.NewBuilder(version).Build(root, name)
	if graph == nil {
		return fmt.Errorf("failed to build graph for %s", name)
	}

	gc := dfg.ForMode(dfg.ParseOutputMode(mode))
	dfg.Prune(graph, gc)

	if summaryOnly {
		printSummary(graph)
		return nil
	}

	data, err := dfg.NewSerializer(gc).Marshal(graph)
	if err != nil {
		return fmt.Errorf("serializing graph: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printSummary(graph *dfg.Graph) {
	summary := dfg.Summarize(graph)
	fmt.Printf("Contract: %s (%s)\n", summary.Contract, summary.SolidityVersion)
	fmt.Printf("Nodes: %d  Edges: %d\n", summary.Statistics.TotalNodes, summary.Statistics.TotalEdges)

	fmt.Printf("\nFunctions (%d):\n", len(summary.Functions))
	for _, fn := range summary.Functions {
		fmt.Printf("  %s (scope %s)\n", fn.Name, fn.Scope)
	}

	fmt.Printf("\nState variables (%d):\n", len(summary.StateVariables))
	for _, sv := range summary.StateVariables {
		fmt.Printf("  %s %s\n", sv.DataType, sv.Name)
	}
}

func firstContractName(root ast.ASTNode) string {
	name := ""
	ast.Walk(root, func(n ast.ASTNode) bool {
		if name != "" {
			return false
		}
		if c, ok := n.(*ast.Contract); ok && c.Base().Name != "" {
			name = c.Base().Name
			return false
		}
		return true
	})
	return name
}

func init() {
	dfgCmd.Flags().StringP("mode", "m", "standard", "Output mode (compact, standard, verbose)")
	dfgCmd.Flags().StringP("contract", "c", "", "Override the contract name")
	dfgCmd.Flags().BoolP("summary", "s", false, "Print a human-readable summary instead of JSON")
	RootCmd.AddCommand(dfgCmd)
}
