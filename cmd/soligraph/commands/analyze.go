package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/soligraph/soligraph/internal/analyzer"
	"github.com/soligraph/soligraph/internal/config"
	"github.com/soligraph/soligraph/internal/log"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Analyze Solidity sources and write data-flow graph documents",
	Long: `Analyzes a Solidity file, or every Solidity file under a directory,
and writes the filtered data-flow graph and summary documents into the
configured output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		outputDir, _ := cmd.Flags().GetString("output")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		noSummary, _ := cmd.Flags().GetBool("no-summary")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		return runAnalyze(args[0], mode, outputDir, noCache, noSummary, jsonOutput, verbose)
	},
}

func runAnalyze(path, mode, outputDir string, noCache, noSummary, jsonOutput, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if mode != "" {
		cfg.OutputMode = mode
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if noCache {
		cfg.CacheEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.Default()
	if verbose || cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	opts := analyzer.DefaultOptions()
	opts.WriteSummary = !noSummary

	a := analyzer.New(cfg, opts, logger)
	defer a.Close()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat path: %w", err)
	}

	if info.IsDir() {
		spinner := log.NewProgressSpinner(fmt.Sprintf("Analyzing %s...", path))
		if !jsonOutput {
			spinner.Start()
		}
		report, err := a.AnalyzeDirectory(path)
		if !jsonOutput {
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		return printDirectoryReport(report, jsonOutput)
	}

	result, err := a.AnalyzeFile(path)
	if err != nil {
		return err
	}
	return printResult(result, jsonOutput)
}

func printResult(result *analyzer.Result, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Contract: %s\n", result.Contract)
	fmt.Printf("Solidity version: %s\n", result.SolidityVersion)
	if result.FromCache {
		fmt.Println("Result: cached")
	} else {
		fmt.Printf("AST nodes: %d\n", result.ASTNodes)
		fmt.Printf("Filtered: %d nodes, %d edges (%s reduction)\n",
			result.FilteredNodes, result.FilteredEdges, result.ReductionRate)
	}
	fmt.Printf("Graph: %d nodes, %d edges\n", result.GraphNodes, result.GraphEdges)
	if result.JSONFile != "" {
		fmt.Printf("Graph document: %s\n", result.JSONFile)
	}
	if result.SummaryFile != "" {
		fmt.Printf("Summary: %s\n", result.SummaryFile)
	}
	return nil
}

func printDirectoryReport(report *analyzer.DirectoryReport, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Analyzed %d files: %d succeeded, %d failed\n",
		report.TotalFiles, report.Successful, report.Failed)
	for _, r := range report.Results {
		if r.Success {
			fmt.Printf("  %s: %d nodes, %d edges\n", r.Contract, r.GraphNodes, r.GraphEdges)
		} else {
			fmt.Printf("  %s: FAILED (%s)\n", r.Contract, r.Error)
		}
	}
	if report.ReportFile != "" {
		fmt.Printf("Report: %s\n", report.ReportFile)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().StringP("mode", "m", "", "Output mode (compact, standard, verbose, custom)")
	analyzeCmd.Flags().StringP("output", "o", "", "Output directory")
	analyzeCmd.Flags().Bool("no-cache", false, "Disable the result cache")
	analyzeCmd.Flags().Bool("no-summary", false, "Skip writing per-contract summary files")
	analyzeCmd.Flags().BoolP("json", "j", false, "Print results as JSON")
	analyzeCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
	RootCmd.AddCommand(analyzeCmd)
}
