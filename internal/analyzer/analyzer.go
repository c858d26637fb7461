// Package analyzer orchestrates the full pipeline: parse Solidity
// source, build the typed AST, annotate legacy dialect features, build
// and filter the data-flow graph, and write the serialized outputs.
package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soligraph/soligraph/internal/cache"
	"github.com/soligraph/soligraph/internal/config"
	"github.com/soligraph/soligraph/internal/log"
	"github.com/soligraph/soligraph/internal/scanner"
	"github.com/soligraph/soligraph/internal/solparse"
	"github.com/soligraph/soligraph/pkg/ast"
	"github.com/soligraph/soligraph/pkg/dfg"
	"github.com/soligraph/soligraph/pkg/legacy"
)

// Result summarizes the analysis of one source unit.
type Result struct {
	Contract        string `json:"contract"`
	SourceFile      string `json:"source_file,omitempty"`
	SolidityVersion string `json:"solidity_version"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	ASTNodes        int    `json:"ast_nodes"`
	GraphNodes      int    `json:"dfg_nodes"`
	GraphEdges      int    `json:"dfg_edges"`
	FilteredNodes   int    `json:"filtered_nodes"`
	FilteredEdges   int    `json:"filtered_edges"`
	ReductionRate   string `json:"reduction_rate"`
	JSONFile        string `json:"json_file,omitempty"`
	SummaryFile     string `json:"summary_file,omitempty"`
	FromCache       bool   `json:"from_cache,omitempty"`
}

// DirectoryReport aggregates results from a directory scan.
type DirectoryReport struct {
	Directory  string    `json:"directory"`
	TotalFiles int       `json:"total_files"`
	Successful int       `json:"successful_analyses"`
	Failed     int       `json:"failed_analyses"`
	Results    []*Result `json:"results"`
	ReportFile string    `json:"report_file,omitempty"`
}

// Options configures analyzer behavior beyond the loaded config.
type Options struct {
	// WriteOutputs controls whether graph and summary JSON files are
	// written under the configured output directory.
	WriteOutputs bool

	// WriteSummary controls whether the per-contract summary file is
	// written alongside the graph document.
	WriteSummary bool
}

// DefaultOptions enables all outputs.
func DefaultOptions() Options {
	return Options{WriteOutputs: true, WriteSummary: true}
}

// Analyzer drives the source-to-graph pipeline.
type Analyzer struct {
	cfg       *config.Config
	opts      Options
	logger    log.Logger
	astb      *ast.Builder
	annotator *legacy.Annotator
	store     *cache.Store
}

// New creates an analyzer from the given config. The result cache is
// opened when enabled; a cache failure degrades to uncached analysis.
func New(cfg *config.Config, opts Options, logger log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}

	a := &Analyzer{
		cfg:       cfg,
		opts:      opts,
		logger:    logger,
		astb:      ast.NewBuilder(solparse.New()),
		annotator: legacy.NewAnnotator(),
	}

	if cfg.CacheEnabled {
		store, err := cache.NewStore(cfg.CacheDir, cache.Options{MaxEntries: 1000})
		if err != nil {
			logger.Warn("cache disabled", "error", err)
		} else {
			a.store = store
		}
	}

	return a
}

// Close flushes the result cache.
func (a *Analyzer) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Flush()
}

// AnalyzeSource runs the pipeline over raw source. The fallback name is
// used when no contract declaration is found.
func (a *Analyzer) AnalyzeSource(source []byte, fallbackName string) (*Result, error) {
	gc := a.cfg.GraphConfig()

	cacheKey := ""
	if a.store != nil {
		cacheKey = cache.Key(source, fallbackName, a.cfg.OutputMode, a.cfg.DefaultSolidityVersion)
		if cached, found := a.store.Get(cacheKey); found {
			a.logger.Debug("cache hit", "contract", cached.ContractName)
			return a.resultFromCache(cached)
		}
	}

	root := a.astb.Build(source)
	if root == nil {
		return nil, fmt.Errorf("failed to build syntax tree for %s", fallbackName)
	}

	version := a.astb.Version()
	if version == ast.DefaultVersion && a.cfg.DefaultSolidityVersion != "" {
		version = a.cfg.DefaultSolidityVersion
	}

	name := contractName(root)
	if name == "" {
		name = fallbackName
	}

	if strings.HasPrefix(version, "0.4") {
		a.annotator.Annotate(root)
		version = legacy.Version
		for _, warning := range legacy.ValidateSyntax(string(source)) {
			a.logger.Warn("legacy syntax", "contract", name, "warning", warning)
		}
	}

	astNodes := ast.Count(root)
	graph := dfg.NewBuilder(version).Build(root, name)
	if graph == nil {
		return nil, fmt.Errorf("failed to build graph for %s", name)
	}

	stats := dfg.Prune(graph, gc)
	a.logger.Debug("graph built",
		"contract", name,
		"nodes", stats.KeptNodes,
		"edges", stats.KeptEdges,
		"filtered_nodes", stats.FilteredNodes)

	result := &Result{
		Contract:        name,
		SolidityVersion: version,
		Success:         true,
		ASTNodes:        astNodes,
		GraphNodes:      stats.KeptNodes,
		GraphEdges:      stats.KeptEdges,
		FilteredNodes:   stats.FilteredNodes,
		FilteredEdges:   stats.FilteredEdges,
		ReductionRate:   reductionRate(stats.FilteredNodes, astNodes),
	}

	document, err := dfg.NewSerializer(gc).Marshal(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize graph for %s: %w", name, err)
	}

	if a.opts.WriteOutputs {
		if err := a.writeOutputs(result, graph, document); err != nil {
			return nil, err
		}
	}

	if a.store != nil {
		a.store.Put(cacheKey, &cache.Result{
			ContractName:    name,
			SolidityVersion: version,
			OutputMode:      a.cfg.OutputMode,
			Document:        document,
			NodeCount:       stats.KeptNodes,
			EdgeCount:       stats.KeptEdges,
		})
	}

	return result, nil
}

// AnalyzeFile runs the pipeline over a single .sol file.
func (a *Analyzer) AnalyzeFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result, err := a.AnalyzeSource(source, name)
	if err != nil {
		return nil, err
	}
	result.SourceFile = path
	return result, nil
}

// AnalyzeDirectory analyzes every Solidity file under dir and writes an
// aggregate report into the output directory. Per-file failures are
// recorded in the report, not returned as errors.
func (a *Analyzer) AnalyzeDirectory(dir string) (*DirectoryReport, error) {
	files, err := scanner.Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	report := &DirectoryReport{
		Directory:  dir,
		TotalFiles: len(files),
	}

	for _, file := range files {
		a.logger.Info("analyzing", "file", file.Path)
		result, err := a.AnalyzeFile(file.FullPath)
		if err != nil {
			result = &Result{
				Contract:   strings.TrimSuffix(filepath.Base(file.Path), ".sol"),
				SourceFile: file.FullPath,
				Success:    false,
				Error:      err.Error(),
			}
		}
		report.Results = append(report.Results, result)
		if result.Success {
			report.Successful++
		} else {
			report.Failed++
		}
	}

	if a.opts.WriteOutputs {
		reportPath := filepath.Join(a.cfg.OutputDir, "analysis_report.json")
		if err := a.writeReport(report, reportPath); err != nil {
			return nil, err
		}
		report.ReportFile = reportPath
	}

	return report, nil
}

// writeOutputs writes the graph document and optional summary under
// <output_dir>/dfgs/.
func (a *Analyzer) writeOutputs(result *Result, graph *dfg.Graph, document []byte) error {
	outDir := filepath.Join(a.cfg.OutputDir, "dfgs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jsonPath := filepath.Join(outDir, result.Contract+"_dfg.json")
	if err := os.WriteFile(jsonPath, document, 0644); err != nil {
		return fmt.Errorf("failed to write graph document: %w", err)
	}
	result.JSONFile = jsonPath

	if a.opts.WriteSummary {
		summary := dfg.Summarize(graph)
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		summaryPath := filepath.Join(outDir, result.Contract+"_summary.json")
		if err := os.WriteFile(summaryPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		result.SummaryFile = summaryPath
	}

	return nil
}

// writeReport writes the aggregate directory report.
func (a *Analyzer) writeReport(report *DirectoryReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	totalNodes, totalEdges := 0, 0
	var contracts []string
	for _, r := range report.Results {
		if r.Success {
			totalNodes += r.GraphNodes
			totalEdges += r.GraphEdges
			contracts = append(contracts, r.Contract)
		}
	}

	payload := map[string]any{
		"analysis_summary": map[string]any{
			"total_files":         report.TotalFiles,
			"successful_analyses": report.Successful,
			"failed_analyses":     report.Failed,
			"success_rate":        rate(report.Successful, report.TotalFiles),
		},
		"statistics": map[string]any{
			"total_contracts":            len(contracts),
			"total_dfg_nodes":            totalNodes,
			"total_dfg_edges":            totalEdges,
			"average_nodes_per_contract": rate(totalNodes, len(contracts)),
			"average_edges_per_contract": rate(totalEdges, len(contracts)),
			"analyzed_contracts":         contracts,
		},
		"output_directory": a.cfg.OutputDir,
		"detailed_results": report.Results,
		"generated_at":     time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// resultFromCache reconstructs a Result from a cached entry, rewriting
// the output files so cached runs still produce artifacts.
func (a *Analyzer) resultFromCache(cached *cache.Result) (*Result, error) {
	result := &Result{
		Contract:        cached.ContractName,
		SolidityVersion: cached.SolidityVersion,
		Success:         true,
		GraphNodes:      cached.NodeCount,
		GraphEdges:      cached.EdgeCount,
		FromCache:       true,
	}

	if a.opts.WriteOutputs {
		outDir := filepath.Join(a.cfg.OutputDir, "dfgs")
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		jsonPath := filepath.Join(outDir, cached.ContractName+"_dfg.json")
		if err := os.WriteFile(jsonPath, cached.Document, 0644); err != nil {
			return nil, fmt.Errorf("failed to write graph document: %w", err)
		}
		result.JSONFile = jsonPath
	}

	return result, nil
}

// contractName returns the name of the first contract declaration.
func contractName(root ast.ASTNode) string {
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

func reductionRate(filtered, total int) string {
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("%.1f%%", float64(filtered)/float64(total)*100)
}

func rate(num, den int) float64 {
	if den < 1 {
		den = 1
	}
	return float64(num) / float64(den)
}
