package dfg

import (
	"strings"
	"testing"
)

func TestPriorityOf(t *testing.T) {
	tests := []struct {
		name     string
		nodeType string
		nodeText string
		want     Priority
	}{
		{"contract", "contract", "", PriorityCritical},
		{"interface", "interface", "", PriorityCritical},
		{"state variable", "state_variable", "", PriorityCritical},
		{"constructor", "constructor_function", "", PriorityCritical},
		{"modifier", "modifier", "", PriorityCritical},
		{"local variable", "local_variable", "", PriorityImportant},
		{"parameter", "parameter", "", PriorityImportant},
		{"expression", "expression", "", PriorityImportant},
		{"return statement", "return_statement", "", PriorityImportant},
		{"number literal", "number_literal", "", PriorityAuxiliary},
		{"block", "block", "", PriorityAuxiliary},
		{"type keyword identifier", "identifier", "uint256", PriorityDiscard},
		{"reserved word identifier", "identifier", "require", PriorityDiscard},
		{"operator identifier", "identifier", "+", PriorityDiscard},
		{"punctuation identifier", "identifier", ";", PriorityDiscard},
		{"case-insensitive keyword", "identifier", "  PAYABLE  ", PriorityDiscard},
		{"plain reference identifier", "identifier", "balance", PriorityImportant},
		{"unknown type", "pragma_directive", "", PriorityAuxiliary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriorityOf(tt.nodeType, tt.nodeText); got != tt.want {
				t.Errorf("PriorityOf(%q, %q) = %s, want %s", tt.nodeType, tt.nodeText, got, tt.want)
			}
		})
	}
}

func TestShouldKeepThresholds(t *testing.T) {
	tests := []struct {
		name     string
		nodeType string
		nodeText string
		cfg      Config
		want     bool
	}{
		{"critical in compact", "contract", "", Compact(), true},
		{"important dropped in compact", "expression", "", Compact(), false},
		{"important in standard", "expression", "", Standard(), true},
		{"auxiliary dropped in standard", "block", "", Standard(), false},
		{"auxiliary in verbose", "block", "", Verbose(), true},
		{"literal dropped in compact", "number_literal", "1", Compact(), false},
		{"literal kept in standard", "number_literal", "1", Standard(), true},
		{"keyword identifier in standard", "identifier", "require", Standard(), false},
		{"reference identifier in standard", "identifier", "balance", Standard(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldKeep(tt.nodeType, "", tt.nodeText, tt.cfg); got != tt.want {
				t.Errorf("ShouldKeep(%q, %q) = %v, want %v", tt.nodeType, tt.nodeText, got, tt.want)
			}
		})
	}
}

func TestShouldKeepIncludeAndSkipLists(t *testing.T) {
	cfg := Standard()
	cfg.IncludeNodeTypes = map[string]bool{"contract": true}
	if ShouldKeep("function", "", "", cfg) {
		t.Error("include list must exclude non-members")
	}
	if !ShouldKeep("contract", "", "", cfg) {
		t.Error("include list member must pass")
	}

	cfg = Standard()
	cfg.SkipNodeTypes = map[string]bool{"contract": true}
	if ShouldKeep("contract", "", "", cfg) {
		t.Error("skip list must veto even critical types")
	}
}

func TestShouldKeepIdentifierToggles(t *testing.T) {
	cfg := Standard()
	cfg.MinNodePriority = PriorityDiscard // isolate the toggles

	toggles := []struct {
		name    string
		text    string
		disable func(*Config)
	}{
		{"keywords", "require", func(c *Config) { c.SkipKeywords = false }},
		{"type names", "uint256", func(c *Config) { c.SkipTypeNames = false; c.SkipKeywords = false }},
		{"operators", "+", func(c *Config) { c.SkipOperators = false }},
		{"punctuation", ";", func(c *Config) { c.SkipPunctuation = false }},
	}
	for _, tt := range toggles {
		t.Run(tt.name, func(t *testing.T) {
			if ShouldKeep("identifier", "", tt.text, cfg) {
				t.Errorf("enabled toggle should veto %q", tt.text)
			}
			relaxed := cfg
			tt.disable(&relaxed)
			if !ShouldKeep("identifier", "", tt.text, relaxed) {
				t.Errorf("disabled toggle should keep %q", tt.text)
			}
		})
	}
}

func TestModeMonotonicity(t *testing.T) {
	g := buildGraph(t, scenarioSource, "C")

	compact, standard, verbose := Compact(), Standard(), Verbose()
	for _, node := range g.NodesInOrder() {
		keptCompact := ShouldKeep(node.Type, node.Name, node.Text(), compact)
		keptStandard := ShouldKeep(node.Type, node.Name, node.Text(), standard)
		keptVerbose := ShouldKeep(node.Type, node.Name, node.Text(), verbose)

		if keptCompact && !keptStandard {
			t.Errorf("node %s (%s) kept by compact but not standard", node.ID, node.Type)
		}
		if keptStandard && !keptVerbose {
			t.Errorf("node %s (%s) kept by standard but not verbose", node.ID, node.Type)
		}
	}
}

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"compact", ModeCompact},
		{"VERBOSE", ModeVerbose},
		{"custom", ModeCustom},
		{"standard", ModeStandard},
		{"bogus", ModeStandard},
	}
	for _, tt := range tests {
		if got := ParseOutputMode(tt.in); got != tt.want {
			t.Errorf("ParseOutputMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPruneParity(t *testing.T) {
	for _, mode := range []Config{Compact(), Standard(), Verbose()} {
		g := buildGraph(t, scenarioSource, "C")
		total := len(g.Nodes)

		stats := Prune(g, mode)

		if stats.TotalNodes != total {
			t.Errorf("%s: total = %d, want %d", mode.OutputMode, stats.TotalNodes, total)
		}
		if stats.KeptNodes+stats.FilteredNodes != stats.TotalNodes {
			t.Errorf("%s: kept %d + filtered %d != total %d",
				mode.OutputMode, stats.KeptNodes, stats.FilteredNodes, stats.TotalNodes)
		}
		if stats.KeptEdges+stats.FilteredEdges != stats.TotalEdges {
			t.Errorf("%s: edge parity violated", mode.OutputMode)
		}
		if len(g.Nodes) != stats.KeptNodes {
			t.Errorf("%s: graph has %d nodes, stats say %d", mode.OutputMode, len(g.Nodes), stats.KeptNodes)
		}
	}
}

func TestPruneDropsEdgesOfRemovedNodes(t *testing.T) {
	g := buildGraph(t, scenarioSource, "C")
	Prune(g, Compact())

	for _, e := range g.EdgesInOrder() {
		if g.Node(e.Source) == nil && !isSyntheticEndpoint(e.Source) {
			t.Errorf("edge %s has dangling non-synthetic source %s", e.ID, e.Source)
		}
		if g.Node(e.Target) == nil && !isSyntheticEndpoint(e.Target) {
			t.Errorf("edge %s has dangling non-synthetic target %s", e.ID, e.Target)
		}
	}
}

func isSyntheticEndpoint(id string) bool {
	return strings.HasPrefix(id, "contract_") || strings.HasPrefix(id, "init_")
}

func TestPruneKeepsSyntheticSentinelEdges(t *testing.T) {
	g := buildGraph(t, `contract A is Base { uint x = 1; }`, "A")
	Prune(g, Compact())

	baseEdge, initEdge := false, false
	for _, e := range g.EdgesInOrder() {
		if e.Target == "contract_Base" {
			baseEdge = true
		}
		if strings.HasPrefix(e.Target, "init_") {
			initEdge = true
		}
	}
	if !baseEdge {
		t.Error("compact pruning dropped the base-contract sentinel edge")
	}
	if !initEdge {
		t.Error("compact pruning dropped the initializer sentinel edge")
	}
}
