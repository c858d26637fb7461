package dfg

import "strings"

// OutputMode selects a canned filtering preset.
type OutputMode string

const (
	ModeCompact  OutputMode = "compact"
	ModeStandard OutputMode = "standard"
	ModeVerbose  OutputMode = "verbose"
	ModeCustom   OutputMode = "custom"
)

// ParseOutputMode maps a mode name to its OutputMode, defaulting to
// standard for unknown names.
func ParseOutputMode(name string) OutputMode {
	switch OutputMode(strings.ToLower(name)) {
	case ModeCompact:
		return ModeCompact
	case ModeVerbose:
		return ModeVerbose
	case ModeCustom:
		return ModeCustom
	}
	return ModeStandard
}

// Priority is a node retention tier, ordered Discard < Auxiliary <
// Important < Critical.
type Priority int

const (
	PriorityDiscard Priority = iota + 1
	PriorityAuxiliary
	PriorityImportant
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityImportant:
		return "important"
	case PriorityAuxiliary:
		return "auxiliary"
	case PriorityDiscard:
		return "discard"
	}
	return "unknown"
}

// criticalNodeTypes must always survive filtering.
var criticalNodeTypes = map[string]bool{
	"contract":             true,
	"interface":            true,
	"library":              true,
	"function":             true,
	"constructor_function": true,
	"modifier":             true,
	"state_variable":       true,
}

// importantNodeTypes are kept by default.
var importantNodeTypes = map[string]bool{
	"local_variable":     true,
	"parameter":          true,
	"expression":         true,
	"if_statement":       true,
	"for_statement":      true,
	"while_statement":    true,
	"return_statement":   true,
	"struct_declaration": true,
	"enum_declaration":   true,
	"event_definition":   true,
}

// auxiliaryNodeTypes are kept only in verbose output.
var auxiliaryNodeTypes = map[string]bool{
	"number_literal":       true,
	"string_literal":       true,
	"boolean_literal":      true,
	"expression_statement": true,
	"block":                true,
}

// keywordPatterns flags identifier nodes that are really reserved words.
var keywordPatterns = map[string]bool{
	"pragma": true, "solidity": true, "contract": true, "function": true,
	"public": true, "private": true, "internal": true, "external": true,
	"pure": true, "view": true, "payable": true, "constant": true,
	"memory": true, "storage": true, "calldata": true, "returns": true,
	"return": true, "if": true, "else": true, "for": true, "while": true,
	"do": true, "break": true, "continue": true, "throw": true,
	"require": true, "assert": true, "revert": true, "emit": true,
	"new": true, "delete": true, "struct": true, "enum": true,
	"mapping": true, "address": true, "uint": true, "int": true,
	"bool": true, "string": true, "bytes": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uint128": true, "uint256": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"int128": true, "int256": true,
	"bytes1": true, "bytes2": true, "bytes4": true, "bytes8": true,
	"bytes16": true, "bytes32": true,
}

// typeKeywords flags identifier nodes that are built-in type names.
var typeKeywords = map[string]bool{
	"uint": true, "int": true, "address": true, "bool": true,
	"string": true, "bytes": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uint128": true, "uint256": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"int128": true, "int256": true,
	"bytes1": true, "bytes2": true, "bytes4": true, "bytes8": true,
	"bytes16": true, "bytes32": true,
	"mapping": true, "struct": true, "enum": true,
}

// operatorSymbols flags identifier nodes that are operator tokens.
var operatorSymbols = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true, "<<": true, ">>": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"++": true, "--": true,
	"?": true, ":": true,
}

// punctuationSymbols flags identifier nodes that are punctuation tokens.
var punctuationSymbols = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
	";": true, ",": true, ".": true, "=>": true,
}

// Config tunes node/edge filtering and serialization detail. The zero
// value is not useful; start from one of the mode constructors.
type Config struct {
	OutputMode OutputMode

	// Node filtering.
	SkipNodeTypes    map[string]bool
	IncludeNodeTypes map[string]bool
	SkipKeywords     bool
	SkipTypeNames    bool
	SkipOperators    bool
	SkipPunctuation  bool
	SkipLiteralNodes bool
	MinNodePriority  Priority

	// Serialization detail.
	IncludeNodeText    bool
	TextMaxLength      int
	IncludeASTMetadata bool

	// Limits.
	MaxNodes int
	MaxEdges int
}

// Compact keeps only critical nodes with no text payload.
func Compact() Config {
	cfg := Standard()
	cfg.OutputMode = ModeCompact
	cfg.SkipLiteralNodes = true
	cfg.MinNodePriority = PriorityCritical
	return cfg
}

// Standard is the default balanced preset.
func Standard() Config {
	return Config{
		OutputMode:      ModeStandard,
		SkipKeywords:    true,
		SkipTypeNames:   true,
		SkipOperators:   true,
		SkipPunctuation: true,
		MinNodePriority: PriorityImportant,
		TextMaxLength:   100,
		MaxNodes:        10000,
		MaxEdges:        20000,
	}
}

// Verbose keeps everything down to the auxiliary tier and includes text
// and AST metadata.
func Verbose() Config {
	cfg := Standard()
	cfg.OutputMode = ModeVerbose
	cfg.SkipKeywords = false
	cfg.SkipTypeNames = false
	cfg.SkipOperators = false
	cfg.SkipPunctuation = false
	cfg.MinNodePriority = PriorityAuxiliary
	cfg.IncludeNodeText = true
	cfg.IncludeASTMetadata = true
	return cfg
}

// ForMode returns the preset for a mode; custom starts from standard for
// the caller to adjust.
func ForMode(mode OutputMode) Config {
	switch mode {
	case ModeCompact:
		return Compact()
	case ModeVerbose:
		return Verbose()
	case ModeCustom:
		cfg := Standard()
		cfg.OutputMode = ModeCustom
		return cfg
	}
	return Standard()
}

// PriorityOf classifies a node into a retention tier. Closed type sets
// are checked first; identifier nodes then fall through vocabulary
// membership (keywords, type names, operators, punctuation), which
// discards them. An identifier outside every vocabulary is treated as a
// variable reference and ranks important.
func PriorityOf(nodeType, nodeText string) Priority {
	switch {
	case criticalNodeTypes[nodeType]:
		return PriorityCritical
	case importantNodeTypes[nodeType]:
		return PriorityImportant
	case auxiliaryNodeTypes[nodeType]:
		return PriorityAuxiliary
	}

	if nodeType == "identifier" {
		text := strings.ToLower(strings.TrimSpace(nodeText))
		if keywordPatterns[text] || typeKeywords[text] || operatorSymbols[text] || punctuationSymbols[text] {
			return PriorityDiscard
		}
		return PriorityImportant
	}

	return PriorityAuxiliary
}

// ShouldKeep decides node retention under cfg. Every check must pass:
// include list membership, skip list absence, the priority threshold,
// the per-vocabulary identifier toggles, and the literal toggle.
func ShouldKeep(nodeType, nodeName, nodeText string, cfg Config) bool {
	if len(cfg.IncludeNodeTypes) > 0 && !cfg.IncludeNodeTypes[nodeType] {
		return false
	}
	if cfg.SkipNodeTypes[nodeType] {
		return false
	}

	if PriorityOf(nodeType, nodeText) < cfg.MinNodePriority {
		return false
	}

	if nodeType == "identifier" && nodeText != "" {
		text := strings.ToLower(strings.TrimSpace(nodeText))
		if cfg.SkipKeywords && keywordPatterns[text] {
			return false
		}
		if cfg.SkipTypeNames && typeKeywords[text] {
			return false
		}
		if cfg.SkipOperators && operatorSymbols[text] {
			return false
		}
		if cfg.SkipPunctuation && punctuationSymbols[text] {
			return false
		}
	}

	if cfg.SkipLiteralNodes && strings.HasSuffix(nodeType, "_literal") {
		return false
	}

	return true
}
