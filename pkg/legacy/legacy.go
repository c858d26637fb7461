// Package legacy normalizes Solidity 0.4.x sources onto the modern AST
// shape: same-name constructors, the constant mutability alias, default
// visibilities, and deprecated keywords are detected and recorded as node
// metadata so downstream analysis sees one dialect.
package legacy

import (
	"regexp"
	"strings"

	"github.com/soligraph/soligraph/pkg/ast"
)

// Version is the dialect tag stamped on annotated nodes.
const Version = "0.4.x"

// legacyGlobals are builtins whose 0.4.x semantics differ from later
// versions. Fixed order keeps metadata deterministic.
var legacyGlobals = []string{"now", "msg", "block", "tx", "this", "super"}

var (
	globalPatterns = buildWordPatterns(legacyGlobals)
	uintSizedRe    = regexp.MustCompile(`\buint\d*\b`)
	intSizedRe     = regexp.MustCompile(`\bint\d*\b`)
	bytesSizedRe   = regexp.MustCompile(`\bbytes\d+\b`)
)

func buildWordPatterns(words []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(words))
	for _, w := range words {
		patterns[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return patterns
}

// Annotator applies the 0.4.x dialect rules to an AST.
type Annotator struct{}

// NewAnnotator returns a ready Annotator.
func NewAnnotator() *Annotator { return &Annotator{} }

// Annotate walks root and rewrites every node in place: dialect metadata is
// stamped, legacy constructors are promoted, the constant mutability alias
// resolves to view, and unspecified visibilities get their 0.4.x defaults.
func (a *Annotator) Annotate(root ast.ASTNode) {
	ast.Walk(root, func(n ast.ASTNode) bool {
		a.annotateNode(n)
		return true
	})
}

func (a *Annotator) annotateNode(n ast.ASTNode) {
	base := n.Base()
	if base.Metadata == nil {
		base.Metadata = map[string]any{}
	}
	base.Metadata["solidity_version"] = Version
	base.Metadata["is_legacy"] = true

	switch node := n.(type) {
	case *ast.Function:
		a.annotateFunction(node)
	case *ast.Variable:
		a.annotateVariable(node)
	}

	if base.Text == "" {
		return
	}
	if globals := LegacyGlobals(base.Text); len(globals) > 0 {
		base.Metadata["legacy_global_vars"] = globals
	}
	if strings.Contains(base.Text, "now") {
		base.Metadata["uses_now_keyword"] = true
	}
	if strings.Contains(base.Text, "suicide") {
		base.Metadata["uses_suicide_keyword"] = true
	}
	if callSyntax := LegacyCallSyntax(base.Text); len(callSyntax) > 0 {
		base.Metadata["legacy_call_syntax"] = callSyntax
	}
	if typeSyntax := LegacyTypeSyntax(base.Text); len(typeSyntax) > 0 {
		base.Metadata["legacy_type_syntax"] = typeSyntax
	}
}

func (a *Annotator) annotateFunction(fn *ast.Function) {
	if parent := fn.Parent; parent != nil {
		if IsLegacyConstructor(fn, parent.Base().Name) {
			fn.Metadata["is_legacy_constructor"] = true
			fn.IsConstructor = true
		}
	}

	// In 0.4.x "constant" on a function means "view".
	if fn.StateMutability == ast.MutabilityConstant {
		fn.Metadata["legacy_state_mutability"] = string(ast.MutabilityView)
		fn.StateMutability = ast.MutabilityView
	}

	if fn.Visibility == "" {
		fn.Metadata["default_visibility"] = string(ast.VisibilityPublic)
		fn.Visibility = ast.VisibilityPublic
	}
}

func (a *Annotator) annotateVariable(v *ast.Variable) {
	if hasConstantModifier(v) {
		v.Metadata["has_constant_modifier"] = true
		v.IsConstant = true
	}
	if v.IsStateVariable && v.Visibility == "" {
		v.Metadata["default_visibility"] = string(ast.VisibilityInternal)
		v.Visibility = ast.VisibilityInternal
	}
}

func hasConstantModifier(v *ast.Variable) bool {
	if v.IsConstant {
		return true
	}
	return strings.Contains(v.Text, "constant")
}

// IsLegacyConstructor reports whether fn is a 0.4.x-style constructor: a
// plain function sharing its contract's name.
func IsLegacyConstructor(fn *ast.Function, contractName string) bool {
	if fn == nil || fn.Name == "" || contractName == "" {
		return false
	}
	return fn.Name == contractName && !fn.IsConstructor
}

// IdentifyConstructor finds the constructor among a contract's direct
// members. A constructor-keyword definition wins over a same-name function.
func IdentifyConstructor(contract *ast.Contract) *ast.Function {
	if contract == nil {
		return nil
	}
	var legacy *ast.Function
	for _, child := range contract.Children {
		fn, ok := child.(*ast.Function)
		if !ok {
			continue
		}
		if fn.IsConstructor {
			return fn
		}
		if IsLegacyConstructor(fn, contract.Name) {
			legacy = fn
		}
	}
	return legacy
}

// LegacyGlobals returns the 0.4.x builtins referenced in text, in a fixed
// order.
func LegacyGlobals(text string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, name := range legacyGlobals {
		if globalPatterns[name].MatchString(text) {
			found = append(found, name)
		}
	}
	return found
}

// LegacyCallSyntax flags 0.4.x value-transfer call forms present in text.
func LegacyCallSyntax(text string) map[string]bool {
	features := map[string]bool{}
	if strings.Contains(text, ".call.value(") {
		features["call_value_syntax"] = true
	}
	if strings.Contains(text, ".transfer(") {
		features["transfer_syntax"] = true
	}
	if strings.Contains(text, ".send(") {
		features["send_syntax"] = true
	}
	if strings.Contains(text, ".delegatecall(") {
		features["delegatecall_syntax"] = true
	}
	if len(features) == 0 {
		return nil
	}
	return features
}

// LegacyTypeSyntax flags 0.4.x type spellings present in text.
func LegacyTypeSyntax(text string) map[string]bool {
	features := map[string]bool{}
	if strings.Contains(text, "var ") {
		features["var_keyword"] = true
	}
	if uintSizedRe.MatchString(text) {
		features["uint_sized"] = true
	}
	if intSizedRe.MatchString(text) {
		features["int_sized"] = true
	}
	if bytesSizedRe.MatchString(text) {
		features["bytes_sized"] = true
	}
	if len(features) == 0 {
		return nil
	}
	return features
}

// ValidateSyntax reports deprecation and compatibility warnings for a 0.4.x
// source fragment.
func ValidateSyntax(text string) []string {
	if text == "" {
		return nil
	}
	var warnings []string
	if strings.Contains(text, "suicide(") {
		warnings = append(warnings, "suicide() is deprecated, use selfdestruct() instead")
	}
	if strings.Contains(text, "var ") {
		warnings = append(warnings, "var keyword is deprecated, specify explicit type instead")
	}
	if strings.Contains(text, "callcode(") {
		warnings = append(warnings, "callcode() is deprecated, use delegatecall() instead")
	}
	if strings.Contains(text, "constructor(") {
		warnings = append(warnings, "constructor keyword not available in 0.4.x, use a contract-name function instead")
	}
	return warnings
}
