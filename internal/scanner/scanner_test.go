package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func scannedPaths(t *testing.T, root string) []string {
	t.Helper()
	files, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestScanFindsSolidityFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Token.sol":           "contract Token {}",
		"lib/Math.sol":        "library Math {}",
		"README.md":           "docs",
		"scripts/deploy.js":   "// js",
		"contracts/Vault.sol": "contract Vault {}",
	})

	got := scannedPaths(t, root)
	want := []string{"Token.sol", "contracts/Vault.sol", "lib/Math.sol"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanSkipsToolchainDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Token.sol":                    "contract Token {}",
		"node_modules/dep/Dep.sol":     "contract Dep {}",
		"artifacts/Token.sol":          "contract Cached {}",
		"cache/solidity-files/C.sol":   "contract C {}",
		"out/Token.sol/Token.json.sol": "contract X {}",
	})

	got := scannedPaths(t, root)
	if len(got) != 1 || got[0] != "Token.sol" {
		t.Errorf("paths = %v, want only Token.sol", got)
	}
}

func TestScanSkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Token.sol":          "contract Token {}",
		".hidden/Secret.sol": "contract Secret {}",
		".Dot.sol":           "contract Dot {}",
	})

	got := scannedPaths(t, root)
	if len(got) != 1 || got[0] != "Token.sol" {
		t.Errorf("paths = %v, want only Token.sol", got)
	}
}

func TestScanHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".soligraphignore":    "mocks/\n*Test.sol\n!KeepTest.sol\n",
		"Token.sol":           "contract Token {}",
		"TokenTest.sol":       "contract TokenTest {}",
		"KeepTest.sol":        "contract KeepTest {}",
		"mocks/MockOrcl.sol":  "contract MockOrcl {}",
		"deep/OtherTest.sol":  "contract OtherTest {}",
		"deep/Untouched.sol":  "contract Untouched {}",
	})

	got := scannedPaths(t, root)
	want := []string{"KeepTest.sol", "Token.sol", "deep/Untouched.sol"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestIgnorePatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"mocks/", "mocks/Mock.sol", true},
		{"mocks/", "src/mocks/Mock.sol", true},
		{"/mocks/", "src/mocks/Mock.sol", false},
		{"/mocks/", "mocks/Mock.sol", true},
		{"*.sol", "Token.sol", true},
		{"*Test.sol", "TokenTest.sol", true},
		{"*Test.sol", "Token.sol", false},
		{"**/legacy/*.sol", "a/b/legacy/Old.sol", true},
		{"?oken.sol", "Token.sol", true},
		{"Token.sol", "token.SOL", true}, // case-insensitive
		{"Token.sol", "Vault.sol", false},
	}
	for _, tt := range tests {
		p := ParseIgnorePattern(tt.pattern)
		if got := p.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestIgnorePatternNegation(t *testing.T) {
	patterns := []IgnorePattern{
		ParseIgnorePattern("*.sol"),
		ParseIgnorePattern("!Keep.sol"),
	}
	if !matchesIgnorePatterns("Drop.sol", patterns) {
		t.Error("Drop.sol should be ignored")
	}
	if matchesIgnorePatterns("Keep.sol", patterns) {
		t.Error("Keep.sol should be re-included by negation")
	}
}
