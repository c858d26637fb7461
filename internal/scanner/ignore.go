package scanner

import (
	"path/filepath"
	"strings"
)

// IgnorePattern is a single gitignore-style pattern. Supported syntax:
// leading ! for negation, trailing / for directory patterns, leading /
// to anchor at the scan root, * and ? wildcards, and ** for any number
// of path segments.
type IgnorePattern struct {
	isNegation  bool
	isDirectory bool
	isAbsolute  bool
	segments    []string
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	var p IgnorePattern

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.isAbsolute = true
		pattern = pattern[1:]
	}
	p.segments = strings.Split(pattern, "/")

	return p
}

// IsNegation reports whether this pattern re-includes matched paths.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// Match reports whether path matches this pattern. Directory patterns
// match the directory itself and everything beneath it.
func (p IgnorePattern) Match(path string) bool {
	pathSegments := strings.Split(filepath.ToSlash(path), "/")

	if p.isAbsolute {
		return p.matchFrom(pathSegments)
	}
	for start := 0; start < len(pathSegments); start++ {
		if p.matchFrom(pathSegments[start:]) {
			return true
		}
	}
	return false
}

// matchFrom matches the pattern segments against a path suffix starting
// at its first segment.
func (p IgnorePattern) matchFrom(pathSegments []string) bool {
	return matchSegments(p.segments, pathSegments, p.isDirectory)
}

func matchSegments(patternSegs, pathSegs []string, prefixOK bool) bool {
	if len(patternSegs) == 0 {
		// A directory pattern consumes any remaining path below it; a
		// file pattern must consume the whole path.
		return prefixOK || len(pathSegs) == 0
	}

	if patternSegs[0] == "**" {
		if len(patternSegs) == 1 {
			return true
		}
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(patternSegs[1:], pathSegs[i:], prefixOK) {
				return true
			}
		}
		return false
	}

	if len(pathSegs) == 0 {
		return false
	}
	if !matchWildcard(patternSegs[0], pathSegs[0]) {
		return false
	}
	return matchSegments(patternSegs[1:], pathSegs[1:], prefixOK)
}

// matchWildcard matches a single segment supporting * and ? wildcards.
func matchWildcard(pattern, segment string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return strings.EqualFold(pattern, segment)
	}

	// Backtracking wildcard match, case-insensitive.
	pattern = strings.ToLower(pattern)
	segment = strings.ToLower(segment)

	pi, si := 0, 0
	starPi, starSi := -1, 0
	for si < len(segment) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == segment[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			starPi, starSi = pi, si
			pi++
		case starPi >= 0:
			starSi++
			pi, si = starPi+1, starSi
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
