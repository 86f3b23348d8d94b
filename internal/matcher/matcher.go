// Package matcher implements glob matching of repository-relative paths
// against trigger patterns. `*` matches within one path segment, `**`
// matches zero or more whole segments, and `?` matches a single character.
package matcher

import (
	"path"
	"strings"
)

// Matches reports whether relPath satisfies pattern. relPath is normalized
// to forward slashes and cleaned first; paths that are absolute or escape
// upward out of the pattern's base directory never match, regardless of
// pattern.
func Matches(relPath, pattern string) bool {
	normalized, ok := Normalize(relPath)
	if !ok {
		return false
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(normalized, "/"))
}

// Normalize converts p to a cleaned, slash-separated relative path. The
// second return value is false when p is absolute or, after cleaning,
// begins with a parent-directory traversal.
func Normalize(p string) (string, bool) {
	// Always treat backslashes as separators; filepath.ToSlash only
	// rewrites the platform separator, so it is a no-op on Unix even for
	// Windows-style input.
	p = strings.ReplaceAll(p, `\`, "/")
	if path.IsAbs(p) {
		return "", false
	}
	// Windows volume paths are absolute too, even after ToSlash.
	if len(p) >= 2 && p[1] == ':' {
		return "", false
	}

	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}

	return cleaned, true
}

// matchSegments matches pattern segments against path segments, with `**`
// consuming zero or more path segments.
func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}

	if pattern[0] == "**" {
		// Zero segments consumed.
		if matchSegments(pattern[1:], segments) {
			return true
		}
		if len(segments) == 0 {
			return false
		}
		// Consume one segment and keep the `**` active.
		return matchSegments(pattern, segments[1:])
	}

	if len(segments) == 0 {
		return false
	}
	if !matchSegment(pattern[0], segments[0]) {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}

// matchSegment implements glob matching within a single segment using an
// iterative algorithm: * matches zero or more characters, ? matches exactly
// one. O(n) space and O(n*m) worst-case time with early termination.
func matchSegment(pattern, str string) bool {
	pi, si := 0, 0
	starIdx, matchIdx := -1, 0

	for si < len(str) {
		if pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == str[si]) {
			pi++
			si++
		} else if pi < len(pattern) && pattern[pi] == '*' {
			starIdx = pi
			matchIdx = si
			pi++
		} else if starIdx != -1 {
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		} else {
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
