package core

import (
	"runtime"
	"strings"

	"github.com/gobwas/glob"
)

// IgnoreOptions controls how ignore patterns are matched.
type IgnoreOptions struct {
	CaseInsensitive bool
}

// DefaultIgnoreOptions matches case-insensitively only on case-insensitive hosts.
func DefaultIgnoreOptions() IgnoreOptions {
	return IgnoreOptions{CaseInsensitive: runtime.GOOS == "windows"}
}

type ignoreRule struct {
	pattern string
	globs   []glob.Glob
	negate  bool
}

// IgnoreMatcher holds compiled ignore patterns in configured order.
type IgnoreMatcher struct {
	rules  []ignoreRule
	nocase bool
}

// CompileIgnores compiles glob patterns. '*' and '?' stay within a path segment,
// '**' crosses segments and "**/" also matches zero directories. A "#" pattern
// is a comment, a leading "!" negates. Patterns that do not compile match nothing.
func CompileIgnores(patterns []string, opts IgnoreOptions) *IgnoreMatcher {
	m := &IgnoreMatcher{nocase: opts.CaseInsensitive}
	for _, p := range patterns {
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		negate := false
		body := p
		for strings.HasPrefix(body, "!") {
			negate = !negate
			body = body[1:]
		}
		if m.nocase {
			body = strings.ToLower(body)
		}
		globs, err := compileGlobstar(body)
		if err != nil {
			continue
		}
		m.rules = append(m.rules, ignoreRule{pattern: p, globs: globs, negate: negate})
	}
	return m
}

// compileGlobstar compiles body plus every variant with some "**/" segments
// removed, since the glob engine needs the literal '/' after "**".
func compileGlobstar(body string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, variant := range globstarVariants(body) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// globstarVariants expands each "**/" that starts a segment into itself and nothing.
// "a/**/b/**/c" yields four patterns.
func globstarVariants(body string) []string {
	idx := -1
	for i := 0; i+3 <= len(body); i++ {
		if body[i:i+3] == "**/" && (i == 0 || body[i-1] == '/') {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []string{body}
	}
	head := body[:idx]
	var out []string
	for _, rest := range globstarVariants(body[idx+3:]) {
		out = append(out, head+"**/"+rest, head+rest)
	}
	return out
}

// Len returns the number of usable patterns.
func (m *IgnoreMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Match reports whether any pattern matches relPath, either bare or with a
// trailing slash so directory-style patterns apply.
func (m *IgnoreMatcher) Match(relPath string) bool {
	if m == nil {
		return false
	}
	unixRel := NormalizePath(relPath)
	if m.nocase {
		unixRel = strings.ToLower(unixRel)
	}
	for _, r := range m.rules {
		if r.match(unixRel) {
			return true
		}
	}
	return false
}

// match applies negation after both path forms are tried, so "!*.md" keeps
// "a.md" even though "a.md/" does not match "*.md".
func (r ignoreRule) match(s string) bool {
	return r.hit(s) != r.negate
}

func (r ignoreRule) hit(s string) bool {
	for _, g := range r.globs {
		if g.Match(s) || g.Match(s+"/") {
			return true
		}
	}
	return false
}

// filterIgnored drops files whose relative path matches the matcher.
func filterIgnored(files []SourceFile, m *IgnoreMatcher) []SourceFile {
	if m.Len() == 0 {
		return files
	}
	out := make([]SourceFile, 0, len(files))
	for _, f := range files {
		if m.Match(f.RelPath) {
			continue
		}
		out = append(out, f)
	}
	return out
}
