package core

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleSpec is one linkRewriteRules entry as written in the config.
// Valid is false when match or replace was missing or not a string.
type RuleSpec struct {
	Match   string
	Replace string
	Flags   string
	Valid   bool
}

// RewriteRule is a compiled custom substitution.
type RewriteRule struct {
	re       *regexp.Regexp
	template string // Go expansion syntax
	global   bool
	source   string
}

// String returns the rule pattern as configured.
func (r RewriteRule) String() string { return r.source }

// CompileRules compiles specs in order. Invalid specs are dropped; their
// reasons are returned alongside for logging.
func CompileRules(specs []RuleSpec) ([]RewriteRule, []error) {
	var rules []RewriteRule
	var dropped []error
	for i, spec := range specs {
		rule, err := compileRule(spec)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("linkRewriteRules[%d]: %w", i, err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, dropped
}

func compileRule(spec RuleSpec) (RewriteRule, error) {
	if !spec.Valid {
		return RewriteRule{}, fmt.Errorf("match and replace must be strings")
	}
	flags := spec.Flags
	if flags == "" {
		flags = "g"
	}
	prefix, global, err := translateFlags(flags)
	if err != nil {
		return RewriteRule{}, err
	}
	re, err := regexp.Compile(prefix + spec.Match)
	if err != nil {
		return RewriteRule{}, err
	}
	return RewriteRule{
		re:       re,
		template: translateTemplate(spec.Replace, re.NumSubexp(), hasNamedGroups(re)),
		global:   global,
		source:   spec.Match,
	}, nil
}

// translateFlags maps regex flag letters to an inline RE2 flag group.
func translateFlags(flags string) (string, bool, error) {
	seen := make(map[rune]bool)
	global := false
	var inline strings.Builder
	for _, f := range flags {
		if seen[f] {
			return "", false, fmt.Errorf("duplicate flag %q", f)
		}
		seen[f] = true
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'u':
		default:
			return "", false, fmt.Errorf("unsupported flag %q", f)
		}
	}
	if inline.Len() == 0 {
		return "", global, nil
	}
	return "(?" + inline.String() + ")", global, nil
}

func hasNamedGroups(re *regexp.Regexp) bool {
	for _, name := range re.SubexpNames() {
		if name != "" {
			return true
		}
	}
	return false
}

// translateTemplate rewrites "$1", "$<name>", "$&" and "$$" into the
// "${1}", "${name}", "${0}" and "$$" forms understood by Regexp.Expand.
// Group numbers above groups, "$<name>" without named groups and any other
// "$" are literal.
func translateTemplate(tmpl string, groups int, named bool) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(tmpl) {
			b.WriteString("$$")
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case isDigit(next):
			n, width := groupRef(tmpl[i+1:], groups)
			if width == 0 {
				b.WriteString("$$")
				continue
			}
			fmt.Fprintf(&b, "${%d}", n)
			i += width
		case next == '<' && named:
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString("${" + tmpl[i+2:i+2+end] + "}")
			i += 2 + end
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

// groupRef reads a one or two digit group number from the start of s,
// preferring two digits when that group exists. width is 0 when neither does.
func groupRef(s string, groups int) (n, width int) {
	if len(s) >= 2 && isDigit(s[1]) {
		if two := int(s[0]-'0')*10 + int(s[1]-'0'); two >= 1 && two <= groups {
			return two, 2
		}
	}
	if one := int(s[0] - '0'); one >= 1 && one <= groups {
		return one, 1
	}
	return 0, 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Apply runs the substitution over text.
func (r RewriteRule) Apply(text string) string {
	if r.global {
		return r.re.ReplaceAllString(text, r.template)
	}
	loc := r.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	var dst []byte
	dst = r.re.ExpandString(dst, r.template, text, loc)
	return text[:loc[0]] + string(dst) + text[loc[1]:]
}

// ApplyRules applies rules in order.
func ApplyRules(text string, rules []RewriteRule) string {
	for _, r := range rules {
		text = r.Apply(text)
	}
	return text
}
