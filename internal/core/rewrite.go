package core

import (
	"strings"
)

// UnresolvedRef is an asset reference that no attachment matched. The target
// is written out unchanged.
type UnresolvedRef struct {
	SourcePath string
	Syntax     string
	Target     string
}

// RewriteResult is the output of rewriting one document.
type RewriteResult struct {
	Text       string
	Unresolved []UnresolvedRef
}

// Rewriter rewrites wikilinks and inline links of markdown documents.
// Matching is pattern based: link-like text inside code spans is rewritten too.
type Rewriter struct {
	resolver AttachmentResolver
	rules    []RewriteRule
}

// NewRewriter returns a Rewriter resolving assets through resolver and
// applying rules after the built-in passes.
func NewRewriter(resolver AttachmentResolver, rules []RewriteRule) *Rewriter {
	return &Rewriter{resolver: resolver, rules: rules}
}

// Rewrite rewrites markdown as found at docRelPath (root-relative).
func (r *Rewriter) Rewrite(docRelPath, markdown string) RewriteResult {
	res := RewriteResult{}
	out := strings.ReplaceAll(markdown, "\r\n", "\n")

	out = wikilinkRe.ReplaceAllStringFunc(out, func(full string) string {
		m := wikilinkRe.FindStringSubmatch(full)
		ref, ok := parseWikilinkParts(m[1] != "", m[2])
		if !ok {
			return full
		}
		ref.Path = r.rewritePath(docRelPath, ref, &res, false)
		return formatWikilink(ref)
	})

	out = inlineLinkRe.ReplaceAllStringFunc(out, func(full string) string {
		m := inlineLinkRe.FindStringSubmatch(full)
		ref, ok := parseInlineParts(m[1] != "", m[2], m[3])
		if !ok {
			return full
		}
		ref.Path = r.rewritePath(docRelPath, ref, &res, true)
		return formatInlineLink(ref)
	})

	res.Text = ApplyRules(out, r.rules)
	return res
}

// rewritePath resolves asset paths and strips the .md extension of note paths.
// Wikilinks strip any trailing ".md"; inline links keep paths whose extension
// is neither an asset nor ".md".
func (r *Rewriter) rewritePath(docRelPath string, ref LinkReference, res *RewriteResult, inline bool) string {
	if isAssetPath(ref.Path) {
		resolved, ok := r.resolve(docRelPath, ref.Path)
		if !ok {
			res.Unresolved = append(res.Unresolved, UnresolvedRef{
				SourcePath: docRelPath,
				Syntax:     ref.Syntax,
				Target:     ref.Path,
			})
		}
		return resolved
	}
	if inline && !strings.EqualFold(extname(ref.Path), ".md") {
		return ref.Path
	}
	return buildRewritePath(ref.Path)
}

func (r *Rewriter) resolve(docRelPath, target string) (string, bool) {
	if r.resolver == nil {
		return target, false
	}
	return r.resolver.ResolveAttachment(docRelPath, target)
}

// buildRewritePath removes a trailing .md extension (e.g. "A.md" → "A").
func buildRewritePath(targetPath string) string {
	if strings.HasSuffix(strings.ToLower(targetPath), ".md") {
		return targetPath[:len(targetPath)-3]
	}
	return targetPath
}

func formatWikilink(ref LinkReference) string {
	var b strings.Builder
	if ref.Embed {
		b.WriteByte('!')
	}
	b.WriteString("[[")
	b.WriteString(ref.Path)
	if ref.Anchor != "" {
		b.WriteByte('#')
		b.WriteString(ref.Anchor)
	}
	if ref.Label != "" {
		b.WriteByte('|')
		b.WriteString(ref.Label)
	}
	b.WriteString("]]")
	return b.String()
}

func formatInlineLink(ref LinkReference) string {
	var b strings.Builder
	if ref.Embed {
		b.WriteByte('!')
	}
	b.WriteByte('[')
	b.WriteString(ref.Label)
	b.WriteString("](")
	b.WriteString(ref.Path)
	if ref.Anchor != "" {
		b.WriteByte('#')
		b.WriteString(ref.Anchor)
	}
	b.WriteByte(')')
	return b.String()
}
