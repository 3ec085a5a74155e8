package core

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Link syntaxes.
const (
	SyntaxWikilink = "wikilink"
	SyntaxInline   = "inline"
)

// LinkReference is the parse of one wikilink or inline link.
type LinkReference struct {
	Syntax string
	Embed  bool
	Path   string // normalized path part
	Anchor string // without '#'
	Label  string // alias for wikilinks, label for inline links
}

var (
	wikilinkRe   = regexp.MustCompile(`(!)?\[\[([^\[\]]+?)\]\]`)
	inlineLinkRe = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)
	externalRe   = regexp.MustCompile(`(?i)^(?:[a-z][a-z0-9+.\-]*:)?//`)
)

// assetExtensions are the lowercase extensions resolved through the attachment index.
var assetExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".pdf":  true,
	".avif": true,
	".mp4":  true,
	".mov":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
}

func isAssetPath(p string) bool {
	return assetExtensions[strings.ToLower(extname(p))]
}

// ParseWikilink parses a single "[[...]]" or "![[...]]" link.
// ok is false when raw is not a wikilink or its target is empty.
func ParseWikilink(raw string) (LinkReference, bool) {
	m := wikilinkRe.FindStringSubmatch(raw)
	if m == nil || m[0] != raw {
		return LinkReference{}, false
	}
	return parseWikilinkParts(m[1] != "", m[2])
}

func parseWikilinkParts(embed bool, inner string) (LinkReference, bool) {
	target, alias := splitAlias(inner)
	if target == "" {
		return LinkReference{}, false
	}
	pathPart, anchor := extractSubpath(normalizeInternalTarget(target))
	if pathPart == "" {
		return LinkReference{}, false
	}
	return LinkReference{
		Syntax: SyntaxWikilink,
		Embed:  embed,
		Path:   pathPart,
		Anchor: anchor,
		Label:  alias,
	}, true
}

// ParseInlineLink parses a single "[label](href)" or "![label](href)" link.
// ok is false for empty, external and same-document hrefs.
func ParseInlineLink(raw string) (LinkReference, bool) {
	m := inlineLinkRe.FindStringSubmatch(raw)
	if m == nil || m[0] != raw {
		return LinkReference{}, false
	}
	return parseInlineParts(m[1] != "", m[2], m[3])
}

func parseInlineParts(embed bool, label, rawHref string) (LinkReference, bool) {
	href := stripQuotes(strings.TrimSpace(rawHref))
	if href == "" || isExternalLink(href) || strings.HasPrefix(href, "#") {
		return LinkReference{}, false
	}
	hrefPath, anchor := extractSubpath(href)
	pathPart := normalizeInternalTarget(hrefPath)
	if pathPart == "" {
		return LinkReference{}, false
	}
	return LinkReference{
		Syntax: SyntaxInline,
		Embed:  embed,
		Path:   pathPart,
		Anchor: anchor,
		Label:  label,
	}, true
}

// splitAlias splits "target|alias" on the first pipe. Both parts are trimmed.
func splitAlias(input string) (string, string) {
	if idx := strings.Index(input, "|"); idx != -1 {
		return strings.TrimSpace(input[:idx]), strings.TrimSpace(input[idx+1:])
	}
	return strings.TrimSpace(input), ""
}

// extractSubpath splits "target#anchor" on the first '#' into (target, "anchor").
// Returns (input, "") if there is no anchor.
func extractSubpath(input string) (string, string) {
	if idx := strings.Index(input, "#"); idx != -1 {
		return input[:idx], input[idx+1:]
	}
	return input, ""
}

// normalizeInternalTarget trims, percent-decodes, strips one layer of quotes
// and converts backslashes to forward slashes.
func normalizeInternalTarget(target string) string {
	cleaned := stripQuotes(safeDecode(strings.TrimSpace(target)))
	return strings.ReplaceAll(cleaned, `\`, "/")
}

// safeDecode percent-decodes s, returning it unchanged when the escapes are
// malformed or decode to invalid UTF-8.
func safeDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil || !utf8.ValidString(decoded) {
		return s
	}
	return decoded
}

func stripQuotes(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func isExternalLink(target string) bool {
	return externalRe.MatchString(target) || strings.HasPrefix(target, "mailto:")
}
