package parser

import (
	"regexp"
	"strings"
)

// Link kinds.
const (
	LinkMarkdown  = "markdown"
	LinkWikilink  = "wikilink"
	LinkReference = "reference"
	LinkAutolink  = "autolink"
)

// Link is one detected link occurrence.
type Link struct {
	Text     string
	Target   string
	Kind     string
	Internal bool
}

var (
	wikilinkRe  = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)
	mdLinkRe    = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]*)(?:\s+"[^"]*")?\)`)
	refLinkUse  = regexp.MustCompile(`(!?)\[([^\]]+)\]\[([^\]]*)\]`)
	refLinkDef  = regexp.MustCompile(`(?m)^\s{0,3}\[([^\]]+)\]:\s*(\S+)`)
	autolinkRe  = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9+.-]*:[^<>\s]+)>`)
	schemeURLRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// extractLinks detects inline, wikilink, reference-style, and autolink
// syntaxes in body text. Reference uses are resolved against their
// definition list with case-insensitive id matching; unresolved references
// are dropped. Image embeds are not links and are skipped.
func extractLinks(body string) []Link {
	var out []Link

	// Wikilinks first so their targets are not re-read as other syntaxes.
	for _, m := range wikilinkRe.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		text := strings.TrimSpace(m[2])
		out = append(out, Link{Text: text, Target: target, Kind: LinkWikilink, Internal: true})
	}
	stripped := wikilinkRe.ReplaceAllString(body, "")

	for _, m := range mdLinkRe.FindAllStringSubmatch(stripped, -1) {
		if m[1] == "!" {
			continue
		}
		target := strings.TrimSpace(m[3])
		out = append(out, Link{Text: m[2], Target: target, Kind: LinkMarkdown, Internal: isInternal(target)})
	}

	defs := make(map[string]string)
	for _, m := range refLinkDef.FindAllStringSubmatch(stripped, -1) {
		defs[strings.ToLower(strings.TrimSpace(m[1]))] = m[2]
	}
	for _, m := range refLinkUse.FindAllStringSubmatch(stripped, -1) {
		if m[1] == "!" {
			continue
		}
		id := strings.ToLower(strings.TrimSpace(m[3]))
		if id == "" {
			// Shortcut form [text][] uses the text as the id.
			id = strings.ToLower(strings.TrimSpace(m[2]))
		}
		target, ok := defs[id]
		if !ok {
			continue
		}
		out = append(out, Link{Text: m[2], Target: target, Kind: LinkReference, Internal: isInternal(target)})
	}

	for _, m := range autolinkRe.FindAllStringSubmatch(stripped, -1) {
		out = append(out, Link{Target: m[1], Kind: LinkAutolink, Internal: false})
	}

	return out
}

// isInternal classifies a target: relative paths, in-page anchors, and empty
// targets are internal; anything with an absolute URL scheme is external.
func isInternal(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return true
	}
	return !schemeURLRe.MatchString(target)
}
