package parser

import (
	"regexp"
	"strings"
)

// Tag provenance values.
const (
	TagFromFrontmatter = "frontmatter"
	TagFromContent     = "content"
	TagFromUnknown     = "unknown"
)

// Tag is one normalized tag with its provenance.
type Tag struct {
	Name   string
	Source string
}

// frontmatterTagKeys are the metadata keys whose values declare tags.
var frontmatterTagKeys = []string{"tags", "tag", "keywords", "categories"}

var (
	inlineTagRe  = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	numericTagRe = regexp.MustCompile(`^[0-9]+$`)
)

// extractTags merges frontmatter-declared tags with inline #tags from the
// body. Frontmatter declarations are taken at face value after
// normalization; inline tags pass the stricter NormalizeTag validation.
// Duplicate (file, tag) pairs are dropped with first-provenance-wins
// ordering, frontmatter before body.
func extractTags(fm map[string]any, body string) []Tag {
	seen := make(map[string]struct{})
	var out []Tag

	add := func(raw, source string, norm func(string) (string, bool)) {
		name, ok := norm(raw)
		if !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, Tag{Name: name, Source: source})
	}

	for _, key := range frontmatterTagKeys {
		raw, ok := fm[key]
		if !ok {
			continue
		}
		for _, t := range flattenTagValue(raw) {
			add(t, TagFromFrontmatter, normalizeDeclared)
		}
	}

	for _, m := range inlineTagRe.FindAllStringSubmatch(body, -1) {
		add(m[1], TagFromContent, NormalizeTag)
	}

	return out
}

// flattenTagValue expands a frontmatter tag declaration: arrays contribute
// one tag per element, scalar strings are split on commas.
func flattenTagValue(raw any) []string {
	switch v := raw.(type) {
	case string:
		return strings.Split(v, ",")
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// normalizeDeclared lowercases and trims an explicitly declared tag.
// Hierarchical tags must have no empty segments. No length or digit rules
// apply: a `tags:` entry is intentional, however short.
func normalizeDeclared(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "#")
	if name == "" {
		return "", false
	}
	for _, seg := range strings.Split(name, "/") {
		if strings.TrimSpace(seg) == "" {
			return "", false
		}
	}
	return name, true
}

// NormalizeTag applies the validation used for inline #tags, where short or
// numeric matches ("#1", markdown issue references) are usually noise:
// minimum length 2, must not start with a digit, must not be purely
// numeric, and hierarchical tags must have no empty segments.
func NormalizeTag(raw string) (string, bool) {
	name, ok := normalizeDeclared(raw)
	if !ok {
		return "", false
	}
	if len(name) < 2 {
		return "", false
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "", false
	}
	if numericTagRe.MatchString(name) {
		return "", false
	}
	return name, true
}
