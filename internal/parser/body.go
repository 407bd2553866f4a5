package parser

import (
	"regexp"
	"strings"
)

// Heading is one detected heading with its position in the document outline.
type Heading struct {
	Level     int
	Text      string
	Slug      string
	Ancestors []string
}

var (
	atxRe        = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	setextH1Re   = regexp.MustCompile(`^=+\s*$`)
	setextH2Re   = regexp.MustCompile(`^-+\s*$`)
	fenceRe      = regexp.MustCompile("^(```|~~~)")
	listMarkerRe = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// extractHeadings detects ATX (#-prefixed) and setext (underline) headings,
// skipping fenced code blocks, and records each heading's ancestor chain by
// nesting level.
func extractHeadings(body string) []Heading {
	lines := strings.Split(body, "\n")
	var out []Heading
	// stack holds the current ancestor headings, shallowest first.
	var stack []Heading
	inFence := false

	push := func(level int, text string) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		ancestors := make([]string, len(stack))
		for i, h := range stack {
			ancestors[i] = h.Text
		}
		h := Heading{Level: level, Text: text, Slug: Slugify(text), Ancestors: ancestors}
		out = append(out, h)
		stack = append(stack, h)
	}

	for i, line := range lines {
		if fenceRe.MatchString(strings.TrimSpace(line)) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := atxRe.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[2])
			if text != "" {
				push(len(m[1]), text)
			}
			continue
		}
		// Setext headings: a non-empty text line underlined by === or ---.
		if i+1 < len(lines) {
			text := strings.TrimSpace(line)
			next := lines[i+1]
			if text == "" || strings.HasPrefix(text, "#") || listMarkerRe.MatchString(line) {
				continue
			}
			if setextH1Re.MatchString(next) {
				push(1, text)
			} else if setextH2Re.MatchString(next) && len(strings.TrimSpace(next)) >= 2 {
				push(2, text)
			}
		}
	}
	return out
}

// Slugify converts heading text into a URL-safe anchor: lowercased, runs of
// non-alphanumerics collapsed to single hyphens, trimmed.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// countWords tokenizes the body on whitespace.
func countWords(body string) int {
	return len(strings.Fields(body))
}

// typographicReplacer normalizes smart quotes, dashes, and ellipses.
var typographicReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"…", "...",
)

var (
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inlineLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	refLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	emphasisRe   = regexp.MustCompile(`(\*{1,3}|_{1,3})(\S(?:[^*_]*?\S)?)(\*{1,3}|_{1,3})`)
	blockquoteRe = regexp.MustCompile(`^\s*(>\s*)+`)
	indentCodeRe = regexp.MustCompile(`^(\t| {4})`)
)

// sanitizeForSearch produces the searchable text: typography normalized,
// fenced and indented code blocks removed entirely, and markdown syntax
// markers stripped while their textual content is retained.
func sanitizeForSearch(body string) string {
	body = typographicReplacer.Replace(body)

	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	inFence := false
	prevBlank := true
	for _, line := range lines {
		if fenceRe.MatchString(strings.TrimSpace(line)) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		// Indented code blocks only start after a blank line.
		if prevBlank && indentCodeRe.MatchString(line) && strings.TrimSpace(line) != "" {
			continue
		}
		prevBlank = strings.TrimSpace(line) == ""

		line = blockquoteRe.ReplaceAllString(line, "")
		line = listMarkerRe.ReplaceAllString(line, "$1")
		line = atxRe.ReplaceAllString(line, "$2")
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")

	out = imageRe.ReplaceAllString(out, "$1")
	out = inlineLinkRe.ReplaceAllString(out, "$1")
	out = refLinkRe.ReplaceAllString(out, "$1")
	out = inlineCodeRe.ReplaceAllString(out, "$1")
	for i := 0; i < 3; i++ { // nested emphasis
		out = emphasisRe.ReplaceAllString(out, "$2")
	}
	return strings.TrimSpace(out)
}
