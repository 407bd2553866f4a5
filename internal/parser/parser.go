// Package parser turns raw markdown text into structured records:
// frontmatter with inferred value kinds, headings, tags, links, and a
// sanitized full-text surface. It performs no I/O.
package parser

import "strings"

// Document holds the complete output of parsing one file's content.
type Document struct {
	Frontmatter map[string]Value
	Body        string
	Sanitized   string
	Headings    []Heading
	WordCount   int
	Tags        []Tag
	Links       []Link
	Title       string
}

// Parse runs the full pipeline over raw file content. Absent or malformed
// frontmatter degrades to an empty map; the body is always parsed.
func Parse(data []byte) *Document {
	fm, body := splitFrontmatter(data)

	typed := make(map[string]Value, len(fm))
	for k, v := range fm {
		typed[k] = InferValue(v)
	}

	headings := extractHeadings(body)

	return &Document{
		Frontmatter: typed,
		Body:        body,
		Sanitized:   sanitizeForSearch(body),
		Headings:    headings,
		WordCount:   countWords(body),
		Tags:        extractTags(fm, body),
		Links:       extractLinks(body),
		Title:       resolveTitle(fm, headings),
	}
}

// HeadingText returns the concatenated heading texts, searchable alongside
// title and body.
func (d *Document) HeadingText() string {
	parts := make([]string, len(d.Headings))
	for i, h := range d.Headings {
		parts[i] = h.Text
	}
	return strings.Join(parts, "\n")
}

// resolveTitle prefers a frontmatter field named "title" (case-insensitive),
// then the first detected heading. An empty result means no title.
func resolveTitle(fm map[string]any, headings []Heading) string {
	for k, v := range fm {
		if !strings.EqualFold(k, "title") {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if len(headings) > 0 {
		return headings[0].Text
	}
	return ""
}
