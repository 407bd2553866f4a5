package parser

import "testing"

func TestExtractTags_FrontmatterArray(t *testing.T) {
	fm := map[string]any{"tags": []any{"Alpha", "beta/gamma"}}
	tags := extractTags(fm, "")
	if len(tags) != 2 {
		t.Fatalf("tags = %v", tags)
	}
	if tags[0].Name != "alpha" {
		t.Errorf("tags[0] = %q, want lowercased alpha", tags[0].Name)
	}
	if tags[1].Name != "beta/gamma" || tags[1].Source != TagFromFrontmatter {
		t.Errorf("tags[1] = %+v", tags[1])
	}
}

func TestExtractTags_CommaSeparatedScalar(t *testing.T) {
	fm := map[string]any{"keywords": "one, two ,three"}
	tags := extractTags(fm, "")
	if len(tags) != 3 {
		t.Fatalf("tags = %v, want 3", tags)
	}
	if tags[1].Name != "two" {
		t.Errorf("tags[1] = %q", tags[1].Name)
	}
}

func TestExtractTags_InlineFromBody(t *testing.T) {
	tags := extractTags(nil, "Some text #golang and #project/notes here.\nNot#this one.")
	if len(tags) != 2 {
		t.Fatalf("tags = %v, want 2", tags)
	}
	if tags[0].Name != "golang" || tags[0].Source != TagFromContent {
		t.Errorf("tags[0] = %+v", tags[0])
	}
	if tags[1].Name != "project/notes" {
		t.Errorf("tags[1] = %q", tags[1].Name)
	}
}

func TestExtractTags_ShortDeclaredTagsKept(t *testing.T) {
	fm := map[string]any{"tags": []any{"a", "b"}}
	tags := extractTags(fm, "ignore #c noise and #1 too")
	if len(tags) != 2 || tags[0].Name != "a" || tags[1].Name != "b" {
		t.Fatalf("tags = %v, want declared a and b only", tags)
	}
	for _, tg := range tags {
		if tg.Source != TagFromFrontmatter {
			t.Errorf("%q source = %q, want frontmatter", tg.Name, tg.Source)
		}
	}
}

func TestExtractTags_FirstProvenanceWins(t *testing.T) {
	fm := map[string]any{"tags": []any{"shared"}}
	tags := extractTags(fm, "body mentions #shared too")
	if len(tags) != 1 {
		t.Fatalf("tags = %v, want deduplicated single entry", tags)
	}
	if tags[0].Source != TagFromFrontmatter {
		t.Errorf("source = %q, want frontmatter", tags[0].Source)
	}
}

func TestNormalizeTag_Validation(t *testing.T) {
	invalid := []string{"", "x", "9lives", "1234", "a//b", "/lead", "trail/", "  "}
	for _, in := range invalid {
		if got, ok := NormalizeTag(in); ok {
			t.Errorf("NormalizeTag(%q) = %q, want rejection", in, got)
		}
	}
	valid := map[string]string{
		"  Go  ":      "go",
		"#prefixed":   "prefixed",
		"Deep/Nested": "deep/nested",
		"snake_case":  "snake_case",
	}
	for in, want := range valid {
		got, ok := NormalizeTag(in)
		if !ok || got != want {
			t.Errorf("NormalizeTag(%q) = %q/%v, want %q", in, got, ok, want)
		}
	}
}
