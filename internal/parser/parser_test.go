package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Woad Dyeing\ntags:\n  - research\n  - dye\n---\n# Woad Dyeing\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Woad Dyeing" {
		t.Errorf("title = %q, want %q", r.Title, "Woad Dyeing")
	}
	if len(r.Tags) < 2 || r.Tags[0] != "research" || r.Tags[1] != "dye" {
		t.Errorf("tags = %v, want [research dye]", r.Tags)
	}
	if r.Body != "# Woad Dyeing\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestParse_CreatedDateForms(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string // YYYY-MM-DD, empty means zero time expected
	}{
		{"iso date", "2026-08-30", "2026-08-30"},
		{"loose us form", "Aug 30, 2026", "2026-08-30"},
		{"slash form", "08/30/2026", "2026-08-30"},
		{"garbage", "the other day", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := []byte("---\ntitle: T\ncreated: \"" + tc.value + "\"\n---\nbody\n")
			r, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if tc.want == "" {
				if !r.Created.IsZero() {
					t.Errorf("created = %v, want zero", r.Created)
				}
				return
			}
			if got := r.Created.Format("2006-01-02"); got != tc.want {
				t.Errorf("created = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExtractLinks_Basic(t *testing.T) {
	body := "See [[moltbook-api]] and [[clawk-api|the Clawk notes]].\nAlso [[moltbook-api]] again."
	links := extractLinks(body)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0] != "moltbook-api" || links[1] != "clawk-api" {
		t.Errorf("links = %v", links)
	}
}

func TestExtractLinks_EmptyTarget(t *testing.T) {
	links := extractLinks("see [[ ]] and [[|alias]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{
		"tags": []any{"captcha"},
	}
	body := "Some text #moltbook and #captcha again."
	tags := extractTags(body, fm)
	if len(tags) != 2 || tags[0] != "captcha" || tags[1] != "moltbook" {
		t.Errorf("tags = %v, want [captcha moltbook]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	body := "# H1 Title\ntext"
	title := deriveTitle(fm, body)
	if title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(nil, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

func TestDeriveCreated_NativeYAMLDate(t *testing.T) {
	// yaml.v3 decodes bare dates as time.Time already.
	fm := map[string]any{"created": time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}
	got := deriveCreated(fm)
	if got.Format("2006-01-02") != "2026-08-30" {
		t.Errorf("created = %v", got)
	}
}
