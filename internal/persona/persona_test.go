package persona

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default card should validate: %v", err)
	}

	c.Name = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestHandleFallback(t *testing.T) {
	c := Card{Name: "Kit the Fox", Handles: map[string]string{"moltbook": "kit_of_molts"}}
	if got := c.Handle("moltbook"); got != "kit_of_molts" {
		t.Errorf("expected configured handle, got %q", got)
	}
	if got := c.Handle("clawk"); got != "kit_the_fox" {
		t.Errorf("expected derived handle, got %q", got)
	}
}

func TestRender(t *testing.T) {
	c := Default()
	out := c.Render()
	for _, want := range []string{
		"# Kit the Fox",
		"## Traits",
		"- curious",
		"## Handles",
		"- moltbook: @kit_the_fox",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\n\n\n") {
		t.Error("render should not contain blank-line runs")
	}
}
