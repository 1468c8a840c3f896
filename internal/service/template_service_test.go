package service

import "testing"

func TestRenderTemplate(t *testing.T) {
	data := map[string]string{
		"title":   "Backend Engineer",
		"company": "Acme Corp",
	}

	got := RenderTemplate("Application: {title} at {company}", data)
	want := "Application: Backend Engineer at Acme Corp"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateEmptyValue(t *testing.T) {
	got := RenderTemplate("{title} at {company}", map[string]string{"title": "SRE", "company": ""})
	want := "SRE at <unknown>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateUnknownPlaceholderKept(t *testing.T) {
	got := RenderTemplate("Hello {name}", map[string]string{"title": "SRE"})
	if got != "Hello {name}" {
		t.Errorf("unmatched placeholder must pass through, got %q", got)
	}
}
