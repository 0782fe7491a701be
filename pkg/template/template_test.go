package template

import "testing"

func TestRender_AllFields(t *testing.T) {
	tpl := Template{
		PrevVersion: Set("1.0.0"),
		Version:     Set("1.1.0"),
		CrateName:   Set("towline"),
		Date:        Set("2026-08-23"),
		Prefix:      Set("towline-"),
		TagName:     Set("towline-v1.1.0"),
		NextVersion: Set("1.1.1-alpha.0"),
	}

	got := tpl.Render("{{crate_name}} {{prev_version}} -> {{version}} ({{date}}), next {{next_version}}")
	want := "towline 1.0.0 -> 1.1.0 (2026-08-23), next 1.1.1-alpha.0"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_UnsetFieldLeftUnexpanded(t *testing.T) {
	tpl := Template{Version: Set("2.0.0")}

	got := tpl.Render("v{{version}} tag {{tag_name}}")
	want := "v2.0.0 tag {{tag_name}}"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_UnrecognizedTokenPassesThrough(t *testing.T) {
	tpl := Template{Version: Set("1.0.0")}

	got := tpl.Render("{{version}} {{something_else}}")
	want := "1.0.0 {{something_else}}"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_RepeatedToken(t *testing.T) {
	tpl := Template{Version: Set("3.2.1")}

	got := tpl.Render("{{version}}+{{version}}")
	if got != "3.2.1+3.2.1" {
		t.Errorf("Render() = %q, want %q", got, "3.2.1+3.2.1")
	}
}

func TestRender_EmptyTemplate(t *testing.T) {
	tpl := Template{}
	if got := tpl.Render(""); got != "" {
		t.Errorf("Render(\"\") = %q, want empty", got)
	}
}
