// Package template substitutes release variables into message, tag-name, and
// replacement-text templates.
//
// Templates use a fixed set of {{name}} placeholders. Rendering is plain
// textual find/replace: unrecognized tokens pass through unchanged, and a
// placeholder whose field is unset is left unexpanded rather than producing
// an error. This makes Render total; a template typo shows up verbatim in the
// output where an operator can see it.
//
// The Date field is intentionally a plain string: the caller computes the
// date once per run and threads it through, so that every package released in
// one invocation shares the same date.
package template

import "strings"

// Template holds the values available for placeholder substitution.
// Nil fields leave their placeholder unexpanded.
type Template struct {
	PrevVersion  *string // {{prev_version}} - full version before the bump
	PrevMetadata *string // {{prev_metadata}} - build metadata before the bump
	Version      *string // {{version}} - full version being released
	Metadata     *string // {{metadata}} - build metadata being released
	CrateName    *string // {{crate_name}} - package name
	Date         *string // {{date}} - release date, YYYY-MM-DD
	Prefix       *string // {{prefix}} - rendered tag prefix
	TagName      *string // {{tag_name}} - rendered tag name
	NextVersion  *string // {{next_version}} - post-release dev version
	NextMetadata *string // {{next_metadata}} - post-release build metadata
}

// Render substitutes all set fields into input and returns the result.
// Rendering never fails.
func (t *Template) Render(input string) string {
	s := input
	s = expand(s, "{{prev_version}}", t.PrevVersion)
	s = expand(s, "{{prev_metadata}}", t.PrevMetadata)
	s = expand(s, "{{version}}", t.Version)
	s = expand(s, "{{metadata}}", t.Metadata)
	s = expand(s, "{{crate_name}}", t.CrateName)
	s = expand(s, "{{date}}", t.Date)
	s = expand(s, "{{prefix}}", t.Prefix)
	s = expand(s, "{{tag_name}}", t.TagName)
	s = expand(s, "{{next_version}}", t.NextVersion)
	s = expand(s, "{{next_metadata}}", t.NextMetadata)
	return s
}

func expand(s, token string, value *string) string {
	if value == nil {
		return s
	}
	return strings.ReplaceAll(s, token, *value)
}

// Set returns a pointer to v, for concise Template construction.
func Set(v string) *string { return &v }
