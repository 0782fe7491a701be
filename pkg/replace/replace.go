// Package replace applies configured text replacements to package files
// around a release: version strings in READMEs, changelog headers, and the
// like. Rules are declared in release configuration, rendered through the
// release template, and checked against match-count constraints before
// anything is written.
package replace

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/template"
)

// Rule is one configured replacement.
//
// Search is a regular expression applied to the file's content. Replace is
// a release template; its rendered value may reference capture groups with
// the usual $1 syntax. Min defaults to 1 when no constraint is set, so a
// rule that matches nothing fails loudly instead of silently doing nothing.
type Rule struct {
	File       string `toml:"file"`
	Search     string `toml:"search"`
	Replace    string `toml:"replace"`
	Min        *int   `toml:"min"`
	Max        *int   `toml:"max"`
	Exactly    *int   `toml:"exactly"`
	Prerelease bool   `toml:"prerelease"`
}

// Report describes one applied (or, in dry-run, would-be-applied) rule.
type Report struct {
	File    string
	Search  string
	Matches int
}

// Filter keeps the rules applicable to a version of the given pre-release
// state: rules marked prerelease run only for pre-release versions, the
// rest only for release versions.
func Filter(rules []Rule, prerelease bool) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Prerelease == prerelease {
			out = append(out, r)
		}
	}
	return out
}

// Apply runs the rules against files under root. Rules are grouped by file
// in declaration order; each file is read once, all of its rules applied in
// sequence, and written back once. In dry-run mode constraints are still
// enforced and reports produced, but no file is written.
func Apply(root string, rules []Rule, tpl template.Template, dryRun bool) ([]Report, error) {
	var files []string
	byFile := make(map[string][]Rule)
	for _, r := range rules {
		if _, seen := byFile[r.File]; !seen {
			files = append(files, r.File)
		}
		byFile[r.File] = append(byFile[r.File], r)
	}

	var reports []Report
	for _, file := range files {
		path := filepath.Join(root, file)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading replacement target %s", path)
		}
		content := string(data)

		for _, r := range byFile[file] {
			re, err := regexp.Compile(r.Search)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidReplace, err, "bad search pattern %q for %s", r.Search, file)
			}

			matches := len(re.FindAllStringIndex(content, -1))
			if err := checkCount(r, file, matches); err != nil {
				return nil, err
			}

			content = re.ReplaceAllString(content, tpl.Render(r.Replace))
			reports = append(reports, Report{File: file, Search: r.Search, Matches: matches})
		}

		if !dryRun {
			if err := writeAtomic(path, []byte(content)); err != nil {
				return nil, err
			}
		}
	}
	return reports, nil
}

func checkCount(r Rule, file string, matches int) error {
	if r.Exactly != nil && matches != *r.Exactly {
		return errors.New(errors.ErrCodeInvalidReplace,
			"pattern %q matched %d times in %s, expected exactly %d", r.Search, matches, file, *r.Exactly)
	}
	min := 1
	if r.Min != nil {
		min = *r.Min
	}
	if r.Exactly == nil && matches < min {
		return errors.New(errors.ErrCodeInvalidReplace,
			"pattern %q matched %d times in %s, expected at least %d", r.Search, matches, file, min)
	}
	if r.Exactly == nil && r.Max != nil && matches > *r.Max {
		return errors.New(errors.ErrCodeInvalidReplace,
			"pattern %q matched %d times in %s, expected at most %d", r.Search, matches, file, *r.Max)
	}
	return nil
}

// writeAtomic replaces path's content via a temp file and rename so a crash
// mid-write never leaves a truncated file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".replace-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, err, "closing %s", tmpName)
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode())
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, err, "replacing %s", path)
	}
	return nil
}
