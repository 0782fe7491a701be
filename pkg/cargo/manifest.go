// Package cargo is the package-manager collaborator: format-preserving
// Cargo.toml edits, lock refreshing, and publishing via the cargo CLI.
package cargo

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/towline/pkg/errors"
)

var versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)"[^"]*"(.*)$`)

// SetPackageVersion rewrites the version field of the manifest's [package]
// table in place, preserving every other byte of the file.
func SetPackageVersion(manifestPath, version string) error {
	return editManifest(manifestPath, func(lines []string) ([]string, error) {
		section := ""
		for i, line := range lines {
			if s, ok := sectionHeader(line); ok {
				section = s
				continue
			}
			if section != "package" {
				continue
			}
			if m := versionLine.FindStringSubmatch(line); m != nil {
				lines[i] = m[1] + `"` + version + `"` + m[2]
				return lines, nil
			}
		}
		return nil, errors.New(errors.ErrCodeManifest,
			"no version field in [package] of %s", manifestPath)
	})
}

// SetDependencyVersion rewrites the requirement on dep wherever it appears
// in the manifest's dependency tables: bare string form, inline table form,
// and dotted [dependencies.<dep>] sections.
func SetDependencyVersion(manifestPath, dep, requirement string) error {
	bare := regexp.MustCompile(`^(\s*` + regexp.QuoteMeta(dep) + `\s*=\s*)"[^"]*"(\s*(#.*)?)$`)
	inline := regexp.MustCompile(`^(\s*` + regexp.QuoteMeta(dep) + `\s*=\s*\{.*version\s*=\s*)"[^"]*"`)

	return editManifest(manifestPath, func(lines []string) ([]string, error) {
		section := ""
		changed := false
		for i, line := range lines {
			if s, ok := sectionHeader(line); ok {
				section = s
				continue
			}
			switch {
			case isDependencyTable(section):
				if m := bare.FindStringSubmatch(line); m != nil {
					lines[i] = m[1] + `"` + requirement + `"` + m[2]
					changed = true
				} else if m := inline.FindStringSubmatch(line); m != nil {
					lines[i] = m[1] + `"` + requirement + `"` + line[len(m[0]):]
					changed = true
				}
			case isDependencySection(section, dep):
				if m := versionLine.FindStringSubmatch(line); m != nil {
					lines[i] = m[1] + `"` + requirement + `"` + m[2]
					changed = true
				}
			}
		}
		if !changed {
			return nil, errors.New(errors.ErrCodeManifest,
				"no requirement on %s found in %s", dep, manifestPath)
		}
		return lines, nil
	})
}

func sectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return strings.Trim(trimmed, "[]"), true
	}
	return "", false
}

func isDependencyTable(section string) bool {
	switch section {
	case "dependencies", "dev-dependencies", "build-dependencies":
		return true
	}
	// target.'cfg(...)'.dependencies and friends
	return strings.HasSuffix(section, ".dependencies") ||
		strings.HasSuffix(section, ".dev-dependencies") ||
		strings.HasSuffix(section, ".build-dependencies")
}

func isDependencySection(section, dep string) bool {
	for _, table := range []string{"dependencies.", "dev-dependencies.", "build-dependencies."} {
		if section == table+dep || strings.HasSuffix(section, "."+table+dep) {
			return true
		}
	}
	return false
}

func editManifest(path string, edit func([]string) ([]string, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "reading manifest %s", path)
	}

	lines := strings.Split(string(data), "\n")
	lines, err = edit(lines)
	if err != nil {
		return err
	}
	return writeAtomic(path, []byte(strings.Join(lines, "\n")))
}

// writeAtomic replaces path via temp file and rename so a crash mid-write
// cannot truncate a manifest.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".manifest-*")
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
