// Package workspace models a Cargo workspace: member discovery from the root
// manifest, per-member dependency tables, package file sets, and the
// publish-safe member ordering used by release planning.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/towline/pkg/errors"
)

// ManifestName is the package manifest file name.
const ManifestName = "Cargo.toml"

// LockName is the workspace lock file name.
const LockName = "Cargo.lock"

// DependencyKind distinguishes the manifest table a dependency was declared
// in. Only KindNormal and KindBuild edges constrain publish order.
type DependencyKind int

const (
	KindNormal DependencyKind = iota
	KindDev
	KindBuild
)

func (k DependencyKind) String() string {
	switch k {
	case KindDev:
		return "dev"
	case KindBuild:
		return "build"
	default:
		return "normal"
	}
}

// Dependency is one entry of a member's dependency tables.
type Dependency struct {
	Name        string
	Requirement string
	Kind        DependencyKind
	Path        string
}

// Member is one package of the workspace.
type Member struct {
	Name         string
	Version      string
	ManifestPath string
	Root         string
	IsRoot       bool
	IsBinary     bool
	Dependencies []Dependency
}

// Dependent pairs a workspace member with its declared requirement on some
// other member.
type Dependent struct {
	Member      *Member
	Requirement string
	Kind        DependencyKind
}

// Workspace is a loaded Cargo workspace.
type Workspace struct {
	Root         string
	ManifestPath string
	LockPath     string
	Members      []*Member

	byName map[string]*Member
}

// Load reads the workspace rooted at dir. A manifest with a [workspace]
// table yields its member list (the root package included when present); a
// plain package manifest yields a single-member workspace.
func Load(dir string) (*Workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWorkspace, err, "resolving workspace root %q", dir)
	}

	manifestPath := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading workspace manifest %s", manifestPath)
	}

	var manifest manifestFile
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifest, err, "parsing %s", manifestPath)
	}

	ws := &Workspace{
		Root:         root,
		ManifestPath: manifestPath,
		LockPath:     filepath.Join(root, LockName),
		byName:       make(map[string]*Member),
	}

	memberDirs, err := memberDirectories(root, manifest)
	if err != nil {
		return nil, err
	}

	if manifest.Package.Name != "" {
		m, err := loadMember(root, manifestPath, manifest, &manifest)
		if err != nil {
			return nil, err
		}
		m.IsRoot = true
		ws.add(m)
	}

	for _, mdir := range memberDirs {
		if mdir == root {
			continue
		}
		mpath := filepath.Join(mdir, ManifestName)
		mdata, err := os.ReadFile(mpath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading member manifest %s", mpath)
		}
		var mm manifestFile
		if err := toml.Unmarshal(mdata, &mm); err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifest, err, "parsing %s", mpath)
		}
		if mm.Package.Name == "" {
			return nil, errors.New(errors.ErrCodeManifest, "member manifest %s has no [package] table", mpath)
		}
		m, err := loadMember(mdir, mpath, mm, &manifest)
		if err != nil {
			return nil, err
		}
		ws.add(m)
	}

	if len(ws.Members) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWorkspace, "no packages found under %s", root)
	}
	return ws, nil
}

// Member returns the named member, if present.
func (ws *Workspace) Member(name string) (*Member, bool) {
	m, ok := ws.byName[name]
	return m, ok
}

// Dependents lists the members depending on name, with their declared
// requirements. Order follows workspace member order.
func (ws *Workspace) Dependents(name string) []Dependent {
	var out []Dependent
	for _, m := range ws.Members {
		if m.Name == name {
			continue
		}
		for _, d := range m.Dependencies {
			if d.Name == name {
				out = append(out, Dependent{Member: m, Requirement: d.Requirement, Kind: d.Kind})
			}
		}
	}
	return out
}

// PackageContent enumerates the files belonging to the member: everything
// under its root except VCS and build directories and nested member roots.
func (ws *Workspace) PackageContent(m *Member) ([]string, error) {
	nested := make(map[string]bool)
	for _, other := range ws.Members {
		if other != m && strings.HasPrefix(other.Root, m.Root+string(filepath.Separator)) {
			nested[other.Root] = true
		}
	}

	var files []string
	err := filepath.WalkDir(m.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if nested[path] || d.Name() == ".git" || d.Name() == "target" {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "walking package %s", m.Name)
	}
	return files, nil
}

func (ws *Workspace) add(m *Member) {
	ws.Members = append(ws.Members, m)
	ws.byName[m.Name] = m
}

func loadMember(root, manifestPath string, m manifestFile, ws *manifestFile) (*Member, error) {
	version := m.Package.Version.value
	if m.Package.Version.inherited {
		version = ws.Workspace.Package.Version
	}
	if version == "" {
		return nil, errors.New(errors.ErrCodeManifest, "package %s has no version", m.Package.Name)
	}

	member := &Member{
		Name:         m.Package.Name,
		Version:      version,
		ManifestPath: manifestPath,
		Root:         root,
		IsBinary:     len(m.Bin) > 0 || hasFile(root, filepath.Join("src", "main.rs")),
	}

	for _, t := range []struct {
		table map[string]dependencySpec
		kind  DependencyKind
	}{
		{m.Dependencies, KindNormal},
		{m.DevDependencies, KindDev},
		{m.BuildDependencies, KindBuild},
	} {
		names := make([]string, 0, len(t.table))
		for name := range t.table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := t.table[name]
			member.Dependencies = append(member.Dependencies, Dependency{
				Name:        name,
				Requirement: spec.Version,
				Kind:        t.kind,
				Path:        spec.Path,
			})
		}
	}

	return member, nil
}

func memberDirectories(root string, m manifestFile) ([]string, error) {
	excluded := make(map[string]bool)
	for _, pattern := range m.Workspace.Exclude {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWorkspace, err, "bad exclude pattern %q", pattern)
		}
		for _, match := range matches {
			excluded[match] = true
		}
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, pattern := range m.Workspace.Members {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWorkspace, err, "bad member pattern %q", pattern)
		}
		// Glob output is sorted; declaration order comes from the pattern
		// list itself.
		for _, match := range matches {
			if excluded[match] || seen[match] {
				continue
			}
			if !hasFile(match, ManifestName) {
				continue
			}
			seen[match] = true
			dirs = append(dirs, match)
		}
	}
	return dirs, nil
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}

type manifestFile struct {
	Package struct {
		Name    string      `toml:"name"`
		Version inheritable `toml:"version"`
	} `toml:"package"`
	Workspace struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
		Package struct {
			Version string `toml:"version"`
		} `toml:"package"`
	} `toml:"workspace"`
	Bin               []struct{}                `toml:"bin"`
	Dependencies      map[string]dependencySpec `toml:"dependencies"`
	DevDependencies   map[string]dependencySpec `toml:"dev-dependencies"`
	BuildDependencies map[string]dependencySpec `toml:"build-dependencies"`
}

// inheritable is a manifest field that is either a literal string or
// `{ workspace = true }`.
type inheritable struct {
	value     string
	inherited bool
}

func (v *inheritable) UnmarshalTOML(data any) error {
	switch t := data.(type) {
	case string:
		v.value = t
	case map[string]any:
		if w, ok := t["workspace"].(bool); ok && w {
			v.inherited = true
		}
	}
	return nil
}

// dependencySpec is a dependency table entry: either a bare requirement
// string or an inline table with version/path fields.
type dependencySpec struct {
	Version string
	Path    string
}

func (d *dependencySpec) UnmarshalTOML(data any) error {
	switch t := data.(type) {
	case string:
		d.Version = t
	case map[string]any:
		if v, ok := t["version"].(string); ok {
			d.Version = v
		}
		if p, ok := t["path"].(string); ok {
			d.Path = p
		}
	}
	return nil
}
