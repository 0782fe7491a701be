package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/workspace"
)

// FileName is the dedicated release configuration file, looked for at the
// workspace root and in each member directory.
const FileName = "release.toml"

// Resolver resolves the merged configuration for workspace members. The
// workspace-level layers are loaded once at construction; member layers are
// loaded per call.
type Resolver struct {
	base       Config // defaults-through-workspace layers, pre-merged
	customPath string
	overrides  Config
}

// NewResolver builds a resolver for the workspace. customPath is the
// optional --config file (highest file layer); overrides carries values
// from command-line flags (highest layer overall).
func NewResolver(ws *workspace.Workspace, customPath string, overrides Config) (*Resolver, error) {
	var base Config

	if path, ok := userConfigPath(); ok {
		layer, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		base = base.Merge(layer)
	}

	layer, err := loadManifestMetadata(ws.ManifestPath, "workspace")
	if err != nil {
		return nil, err
	}
	base = base.Merge(layer)

	layer, err = loadFileIfExists(filepath.Join(ws.Root, FileName))
	if err != nil {
		return nil, err
	}
	base = base.Merge(layer)

	return &Resolver{base: base, customPath: customPath, overrides: overrides}, nil
}

// For resolves the fully merged configuration for one member.
func (r *Resolver) For(m *workspace.Member) (Config, error) {
	merged := r.base

	layer, err := loadManifestMetadata(m.ManifestPath, "package")
	if err != nil {
		return Config{}, err
	}
	merged = merged.Merge(layer)

	layer, err = loadFileIfExists(filepath.Join(m.Root, FileName))
	if err != nil {
		return Config{}, err
	}
	merged = merged.Merge(layer)

	if r.customPath != "" {
		layer, err = loadFile(r.customPath)
		if err != nil {
			return Config{}, err
		}
		merged = merged.Merge(layer)
	}

	return merged.Merge(r.overrides), nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading config %s", path)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	return c, nil
}

func loadFileIfExists(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, nil
	}
	return loadFile(path)
}

// loadManifestMetadata reads the [<table>.metadata.release] table of a
// Cargo manifest. Missing tables yield an empty layer.
func loadManifestMetadata(manifestPath, table string) (Config, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading manifest %s", manifestPath)
	}

	var doc struct {
		Package struct {
			Metadata struct {
				Release Config `toml:"release"`
			} `toml:"metadata"`
		} `toml:"package"`
		Workspace struct {
			Metadata struct {
				Release Config `toml:"release"`
			} `toml:"metadata"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing metadata in %s", manifestPath)
	}
	if table == "workspace" {
		return doc.Workspace.Metadata.Release, nil
	}
	return doc.Package.Metadata.Release, nil
}

// userConfigPath locates the user-global release configuration.
func userConfigPath() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, "towline", FileName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
