// Package manifest handles gul.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a gul.toml project configuration.
type Manifest struct {
	Project   Project   `toml:"project"`
	Source    Source    `toml:"source"`
	Transpile Transpile `toml:"transpile"`
	Modules   Modules   `toml:"modules"`

	// Dir is the directory containing the gul.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Transpile configures the GUL to Rust batch translation.
type Transpile struct {
	Src     string   `toml:"src"`
	Dest    string   `toml:"dest"`
	Exclude []string `toml:"exclude"`
}

// Modules configures extra @imp search roots.
type Modules struct {
	Paths []string `toml:"paths"`
}

// Load parses gul.toml from the given directory. A missing file is not an
// error: the returned manifest carries the defaults.
func Load(dir string) (*Manifest, error) {
	var m Manifest

	path := filepath.Join(dir, "gul.toml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a gul.toml file, then loads
// and returns the manifest. With no manifest anywhere on the path it
// returns the defaults rooted at startDir.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "gul.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Load(startDir)
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"."}
	}
	if m.Source.Entry == "" {
		m.Source.Entry = "main.mn"
	}
	if m.Transpile.Src == "" {
		m.Transpile.Src = "compiler"
	}
	if m.Transpile.Dest == "" {
		m.Transpile.Dest = "compiler_rust"
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// ModulePaths returns absolute paths for the configured @imp search roots.
func (m *Manifest) ModulePaths() []string {
	var paths []string
	for _, p := range m.Modules.Paths {
		if filepath.IsAbs(p) {
			paths = append(paths, p)
			continue
		}
		paths = append(paths, filepath.Join(m.Dir, p))
	}
	return paths
}
