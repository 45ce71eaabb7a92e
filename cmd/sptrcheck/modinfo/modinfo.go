// Package modinfo locates and reads the go.mod of the code being checked.
package modinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned by Find when no go.mod encloses the directory.
var ErrNoModule = errors.New("no go.mod found")

// Module is the subset of a go.mod the checker cares about.
type Module struct {
	// Path is the module path from the module directive.
	Path string

	// Dir is the directory containing go.mod.
	Dir string

	// GoVersion is the go directive, empty if absent.
	GoVersion string

	// Requires lists the required module paths in file order.
	Requires []string
}

// Find walks up from startDir looking for go.mod and returns its path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return modPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNoModule, startDir)
		}
		dir = parent
	}
}

// Load parses the go.mod file at goModPath.
func Load(goModPath string) (*Module, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", goModPath, err)
	}

	f, err := modfile.ParseLax(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", goModPath, err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("%s: missing module directive", goModPath)
	}

	m := &Module{
		Path: f.Module.Mod.Path,
		Dir:  filepath.Dir(goModPath),
	}
	if f.Go != nil {
		m.GoVersion = f.Go.Version
	}
	for _, req := range f.Require {
		m.Requires = append(m.Requires, req.Mod.Path)
	}
	return m, nil
}

// FindAndLoad combines Find and Load.
func FindAndLoad(startDir string) (*Module, error) {
	p, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	return Load(p)
}

// DependsOn reports whether the module is modulePath or requires it.
func (m *Module) DependsOn(modulePath string) bool {
	if m.Path == modulePath {
		return true
	}
	for _, r := range m.Requires {
		if r == modulePath {
			return true
		}
	}
	return false
}
