package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/boboxa2010/SmartPointers/cmd/sptrcheck/checker"
)

// configFileName is looked up in the module root when --config is not given.
const configFileName = ".sptrcheck.yaml"

// fileConfig is the on-disk configuration:
//
//	exclude:
//	  - gen/
//	  - "*_mock.go"
//	checks:
//	  adopt-subobject: false
type fileConfig struct {
	// Exclude holds slash-separated patterns relative to the checked
	// directory. A pattern ending in "/" excludes a directory tree; any
	// other pattern is matched with filepath.Match against both the relative
	// path and the base name.
	Exclude []string `yaml:"exclude"`

	// Checks enables or disables checks by name. Unlisted checks run.
	Checks map[string]bool `yaml:"checks"`
}

// loadConfig reads path. A missing file is only an error when required.
func loadConfig(path string, required bool) (*fileConfig, error) {
	cfg := &fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for name := range cfg.Checks {
		if !knownCheck(name) {
			return nil, fmt.Errorf("config %s: unknown check %q", path, name)
		}
	}
	for _, pat := range cfg.Exclude {
		if _, err := filepath.Match(strings.TrimSuffix(pat, "/"), ""); err != nil {
			return nil, fmt.Errorf("config %s: bad exclude pattern %q: %w", path, pat, err)
		}
	}
	return cfg, nil
}

func knownCheck(name string) bool {
	for _, c := range checker.AllChecks() {
		if string(c) == name {
			return true
		}
	}
	return false
}

// enabledChecks returns the checks left on by the configuration.
func (c *fileConfig) enabledChecks() []checker.Check {
	var out []checker.Check
	for _, check := range checker.AllChecks() {
		if on, ok := c.Checks[string(check)]; ok && !on {
			continue
		}
		out = append(out, check)
	}
	return out
}

// excluded reports whether rel, a slash-separated path relative to the
// checked directory, matches an exclude pattern.
func (c *fileConfig) excluded(rel string, isDir bool) bool {
	for _, pat := range c.Exclude {
		if dirPat, ok := strings.CutSuffix(pat, "/"); ok {
			if isDir && (rel == dirPat || matches(dirPat, rel)) {
				return true
			}
			continue
		}
		if matches(pat, rel) || matches(pat, filepath.Base(rel)) {
			return true
		}
	}
	return false
}

func matches(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
