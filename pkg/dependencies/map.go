// Package dependencies rewrites symbolic cross-resource references (lexicon and
// attached flow names) through a static dependency map.
package dependencies

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Map resolves a symbolic dependency name to its replacement value. It is read
// once at startup and never modified afterwards.
type Map map[string]string

// LoadMap reads a dependency map file. The file holds one object of string to
// string; YAML and JSON are both accepted. An empty path yields an empty map.
func LoadMap(fs afero.Fs, path string) (Map, error) {
	if path == "" {
		return Map{}, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency map %s: %w", path, err)
	}

	m := Map{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse dependency map %s: %w", path, err)
	}
	return m, nil
}

// Lookup returns the mapped value for name.
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}
