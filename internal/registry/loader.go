// Package registry resolves named inference endpoints from a registry file,
// so CLI users can address servers by alias instead of URL.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"trtbridge/internal/common/fsutil"
)

// Endpoint is one named server entry.
type Endpoint struct {
	// ServerURL is the tensor-serving server address for this entry.
	ServerURL string `yaml:"server_url" toml:"server_url"`
	// TakeoffURL is the HTTP generation server base URL for this entry.
	TakeoffURL string `yaml:"takeoff_url" toml:"takeoff_url"`
	// Model is the default model name on this endpoint.
	Model string `yaml:"model" toml:"model"`
}

// Registry maps endpoint aliases to entries.
type Registry struct {
	Endpoints map[string]Endpoint `yaml:"endpoints" toml:"endpoints"`
}

// Load reads a registry file (.yaml/.yml or .toml). A leading '~' in the
// path is expanded to the user's home directory.
func Load(path string) (*Registry, error) {
	base, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(base)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var reg Registry
	switch ext := strings.ToLower(filepath.Ext(base)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &reg); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &reg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported registry extension: %s", ext)
	}
	return &reg, nil
}

// Lookup resolves an alias.
func (r *Registry) Lookup(alias string) (Endpoint, bool) {
	e, ok := r.Endpoints[alias]
	return e, ok
}

// Names returns the registered aliases, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Endpoints))
	for n := range r.Endpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
