package news

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSources []byte

// Category is a lowercase registry key such as "politics" or "crime & law".
type Category string

// Source is one trusted outlet for a category. Feed is optional.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Feed string `yaml:"feed,omitempty"`
}

// CategoryEntry groups the trusted sources of a category.
type CategoryEntry struct {
	Key     Category `yaml:"key"`
	Label   string   `yaml:"label"`
	Heading string   `yaml:"heading"`
	Sources []Source `yaml:"sources"`
}

// Block renders the "trusted sources" segment for this category.
func (e CategoryEntry) Block() string {
	var sb strings.Builder
	sb.WriteString("### " + e.Heading + "\n")
	for _, s := range e.Sources {
		sb.WriteString("- " + s.Name + ": " + s.URL + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// Registry is the immutable category → sources table. Build it once at start
// and share it.
type Registry struct {
	version int
	entries []CategoryEntry
	byKey   map[Category]int
}

type registryFile struct {
	Version    int             `yaml:"version"`
	Categories []CategoryEntry `yaml:"categories"`
}

// DefaultRegistry returns the registry compiled into the binary.
func DefaultRegistry() *Registry {
	reg, err := LoadRegistry(bytes.NewReader(defaultSources))
	if err != nil {
		panic(fmt.Sprintf("embedded sources.yaml is invalid: %v", err))
	}
	return reg
}

// LoadRegistryFile reads a registry from path; an empty path yields the default.
func LoadRegistryFile(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return LoadRegistry(f)
}

// LoadRegistry decodes and validates a YAML registry.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("registry has no categories")
	}

	reg := &Registry{
		version: file.Version,
		entries: make([]CategoryEntry, 0, len(file.Categories)),
		byKey:   make(map[Category]int, len(file.Categories)),
	}
	for _, e := range file.Categories {
		e.Key = Category(strings.ToLower(strings.TrimSpace(string(e.Key))))
		if e.Key == "" {
			return nil, fmt.Errorf("registry category without key")
		}
		if _, dup := reg.byKey[e.Key]; dup {
			return nil, fmt.Errorf("duplicate registry category %q", e.Key)
		}
		if len(e.Sources) == 0 {
			return nil, fmt.Errorf("category %q has no sources", e.Key)
		}
		if e.Label == "" {
			e.Label = string(e.Key)
		}
		if e.Heading == "" {
			e.Heading = e.Label
		}
		reg.byKey[e.Key] = len(reg.entries)
		reg.entries = append(reg.entries, e)
	}
	return reg, nil
}

func (r *Registry) Version() int { return r.version }

// Lookup returns the entry for a normalized key.
func (r *Registry) Lookup(c Category) (CategoryEntry, bool) {
	i, ok := r.byKey[c]
	if !ok {
		return CategoryEntry{}, false
	}
	return r.entries[i], true
}

// Entries returns a copy of all entries in file order.
func (r *Registry) Entries() []CategoryEntry {
	out := make([]CategoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Keys lists the allowed category keys in file order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = string(e.Key)
	}
	return keys
}
