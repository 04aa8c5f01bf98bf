package news

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	want := []string{
		"politics", "finance", "technology", "science", "health", "sports",
		"entertainment", "lifestyle", "education", "opinion", "crime & law", "environment",
	}
	if diff := cmp.Diff(want, reg.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, reg.Version())

	finance, ok := reg.Lookup("finance")
	require.True(t, ok)
	assert.Equal(t, "Finance", finance.Label)
	assert.Equal(t, "### Business & Economy\n- Bloomberg: https://www.bloomberg.com/\n\n", finance.Block())
}

func TestEntriesReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	entries := reg.Entries()
	entries[0].Heading = "changed"

	e, _ := reg.Lookup("politics")
	assert.Equal(t, "Politics", e.Heading)
}

func TestLoadRegistryValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{"empty", "version: 1\ncategories: []\n", "no categories"},
		{"missing key", "categories:\n  - label: X\n    sources: [{name: a, url: b}]\n", "without key"},
		{"duplicate", "categories:\n  - key: a\n    sources: [{name: a, url: b}]\n  - key: A\n    sources: [{name: a, url: b}]\n", "duplicate"},
		{"no sources", "categories:\n  - key: a\n", "no sources"},
		{"bad yaml", "categories: [", "decode registry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestLoadRegistryDefaultsLabelAndHeading(t *testing.T) {
	reg, err := LoadRegistry(strings.NewReader("version: 2\ncategories:\n  - key: World\n    sources:\n      - name: Reuters\n        url: https://www.reuters.com/world/\n"))
	require.NoError(t, err)

	e, ok := reg.Lookup("world")
	require.True(t, ok)
	assert.Equal(t, "world", e.Label)
	assert.Equal(t, "world", e.Heading)
	assert.Equal(t, 2, reg.Version())
}

func TestLoadRegistryFile(t *testing.T) {
	reg, err := LoadRegistryFile("")
	require.NoError(t, err)
	assert.Len(t, reg.Keys(), 12)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - key: local\n    sources: [{name: Gazette, url: https://gazette.test/}]\n"), 0o644))

	reg, err = LoadRegistryFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, reg.Keys())

	_, err = LoadRegistryFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
