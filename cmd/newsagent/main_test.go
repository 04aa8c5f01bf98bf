package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NEWSAGENT_LOGGING_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchCommandWithDemoDriver(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "search", "--driver", "demo", "--plain", "-c", "science", "-c", "Politics", "--pdf", dir+string(os.PathSeparator))
	require.NoError(t, err)

	assert.Contains(t, out, "# Daily News Summary")
	assert.Less(t, strings.Index(out, "## Science"), strings.Index(out, "## Politics"))
	assert.Contains(t, out, "PDF written to")

	files, err := filepath.Glob(filepath.Join(dir, "news_summary_*.pdf"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSearchCommandRejectsUnknownCategory(t *testing.T) {
	_, err := run(t, "search", "--driver", "demo", "--plain", "-c", "quantum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error during processing: Invalid category: quantum")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "newsagent dev (commit unknown)\n", out)
}

func TestWriteCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCategories(&buf, news.DefaultRegistry()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.True(t, strings.HasPrefix(lines[1], "politics"))
	assert.Contains(t, lines[1], "Politico")
}

func TestPDFTarget(t *testing.T) {
	now := time.Date(2026, time.March, 7, 8, 30, 0, 0, time.UTC)
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "news_summary_20260307_083000.pdf"), pdfTarget(dir, now))
	assert.Equal(t, filepath.Join("out", "news_summary_20260307_083000.pdf"), pdfTarget("out"+string(os.PathSeparator), now))
	assert.Equal(t, "report.pdf", pdfTarget("report.pdf", now))
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	got, err = readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)
}
