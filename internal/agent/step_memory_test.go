package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

const page = "https://news.test/"

func TestStepMemoryBlocksRepeatedAction(t *testing.T) {
	m := NewStepMemory(10, 3)
	click := llm.Action{Type: llm.ActionClick, TargetID: 7}

	for i := 1; i <= 3; i++ {
		blocked, _ := m.ShouldBlock(page, click)
		require.False(t, blocked, "attempt %d", i)
		m.Add(i, page, click)
	}

	blocked, reason := m.ShouldBlock(page, click)
	assert.True(t, blocked)
	assert.Contains(t, reason, "3 times in a row")

	other, _ := m.ShouldBlock(page, llm.Action{Type: llm.ActionClick, TargetID: 8})
	assert.False(t, other)
	onOtherPage, _ := m.ShouldBlock(page+"x", click)
	assert.False(t, onOtherPage)
}

func TestStepMemoryBlocksRepeatedPattern(t *testing.T) {
	m := NewStepMemory(10, 5)
	a := llm.Action{Type: llm.ActionClick, TargetID: 1}
	b := llm.Action{Type: llm.ActionNavigate, URL: page}

	m.Add(1, page, a)
	m.Add(2, page, b)
	blocked, _ := m.ShouldBlock(page, a)
	require.False(t, blocked)
	m.Add(3, page, a)

	blocked, reason := m.ShouldBlock(page, b)
	assert.True(t, blocked)
	assert.Contains(t, reason, "already happened")
}

func TestStepMemoryNeverBlocksFinish(t *testing.T) {
	m := NewStepMemory(10, 2)
	finish := llm.Action{Type: llm.ActionFinish}
	m.Add(1, page, finish)
	m.Add(2, page, finish)

	blocked, _ := m.ShouldBlock(page, finish)
	assert.False(t, blocked)
}

func TestStepMemoryRollsHistory(t *testing.T) {
	m := NewStepMemory(3, 3)
	for i := 1; i <= 5; i++ {
		m.AddSystemNote(fmt.Sprintf("note %d", i))
	}
	m.AddSystemNote("   ")

	assert.Equal(t, []string{"note 3", "note 4", "note 5"}, m.HistoryLines())
	assert.False(t, m.LoopTriggered())
	m.MarkLoopTriggered()
	assert.True(t, m.LoopTriggered())
}

func TestBuildTaskWithEnvironment(t *testing.T) {
	out := BuildTaskWithEnvironment("find news", "https://www.Vice.com/en/section/life/")
	assert.Contains(t, out, "You are working on the site www.vice.com.")
	assert.Contains(t, out, "starts at path /en/section/life.")
	assert.Contains(t, out, "User task:\nfind news")

	assert.NotContains(t, BuildTaskWithEnvironment("t", "https://ew.com/"), "starts at path")
	assert.Equal(t, "raw", BuildTaskWithEnvironment("raw", "not a url"))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://a.test/x/y", normalizeURL("https://a.test/x/", "y"))
	assert.Equal(t, "https://a.test/z", normalizeURL("https://a.test/x/", "/z"))
	assert.Equal(t, "https://b.test/", normalizeURL("https://a.test/", "https://b.test/"))
	assert.Equal(t, "https://a.test/", normalizeURL("https://a.test/", "  "))
}

func TestSignalControllerClose(t *testing.T) {
	ctx, s := NewSignalController(context.Background())
	assert.False(t, s.Interrupted())
	s.Close()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
