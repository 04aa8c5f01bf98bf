package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// StepMemory keeps a short rolling history for the model and detects loops:
// one action repeated on the same page, or an A->B transition that already
// happened once before.
type StepMemory struct {
	lines    []string
	maxLines int

	threshold int
	last      string
	streak    int
	seenPairs map[[2]string]bool

	loopTriggered bool
}

func NewStepMemory(maxLines, loopThreshold int) *StepMemory {
	if maxLines <= 0 {
		maxLines = 5
	}
	if loopThreshold <= 1 {
		loopThreshold = 2
	}
	return &StepMemory{
		maxLines:  maxLines,
		threshold: loopThreshold,
		seenPairs: make(map[[2]string]bool),
	}
}

func actionKey(pageURL string, action llm.Action) string {
	target := action.URL
	if target == "" {
		target = strconv.Itoa(action.TargetID)
	}
	return string(action.Type) + "|" + pageURL + "|" + target
}

// Add records an executed action.
func (m *StepMemory) Add(step int, pageURL string, action llm.Action) {
	m.push(fmt.Sprintf("step=%d url=%s action=%s target=%d text=%q",
		step, pageURL, action.Type, action.TargetID, action.Text))

	key := actionKey(pageURL, action)
	if m.last != "" {
		m.seenPairs[[2]string{m.last, key}] = true
	}
	if key == m.last {
		m.streak++
	} else {
		m.last, m.streak = key, 1
	}
}

// ShouldBlock reports whether action would continue a loop, with a note for
// the model explaining why. finish is never blocked.
func (m *StepMemory) ShouldBlock(pageURL string, action llm.Action) (bool, string) {
	if action.Type == llm.ActionFinish {
		return false, ""
	}
	key := actionKey(pageURL, action)

	if key == m.last && m.streak >= m.threshold {
		return true, fmt.Sprintf(
			"SYSTEM NOTE: The same action (%s) was already executed %d times in a row. "+
				"Do NOT repeat it. Choose a different action or finish this source.",
			key, m.streak)
	}
	if key != m.last && m.seenPairs[[2]string{m.last, key}] {
		return true, fmt.Sprintf(
			"SYSTEM NOTE: The sequence %s->%s already happened. Do NOT repeat this pattern; "+
				"extract what you have or finish this source.", m.last, key)
	}
	return false, ""
}

// AddSystemNote adds a line meant for the model, not an action.
func (m *StepMemory) AddSystemNote(note string) {
	if note = strings.TrimSpace(note); note != "" {
		m.push(note)
	}
}

func (m *StepMemory) push(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}
}

func (m *StepMemory) HistoryLines() []string {
	if len(m.lines) == 0 {
		return nil
	}
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *StepMemory) MarkLoopTriggered() { m.loopTriggered = true }

func (m *StepMemory) LoopTriggered() bool { return m.loopTriggered }
