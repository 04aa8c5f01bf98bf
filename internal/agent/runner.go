package agent

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrMaxSteps     = errors.New("max steps reached")
	ErrSnapshotFail = errors.New("snapshot error")
	ErrLLMFail      = errors.New("llm error")
	ErrNoSources    = errors.New("no source could be read")
	ErrOffDomain    = errors.New("navigation outside the source domain")
)

// Source is a trusted site the agent may read.
type Source struct {
	Name     string
	URL      string
	Feed     string
	Category string
}

// Task is one unit of work for an agent: the natural-language instruction
// and the structured source list it was built from.
type Task struct {
	Instruction string
	Sources     []Source
	Categories  []string
	Date        time.Time
}

// History records what a run did. The final result is absent until an agent
// sets it.
type History struct {
	Steps []string
	final string
	done  bool
}

func (h *History) SetFinal(text string) {
	h.final = text
	h.done = true
}

// FinalResult returns the final answer and whether one was produced.
func (h *History) FinalResult() (string, bool) {
	if h == nil || !h.done {
		return "", false
	}
	return h.final, true
}

// Runner executes a task once.
type Runner interface {
	Run(ctx context.Context) (*History, error)
}

// Factory builds a runner for a task. Model handles and transcript paths are
// bound when the factory is created.
type Factory func(task Task) (Runner, error)

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) (*History, error)

func (f RunnerFunc) Run(ctx context.Context) (*History, error) { return f(ctx) }

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
