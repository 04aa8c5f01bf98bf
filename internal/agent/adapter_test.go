package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func factoryOf(run RunnerFunc) Factory {
	return func(Task) (Runner, error) { return run, nil }
}

func withFinal(text string) *History {
	h := &History{}
	h.SetFinal(text)
	return h
}

func TestAdapterInvoke(t *testing.T) {
	tests := []struct {
		name string
		hist *History
		err  error
		want Result
	}{
		{"success", withFinal("# News\n- item"), nil, Success{Text: "# News\n- item"}},
		{"nil history", nil, nil, Empty{}},
		{"no final result", &History{Steps: []string{"step"}}, nil, Empty{}},
		{"blank final result", withFinal("  \n\t"), nil, Empty{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(factoryOf(func(context.Context) (*History, error) { return tt.hist, tt.err }), zap.NewNop())
			assert.Equal(t, tt.want, a.Invoke(context.Background(), Task{Instruction: "x"}))
		})
	}
}

func TestAdapterFailureReasons(t *testing.T) {
	tests := []struct {
		err    error
		reason string
	}{
		{ErrMaxSteps, "step limit reached"},
		{context.Canceled, "execution was interrupted"},
		{fmt.Errorf("run: %w", context.DeadlineExceeded), "agent timed out"},
		{fmt.Errorf("%w: %w", ErrLLMFail, errQuota), "LLM client error: quota exceeded"},
		{ErrNoSources, "none of the trusted sources could be read"},
		{errors.New("browser crashed"), "browser crashed"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			a := NewAdapter(factoryOf(func(context.Context) (*History, error) {
				return withFinal("ignored"), tt.err
			}), nil)

			res := a.Invoke(context.Background(), Task{})
			failure, ok := res.(Failure)
			require.True(t, ok, "got %T", res)
			assert.Equal(t, tt.reason, failure.Reason)
			assert.ErrorIs(t, failure.Err, tt.err)
		})
	}
}

func TestAdapterConstructionFailure(t *testing.T) {
	a := NewAdapter(func(Task) (Runner, error) { return nil, errors.New("no api key") }, zap.NewNop())

	res := a.Invoke(context.Background(), Task{})
	assert.Equal(t, "no api key", res.(Failure).Reason)
}

func TestAdapterRunsOnce(t *testing.T) {
	calls := 0
	a := NewAdapter(factoryOf(func(context.Context) (*History, error) {
		calls++
		return nil, errors.New("boom")
	}), zap.NewNop())

	a.Invoke(context.Background(), Task{})
	assert.Equal(t, 1, calls)
}

func TestAdapterPassesTask(t *testing.T) {
	var got Task
	a := NewAdapter(func(task Task) (Runner, error) {
		got = task
		return RunnerFunc(func(context.Context) (*History, error) { return nil, nil }), nil
	}, zap.NewNop())

	task := Task{Instruction: "instr", Sources: []Source{{Name: "A", URL: "https://a.test/"}}, Categories: []string{"science"}}
	a.Invoke(context.Background(), task)
	assert.Equal(t, task, got)
}
