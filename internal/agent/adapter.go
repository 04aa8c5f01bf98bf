package agent

import (
	"context"

	"go.uber.org/zap"
)

// Result is the outcome of one agent invocation: Success, Empty or Failure.
type Result interface {
	isResult()
}

// Success carries the agent's final Markdown text.
type Success struct {
	Text string
}

// Empty means the agent finished without a usable answer.
type Empty struct{}

// Failure means the agent could not be built or its run failed.
type Failure struct {
	Reason string
	Err    error
}

func (Success) isResult() {}
func (Empty) isResult()   {}
func (Failure) isResult() {}

// Adapter turns a task into a Result by building and running an agent once.
// It never retries and adds no timeout of its own.
type Adapter struct {
	factory Factory
	log     *zap.Logger
}

func NewAdapter(f Factory, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{factory: f, log: log.With(zap.String("component", "adapter"))}
}

func (a *Adapter) Invoke(ctx context.Context, task Task) Result {
	runner, err := a.factory(task)
	if err != nil {
		a.log.Error("agent construction failed", zap.Error(err))
		return Failure{Reason: humanizeReason(err), Err: err}
	}

	hist, err := runner.Run(ctx)
	return Outcome(hist, err)
}

// Outcome converts a finished run into a Result.
func Outcome(hist *History, err error) Result {
	if err != nil {
		return Failure{Reason: humanizeReason(err), Err: err}
	}
	text, ok := hist.FinalResult()
	if !ok || blank(text) {
		return Empty{}
	}
	return Success{Text: text}
}
