package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// Options tune the browser agent.
type Options struct {
	MaxSteps       int
	StepsPerSource int
	LoopThreshold  int
	StepDelay      time.Duration
	TranscriptPath string
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = 30
	}
	if o.StepsPerSource <= 0 {
		o.StepsPerSource = 6
	}
	if o.LoopThreshold <= 0 {
		o.LoopThreshold = 3
	}
	return o
}

// Launcher opens a fresh browser for one run.
type Launcher func(ctx context.Context) (browser.Browser, error)

// Exclusive wraps launch so that at most one browser it opened is alive at a
// time, for drivers sharing one locked profile directory. A launch waits for
// the previous browser to be closed or for ctx to end.
func Exclusive(launch Launcher) Launcher {
	sem := make(chan struct{}, 1)
	return func(ctx context.Context) (browser.Browser, error) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		b, err := launch(ctx)
		if err != nil {
			<-sem
			return nil, err
		}
		return &releasingBrowser{Browser: b, release: func() { <-sem }}, nil
	}
}

type releasingBrowser struct {
	browser.Browser
	once    sync.Once
	release func()
}

func (b *releasingBrowser) Close() error {
	err := b.Browser.Close()
	b.once.Do(b.release)
	return err
}

// Agent acts on a live page.
type Agent struct {
	browser browser.Browser
	log     *zap.Logger
}

func NewAgent(b browser.Browser, log *zap.Logger) *Agent {
	return &Agent{browser: b, log: log}
}

// BrowserFactory returns a Factory whose runners drive a real browser.
func BrowserFactory(launch Launcher, c llm.Client, log *zap.Logger, opts Options) Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return func(task Task) (Runner, error) {
		return NewOrchestrator(launch, c, log, opts, task), nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
