package agent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
	"github.com/nbenliogludev/go-news-ai-agent/internal/planner"
)

// Orchestrator runs one task in a browser: it walks the source plan, lets a
// sub-agent drive each source and finally has the model write the answer
// from the collected notes.
type Orchestrator struct {
	launch    Launcher
	llm       llm.Client
	log       *zap.Logger
	opts      Options
	task      Task
	navigator SubAgent
	extractor SubAgent
}

func NewOrchestrator(launch Launcher, c llm.Client, log *zap.Logger, opts Options, task Task) *Orchestrator {
	return &Orchestrator{
		launch:    launch,
		llm:       c,
		log:       log.With(zap.String("component", "browser-agent")),
		opts:      opts.withDefaults(),
		task:      task,
		navigator: &NavigatorAgent{LLM: c},
		extractor: &ExtractorAgent{LLM: c},
	}
}

// runState is the mutable state of one Run.
type runState struct {
	agent     *Agent
	mem       *StepMemory
	reporter  *Reporter
	notes     []string
	step      int
	prevTree  string
	stepNotes int
	blocks    int
}

func (o *Orchestrator) plan() *planner.Plan {
	srcs := make([]planner.Source, len(o.task.Sources))
	for i, s := range o.task.Sources {
		srcs[i] = planner.Source{Name: s.Name, URL: s.URL, Category: s.Category}
	}
	return planner.FromSources(srcs)
}

func (o *Orchestrator) Run(ctx context.Context) (hist *History, err error) {
	start := time.Now()
	hist = &History{}
	rs := &runState{
		mem:      NewStepMemory(10, o.opts.LoopThreshold),
		reporter: NewReporter(o.log, o.task.Instruction, o.opts.TranscriptPath),
	}
	defer func() {
		hist.Steps = rs.reporter.Trace()
		rs.reporter.Finish(start, hist, err)
	}()

	plan := o.plan()
	o.log.Info("plan ready", zap.Int("steps", len(plan.Steps)))
	o.log.Debug("plan", zap.String("steps", plan.String()))

	b, err := o.launch(ctx)
	if err != nil {
		return hist, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			o.log.Warn("close browser", zap.Error(cerr))
		}
	}()
	rs.agent = NewAgent(b, o.log)

	failedSources := 0
	exhausted := false
	for _, ps := range plan.Steps {
		if rs.step >= o.opts.MaxSteps {
			exhausted = true
			rs.reporter.Event("step limit reached before plan step %d", ps.Index)
			break
		}
		if err := o.runPlanStep(ctx, rs, ps); err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrLLMFail) {
				return hist, err
			}
			failedSources++
			rs.reporter.Event("PLAN STEP %d | %s failed: %v", ps.Index, ps.Source, err)
		}
	}

	if rs.mem.LoopTriggered() {
		o.log.Info("loop guard intervened during the run")
	}

	if len(rs.notes) == 0 {
		switch {
		case len(plan.Steps) > 0 && failedSources == len(plan.Steps):
			return hist, ErrNoSources
		case exhausted:
			return hist, ErrMaxSteps
		}
		return hist, nil
	}

	text, err := llm.Synthesize(ctx, o.llm, llm.SynthesisInput{
		Task:  o.task.Instruction,
		Notes: rs.notes,
	})
	if err != nil {
		return hist, fmt.Errorf("%w: %w", ErrLLMFail, err)
	}
	hist.SetFinal(text)
	return hist, nil
}

// runPlanStep drives one source until its sub-agent finishes, its step share
// is used up or the global limit is hit.
func (o *Orchestrator) runPlanStep(ctx context.Context, rs *runState, ps planner.PlanStep) error {
	rs.stepNotes, rs.blocks, rs.prevTree = 0, 0, ""

	var origin *url.URL
	if ps.URL != "" {
		rs.reporter.Event("PLAN STEP %d | open %s", ps.Index, ps.URL)
		if err := rs.agent.browser.Navigate(ctx, ps.URL); err != nil {
			return err
		}
		origin, _ = url.Parse(ps.URL)
	} else if cur := rs.agent.browser.URL(); cur != "" {
		origin, _ = url.Parse(cur)
	}

	sub := o.extractor
	if ps.Mode == planner.ModeNavigation {
		sub = o.navigator
	}
	o.log.Info("plan step", zap.Int("index", ps.Index), zap.String("agent", sub.Name()), zap.String("goal", ps.Goal))

	for i := 0; i < o.opts.StepsPerSource && rs.step < o.opts.MaxSteps; i++ {
		rs.step++
		done, err := o.executeStep(ctx, rs, sub, ps, origin)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrLLMFail) {
				return err
			}
			rs.reporter.StepError(rs.step, err)
			if errors.Is(err, ErrSnapshotFail) {
				return err
			}
		}
		if done {
			return nil
		}
		if err := sleepCtx(ctx, o.opts.StepDelay); err != nil {
			return err
		}
	}
	return nil
}
