package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/agent"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
	"github.com/nbenliogludev/go-news-ai-agent/internal/metrics"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
)

var (
	// ErrNoNews means the agent finished without a final answer.
	ErrNoNews      = errors.New("no news returned by the agent")
	ErrNoArticles  = errors.New("no article text to summarize")
	ErrNoLLMClient = errors.New("no language model configured")
)

// AgentError carries the readable reason of a failed agent run.
type AgentError struct {
	Reason string
	Err    error
}

func (e *AgentError) Error() string { return e.Reason }
func (e *AgentError) Unwrap() error { return e.Err }

// UserMessage is the text shown to a user for a failed search.
func UserMessage(err error) string {
	if errors.Is(err, ErrNoNews) {
		return "Error during processing: Error while looking for news, try again later..."
	}
	return "Error during processing: " + err.Error()
}

type Options struct {
	// Driver labels agent run metrics.
	Driver string
	// Timeout bounds one agent run; zero means no limit.
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Service runs news searches and summaries end to end.
type Service struct {
	registry *news.Registry
	adapter  *agent.Adapter
	llm      llm.Client
	log      *zap.Logger
	opts     Options
}

// New wires a Service. c is only needed by Summarize and may be nil.
func New(reg *news.Registry, factory agent.Factory, c llm.Client, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2048
	}
	return &Service{
		registry: reg,
		adapter:  agent.NewAdapter(factory, log),
		llm:      c,
		log:      log.With(zap.String("component", "pipeline")),
		opts:     opts,
	}
}

func (s *Service) Registry() *news.Registry { return s.registry }

// Search validates req, runs the agent once and returns its Markdown answer.
// Validation errors are returned before any agent is built.
func (s *Service) Search(ctx context.Context, req news.SearchRequest) (string, error) {
	day := s.opts.Now()
	prepared, err := news.Prepare(req, s.registry, day)
	if err != nil {
		s.opts.Metrics.RecordSearch(metrics.OutcomeInvalid)
		s.log.Info("search rejected", zap.Error(err))
		return "", err
	}
	if len(prepared.Options.Coerced) > 0 {
		s.log.Warn("search options fell back to defaults",
			zap.Strings("fields", prepared.Options.Coerced),
			zap.String("summary_type", req.SummaryType),
			zap.String("summary_style", req.SummaryStyle),
		)
	}
	s.log.Debug("agent task", zap.String("task", prepared.Instruction))

	task := taskFor(prepared, day)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	res := s.adapter.Invoke(ctx, task)
	s.opts.Metrics.RecordAgentRun(s.opts.Driver, time.Since(start))

	switch r := res.(type) {
	case agent.Success:
		s.opts.Metrics.RecordSearch(metrics.OutcomeSuccess)
		s.log.Info("search finished",
			zap.Strings("categories", task.Categories),
			zap.Duration("duration", time.Since(start)))
		return r.Text, nil
	case agent.Failure:
		s.opts.Metrics.RecordSearch(metrics.OutcomeFailure)
		s.log.Warn("agent run failed", zap.String("reason", r.Reason), zap.Error(r.Err))
		return "", &AgentError{Reason: r.Reason, Err: r.Err}
	default:
		s.opts.Metrics.RecordSearch(metrics.OutcomeEmpty)
		s.log.Warn("agent returned no result")
		return "", ErrNoNews
	}
}

func taskFor(p *news.Prepared, day time.Time) agent.Task {
	task := agent.Task{
		Instruction: p.Instruction,
		Date:        day,
	}
	for _, e := range p.Entries {
		task.Categories = append(task.Categories, string(e.Key))
		for _, src := range e.Sources {
			task.Sources = append(task.Sources, agent.Source{
				Name:     src.Name,
				URL:      src.URL,
				Feed:     src.Feed,
				Category: e.Label,
			})
		}
	}
	return task
}

// Summarize condenses raw article text with one direct model call.
func (s *Service) Summarize(ctx context.Context, req news.SummaryRequest) (string, error) {
	if s.llm == nil {
		return "", ErrNoLLMClient
	}
	if strings.TrimSpace(req.Articles) == "" {
		return "", ErrNoArticles
	}

	out, err := llm.Complete(ctx, s.llm, news.BuildSummaryPrompt(req), s.opts.Temperature, s.opts.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}
