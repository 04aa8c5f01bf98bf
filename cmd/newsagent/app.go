package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/agent"
	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/config"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
	"github.com/nbenliogludev/go-news-ai-agent/internal/metrics"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
	"github.com/nbenliogludev/go-news-ai-agent/internal/pipeline"
)

// app holds the components shared by the subcommands.
type app struct {
	registry *news.Registry
	service  *pipeline.Service
	metrics  *metrics.Metrics
	gatherer *prometheus.Registry
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	reg := news.DefaultRegistry()
	if cfg.Registry.Path != "" {
		var err error
		reg, err = news.LoadRegistryFile(cfg.Registry.Path)
		if err != nil {
			return nil, err
		}
		log.Info("loaded source registry", zap.String("path", cfg.Registry.Path), zap.Int("version", reg.Version()))
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	client, err := llm.NewClient(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	switch {
	case err == nil:
		client = llm.WithObserver(client, m.LLMObserver())
	case cfg.Agent.Driver == config.DriverDemo:
		log.Warn("no language model available, summaries are disabled", zap.Error(err))
		client = nil
	default:
		return nil, fmt.Errorf("llm client: %w", err)
	}

	factory, err := newFactory(cfg, client, log)
	if err != nil {
		return nil, err
	}

	svc := pipeline.New(reg, factory, client, log, pipeline.Options{
		Driver:      cfg.Agent.Driver,
		Timeout:     cfg.Agent.Timeout,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Metrics:     m,
	})

	return &app{registry: reg, service: svc, metrics: m, gatherer: promReg}, nil
}

func newFactory(cfg *config.Config, client llm.Client, log *zap.Logger) (agent.Factory, error) {
	ac := cfg.Agent
	switch ac.Driver {
	case config.DriverPlaywright, config.DriverChromedp:
		var launch agent.Launcher = func(ctx context.Context) (browser.Browser, error) {
			return browser.New(ctx, browser.Options{
				Driver:      ac.Driver,
				Headless:    ac.Headless,
				UserDataDir: ac.UserDataDir,
			})
		}
		if ac.UserDataDir != "" {
			launch = agent.Exclusive(launch)
		}
		return agent.BrowserFactory(launch, client, log, agent.Options{
			MaxSteps:       ac.MaxSteps,
			StepsPerSource: ac.StepsPerSource,
			LoopThreshold:  ac.LoopThreshold,
			StepDelay:      ac.StepDelay,
			TranscriptPath: ac.TranscriptPath,
		}), nil
	case config.DriverFeed:
		return agent.FeedFactory(client, log, agent.FeedOptions{
			Concurrency:    ac.Concurrency,
			TranscriptPath: ac.TranscriptPath,
		}), nil
	case config.DriverDemo:
		return pipeline.DemoFactory(), nil
	default:
		return nil, fmt.Errorf("unknown agent driver %q", ac.Driver)
	}
}
