package main

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/agent"
	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
	"github.com/nbenliogludev/go-news-ai-agent/internal/pipeline"
	"github.com/nbenliogludev/go-news-ai-agent/internal/report"
)

// TestDailyNewsSearch runs a real search against the live sources. It uses
// the feed agent unless NEWSAGENT_E2E_DRIVER names a browser driver.
func TestDailyNewsSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live news e2e test in short mode")
	}
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		t.Skip("OPENAI_API_KEY is not set")
	}

	log := zap.NewExample()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := llm.NewOpenAIClient(llm.Config{APIKey: key})
	require.NoError(t, err)

	var factory agent.Factory
	switch driver := os.Getenv("NEWSAGENT_E2E_DRIVER"); driver {
	case browser.DriverPlaywright, browser.DriverChromedp:
		launch := func(ctx context.Context) (browser.Browser, error) {
			return browser.New(ctx, browser.Options{Driver: driver, Headless: true})
		}
		factory = agent.BrowserFactory(launch, client, log, agent.Options{StepDelay: time.Second})
	default:
		factory = agent.FeedFactory(client, log, agent.FeedOptions{})
	}

	svc := pipeline.New(news.DefaultRegistry(), factory, client, log, pipeline.Options{})
	text, err := svc.Search(ctx, news.SearchRequest{
		Region:       "International",
		Categories:   []string{"science", "technology"},
		SummaryType:  "concise",
		SummaryStyle: "formal",
		Language:     "English",
	})
	if err != nil {
		t.Fatal(pipeline.UserMessage(err))
	}
	t.Logf("agent answer:\n%s", text)
	assert.Contains(t, text, "http")

	pdf, err := report.PDF(text)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
