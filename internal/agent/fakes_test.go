package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		// Started from init by opencensus, which the genai SDK links in.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

type fakePage struct {
	title string
	tree  string
	html  string
}

type fakeBrowser struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	clickTo map[int]string
	url     string
	visits  []string
	scrolls int
	closed  bool
}

func newFakeBrowser(pages map[string]fakePage) *fakeBrowser {
	return &fakeBrowser{pages: pages, clickTo: map[int]string{}}
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pages[url]; !ok {
		return fmt.Errorf("404 %s", url)
	}
	b.url = url
	b.visits = append(b.visits, url)
	return nil
}

func (b *fakeBrowser) Snapshot(context.Context) (*browser.PageSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.pages[b.url]
	return &browser.PageSnapshot{URL: b.url, Title: p.title, Tree: p.tree}, nil
}

func (b *fakeBrowser) Click(_ context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	target, ok := b.clickTo[id]
	if !ok {
		return fmt.Errorf("no element %d", id)
	}
	b.url = target
	b.visits = append(b.visits, target)
	return nil
}

func (b *fakeBrowser) Type(context.Context, int, string, bool) error { return nil }

func (b *fakeBrowser) Scroll(context.Context) error {
	b.mu.Lock()
	b.scrolls++
	b.mu.Unlock()
	return nil
}

func (b *fakeBrowser) HTML(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages[b.url].html, nil
}

func (b *fakeBrowser) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func launcherFor(b browser.Browser) Launcher {
	return func(context.Context) (browser.Browser, error) { return b, nil }
}

// scriptedLLM answers JSON decision requests from a script and plain
// requests with a fixed synthesis text.
type scriptedLLM struct {
	mu           sync.Mutex
	decisions    []string
	synthesis    string
	err          error
	decisionReqs []llm.ChatRequest
	synthReqs    []llm.ChatRequest
}

func (s *scriptedLLM) Chat(_ context.Context, req llm.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if !req.JSON {
		s.synthReqs = append(s.synthReqs, req)
		return s.synthesis, nil
	}
	s.decisionReqs = append(s.decisionReqs, req)
	if len(s.decisions) == 0 {
		return `{"action":{"type":"finish"}}`, nil
	}
	next := s.decisions[0]
	s.decisions = s.decisions[1:]
	return next, nil
}

func (s *scriptedLLM) Provider() string { return "fake" }

func (s *scriptedLLM) userPrompt(i int) string {
	return s.decisionReqs[i].Messages[1].Content
}

var errQuota = errors.New("quota exceeded")
