package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

const maxPageBytes = 4 << 20

// FeedOptions tune the browserless agent.
type FeedOptions struct {
	Concurrency    int
	PerSource      int
	MaxChars       int
	UserAgent      string
	TranscriptPath string
	HTTPClient     *http.Client
}

func (o FeedOptions) withDefaults() FeedOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.PerSource <= 0 {
		o.PerSource = maxArticlesPerSource
	}
	if o.MaxChars <= 0 {
		o.MaxChars = maxNoteChars
	}
	if o.UserAgent == "" {
		o.UserAgent = "go-news-ai-agent/1.0"
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	return o
}

// FeedAgent reads the trusted sources over plain HTTP: RSS/Atom feeds when
// a source has one, otherwise headline links from the front page.
type FeedAgent struct {
	llm    llm.Client
	log    *zap.Logger
	opts   FeedOptions
	parser *gofeed.Parser
	task   Task
}

// FeedFactory returns a Factory of feed agents.
func FeedFactory(c llm.Client, log *zap.Logger, opts FeedOptions) Factory {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	return func(task Task) (Runner, error) {
		return NewFeedAgent(c, log, opts, task), nil
	}
}

func NewFeedAgent(c llm.Client, log *zap.Logger, opts FeedOptions, task Task) *FeedAgent {
	opts = opts.withDefaults()
	parser := gofeed.NewParser()
	parser.Client = opts.HTTPClient
	parser.UserAgent = opts.UserAgent
	return &FeedAgent{
		llm:    c,
		log:    log.With(zap.String("component", "feed-agent")),
		opts:   opts,
		parser: parser,
		task:   task,
	}
}

type candidate struct {
	Title   string
	URL     string
	Summary string
}

func (f *FeedAgent) Run(ctx context.Context) (hist *History, err error) {
	start := time.Now()
	hist = &History{}
	reporter := NewReporter(f.log, f.task.Instruction, f.opts.TranscriptPath)
	defer func() {
		hist.Steps = reporter.Trace()
		reporter.Finish(start, hist, err)
	}()

	if len(f.task.Sources) == 0 {
		return hist, ErrNoSources
	}

	day := f.task.Date
	if day.IsZero() {
		day = time.Now()
	}

	var (
		mu     sync.Mutex
		failed int
	)
	results := make([][]string, len(f.task.Sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, src := range f.task.Sources {
		g.Go(func() error {
			notes, err := f.collect(gctx, src, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed++
				reporter.Event("SOURCE %s | failed: %v", src.Name, err)
				return nil
			}
			reporter.Event("SOURCE %s | %d articles", src.Name, len(notes))
			results[i] = notes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return hist, err
	}
	if failed == len(f.task.Sources) {
		return hist, ErrNoSources
	}

	var notes []string
	for _, r := range results {
		notes = append(notes, r...)
	}
	if len(notes) == 0 {
		return hist, nil
	}

	text, err := llm.Synthesize(ctx, f.llm, llm.SynthesisInput{
		Task:  f.task.Instruction,
		Notes: notes,
	})
	if err != nil {
		return hist, fmt.Errorf("%w: %w", ErrLLMFail, err)
	}
	hist.SetFinal(text)
	return hist, nil
}

// collect returns up to PerSource article notes for one source.
func (f *FeedAgent) collect(ctx context.Context, src Source, day time.Time) ([]string, error) {
	var cands []candidate
	if src.Feed != "" {
		feed, err := f.parser.ParseURLWithContext(src.Feed, ctx)
		if err != nil {
			f.log.Warn("feed unavailable, using front page", zap.String("source", src.Name), zap.Error(err))
		} else {
			cands = pickFeedItems(feed.Items, day, f.opts.PerSource)
			if len(cands) == 0 {
				return nil, nil
			}
		}
	}

	if cands == nil {
		html, err := f.fetch(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		links, err := browser.HeadlineLinks(html, src.URL, f.opts.PerSource)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			cands = append(cands, candidate{Title: l.Title, URL: l.URL})
		}
	}

	notes := make([]string, 0, len(cands))
	for _, c := range cands {
		body := c.Summary
		if html, err := f.fetch(ctx, c.URL); err == nil {
			if art, err := browser.ReadableText(html, f.opts.MaxChars); err == nil && !blank(art.Text) {
				body = art.Text
			}
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		} else {
			f.log.Debug("article fetch failed", zap.String("url", c.URL), zap.Error(err))
		}
		if blank(body) {
			continue
		}
		notes = append(notes, formatNote(src, c, body))
	}
	return notes, nil
}

// pickFeedItems keeps items published on day. When no item carries a date
// the newest items are used as they are.
func pickFeedItems(items []*gofeed.Item, day time.Time, limit int) []candidate {
	dated := false
	for _, it := range items {
		if publishedAt(it) != nil {
			dated = true
			break
		}
	}

	y, m, d := day.Date()
	var out []candidate
	for _, it := range items {
		if dated {
			ts := publishedAt(it)
			if ts == nil {
				continue
			}
			if iy, im, id := ts.In(day.Location()).Date(); iy != y || im != m || id != d {
				continue
			}
		}
		out = append(out, candidate{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Summary: plainText(it.Description),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func publishedAt(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	return it.UpdatedParsed
}

func plainText(s string) string {
	if blank(s) {
		return ""
	}
	art, err := browser.ReadableText("<body><p>"+s+"</p></body>", 0)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return art.Text
}

func formatNote(src Source, c candidate, body string) string {
	var sb strings.Builder
	if src.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", src.Category)
	}
	fmt.Fprintf(&sb, "Source: %s\nTitle: %s\nURL: %s\n\n%s", src.Name, c.Title, c.URL, body)
	return sb.String()
}

func (f *FeedAgent) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}
