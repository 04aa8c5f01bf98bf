package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/metrics"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
	"github.com/nbenliogludev/go-news-ai-agent/internal/pipeline"
)

var now = time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	mu    sync.Mutex
	text  string
	err   error
	reqs  []news.SearchRequest
	block chan struct{}
	began chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, req news.SearchRequest) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.began != nil {
		f.began <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type harness struct {
	dash   *Server
	srv    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, s Searcher, opts Options) *harness {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	dash := NewServer(s, news.DefaultRegistry(), zap.NewNop(), opts)
	srv := httptest.NewServer(dash.Router())
	t.Cleanup(srv.Close)
	return &harness{dash: dash, srv: srv, client: newClient(t, srv)}
}

func newClient(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := *srv.Client()
	c.Jar = jar
	return &c
}

func (h *harness) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (h *harness) search(t *testing.T, c *http.Client, form url.Values) string {
	t.Helper()
	resp, err := c.PostForm(h.srv.URL+"/search", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return string(body)
}

func politicsForm() url.Values {
	return url.Values{
		"categories":    {"politics", "finance"},
		"region":        {"Europe"},
		"summary_type":  {"concise"},
		"summary_style": {"funny"},
		"language":      {"French"},
	}
}

func TestIndexRendersForm(t *testing.T) {
	h := newHarness(t, &fakeSearcher{}, Options{})

	resp, body := h.get(t, h.client, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-state="idle"`)
	assert.Contains(t, body, `<option value="politics" selected>Politics</option>`)
	assert.Contains(t, body, `<option value="environment">Environment</option>`)
	assert.Contains(t, body, `<option value="International" selected>International</option>`)
	assert.Contains(t, body, `<option value="concise" selected>Concise</option>`)
	assert.NotContains(t, body, "Download PDF")

	u, _ := url.Parse(h.srv.URL)
	require.Len(t, h.client.Jar.Cookies(u), 1)
	assert.Equal(t, sessionCookie, h.client.Jar.Cookies(u)[0].Name)
	assert.Zero(t, h.dash.sessions.len())
}

func TestSearchShowsResults(t *testing.T) {
	s := &fakeSearcher{text: "## Politics\n- Budget passed"}
	h := newHarness(t, s, Options{})

	body := h.search(t, h.client, politicsForm())
	assert.Contains(t, body, `data-state="showing-results"`)
	assert.Contains(t, body, "<h2>Politics</h2>")
	assert.Contains(t, body, "<li>Budget passed</li>")
	assert.Contains(t, body, "Download PDF")
	assert.Contains(t, body, `<option value="finance" selected>Finance</option>`)
	assert.Contains(t, body, `<option value="French" selected>French</option>`)

	require.Len(t, s.reqs, 1)
	assert.Equal(t, news.SearchRequest{
		Region:       "Europe",
		Categories:   []string{"politics", "finance"},
		SummaryType:  "concise",
		SummaryStyle: "funny",
		Language:     "French",
	}, s.reqs[0])
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty result", pipeline.ErrNoNews, "Error during processing: Error while looking for news, try again later..."},
		{"agent failure", &pipeline.AgentError{Reason: "agent timed out"}, "Error during processing: agent timed out"},
		{"invalid category", &news.InvalidCategoryError{Category: "quantum", Allowed: []string{"politics"}}, "Error during processing: Invalid category: quantum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeSearcher{err: tt.err}, Options{})

			body := h.search(t, h.client, politicsForm())
			assert.Contains(t, body, `data-state="showing-error"`)
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, "News Summary")
		})
	}
}

func TestPDFDownload(t *testing.T) {
	var exported string
	export := func(md string) ([]byte, error) {
		exported = md
		return []byte("%PDF-1.3 fake"), nil
	}
	reg := prometheus.NewRegistry()
	h := newHarness(t, &fakeSearcher{text: "# News"}, Options{
		Export:   export,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	h.search(t, h.client, politicsForm())

	resp, body := h.get(t, h.client, "/report.pdf")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="news_summary_20260307_100000.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 fake", body)
	assert.Equal(t, "# News", exported)

	_, metricsBody := h.get(t, h.client, "/metrics")
	assert.Contains(t, metricsBody, `newsagent_pdf_exports_total{status="success"} 1`)
}

func TestPDFFailureKeepsResults(t *testing.T) {
	export := func(string) ([]byte, error) { return nil, errors.New("font missing") }
	h := newHarness(t, &fakeSearcher{text: "## Science\nComets"}, Options{Export: export})
	h.search(t, h.client, politicsForm())

	resp, body := h.get(t, h.client, "/report.pdf")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-state="showing-results"`)
	assert.Contains(t, body, "Error during PDF generation: font missing")
	assert.Contains(t, body, "<h2>Science</h2>")
}

func TestPDFWithoutResults(t *testing.T) {
	h := newHarness(t, &fakeSearcher{}, Options{})

	resp, _ := h.get(t, h.client, "/report.pdf")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
	assert.Zero(t, h.dash.sessions.len())
}

type panicSearcher struct{}

func (panicSearcher) Search(context.Context, news.SearchRequest) (string, error) {
	panic("nil map write")
}

func TestPanickingSearchEndsInError(t *testing.T) {
	h := newHarness(t, panicSearcher{}, Options{})
	h.get(t, h.client, "/")

	resp, err := h.client.PostForm(h.srv.URL+"/search", politicsForm())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, body := h.get(t, h.client, "/")
	assert.Contains(t, body, `data-state="showing-error"`)
	assert.Contains(t, body, "Error during processing: nil map write")

	resp, err = h.client.PostForm(h.srv.URL+"/search", politicsForm())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "a new submit is accepted")
}

func TestCookielessVisitsDoNotAllocateSessions(t *testing.T) {
	h := newHarness(t, &fakeSearcher{}, Options{})
	plain := h.srv.Client()

	for i := 0; i < 50; i++ {
		h.get(t, plain, "/")
		h.get(t, plain, "/report.pdf")
	}
	assert.Zero(t, h.dash.sessions.len())
}

func TestSessionsAreCapped(t *testing.T) {
	h := newHarness(t, &fakeSearcher{text: "# News"}, Options{MaxSessions: 3})

	var last *http.Client
	for i := 0; i < 10; i++ {
		last = newClient(t, h.srv)
		h.search(t, last, politicsForm())
	}
	assert.LessOrEqual(t, h.dash.sessions.len(), 3)

	_, body := h.get(t, last, "/")
	assert.Contains(t, body, `data-state="showing-results"`)
}

func TestSubmitWhileWaitingIsIgnored(t *testing.T) {
	s := &fakeSearcher{text: "# Done", block: make(chan struct{}), began: make(chan struct{}, 1)}
	h := newHarness(t, s, Options{})
	h.get(t, h.client, "/")

	done := make(chan string)
	go func() {
		resp, err := h.client.PostForm(h.srv.URL+"/search", politicsForm())
		if err != nil {
			done <- err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		done <- string(b)
	}()
	<-s.began

	second := h.search(t, h.client, politicsForm())
	assert.Contains(t, second, `data-state="waiting"`)
	assert.Contains(t, second, "<button type=\"submit\" disabled>")
	assert.Equal(t, 1, s.calls())

	close(s.block)
	assert.Contains(t, <-done, `data-state="showing-results"`)
	assert.Equal(t, 1, s.calls())
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(t, &fakeSearcher{text: "# Private"}, Options{})
	h.search(t, h.client, politicsForm())

	other := newClient(t, h.srv)
	_, body := h.get(t, other, "/")
	assert.Contains(t, body, `data-state="idle"`)
	assert.NotContains(t, body, "Private")
}

func TestHealth(t *testing.T) {
	h := newHarness(t, &fakeSearcher{}, Options{})

	resp, body := h.get(t, h.client, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", strings.TrimSpace(body))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	dash := NewServer(&fakeSearcher{}, news.DefaultRegistry(), nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- dash.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
