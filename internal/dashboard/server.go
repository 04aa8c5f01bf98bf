// Package dashboard serves the web UI: the search form, the results panel
// and the PDF download.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/metrics"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
	"github.com/nbenliogludev/go-news-ai-agent/internal/pipeline"
	"github.com/nbenliogludev/go-news-ai-agent/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Searcher runs one news search. *pipeline.Service implements it.
type Searcher interface {
	Search(ctx context.Context, req news.SearchRequest) (string, error)
}

// Exporter turns result Markdown into PDF bytes.
type Exporter func(markdown string) ([]byte, error)

type Options struct {
	Export   Exporter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Now      func() time.Time
	// SessionTTL expires idle sessions, 30 minutes by default.
	SessionTTL time.Duration
	// MaxSessions caps the sessions held in memory, 1000 by default.
	MaxSessions int
}

type Server struct {
	router   chi.Router
	search   Searcher
	registry *news.Registry
	sessions *sessionStore
	markdown goldmark.Markdown
	log      *zap.Logger
	opts     Options
}

func NewServer(s Searcher, reg *news.Registry, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Export == nil {
		opts.Export = report.PDF
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	srv := &Server{
		search:   s,
		registry: reg,
		sessions: newSessionStore(opts.SessionTTL, opts.MaxSessions, opts.Now),
		markdown: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Table)),
		log:      log.With(zap.String("component", "dashboard")),
		opts:     opts,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	s.log.Info("dashboard listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Get("/report.pdf", s.handlePDF)
	r.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var m Model
	if sess := s.sessions.lookup(r); sess != nil {
		m = sess.snapshot()
	} else {
		s.sessions.issue(w, r)
	}

	data, err := s.page(m)
	if err != nil {
		s.log.Error("render results", zap.Error(err))
		http.Error(w, "could not render results", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleSearch runs the search inside the request and redirects back to the
// dashboard. A submit while the session is already waiting is ignored.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := news.SearchRequest{
		Region:       r.PostForm.Get("region"),
		Categories:   r.PostForm["categories"],
		SummaryType:  r.PostForm.Get("summary_type"),
		SummaryStyle: r.PostForm.Get("summary_style"),
		Language:     r.PostForm.Get("language"),
	}

	before, _ := sess.apply(Submit{Request: req})
	if before.State == StateWaiting {
		s.log.Info("search already running, submit ignored")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.runSearch(r.Context(), sess, req)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// runSearch moves sess out of waiting whatever the search does. A panic is
// recorded as a failure before it is passed on to the recoverer.
func (s *Server) runSearch(ctx context.Context, sess *session, req news.SearchRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			sess.apply(Failed{Message: pipeline.UserMessage(fmt.Errorf("%v", rec))})
			panic(rec)
		}
	}()

	text, err := s.search.Search(ctx, req)
	if err != nil {
		sess.apply(Failed{Message: pipeline.UserMessage(err)})
		return
	}
	sess.apply(Succeeded{Text: text})
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.lookup(r)
	if sess == nil {
		http.Error(w, "no results to export", http.StatusConflict)
		return
	}
	m := sess.snapshot()
	if m.State != StateResults {
		http.Error(w, "no results to export", http.StatusConflict)
		return
	}

	data, err := s.opts.Export(m.Result)
	s.opts.Metrics.RecordPDFExport(err)
	if err != nil {
		s.log.Error("pdf export failed", zap.Error(err))
		sess.apply(PDFFailed{Message: "Error during PDF generation: " + err.Error()})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(s.opts.Now())+`"`)
	_, _ = w.Write(data)
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Model
	StateName     string
	ResultHTML    template.HTML
	Categories    []option
	Regions       []option
	Styles        []option
	Types         []option
	Languages     []option
	MaxCategories int
}

func (s *Server) page(m Model) (pageData, error) {
	d := pageData{
		Model:         m,
		StateName:     m.State.String(),
		MaxCategories: news.MaxCategories,
	}

	if m.Result != "" {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(m.Result), &buf); err != nil {
			return d, err
		}
		d.ResultHTML = template.HTML(buf.String())
	}

	req := m.Request
	selected := news.NormalizeCategories(req.Categories)
	if len(selected) == 0 {
		selected = []news.Category{"politics"}
	}
	for _, e := range s.registry.Entries() {
		d.Categories = append(d.Categories, option{
			Value:    string(e.Key),
			Label:    e.Label,
			Selected: slices.Contains(selected, e.Key),
		})
	}

	d.Regions = options(news.Regions, req.Region, news.DefaultRegion)
	d.Languages = options(news.Languages, req.Language, news.DefaultLanguage)
	styles := make([]string, len(news.Styles))
	for i, st := range news.Styles {
		styles[i] = string(st)
	}
	d.Styles = options(styles, req.SummaryStyle, string(news.StyleFormal))
	d.Types = options([]string{string(news.SummaryConcise), string(news.SummaryDetailed)}, req.SummaryType, string(news.SummaryConcise))
	return d, nil
}

func options(values []string, current, fallback string) []option {
	if current == "" {
		current = fallback
	}
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{
			Value:    v,
			Label:    capitalize(v),
			Selected: strings.EqualFold(v, current),
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
