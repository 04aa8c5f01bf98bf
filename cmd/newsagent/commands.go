package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/agent"
	"github.com/nbenliogludev/go-news-ai-agent/internal/dashboard"
	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
	"github.com/nbenliogludev/go-news-ai-agent/internal/pipeline"
	"github.com/nbenliogludev/go-news-ai-agent/internal/report"
)

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, sig := agent.NewSignalController(cmd.Context())
		defer sig.Close()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}

		srv := dashboard.NewServer(a.service, a.registry, logger, dashboard.Options{
			Metrics:  a.metrics,
			Gatherer: a.gatherer,
		})
		logger.Info("starting dashboard",
			zap.String("addr", cfg.Server.Addr),
			zap.String("driver", cfg.Agent.Driver),
			zap.String("provider", cfg.LLM.Provider))
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8501)")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one news search and print the summary",
	Example: `  newsagent search -c politics -c finance --region Europe --type concise
  newsagent search -c "crime & law" --driver feed --pdf reports/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		categories, _ := f.GetStringSlice("category")
		region, _ := f.GetString("region")
		summaryType, _ := f.GetString("type")
		style, _ := f.GetString("style")
		language, _ := f.GetString("language")
		pdfPath, _ := f.GetString("pdf")
		plain, _ := f.GetBool("plain")

		ctx, sig := agent.NewSignalController(cmd.Context())
		defer sig.Close()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}

		text, err := a.service.Search(ctx, news.SearchRequest{
			Region:       region,
			Categories:   categories,
			SummaryType:  summaryType,
			SummaryStyle: style,
			Language:     language,
		})
		if err != nil {
			if sig.Interrupted() {
				logger.Warn("search interrupted")
			}
			return errors.New(pipeline.UserMessage(err))
		}

		if err := printMarkdown(cmd.OutOrStdout(), text, plain); err != nil {
			return err
		}

		if pdfPath != "" {
			data, err := report.PDF(text)
			a.metrics.RecordPDFExport(err)
			if err != nil {
				return fmt.Errorf("Error during PDF generation: %w", err)
			}
			path := pdfTarget(pdfPath, time.Now())
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "PDF written to %s\n", path)
		}
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringSliceP("category", "c", []string{"politics"}, "news category, repeatable (max 3)")
	f.String("region", news.DefaultRegion, "region the news should be relevant to")
	f.String("type", string(news.SummaryConcise), "summary type: concise or detailed")
	f.String("style", string(news.StyleFormal), "summary style: formal, informal, funny or technical")
	f.String("language", news.DefaultLanguage, "summary language")
	f.String("pdf", "", "also write a PDF report to this file or directory")
	f.Bool("plain", false, "print raw Markdown instead of rendering it")
}

// pdfTarget resolves a --pdf value; a directory gets a timestamped file name.
func pdfTarget(path string, now time.Time) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, report.FileName(now))
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return filepath.Join(path, report.FileName(now))
	}
	return path
}

// --- summarize ---

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize raw article text with one model call",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		file, _ := f.GetString("file")
		categories, _ := f.GetStringSlice("category")
		region, _ := f.GetString("region")
		tone, _ := f.GetString("tone")
		summaryType, _ := f.GetString("type")
		language, _ := f.GetString("language")
		plain, _ := f.GetBool("plain")

		articles, err := readInput(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		ctx, sig := agent.NewSignalController(cmd.Context())
		defer sig.Close()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		out, err := a.service.Summarize(ctx, news.SummaryRequest{
			Articles:   articles,
			Language:   language,
			Region:     region,
			Categories: categories,
			Tone:       tone,
			Type:       summaryType,
		})
		if err != nil {
			return err
		}
		return printMarkdown(cmd.OutOrStdout(), out, plain)
	},
}

func init() {
	f := summarizeCmd.Flags()
	f.String("file", "-", "article text file, - for stdin")
	f.StringSliceP("category", "c", nil, "categories present in the text")
	f.String("region", news.DefaultRegion, "target readers' region")
	f.String("tone", string(news.StyleFormal), "writing tone")
	f.String("type", string(news.SummaryConcise), "concise or detailed")
	f.String("language", news.DefaultLanguage, "summary language")
	f.Bool("plain", false, "print raw Markdown instead of rendering it")
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- categories ---

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories and their trusted sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := news.DefaultRegistry()
		if cfg.Registry.Path != "" {
			var err error
			if reg, err = news.LoadRegistryFile(cfg.Registry.Path); err != nil {
				return err
			}
		}
		return writeCategories(cmd.OutOrStdout(), reg)
	},
}

func writeCategories(w io.Writer, reg *news.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tSOURCES")
	for _, e := range reg.Entries() {
		names := make([]string, len(e.Sources))
		for i, s := range e.Sources {
			names[i] = s.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Label, strings.Join(names, ", "))
	}
	return tw.Flush()
}

func printMarkdown(w io.Writer, md string, plain bool) error {
	if plain {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
