package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

const LoadStateNetworkidle = "networkidle"

// Browser is a single live page the agent can look at and act on.
// Element ids are the data-ai-id values assigned by the last Snapshot.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*PageSnapshot, error)
	Click(ctx context.Context, id int) error
	Type(ctx context.Context, id int, text string, submit bool) error
	Scroll(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	URL() string
	Close() error
}

// Options configure a browser driver.
type Options struct {
	Driver         string
	Headless       bool
	UserDataDir    string
	UserAgent      string
	AcceptLanguage string
	// Timeout bounds each page operation; zero keeps the driver default.
	Timeout time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = "en-US,en;q=0.9"
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return o
}

// New launches the driver named in opts.
func New(ctx context.Context, opts Options) (Browser, error) {
	opts = opts.withDefaults()
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverPlaywright:
		return NewManager(opts)
	case DriverChromedp:
		return NewCDP(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", opts.Driver)
	}
}

func selectorFor(id int) string {
	return fmt.Sprintf(`[data-ai-id="%d"]`, id)
}
