package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// CDP drives Chrome directly over the DevTools protocol.
type CDP struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        Options
	url         string
}

// NewCDP starts Chrome and applies the user agent and language overrides.
// The browser lives until Close, independent of ctx.
func NewCDP(ctx context.Context, opts Options) (*CDP, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	d := &CDP{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, opts: opts}

	// The first Run starts the browser, so it must use the tab context itself.
	if err := chromedp.Run(tabCtx,
		emulation.SetUserAgentOverride(opts.UserAgent).WithAcceptLanguage(opts.AcceptLanguage),
	); err != nil {
		d.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return d, nil
}

// run executes actions on the tab, bounded by the driver timeout and by ctx.
func (d *CDP) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.ctx, d.opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (d *CDP) Navigate(ctx context.Context, url string) error {
	var loc string
	if err := d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&loc),
	); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	d.url = loc
	return nil
}

func (d *CDP) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	var tree, title, loc string
	if err := d.run(ctx,
		chromedp.Evaluate("("+snapshotScript+")()", &tree),
		chromedp.Title(&title),
		chromedp.Location(&loc),
	); err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	d.url = loc
	return &PageSnapshot{URL: loc, Title: title, Tree: tree}, nil
}

func (d *CDP) Click(ctx context.Context, id int) error {
	sel := selectorFor(id)
	var loc string
	if err := d.run(ctx,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&loc),
	); err != nil {
		return fmt.Errorf("click [%d]: %w", id, err)
	}
	d.url = loc
	return nil
}

func (d *CDP) Type(ctx context.Context, id int, text string, submit bool) error {
	sel := selectorFor(id)
	actions := []chromedp.Action{
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, text, chromedp.ByQuery),
	}
	if submit {
		actions = append(actions, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
	}
	if err := d.run(ctx, actions...); err != nil {
		return fmt.Errorf("type [%d]: %w", id, err)
	}
	return nil
}

func (d *CDP) Scroll(ctx context.Context) error {
	return d.run(ctx, chromedp.Evaluate("("+scrollScript+")()", nil))
}

func (d *CDP) HTML(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (d *CDP) URL() string {
	return d.url
}

func (d *CDP) Close() error {
	d.cancelTab()
	d.cancelAlloc()
	return nil
}
