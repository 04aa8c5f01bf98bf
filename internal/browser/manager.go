package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

// Manager drives a persistent Chromium context through playwright.
type Manager struct {
	pw      *playwright.Playwright
	Context playwright.BrowserContext
	Page    playwright.Page
}

func NewManager(opts Options) (*Manager, error) {
	opts = opts.withDefaults()

	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	userDataDir := opts.UserDataDir
	if userDataDir == "" {
		userDataDir = ".playwright_data"
	}
	if !filepath.IsAbs(userDataDir) {
		wd, _ := os.Getwd()
		userDataDir = filepath.Join(wd, userDataDir)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(
		userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:  playwright.Bool(opts.Headless),
			Viewport:  &playwright.Size{Width: 1280, Height: 900},
			UserAgent: playwright.String(opts.UserAgent),
			ExtraHttpHeaders: map[string]string{
				"Accept-Language": opts.AcceptLanguage,
			},
			Args: []string{
				"--disable-blink-features=AutomationControlled",
			},
		},
	)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	ms := float64(opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(ms)
	page.SetDefaultNavigationTimeout(ms)

	return &Manager{
		pw:      pw,
		Context: bctx,
		Page:    page,
	}, nil
}

func (m *Manager) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	m.settle()
	return nil
}

// settle waits briefly for network quiet; slow pages are snapshotted as they are.
func (m *Manager) settle() {
	state := playwright.LoadState(LoadStateNetworkidle)
	_ = m.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   &state,
		Timeout: playwright.Float(5000),
	})
}

func (m *Manager) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	if m == nil || m.Page == nil {
		return nil, fmt.Errorf("page is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := m.Page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	tree, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("expected string from js, got %T", result)
	}

	title, _ := m.Page.Title()
	return &PageSnapshot{
		URL:   m.Page.URL(),
		Title: title,
		Tree:  tree,
	}, nil
}

func (m *Manager) Click(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := m.Page.Locator(selectorFor(id)).First()
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	if err := loc.Click(); err != nil {
		return fmt.Errorf("click [%d]: %w", id, err)
	}
	m.settle()
	return nil
}

func (m *Manager) Type(ctx context.Context, id int, text string, submit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := m.Page.Locator(selectorFor(id)).First()
	if err := loc.Fill(text); err != nil {
		return fmt.Errorf("fill [%d]: %w", id, err)
	}
	if submit {
		if err := loc.Press("Enter"); err != nil {
			return fmt.Errorf("submit [%d]: %w", id, err)
		}
		m.settle()
	}
	return nil
}

func (m *Manager) Scroll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.Page.Evaluate(scrollScript)
	return err
}

func (m *Manager) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Page.Content()
}

func (m *Manager) URL() string {
	return m.Page.URL()
}

func (m *Manager) Close() error {
	var firstErr error
	if m.Context != nil {
		firstErr = m.Context.Close()
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
