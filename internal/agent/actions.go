package agent

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// executeAction performs a page action. origin is the source's start URL;
// navigation must stay on its host.
func (a *Agent) executeAction(ctx context.Context, action llm.Action, origin *url.URL) error {
	switch action.Type {
	case llm.ActionScroll:
		a.log.Debug("scrolling down")
		return a.browser.Scroll(ctx)

	case llm.ActionClick:
		if action.TargetID == 0 {
			return fmt.Errorf("click without target_id")
		}
		a.log.Debug("click", zap.Int("target", action.TargetID))
		if err := a.browser.Click(ctx, action.TargetID); err != nil {
			return err
		}
		return a.returnIfOffDomain(ctx, origin)

	case llm.ActionTypeInput:
		if action.TargetID == 0 {
			return fmt.Errorf("type without target_id")
		}
		a.log.Debug("type", zap.Int("target", action.TargetID), zap.Bool("submit", action.Submit))
		if err := a.browser.Type(ctx, action.TargetID, action.Text, action.Submit); err != nil {
			return err
		}
		return a.returnIfOffDomain(ctx, origin)

	case llm.ActionNavigate:
		target := normalizeURL(a.browser.URL(), action.URL)
		u, err := url.Parse(target)
		if err != nil {
			return fmt.Errorf("bad url %q: %w", action.URL, err)
		}
		if origin != nil && !browser.SameHost(origin, u) {
			return fmt.Errorf("%w: %s", ErrOffDomain, target)
		}
		a.log.Debug("navigate", zap.String("url", target))
		return a.browser.Navigate(ctx, target)

	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// returnIfOffDomain goes back to origin when the last action left its host.
func (a *Agent) returnIfOffDomain(ctx context.Context, origin *url.URL) error {
	if origin == nil {
		return nil
	}
	cur, err := url.Parse(a.browser.URL())
	if err != nil || browser.SameHost(origin, cur) {
		return nil
	}
	if err := a.browser.Navigate(ctx, origin.String()); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s (returned to %s)", ErrOffDomain, cur, origin)
}

func normalizeURL(currentURL, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return currentURL
	}

	u, err := url.Parse(target)
	if err == nil && u.IsAbs() {
		return target
	}

	base, err := url.Parse(currentURL)
	if err != nil || u == nil {
		return target
	}

	return base.ResolveReference(u).String()
}
