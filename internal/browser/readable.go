package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is an anchor found on a page.
type Link struct {
	Title string
	URL   string
}

// Article is the readable part of a news page.
type Article struct {
	Title string
	Text  string
}

const noise = "script, style, noscript, nav, header, footer, aside, form, iframe, svg, figure, [role=navigation], [aria-hidden=true]"

// ReadableText strips page chrome and returns the headline and body text.
// maxChars <= 0 disables truncation.
func ReadableText(html string, maxChars int) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find(noise).Remove()

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paras []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := collapse(p.Text()); len(t) > 30 {
			paras = append(paras, t)
		}
	})

	text := strings.Join(paras, "\n\n")
	if text == "" {
		text = collapse(root.Text())
	}
	if maxChars > 0 && len(text) > maxChars {
		text = truncateRunes(text, maxChars) + "..."
	}
	return &Article{Title: collapse(title), Text: text}, nil
}

// HeadlineLinks returns up to limit links on the same host as base that look
// like article headlines. Links inside headings come first.
func HeadlineLinks(html, base string, limit int) ([]Link, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", base, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("nav, header, footer, aside").Remove()

	var out []Link
	seen := map[string]struct{}{}
	add := func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		u, err := baseURL.Parse(strings.TrimSpace(href))
		if err != nil || !SameHost(baseURL, u) {
			return true
		}
		u.Fragment = ""
		if strings.Trim(u.Path, "/") == strings.Trim(baseURL.Path, "/") {
			return true
		}
		title := collapse(a.Text())
		if len(strings.Fields(title)) < 4 {
			return true
		}
		key := u.String()
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		out = append(out, Link{Title: title, URL: key})
		return limit <= 0 || len(out) < limit
	}

	doc.Find("h1 a, h2 a, h3 a, a h1, a h2, a h3").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if !s.Is("a") {
			s = s.Closest("a")
		}
		return add(i, s)
	})
	if limit <= 0 || len(out) < limit {
		doc.Find("article a, main a").EachWithBreak(add)
	}
	return out, nil
}

// SameHost reports whether u is on a's host, ignoring a leading "www.".
func SameHost(a, u *url.URL) bool {
	if u.Host == "" {
		return true
	}
	return strings.TrimPrefix(strings.ToLower(a.Hostname()), "www.") ==
		strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
