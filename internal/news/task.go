package news

import (
	"fmt"
	"strings"
	"time"
)

const (
	concisePhrase  = "concise (less than 100 words per article)"
	detailedPhrase = "detailed"

	// DateLayout is how "today" appears in instructions.
	DateLayout = "January 02, 2006"
)

// ResolveCategories validates the requested categories and returns their
// registry entries in request order. It fails on the first unknown category.
func ResolveCategories(reg *Registry, raw []string) ([]CategoryEntry, error) {
	cats := NormalizeCategories(raw)
	if len(cats) == 0 {
		return nil, ErrNoCategories
	}
	if len(cats) > MaxCategories {
		return nil, ErrTooManyCategories
	}

	entries := make([]CategoryEntry, 0, len(cats))
	for _, c := range cats {
		e, ok := reg.Lookup(c)
		if !ok {
			return nil, &InvalidCategoryError{Category: string(c), Allowed: reg.Keys()}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Prepared is a validated request ready to hand to an agent.
type Prepared struct {
	Instruction string
	Entries     []CategoryEntry
	Options     Options
}

// Sources flattens the trusted sources of all requested categories.
func (p *Prepared) Sources() []Source {
	var out []Source
	for _, e := range p.Entries {
		out = append(out, e.Sources...)
	}
	return out
}

// Labels returns the display labels of the requested categories.
func (p *Prepared) Labels() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Label
	}
	return out
}

// Prepare validates req against reg and assembles the agent instruction.
func Prepare(req SearchRequest, reg *Registry, today time.Time) (*Prepared, error) {
	entries, err := ResolveCategories(reg, req.Categories)
	if err != nil {
		return nil, err
	}
	opts := req.ResolveOptions()

	var sources strings.Builder
	keys := make([]string, len(entries))
	for i, e := range entries {
		sources.WriteString(e.Block())
		keys[i] = string(e.Key)
	}

	detail := detailedPhrase
	if opts.Type == SummaryConcise {
		detail = concisePhrase
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search for news articles published **today** (%s) relevant to the **%s** region.\n\n",
		today.Format(DateLayout), opts.Region)
	fmt.Fprintf(&sb, "Focus only on these categories: %s.\n", strings.Join(keys, ", "))
	sb.WriteString("Use **only** the trusted sources listed below for each category.\n\n")
	sb.WriteString(sources.String())
	sb.WriteString("\n")

	sb.WriteString("For each category:\n")
	sb.WriteString("- Visit each source listed.\n")
	sb.WriteString("- Extract **up to 2 recent headlines** that are relevant.\n")
	sb.WriteString("- Go to the article page and extract the **main content**.\n")
	sb.WriteString("- If **no relevant articles** are found after checking all sources, clearly state: 'No results found for this category.'\n\n")

	fmt.Fprintf(&sb, "For each article, provide the following in **markdown format** and in **%s language**:\n", opts.Language)
	sb.WriteString("- **Title** of the article\n")
	fmt.Fprintf(&sb, "- A **comprehensive summary** in a **%s** manner and **%s** tone\n", detail, opts.Style)
	sb.WriteString("- **Direct URL** to the article, don't hallucinate the URL, save the actual link of the article\n\n")

	sb.WriteString("Important guidelines:\n")
	sb.WriteString("- **Exclude** ads, unrelated content, menus, or metadata.\n")
	sb.WriteString("- **Do not hallucinate or fabricate** any information.\n")
	sb.WriteString("- If a detail is unknown or unavailable, leave it blank without guessing.\n")

	return &Prepared{
		Instruction: sb.String(),
		Entries:     entries,
		Options:     opts,
	}, nil
}

// BuildTask returns the agent instruction for req, or the validation error.
func BuildTask(req SearchRequest, reg *Registry, today time.Time) (string, error) {
	p, err := Prepare(req, reg, today)
	if err != nil {
		return "", err
	}
	return p.Instruction, nil
}
