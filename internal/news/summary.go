package news

import (
	"fmt"
	"strings"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// SummaryRequest drives the standalone summarizer.
type SummaryRequest struct {
	Articles   string
	Language   string
	Region     string
	Categories []string
	Tone       string
	Type       string
}

// BuildSummaryPrompt returns the system + human pair for a direct model call.
// The article text is passed through verbatim.
func BuildSummaryPrompt(req SummaryRequest) []llm.Message {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}
	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = DefaultRegion
	}
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = string(StyleFormal)
	}

	cats := NormalizeCategories(req.Categories)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}

	length := "Provide a fuller overview for each category."
	if ParseSummaryType(req.Type) == SummaryConcise {
		length = "Limit each category summary to about 100 words."
	}

	system := fmt.Sprintf(
		"You are an expert assistant that summarizes multiple news articles into a structured report. "+
			"All articles belong to the following categories only: %s. "+
			"Write the summary in %s, targeting readers interested in news from the %s. "+
			"Use a %s tone in your writing. "+
			"%s "+
			"Organize the output by category using Markdown headers, like this:\n\n"+
			"## Politics\nSummary here\n\n## Finance\nSummary here\n\n"+
			"Only include the categories that appear in the input articles. Format the final output in clean, readable Markdown.",
		strings.Join(names, ", "), language, region, tone, length,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: req.Articles},
	}
}
