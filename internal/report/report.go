package report

import (
	"strings"
	"time"
)

// Article is one news item in a report.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Location    string `json:"location"`
}

// Section groups the articles of one category.
type Section struct {
	Category string    `json:"category"`
	Summary  string    `json:"summary"`
	Articles []Article `json:"articles"`
}

// Report is rendered in section order.
type Report struct {
	Sections []Section `json:"sections"`
}

const Title = "Daily News Summary"

// RenderMarkdown writes r as a Markdown document dated day. Field values are
// copied as is, without escaping.
func RenderMarkdown(r Report, day time.Time) string {
	var sb strings.Builder
	sb.WriteString("# " + Title + "\n *" + day.Format("2006-01-02") + "*\n\n")

	for _, s := range r.Sections {
		sb.WriteString("## " + s.Category + " \n\n")
		sb.WriteString("**Summary:** " + s.Summary + "\n\n")

		for _, a := range s.Articles {
			sb.WriteString("#### **" + a.Title + "**\n")
			sb.WriteString("  - News Source: " + a.Source + "\n")
			sb.WriteString("  - Location: " + a.Location + "\n")
			sb.WriteString("  - Description: " + a.Description + "\n")
			sb.WriteString("  - URL: " + a.URL + "\n\n")
		}
	}
	return sb.String()
}

// FileName is the download name of a PDF generated at t. Two exports within
// the same second get the same name.
func FileName(t time.Time) string {
	return "news_summary_" + t.Format("20060102_150405") + ".pdf"
}
