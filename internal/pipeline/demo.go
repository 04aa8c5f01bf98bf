package pipeline

import (
	"context"
	"fmt"

	"github.com/nbenliogludev/go-news-ai-agent/internal/agent"
	"github.com/nbenliogludev/go-news-ai-agent/internal/report"
)

// DemoFactory returns an agent.Factory whose runners answer from the task's
// source list without any network access. It backs offline runs of the
// dashboard and the CLI.
func DemoFactory() agent.Factory {
	return func(task agent.Task) (agent.Runner, error) {
		return agent.RunnerFunc(func(ctx context.Context) (*agent.History, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			hist := &agent.History{Steps: []string{"demo: built report from source list"}}
			hist.SetFinal(report.RenderMarkdown(DemoReport(task), task.Date))
			return hist, nil
		}), nil
	}
}

// DemoReport builds one section per category with a placeholder article for
// each trusted source, in task order.
func DemoReport(task agent.Task) report.Report {
	var r report.Report
	index := map[string]int{}
	for _, src := range task.Sources {
		i, ok := index[src.Category]
		if !ok {
			i = len(r.Sections)
			index[src.Category] = i
			r.Sections = append(r.Sections, report.Section{
				Category: src.Category,
				Summary:  fmt.Sprintf("Sample overview of today's %s coverage.", src.Category),
			})
		}
		r.Sections[i].Articles = append(r.Sections[i].Articles, report.Article{
			Title:       "Top story from " + src.Name,
			Description: "Placeholder text generated without contacting " + src.Name + ".",
			URL:         src.URL,
			Source:      src.Name,
		})
	}
	return r
}
