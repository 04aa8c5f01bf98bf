package planner

import (
	"fmt"
	"strings"
)

const (
	ModeNavigation = "navigation"
	ModeExtraction = "extraction"
)

type PlanStep struct {
	Index    int    `json:"index"`
	Goal     string `json:"goal"`
	Mode     string `json:"mode"`
	// URL is where the step starts; empty means "stay on the current page".
	URL      string `json:"url,omitempty"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
}

type Plan struct {
	Steps []PlanStep `json:"steps"`
}

// Source is the planner's view of a trusted site.
type Source struct {
	Name     string
	URL      string
	Category string
}

// FromSources builds one extraction step per source, in order. Without
// sources the plan is a single free navigation step.
func FromSources(sources []Source) *Plan {
	if len(sources) == 0 {
		return &Plan{Steps: []PlanStep{{
			Index: 1,
			Goal:  "Find today's news relevant to the task on the current site.",
			Mode:  ModeNavigation,
		}}}
	}

	plan := &Plan{Steps: make([]PlanStep, 0, len(sources))}
	for i, s := range sources {
		goal := fmt.Sprintf("Open %s and collect up to 2 of today's headlines", s.Name)
		if s.Category != "" {
			goal += " for " + strings.ToLower(s.Category)
		}
		goal += ", including the article text and its direct URL."
		plan.Steps = append(plan.Steps, PlanStep{
			Index:    i + 1,
			Goal:     goal,
			Mode:     ModeExtraction,
			URL:      s.URL,
			Source:   s.Name,
			Category: s.Category,
		})
	}
	return plan
}

func (p *Plan) String() string {
	var sb strings.Builder
	for _, s := range p.Steps {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", s.Index, s.Mode, s.Goal)
	}
	return sb.String()
}
