package agent

import (
	"context"
	"fmt"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// EnvState is what a sub-agent sees before choosing an action.
type EnvState struct {
	Task     string
	Goal     string
	StartURL string
	URL      string
	DOMTree  string
	History  []string
}

// SubAgent picks the next action for one plan step.
type SubAgent interface {
	Name() string
	Step(ctx context.Context, env EnvState) (*llm.DecisionOutput, error)
}

func decide(ctx context.Context, c llm.Client, env EnvState, framing string) (*llm.DecisionOutput, error) {
	task := BuildTaskWithEnvironment(env.Task, env.StartURL)
	return llm.DecideAction(ctx, c, llm.DecisionInput{
		Task:       task + "\n\n" + framing,
		Goal:       env.Goal,
		DOMTree:    env.DOMTree,
		CurrentURL: env.URL,
		History:    joinLines(env.History),
	})
}

// ExtractorAgent works a single trusted source: find today's headlines,
// open them and extract the article material.
type ExtractorAgent struct {
	LLM llm.Client
}

func (a *ExtractorAgent) Name() string { return "ExtractorAgent" }

func (a *ExtractorAgent) Step(ctx context.Context, env EnvState) (*llm.DecisionOutput, error) {
	return decide(ctx, a.LLM, env, fmt.Sprint(
		"MODE: extraction.\n",
		"- On the source front page, click the most relevant headline of today.\n",
		"- On an article page, use \"extract\" and put the title, the direct URL and the main content in \"notes\".\n",
		"- After extracting, go back to the source page by \"navigate\" with its URL to find the next headline.\n",
		"- Use \"finish\" when 2 articles are extracted or nothing relevant is published today.",
	))
}

// NavigatorAgent is used when a plan step has no source URL: it browses the
// current site freely, still inside its domain.
type NavigatorAgent struct {
	LLM llm.Client
}

func (a *NavigatorAgent) Name() string { return "NavigatorAgent" }

func (a *NavigatorAgent) Step(ctx context.Context, env EnvState) (*llm.DecisionOutput, error) {
	return decide(ctx, a.LLM, env, fmt.Sprint(
		"MODE: navigation.\n",
		"- Prefer section links and headline lists in the main content over the global header menu.\n",
		"- You MAY use the site's own search field.\n",
		"- When an article page is open, use \"extract\" with the material in \"notes\".\n",
		"- Use \"finish\" as soon as the step goal is met.",
	))
}
