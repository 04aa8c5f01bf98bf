package llm

import (
	"context"
	"fmt"
	"strings"
)

// Synthesize turns collected notes into the final Markdown answer for a task.
func Synthesize(ctx context.Context, c Client, input SynthesisInput) (string, error) {
	var sb strings.Builder
	sb.WriteString("INSTRUCTIONS:\n" + input.Task + "\n\n")
	sb.WriteString("COLLECTED MATERIAL:\n")
	for i, n := range input.Notes {
		fmt.Fprintf(&sb, "--- item %d ---\n%s\n", i+1, strings.TrimSpace(n))
	}

	out, err := c.Chat(ctx, ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: synthesisSystemPrompt},
			{Role: RoleUser, Content: sb.String()},
		},
		Temperature: 0.2,
		MaxTokens:   2500,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Complete sends an already assembled message list, e.g. a summary prompt.
func Complete(ctx context.Context, c Client, msgs []Message, temperature float32, maxTokens int) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("no messages")
	}
	out, err := c.Chat(ctx, ChatRequest{
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
