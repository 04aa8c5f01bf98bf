package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const safeDOMLimit = 40000

// DecideAction asks the model for the next browser action.
func DecideAction(ctx context.Context, c Client, input DecisionInput) (*DecisionOutput, error) {
	var sb strings.Builder
	sb.WriteString("TASK:\n" + input.Task + "\n\n")
	if input.Goal != "" {
		sb.WriteString("CURRENT SOURCE GOAL: " + input.Goal + "\n")
	}
	sb.WriteString("URL: " + input.CurrentURL + "\n")

	if input.History != "" {
		sb.WriteString("HISTORY:\n" + input.History + "\n")
	}

	dom := input.DOMTree
	if len(dom) > safeDOMLimit {
		dom = cutAtRune(dom, safeDOMLimit) + "\n...[TRUNCATED]"
	}
	sb.WriteString("\nPAGE TREE:\n" + dom)

	content, err := c.Chat(ctx, ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: browsingSystemPrompt},
			{Role: RoleUser, Content: sb.String()},
		},
		JSON:      true,
		MaxTokens: 1200,
	})
	if err != nil {
		return nil, err
	}

	return ParseDecision(content)
}

// ParseDecision decodes a model reply, tolerating code fences around the JSON.
func ParseDecision(content string) (*DecisionOutput, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "`\n ")

	var out DecisionOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("json parse error: %w | content: %s", err, content)
	}

	normalizeActionType(&out.Action)
	return &out, nil
}

func normalizeActionType(a *Action) {
	switch strings.ToLower(strings.TrimSpace(string(a.Type))) {
	case "click":
		a.Type = ActionClick
	case "type", "type_input":
		a.Type = ActionTypeInput
	case "navigate", "goto":
		a.Type = ActionNavigate
	case "extract":
		a.Type = ActionExtract
	case "finish", "done":
		a.Type = ActionFinish
	default:
		a.Type = ActionScroll
	}
}

// cutAtRune returns at most n bytes of s without splitting a UTF-8 sequence.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
