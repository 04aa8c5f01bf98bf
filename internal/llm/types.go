package llm

import "context"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one provider-neutral chat message.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is what providers receive. JSON asks for a single JSON object reply.
type ChatRequest struct {
	Messages    []Message
	JSON        bool
	Temperature float32
	MaxTokens   int
}

func (r ChatRequest) withDefaults(temperature float32, maxTokens int) ChatRequest {
	if r.Temperature == 0 {
		r.Temperature = temperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = maxTokens
	}
	return r
}

// Client is the hosted model boundary. Implementations return the text of the
// first choice.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Provider() string
}

type ActionType string

const (
	ActionClick     ActionType = "click"
	ActionNavigate  ActionType = "navigate"
	ActionTypeInput ActionType = "type"
	ActionScroll    ActionType = "scroll_down"
	ActionExtract   ActionType = "extract"
	ActionFinish    ActionType = "finish"
)

type Action struct {
	Type     ActionType `json:"type"`
	TargetID int        `json:"target_id,omitempty"`
	Text     string     `json:"text,omitempty"`
	URL      string     `json:"url,omitempty"`
	Submit   bool       `json:"submit,omitempty"`
}

type DecisionInput struct {
	Task       string
	Goal       string
	DOMTree    string
	CurrentURL string
	History    string // short description of previous steps
}

type DecisionOutput struct {
	Observation string `json:"observation"`
	Thought     string `json:"thought"`
	// Notes carries extracted article material for extract actions.
	Notes  string `json:"notes"`
	Action Action `json:"action"`
}

type SynthesisInput struct {
	Task  string
	Notes []string
}
