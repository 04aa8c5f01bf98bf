package dashboard

import "github.com/nbenliogludev/go-news-ai-agent/internal/news"

type State int

const (
	StateIdle State = iota
	StateWaiting
	StateResults
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateResults:
		return "showing-results"
	case StateError:
		return "showing-error"
	default:
		return "unknown"
	}
}

// Model is the dashboard state of one session.
type Model struct {
	State   State
	Request news.SearchRequest
	Result  string
	Error   string
	// PDFError is shown next to the results; it never clears them.
	PDFError string
}

// Event drives a Model transition.
type Event interface {
	isEvent()
}

// Submit starts a search for Request.
type Submit struct {
	Request news.SearchRequest
}

// Succeeded delivers the agent's Markdown answer.
type Succeeded struct {
	Text string
}

// Failed delivers a user-facing error message.
type Failed struct {
	Message string
}

// PDFFailed reports a failed export of the current results.
type PDFFailed struct {
	Message string
}

func (Submit) isEvent()    {}
func (Succeeded) isEvent() {}
func (Failed) isEvent()    {}
func (PDFFailed) isEvent() {}

const fallbackError = "Error during processing: unknown error"

// Next returns the model after e. It has no side effects; events that do not
// apply to the current state leave the model unchanged.
func Next(m Model, e Event) Model {
	switch e := e.(type) {
	case Submit:
		if m.State == StateWaiting {
			return m
		}
		return Model{State: StateWaiting, Request: e.Request}

	case Succeeded:
		if m.State != StateWaiting {
			return m
		}
		m.State = StateResults
		m.Result = e.Text
		m.Error = ""
		return m

	case Failed:
		if m.State != StateWaiting {
			return m
		}
		m.State = StateError
		m.Result = ""
		m.Error = e.Message
		if m.Error == "" {
			m.Error = fallbackError
		}
		return m

	case PDFFailed:
		if m.State != StateResults {
			return m
		}
		m.PDFError = e.Message
		return m
	}
	return m
}
