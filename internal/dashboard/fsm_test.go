package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbenliogludev/go-news-ai-agent/internal/news"
)

func TestNext(t *testing.T) {
	req := news.SearchRequest{Categories: []string{"politics"}}
	results := Model{State: StateResults, Request: req, Result: "# News", PDFError: "old"}

	tests := []struct {
		name  string
		from  Model
		event Event
		want  Model
	}{
		{
			name:  "submit from idle",
			from:  Model{},
			event: Submit{Request: req},
			want:  Model{State: StateWaiting, Request: req},
		},
		{
			name:  "submit while waiting is ignored",
			from:  Model{State: StateWaiting, Request: req},
			event: Submit{Request: news.SearchRequest{Categories: []string{"finance"}}},
			want:  Model{State: StateWaiting, Request: req},
		},
		{
			name:  "submit resets results",
			from:  results,
			event: Submit{Request: req},
			want:  Model{State: StateWaiting, Request: req},
		},
		{
			name:  "submit after error",
			from:  Model{State: StateError, Error: "boom"},
			event: Submit{Request: req},
			want:  Model{State: StateWaiting, Request: req},
		},
		{
			name:  "success",
			from:  Model{State: StateWaiting, Request: req},
			event: Succeeded{Text: "# News"},
			want:  Model{State: StateResults, Request: req, Result: "# News"},
		},
		{
			name:  "failure leaves result unset",
			from:  Model{State: StateWaiting, Request: req},
			event: Failed{Message: "Error during processing: boom"},
			want:  Model{State: StateError, Request: req, Error: "Error during processing: boom"},
		},
		{
			name:  "failure without message",
			from:  Model{State: StateWaiting},
			event: Failed{},
			want:  Model{State: StateError, Error: fallbackError},
		},
		{
			name:  "late success is ignored",
			from:  Model{},
			event: Succeeded{Text: "x"},
			want:  Model{},
		},
		{
			name:  "pdf failure keeps results",
			from:  results,
			event: PDFFailed{Message: "Error during PDF generation: x"},
			want:  Model{State: StateResults, Request: req, Result: "# News", PDFError: "Error during PDF generation: x"},
		},
		{
			name:  "pdf failure without results is ignored",
			from:  Model{State: StateError, Error: "e"},
			event: PDFFailed{Message: "x"},
			want:  Model{State: StateError, Error: "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.from, tt.event))
		})
	}
}

func TestNextDoesNotMutateInput(t *testing.T) {
	from := Model{State: StateWaiting}
	_ = Next(from, Succeeded{Text: "x"})
	assert.Equal(t, Model{State: StateWaiting}, from)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "showing-results", StateResults.String())
	assert.Equal(t, "showing-error", StateError.String())
}
