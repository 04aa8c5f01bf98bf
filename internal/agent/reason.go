package agent

import (
	"context"
	"errors"
	"strings"
)

func humanizeReason(err error) string {
	switch {
	case err == nil:
		return "task finished"
	case errors.Is(err, context.Canceled):
		return "execution was interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "agent timed out"
	case errors.Is(err, ErrMaxSteps):
		return "step limit reached"
	case errors.Is(err, ErrNoSources):
		return "none of the trusted sources could be read"
	case errors.Is(err, ErrLLMFail):
		return "LLM client error: " + strings.TrimPrefix(err.Error(), ErrLLMFail.Error()+": ")
	case errors.Is(err, ErrSnapshotFail):
		return "page snapshot error"
	default:
		return err.Error()
	}
}
