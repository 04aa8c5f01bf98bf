package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// Reporter logs each decision and, when a path is set, writes a transcript
// of the run at the end.
type Reporter struct {
	log   *zap.Logger
	task  string
	path  string
	trace []string
}

func NewReporter(log *zap.Logger, task, transcriptPath string) *Reporter {
	return &Reporter{log: log, task: task, path: transcriptPath}
}

func (r *Reporter) LogDecision(step int, url string, d *llm.DecisionOutput) {
	r.log.Info("decision",
		zap.Int("step", step),
		zap.String("url", url),
		zap.String("action", string(d.Action.Type)),
		zap.Int("target", d.Action.TargetID),
		zap.String("observation", d.Observation),
	)
	r.log.Debug("thought", zap.Int("step", step), zap.String("thought", d.Thought))

	r.trace = append(r.trace, fmt.Sprintf(
		"STEP %d | URL=%s | ACTION=%s[%d] %q | OBS=%s",
		step, url, d.Action.Type, d.Action.TargetID, d.Action.Text, d.Observation,
	))
}

// Event records a non-decision line such as a navigation or a source failure.
func (r *Reporter) Event(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.log.Info(line)
	r.trace = append(r.trace, line)
}

func (r *Reporter) StepError(step int, err error) {
	r.log.Warn("step error", zap.Int("step", step), zap.Error(err))
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | ERROR: %v", step, err))
}

func (r *Reporter) Trace() []string {
	out := make([]string, len(r.trace))
	copy(out, r.trace)
	return out
}

// Finish logs the exit reason and writes the transcript.
func (r *Reporter) Finish(start time.Time, hist *History, runErr error) {
	duration := time.Since(start).Truncate(time.Millisecond)
	reason := humanizeReason(runErr)
	final, ok := hist.FinalResult()

	fields := []zap.Field{
		zap.Duration("duration", duration),
		zap.String("exit_reason", reason),
		zap.Int("trace_lines", len(r.trace)),
		zap.Bool("has_result", ok),
	}
	if runErr != nil {
		r.log.Warn("agent run finished with error", append(fields, zap.Error(runErr))...)
	} else {
		r.log.Info("agent run finished", fields...)
	}

	if r.path == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString("===== EXECUTION REPORT =====\n")
	fmt.Fprintf(&sb, "Started: %s\n", start.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Duration: %s\n", duration)
	fmt.Fprintf(&sb, "Exit reason: %s\n\n", reason)
	sb.WriteString("--- TASK ---\n" + r.task + "\n\n")
	sb.WriteString("--- STEP TRACE ---\n")
	for _, line := range r.trace {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n--- FINAL RESULT ---\n")
	if ok {
		sb.WriteString(final + "\n")
	} else {
		sb.WriteString("(none)\n")
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.log.Warn("transcript dir", zap.Error(err))
			return
		}
	}
	if err := os.WriteFile(r.path, []byte(sb.String()), 0o644); err != nil {
		r.log.Warn("write transcript", zap.String("path", r.path), zap.Error(err))
	}
}
