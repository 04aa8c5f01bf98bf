package agent

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/browser"
	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
	"github.com/nbenliogludev/go-news-ai-agent/internal/planner"
)

const (
	maxArticlesPerSource = 2
	maxNoteChars         = 6000
)

// executeStep takes one snapshot, asks the sub-agent for an action and runs
// it. It reports true when the current plan step is done.
func (o *Orchestrator) executeStep(ctx context.Context, rs *runState, sub SubAgent, ps planner.PlanStep, origin *url.URL) (bool, error) {
	snap, err := rs.agent.browser.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSnapshotFail, err)
	}

	if rs.prevTree != "" && snap.Tree == rs.prevTree {
		rs.mem.AddSystemNote("SYSTEM ALERT: Last action had NO VISIBLE EFFECT.")
	}
	rs.prevTree = snap.Tree

	decision, err := sub.Step(ctx, EnvState{
		Task:     o.task.Instruction,
		Goal:     ps.Goal,
		StartURL: ps.URL,
		URL:      snap.URL,
		DOMTree:  snap.Tree,
		History:  rs.mem.HistoryLines(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLLMFail, err)
	}
	rs.reporter.LogDecision(rs.step, snap.URL, decision)

	if blocked, reason := rs.mem.ShouldBlock(snap.URL, decision.Action); blocked {
		o.log.Warn("loop guard", zap.String("action", string(decision.Action.Type)), zap.Int("target", decision.Action.TargetID))
		rs.mem.AddSystemNote(reason)
		rs.mem.MarkLoopTriggered()
		rs.blocks++
		if rs.blocks >= 2 {
			rs.reporter.Event("PLAN STEP %d | repeated loops, moving on", ps.Index)
			return true, nil
		}
		return false, rs.agent.browser.Scroll(ctx)
	}

	switch decision.Action.Type {
	case llm.ActionFinish:
		return true, nil

	case llm.ActionExtract:
		note := o.noteFor(ctx, rs, ps, snap, decision.Notes)
		if note == "" {
			rs.mem.AddSystemNote("SYSTEM NOTE: Nothing could be extracted from this page.")
			return false, nil
		}
		rs.notes = append(rs.notes, note)
		rs.stepNotes++
		rs.mem.Add(rs.step, snap.URL, decision.Action)
		rs.mem.AddSystemNote(fmt.Sprintf("STATE UPDATE: extracted %d of %d articles from this source.",
			rs.stepNotes, maxArticlesPerSource))
		return rs.stepNotes >= maxArticlesPerSource, nil
	}

	if err := rs.agent.executeAction(ctx, decision.Action, origin); err != nil {
		rs.mem.AddSystemNote(fmt.Sprintf("SYSTEM ERROR: %v", err))
		return false, err
	}
	rs.mem.Add(rs.step, snap.URL, decision.Action)
	if decision.Observation != "" {
		rs.mem.AddSystemNote("STATE UPDATE: " + decision.Observation)
	}
	return false, nil
}

// noteFor builds the material for one article. The model's notes are
// preferred; otherwise the readable text of the page is used.
func (o *Orchestrator) noteFor(ctx context.Context, rs *runState, ps planner.PlanStep, snap *browser.PageSnapshot, notes string) string {
	body := strings.TrimSpace(notes)
	title := snap.Title
	if body == "" {
		html, err := rs.agent.browser.HTML(ctx)
		if err != nil {
			o.log.Warn("read page html", zap.Error(err))
			return ""
		}
		art, err := browser.ReadableText(html, maxNoteChars)
		if err != nil || blank(art.Text) {
			return ""
		}
		body = art.Text
		if art.Title != "" {
			title = art.Title
		}
	}

	var sb strings.Builder
	switch {
	case ps.Source != "" && ps.Category != "":
		fmt.Fprintf(&sb, "Category: %s\nSource: %s\n", ps.Category, ps.Source)
	case ps.Source != "":
		fmt.Fprintf(&sb, "Source: %s\n", ps.Source)
	}
	fmt.Fprintf(&sb, "Page title: %s\nPage URL: %s\n\n%s", title, snap.URL, body)
	return sb.String()
}
