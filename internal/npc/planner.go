package npc

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"brothbots.ai/internal/llm"
	"brothbots.ai/internal/plan"
	"brothbots.ai/internal/transcript"
)

const defaultMaxTokens = 512

// Planner turns a world summary into a validated plan through the
// completion service. One Planner is shared by the whole fleet; per-call
// retry bookkeeping lives on the stack.
type Planner struct {
	Client      llm.Client // nil disables planning
	Model       string
	MaxRetries  int
	MaxTokens   int
	Logger      *log.Logger
	Transcripts *transcript.Writer // optional
}

// Plan runs one invocation: up to MaxRetries+1 transport attempts, each
// response pushed through the validator. Returns false when no plan could
// be produced; no failure escapes as an error.
func (p *Planner) Plan(ctx context.Context, ch Character, worldSummary string, events []Event) (plan.Plan, bool) {
	if p.Client == nil {
		return plan.Plan{}, false
	}

	reqID := uuid.NewString()
	system := systemPrelude(ch)
	user := userPrompt(worldSummary, events)
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		out, err := p.Client.Complete(ctx, llm.Request{
			ID:           reqID,
			SystemPrompt: system,
			UserPrompt:   user,
			Model:        p.Model,
			MaxTokens:    maxTokens,
		})
		if err != nil {
			kind := llm.KindOf(err)
			p.record(ch, reqID, attempt, "transport:"+kind.String(), "", "")
			if kind == llm.KindUnreachable {
				// A dead endpoint will not come back within this retry
				// loop; one log line, no further attempts.
				if p.Logger != nil {
					p.Logger.Printf("%s: completion endpoint unreachable, skipping retries: %v", ch.Name, err)
				}
				return plan.Plan{}, false
			}
			if p.Logger != nil {
				p.Logger.Printf("%s: completion attempt %d/%d failed: %v", ch.Name, attempt, p.MaxRetries, err)
			}
			continue
		}

		validated, verr := plan.Validate(out)
		if verr != nil {
			p.record(ch, reqID, attempt, "rejected", "", rawPreview(out))
			if p.Logger != nil {
				p.Logger.Printf("%s: attempt %d/%d produced unusable plan: %v (raw: %s)", ch.Name, attempt, p.MaxRetries, verr, rawPreview(out))
			}
			continue
		}

		p.record(ch, reqID, attempt, "accepted", validated.Goal, "")
		return validated, true
	}
	return plan.Plan{}, false
}

func (p *Planner) record(ch Character, reqID string, attempt int, outcome, goal, preview string) {
	if p.Transcripts == nil {
		return
	}
	_ = p.Transcripts.Write(transcript.Record{
		At:         time.Now().UTC().Format(time.RFC3339Nano),
		Agent:      ch.Name,
		RequestID:  reqID,
		Attempt:    attempt,
		Outcome:    outcome,
		Goal:       goal,
		RawPreview: preview,
	})
}

func rawPreview(s string) string {
	const max = 120
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
