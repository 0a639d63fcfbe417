package npc

import (
	"testing"
	"time"

	"brothbots.ai/internal/plan"
)

func twoStepPlan() plan.Plan {
	return plan.Plan{
		Goal: "patrol the shore",
		Steps: []plan.Step{
			{Action: plan.ActionMoveTo, Raw: map[string]any{"x": 1.0, "y": 2.0}, Args: plan.MoveArgs{X: 1, Y: 2}},
			{Action: plan.ActionSay, Raw: map[string]any{"text": "all clear"}, Args: plan.SayArgs{Text: "all clear"}},
		},
	}
}

func TestBlackboard_CursorLifecycle(t *testing.T) {
	bb := NewBlackboard()

	if _, ok := bb.CurrentStep(); ok {
		t.Fatalf("fresh blackboard should have no step")
	}

	bb.SetPlan(twoStepPlan())
	step, ok := bb.CurrentStep()
	if !ok || step.Action != plan.ActionMoveTo {
		t.Fatalf("first step = %+v ok=%v", step, ok)
	}

	bb.AdvanceStep()
	step, ok = bb.CurrentStep()
	if !ok || step.Action != plan.ActionSay {
		t.Fatalf("second step = %+v ok=%v", step, ok)
	}

	bb.AdvanceStep()
	if _, ok := bb.CurrentStep(); ok {
		t.Fatalf("exhausted plan should yield no step")
	}
	snap := bb.SchedSnapshot()
	if !snap.HasPlan || !snap.PlanExhausted {
		t.Fatalf("snapshot = %+v, want HasPlan && PlanExhausted", snap)
	}

	// Advancing past the end stays put.
	bb.AdvanceStep()
	if bb.StepIndex() != 2 {
		t.Fatalf("step index = %d, want clamped at 2", bb.StepIndex())
	}

	// A fresh plan rewinds the cursor.
	bb.SetPlan(twoStepPlan())
	if bb.StepIndex() != 0 {
		t.Fatalf("step index after new plan = %d, want 0", bb.StepIndex())
	}
}

func TestBlackboard_EventQueueOrderAndUrgency(t *testing.T) {
	bb := NewBlackboard()

	snap := bb.SchedSnapshot()
	if snap.UrgentEvent {
		t.Fatalf("empty queue flagged urgent")
	}

	bb.PushEvent(Event{Kind: "weather", Tick: 1})
	bb.PushEvent(Event{Kind: "low_health", Tick: 2})
	bb.PushEvent(Event{Kind: "item_gained", Tick: 3})

	if !bb.SchedSnapshot().UrgentEvent {
		t.Fatalf("low_health in queue should flag urgent")
	}

	evs := bb.DrainEvents()
	if len(evs) != 3 {
		t.Fatalf("drained %d events, want 3", len(evs))
	}
	for i, want := range []string{"weather", "low_health", "item_gained"} {
		if evs[i].Kind != want {
			t.Fatalf("event %d = %q, want %q (arrival order)", i, evs[i].Kind, want)
		}
	}
	if len(bb.DrainEvents()) != 0 {
		t.Fatalf("queue should be empty after drain")
	}
}

func TestBlackboard_AttemptTimestampAndFailures(t *testing.T) {
	bb := NewBlackboard()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	bb.NoteAttempt(at)
	if got := bb.SchedSnapshot().LastPlannerRun; !got.Equal(at) {
		t.Fatalf("lastPlannerRun = %v, want %v", got, at)
	}

	bb.RecordFailure()
	bb.RecordFailure()
	if bb.Failures() != 2 {
		t.Fatalf("failures = %d, want 2", bb.Failures())
	}
}
