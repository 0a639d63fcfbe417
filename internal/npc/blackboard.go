package npc

import (
	"encoding/json"
	"sync"
	"time"

	"brothbots.ai/internal/plan"
	"brothbots.ai/internal/sched"
)

// Event is one externally observed occurrence, queued until the next
// planning cycle consumes it.
type Event struct {
	Kind    string
	Tick    uint64
	Payload json.RawMessage
	At      time.Time
}

// Blackboard is the per-agent shared state between the reactive loop and
// the planning loop. All access goes through the mutex; the planning loop
// is the only writer of the plan, the reactive loop the only mover of the
// step cursor.
type Blackboard struct {
	mu sync.Mutex

	lastPlannerRun  time.Time
	current         *plan.Plan
	stepIndex       int
	pending         []Event
	plannerFailures int
}

func NewBlackboard() *Blackboard {
	return &Blackboard{}
}

// NoteAttempt records the start of a planning invocation. Recording at
// start (not completion) is what keeps a second cycle from triggering
// while a slow transport call is still resolving.
func (b *Blackboard) NoteAttempt(t time.Time) {
	b.mu.Lock()
	b.lastPlannerRun = t
	b.mu.Unlock()
}

// SetPlan installs a fresh plan and rewinds the step cursor.
func (b *Blackboard) SetPlan(p plan.Plan) {
	b.mu.Lock()
	b.current = &p
	b.stepIndex = 0
	b.mu.Unlock()
}

// CurrentStep returns the step under the cursor, or false when there is
// no plan or the plan is exhausted.
func (b *Blackboard) CurrentStep() (plan.Step, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.stepIndex >= len(b.current.Steps) {
		return plan.Step{}, false
	}
	return b.current.Steps[b.stepIndex], true
}

// AdvanceStep moves the cursor past the current step. Only the reactive
// loop calls this.
func (b *Blackboard) AdvanceStep() {
	b.mu.Lock()
	if b.current != nil && b.stepIndex < len(b.current.Steps) {
		b.stepIndex++
	}
	b.mu.Unlock()
}

// StepIndex exposes the cursor for status reporting.
func (b *Blackboard) StepIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stepIndex
}

// Plan returns a copy of the current plan, if any.
func (b *Blackboard) Plan() (plan.Plan, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return plan.Plan{}, false
	}
	return *b.current, true
}

// PushEvent appends to the pending queue. Called from the backend
// session's read loop.
func (b *Blackboard) PushEvent(ev Event) {
	b.mu.Lock()
	b.pending = append(b.pending, ev)
	b.mu.Unlock()
}

// DrainEvents removes and returns all pending events in arrival order.
func (b *Blackboard) DrainEvents() []Event {
	b.mu.Lock()
	evs := b.pending
	b.pending = nil
	b.mu.Unlock()
	return evs
}

// RecordFailure counts one terminal planning failure. Reporting only;
// nothing gates on it.
func (b *Blackboard) RecordFailure() {
	b.mu.Lock()
	b.plannerFailures++
	b.mu.Unlock()
}

// Failures returns the terminal failure count.
func (b *Blackboard) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.plannerFailures
}

// SchedSnapshot captures the fields the scheduling policy reads.
func (b *Blackboard) SchedSnapshot() sched.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	urgent := false
	for _, ev := range b.pending {
		if sched.IsUrgent(ev.Kind) {
			urgent = true
			break
		}
	}
	return sched.Snapshot{
		LastPlannerRun: b.lastPlannerRun,
		HasPlan:        b.current != nil,
		PlanExhausted:  b.current != nil && b.stepIndex >= len(b.current.Steps),
		UrgentEvent:    urgent,
	}
}
