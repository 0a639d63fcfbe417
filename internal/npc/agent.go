package npc

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"brothbots.ai/internal/backend"
	"brothbots.ai/internal/sched"
)

// schedulerTick is how often the planning loop re-evaluates the trigger
// policy. Cheap by design; the policy is a pure predicate.
const schedulerTick = time.Second

// Agent is one live NPC: its identity, backend session, blackboard, and
// the two loops that drive it.
type Agent struct {
	Character Character
	Conn      backend.Conn
	BB        *Blackboard

	planner    *Planner
	schedCfg   sched.Config
	reactiveHz int
	logger     *log.Logger

	// SummaryFn produces the bounded world summary handed to the planner.
	// Swappable for tests; the default summarizes the agent's own state.
	SummaryFn func() string

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

func NewAgent(ch Character, conn backend.Conn, bb *Blackboard, planner *Planner, schedCfg sched.Config, reactiveHz int, logger *log.Logger) *Agent {
	a := &Agent{
		Character:  ch,
		Conn:       conn,
		BB:         bb,
		planner:    planner,
		schedCfg:   schedCfg,
		reactiveHz: reactiveHz,
		logger:     logger,
		stop:       make(chan struct{}),
	}
	a.SummaryFn = a.defaultSummary
	return a
}

// Start launches the planning loop and the reactive loop. The jitter
// delays only the planning loop; it is the fleet's desynchronization
// mechanism, so N agents with the same interval do not plan in the same
// instant.
func (a *Agent) Start(jitter time.Duration) {
	a.startOnce.Do(func() {
		a.wg.Add(2)
		go func() {
			defer a.wg.Done()
			a.planningLoop(jitter)
		}()
		go func() {
			defer a.wg.Done()
			r := &runner{conn: a.Conn, bb: a.BB, hz: a.reactiveHz, logger: a.logger}
			r.loop(context.Background(), a.stop)
		}()
	})
}

// Stop halts both loops. It does not cancel an in-flight completion call;
// the fleet's flush delay lets that settle before the connection drops.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
	a.wg.Wait()
}

func (a *Agent) planningLoop(jitter time.Duration) {
	select {
	case <-a.stop:
		return
	case <-time.After(jitter):
	}

	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
		}
		now := time.Now()
		if !sched.ShouldTrigger(now, a.BB.SchedSnapshot(), a.schedCfg) {
			continue
		}
		a.runPlanningCycle(now)
	}
}

// runPlanningCycle performs one planning invocation. Attempts are
// strictly sequential per agent: the loop that calls this is single, and
// the attempt timestamp is stamped before the transport call starts.
func (a *Agent) runPlanningCycle(start time.Time) {
	a.BB.NoteAttempt(start)
	events := a.BB.DrainEvents()

	p, ok := a.planner.Plan(context.Background(), a.Character, a.SummaryFn(), events)
	if !ok {
		a.BB.RecordFailure()
		return
	}
	a.BB.SetPlan(p)
	if a.logger != nil {
		a.logger.Printf("new plan (%d steps): %s", len(p.Steps), p.Goal)
	}
}

// defaultSummary is a minimal self-description; richer observation
// summaries come from the backend's obs feed when available.
func (a *Agent) defaultSummary() string {
	var cur string
	if p, ok := a.BB.Plan(); ok {
		cur = fmt.Sprintf("Previous goal: %s (step %d of %d).", p.Goal, a.BB.StepIndex(), len(p.Steps))
	} else {
		cur = "No previous plan."
	}
	status := "connected"
	if a.Conn != nil && !a.Conn.Connected() {
		status = "reconnecting"
	}
	return fmt.Sprintf("You are %s. Backend session: %s. %s", a.Character.Name, status, cur)
}
