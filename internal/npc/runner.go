package npc

import (
	"context"
	"log"
	"time"

	"brothbots.ai/internal/backend"
	"brothbots.ai/internal/plan"
)

// runner is the fast loop: a tick-rate state machine that dispatches the
// current plan step to the backend and advances the cursor. It never
// blocks on planning; the two loops meet only at the blackboard.
type runner struct {
	conn   backend.Conn
	bb     *Blackboard
	hz     int
	logger *log.Logger
}

// procFor maps an action kind to its backend procedure.
func procFor(a plan.ActionKind) string {
	return "npc_" + string(a)
}

func (r *runner) loop(ctx context.Context, stop <-chan struct{}) {
	hz := r.hz
	if hz <= 0 {
		hz = 4
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		r.tick(ctx)
	}
}

func (r *runner) tick(ctx context.Context) {
	step, ok := r.bb.CurrentStep()
	if !ok {
		return
	}

	// Idle burns its tick locally; everything else is a backend call.
	if step.Action != plan.ActionIdle {
		if err := r.conn.Call(ctx, procFor(step.Action), step.Raw); err != nil {
			if r.logger != nil {
				r.logger.Printf("step %s failed: %v", step.Action, err)
			}
			// Dropped call: keep the cursor so the step retries next tick.
			return
		}
	}
	r.bb.AdvanceStep()
}
