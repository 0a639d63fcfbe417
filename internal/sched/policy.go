// Package sched decides when an agent's next planning attempt is due. The
// policy is a pure function over a blackboard snapshot so the planning
// loop can evaluate it every tick without side effects.
package sched

import "time"

const (
	// UrgentFloor rate-limits event-driven early fires so an event storm
	// cannot become a planning storm.
	UrgentFloor = 5 * time.Second
	// IdleFloor rate-limits the exhausted-plan fallback.
	IdleFloor = 10 * time.Second
)

// Snapshot is the slice of blackboard state the policy reads. Built under
// the blackboard lock, evaluated without it.
type Snapshot struct {
	LastPlannerRun time.Time
	HasPlan        bool
	PlanExhausted  bool
	UrgentEvent    bool
}

// Config carries the tunable part of the policy.
type Config struct {
	PlannerInterval time.Duration
}

// ShouldTrigger reports whether a planning attempt is due at now.
// Decision order, first match wins:
//  1. baseline cadence: a full planner interval has elapsed;
//  2. urgent early fire: a high-salience event is pending and at least
//     UrgentFloor has elapsed;
//  3. idle fallback: no plan (or plan exhausted) and at least IdleFloor
//     has elapsed.
func ShouldTrigger(now time.Time, snap Snapshot, cfg Config) bool {
	elapsed := now.Sub(snap.LastPlannerRun)

	if elapsed >= cfg.PlannerInterval {
		return true
	}
	if snap.UrgentEvent && elapsed >= UrgentFloor {
		return true
	}
	if (!snap.HasPlan || snap.PlanExhausted) && elapsed >= IdleFloor {
		return true
	}
	return false
}

// UrgentKinds is the set of event kinds that justify an early fire.
var UrgentKinds = map[string]struct{}{
	"attacked":     {},
	"low_health":   {},
	"died":         {},
	"chat_mention": {},
}

// IsUrgent reports whether an event kind is in the urgent set.
func IsUrgent(kind string) bool {
	_, ok := UrgentKinds[kind]
	return ok
}
