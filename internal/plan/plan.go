package plan

import "encoding/json"

const (
	// MaxSteps bounds how much behavior a single completion may drive.
	MaxSteps = 5
	// MaxGoalLen bounds the goal text carried around in logs and prompts.
	MaxGoalLen = 200
)

// Plan is the validated output contract of the planner. Immutable once
// constructed: 1..MaxSteps steps, every action a known kind.
type Plan struct {
	Goal  string
	Steps []Step
}

// Step is one executable unit of a plan.
type Step struct {
	Action ActionKind
	// Raw is the args object exactly as received; the fast loop passes it
	// through to the backend call unchanged.
	Raw map[string]any
	// Args is the typed best-effort view of Raw.
	Args StepArgs
}

type stepWire struct {
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`
}

type planWire struct {
	Goal  string     `json:"goal"`
	Steps []stepWire `json:"steps"`
}

// Serialize renders a plan back to the JSON shape the validator accepts.
func Serialize(p Plan) string {
	w := planWire{Goal: p.Goal, Steps: make([]stepWire, 0, len(p.Steps))}
	for _, s := range p.Steps {
		raw := s.Raw
		if raw == nil {
			raw = map[string]any{}
		}
		w.Steps = append(w.Steps, stepWire{Action: string(s.Action), Args: raw})
	}
	b, _ := json.Marshal(w)
	return string(b)
}
