package npc

import (
	"fmt"
	"strings"

	"brothbots.ai/internal/plan"
)

// systemPrelude teaches the model who the NPC is and the exact output
// contract. The action list is generated from the vocabulary so the
// prompt cannot drift from the validator.
func systemPrelude(ch Character) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, an NPC in the survival game Broth & Bullets.\n", ch.Name)
	if ch.Role != "" {
		fmt.Fprintf(&sb, "Role: %s\n", ch.Role)
	}
	if ch.Personality != "" {
		fmt.Fprintf(&sb, "Personality: %s\n", ch.Personality)
	}
	if len(ch.Priorities) > 0 {
		fmt.Fprintf(&sb, "Priorities, most important first: %s\n", strings.Join(ch.Priorities, ", "))
	}
	if len(ch.PreferredResources) > 0 {
		fmt.Fprintf(&sb, "Preferred resources: %s\n", strings.Join(ch.PreferredResources, ", "))
	}

	sb.WriteString("\nDecide what to do next and answer with ONLY valid JSON (no markdown, no prose):\n")
	sb.WriteString(`{"goal": "short description", "steps": [{"action": "...", "args": {...}}]}` + "\n\n")
	fmt.Fprintf(&sb, "Rules:\n- 1 to %d steps.\n- goal at most %d characters.\n- action must be one of the kinds below, args must match its shape.\n\nActions:\n",
		plan.MaxSteps, plan.MaxGoalLen)
	for _, a := range plan.Actions() {
		fmt.Fprintf(&sb, "- %s: args %s\n", a, plan.ArgDoc(a))
	}
	return sb.String()
}

// userPrompt combines the world summary with whatever events queued up
// since the last cycle.
func userPrompt(worldSummary string, events []Event) string {
	var sb strings.Builder
	sb.WriteString("World state:\n")
	if strings.TrimSpace(worldSummary) == "" {
		sb.WriteString("(no observation available yet)\n")
	} else {
		sb.WriteString(worldSummary)
		if !strings.HasSuffix(worldSummary, "\n") {
			sb.WriteByte('\n')
		}
	}
	if len(events) > 0 {
		sb.WriteString("\nRecent events, oldest first:\n")
		for _, ev := range events {
			if len(ev.Payload) > 0 {
				fmt.Fprintf(&sb, "- %s (tick %d): %s\n", ev.Kind, ev.Tick, ev.Payload)
			} else {
				fmt.Fprintf(&sb, "- %s (tick %d)\n", ev.Kind, ev.Tick)
			}
		}
	}
	sb.WriteString("\nProduce your next plan.")
	return sb.String()
}
