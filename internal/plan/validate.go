package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrRejected marks model output that could not be turned into a usable
// plan. Callers branch on it with errors.Is; the wrapped message says why.
var ErrRejected = errors.New("plan rejected")

// Top-level shape gate. Step contents are deliberately looser than this
// and filtered in code below.
const planSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["goal"],
  "properties": {
    "goal": { "type": "string" }
  },
  "anyOf": [
    {
      "required": ["steps"],
      "properties": { "steps": { "type": "array" } }
    },
    {
      "required": ["plan"],
      "properties": { "plan": { "type": "array" } }
    }
  ]
}`

var planSchema = jsonschema.MustCompileString("plan.schema.json", planSchemaJSON)

// Validate turns untrusted completion text into a Plan or a rejection.
// It never panics past its own boundary and never returns a plan with
// zero steps, more than MaxSteps steps, or an unknown action.
func Validate(raw string) (p Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = Plan{}
			err = fmt.Errorf("internal: %v: %w", r, ErrRejected)
		}
	}()

	text := stripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Plan{}, fmt.Errorf("parse: %v: %w", err, ErrRejected)
	}
	if err := planSchema.Validate(doc); err != nil {
		return Plan{}, fmt.Errorf("shape: %v: %w", err, ErrRejected)
	}

	obj := doc.(map[string]any)
	goal, _ := obj["goal"].(string)
	goal = truncateRunes(goal, MaxGoalLen)

	rawSteps, ok := obj["steps"].([]any)
	if !ok {
		rawSteps, _ = obj["plan"].([]any)
	}

	steps := make([]Step, 0, MaxSteps)
	for _, cand := range rawSteps {
		if len(steps) == MaxSteps {
			break
		}
		m, ok := cand.(map[string]any)
		if !ok {
			continue
		}
		actionStr, ok := m["action"].(string)
		if !ok {
			continue
		}
		action := ActionKind(actionStr)
		if !action.Valid() {
			continue
		}
		args := map[string]any{}
		if rawArgs, present := m["args"]; present {
			argsObj, ok := rawArgs.(map[string]any)
			if !ok {
				continue
			}
			args = argsObj
		}
		steps = append(steps, Step{
			Action: action,
			Raw:    args,
			Args:   decodeArgs(action, args),
		})
	}

	if len(steps) == 0 {
		return Plan{}, fmt.Errorf("no usable steps: %w", ErrRejected)
	}
	return Plan{Goal: goal, Steps: steps}, nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// stripFences removes a surrounding markdown code fence, with or without a
// json language tag. Text without fences passes through trimmed.
func stripFences(text string) string {
	start := strings.Index(text, "```")
	end := strings.LastIndex(text, "```")
	if start >= 0 && end > start {
		block := text[start+3 : end]
		block = strings.TrimPrefix(block, "json")
		return strings.TrimSpace(block)
	}
	return strings.TrimSpace(text)
}
