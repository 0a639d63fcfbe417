package plan

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidate_RoundTrip(t *testing.T) {
	orig := Plan{
		Goal: "gather driftwood before dark",
		Steps: []Step{
			{Action: ActionMoveTo, Raw: map[string]any{"x": 12.0, "y": -4.0}, Args: MoveArgs{X: 12, Y: -4}},
			{Action: ActionGather, Raw: map[string]any{"resource": "driftwood", "amount": 3.0}, Args: GatherArgs{Resource: "driftwood", Amount: 3}},
			{Action: ActionSay, Raw: map[string]any{"text": "heading back", "channel": "local"}, Args: SayArgs{Text: "heading back", Channel: "local"}},
		},
	}

	got, err := Validate(Serialize(orig))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(got, orig) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, orig)
	}
}

func TestValidate_TruncatesToFiveSteps(t *testing.T) {
	var steps []string
	for i := 0; i < 7; i++ {
		steps = append(steps, fmt.Sprintf(`{"action":"say","args":{"text":"s%d"}}`, i))
	}
	raw := `{"goal":"talkative","steps":[` + strings.Join(steps, ",") + `]}`

	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(p.Steps) != MaxSteps {
		t.Fatalf("len(steps) = %d, want %d", len(p.Steps), MaxSteps)
	}
	for i, s := range p.Steps {
		want := fmt.Sprintf("s%d", i)
		if s.Raw["text"] != want {
			t.Fatalf("step %d text = %v, want %q (order must be preserved)", i, s.Raw["text"], want)
		}
	}
}

func TestValidate_RejectsWhenNoStepSurvives(t *testing.T) {
	raw := `{"goal":"confused","steps":[
	  {"action":"teleport","args":{}},
	  {"action":"summon_dragon","args":{}}
	]}`
	_, err := Validate(raw)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestValidate_RejectsBadTopLevel(t *testing.T) {
	cases := map[string]string{
		"not json":        `move north and gather wood`,
		"goal not string": `{"goal":7,"steps":[{"action":"idle","args":{}}]}`,
		"steps missing":   `{"goal":"aimless"}`,
		"steps not array": `{"goal":"aimless","steps":"idle"}`,
		"top level array": `[{"action":"idle","args":{}}]`,
	}
	for name, raw := range cases {
		if _, err := Validate(raw); !errors.Is(err, ErrRejected) {
			t.Fatalf("%s: err = %v, want ErrRejected", name, err)
		}
	}
}

func TestValidate_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"goal\":\"fenced\",\"steps\":[{\"action\":\"idle\",\"args\":{}}]}\n```"
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Goal != "fenced" {
		t.Fatalf("goal = %q", p.Goal)
	}

	bare := "```\n{\"goal\":\"bare fence\",\"steps\":[{\"action\":\"idle\"}]}\n```"
	if _, err := Validate(bare); err != nil {
		t.Fatalf("bare fence: %v", err)
	}
}

func TestValidate_AcceptsPlanFieldAlias(t *testing.T) {
	raw := `{"goal":"alias","plan":[{"action":"eat","args":{"item":"smoked salmon"}}]}`
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Steps[0].Action != ActionEat {
		t.Fatalf("action = %q", p.Steps[0].Action)
	}
	if args, ok := p.Steps[0].Args.(ConsumeArgs); !ok || args.Item != "smoked salmon" {
		t.Fatalf("typed args = %#v", p.Steps[0].Args)
	}
}

func TestValidate_MissingArgsDefaultsToEmpty(t *testing.T) {
	raw := `{"goal":"minimal","steps":[{"action":"idle"}]}`
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Steps[0].Raw == nil || len(p.Steps[0].Raw) != 0 {
		t.Fatalf("raw args = %#v, want empty object", p.Steps[0].Raw)
	}
}

func TestValidate_DropsStepWithNonObjectArgs(t *testing.T) {
	raw := `{"goal":"mixed","steps":[
	  {"action":"say","args":"hello"},
	  {"action":"flee","args":{"from":"wolf"}}
	]}`
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(p.Steps) != 1 || p.Steps[0].Action != ActionFlee {
		t.Fatalf("steps = %#v, want only the flee step", p.Steps)
	}
}

func TestValidate_TruncatesOverlongGoal(t *testing.T) {
	long := strings.Repeat("g", MaxGoalLen+50)
	raw := fmt.Sprintf(`{"goal":%q,"steps":[{"action":"idle","args":{}}]}`, long)
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(p.Goal) != MaxGoalLen {
		t.Fatalf("len(goal) = %d, want %d", len(p.Goal), MaxGoalLen)
	}
}

func TestValidate_GoalTruncationCountsCharacters(t *testing.T) {
	// Two-byte runes: character count and byte count must not be conflated.
	short := strings.Repeat("é", MaxGoalLen-50)
	raw := fmt.Sprintf(`{"goal":%q,"steps":[{"action":"idle","args":{}}]}`, short)
	p, err := Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Goal != short {
		t.Fatalf("goal under the limit was altered: got %d runes, want %d",
			utf8.RuneCountInString(p.Goal), MaxGoalLen-50)
	}

	long := strings.Repeat("é", MaxGoalLen+50)
	raw = fmt.Sprintf(`{"goal":%q,"steps":[{"action":"idle","args":{}}]}`, long)
	p, err = Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := utf8.RuneCountInString(p.Goal); got != MaxGoalLen {
		t.Fatalf("rune count = %d, want %d", got, MaxGoalLen)
	}
	if !utf8.ValidString(p.Goal) {
		t.Fatalf("truncated goal is not valid UTF-8")
	}
}

func TestValidate_MultibyteGoalRoundTrip(t *testing.T) {
	orig := Plan{
		Goal: strings.Repeat("é", 150),
		Steps: []Step{
			{Action: ActionIdle, Raw: map[string]any{}, Args: IdleArgs{}},
		},
	}
	got, err := Validate(Serialize(orig))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Goal != orig.Goal {
		t.Fatalf("goal changed across round trip: %d runes in, %d runes out",
			utf8.RuneCountInString(orig.Goal), utf8.RuneCountInString(got.Goal))
	}
}

func TestActionVocabularyIsClosed(t *testing.T) {
	if len(Actions()) != 10 {
		t.Fatalf("vocabulary size = %d, want 10", len(Actions()))
	}
	for _, a := range Actions() {
		if !a.Valid() {
			t.Fatalf("action %q not valid", a)
		}
		if ArgDoc(a) == "" {
			t.Fatalf("action %q has no arg doc", a)
		}
	}
	if ActionKind("teleport").Valid() {
		t.Fatalf("unknown action accepted")
	}
}
