package plan

import "encoding/json"

// StepArgs is the typed view of a step's args. The decode is permissive:
// fields the model omitted stay zero, fields it invented are ignored. The
// raw object is kept on the step for pass-through to the backend.
type StepArgs interface {
	isStepArgs()
}

type MoveArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type AttackArgs struct {
	Target string `json:"target"`
}

type GatherArgs struct {
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
}

type CraftArgs struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
}

type EquipArgs struct {
	Item string `json:"item"`
}

type SayArgs struct {
	Text    string `json:"text"`
	Channel string `json:"channel"`
}

type IdleArgs struct {
	DurationMs float64 `json:"duration_ms"`
}

type FleeArgs struct {
	From string `json:"from"`
}

// ConsumeArgs covers both eat and drink.
type ConsumeArgs struct {
	Item string `json:"item"`
}

func (MoveArgs) isStepArgs()    {}
func (AttackArgs) isStepArgs()  {}
func (GatherArgs) isStepArgs()  {}
func (CraftArgs) isStepArgs()   {}
func (EquipArgs) isStepArgs()   {}
func (SayArgs) isStepArgs()     {}
func (IdleArgs) isStepArgs()    {}
func (FleeArgs) isStepArgs()    {}
func (ConsumeArgs) isStepArgs() {}

// decodeArgs builds the typed view for one action. Any decode problem
// yields the zero-valued variant rather than an error.
func decodeArgs(action ActionKind, raw map[string]any) StepArgs {
	b, err := json.Marshal(raw)
	if err != nil {
		b = []byte("{}")
	}
	switch action {
	case ActionMoveTo:
		var a MoveArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionAttack:
		var a AttackArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionGather:
		var a GatherArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionCraft:
		var a CraftArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionEquip:
		var a EquipArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionSay:
		var a SayArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionIdle:
		var a IdleArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionFlee:
		var a FleeArgs
		_ = json.Unmarshal(b, &a)
		return a
	case ActionEat, ActionDrink:
		var a ConsumeArgs
		_ = json.Unmarshal(b, &a)
		return a
	}
	return IdleArgs{}
}
