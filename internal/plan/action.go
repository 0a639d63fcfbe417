package plan

// ActionKind is the closed set of step actions the fast loop can execute.
// Adding a kind means updating argDocs below and the planner prompt that
// teaches the model the vocabulary.
type ActionKind string

const (
	ActionMoveTo ActionKind = "move_to"
	ActionAttack ActionKind = "attack"
	ActionGather ActionKind = "gather"
	ActionCraft  ActionKind = "craft"
	ActionEquip  ActionKind = "equip"
	ActionSay    ActionKind = "say"
	ActionIdle   ActionKind = "idle"
	ActionFlee   ActionKind = "flee"
	ActionEat    ActionKind = "eat"
	ActionDrink  ActionKind = "drink"
)

var knownActions = map[ActionKind]struct{}{
	ActionMoveTo: {},
	ActionAttack: {},
	ActionGather: {},
	ActionCraft:  {},
	ActionEquip:  {},
	ActionSay:    {},
	ActionIdle:   {},
	ActionFlee:   {},
	ActionEat:    {},
	ActionDrink:  {},
}

func (a ActionKind) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Actions returns the vocabulary in prompt order.
func Actions() []ActionKind {
	return []ActionKind{
		ActionMoveTo, ActionAttack, ActionGather, ActionCraft, ActionEquip,
		ActionSay, ActionIdle, ActionFlee, ActionEat, ActionDrink,
	}
}

var argDocs = map[ActionKind]string{
	ActionMoveTo: `{"x": number, "y": number}`,
	ActionAttack: `{"target": "entity name or id"}`,
	ActionGather: `{"resource": "resource name", "amount": number}`,
	ActionCraft:  `{"item": "recipe name", "quantity": number}`,
	ActionEquip:  `{"item": "item name"}`,
	ActionSay:    `{"text": "message", "channel": "local|global"}`,
	ActionIdle:   `{"duration_ms": number}`,
	ActionFlee:   `{"from": "entity name or id"}`,
	ActionEat:    `{"item": "food item name"}`,
	ActionDrink:  `{"item": "drink item name"}`,
}

// ArgDoc returns the documented args shape for one action.
func ArgDoc(a ActionKind) string {
	return argDocs[a]
}
