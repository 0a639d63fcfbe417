package protocol

// Event kinds emitted by the backend's subscription feed. The backend may
// add kinds without a protocol bump; unknown kinds still flow through to
// the agent's event queue.
const (
	EventAttacked    = "attacked"
	EventLowHealth   = "low_health"
	EventDied        = "died"
	EventChatMention = "chat_mention"
	EventItemGained  = "item_gained"
	EventPlayerNear  = "player_near"
	EventWeather     = "weather"
)
