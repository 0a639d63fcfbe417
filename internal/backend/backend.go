// Package backend maintains one websocket session per NPC against the
// game's authoritative simulation server: handshake with resume token,
// remote procedure calls, and the event feed the planner reacts to.
package backend

import (
	"context"
	"encoding/json"
)

// ConnectOpts identifies one agent to the backend.
type ConnectOpts struct {
	AgentName   string
	Module      string
	ResumeToken string
}

// Callbacks are invoked from the session's read loop. They must not block.
type Callbacks struct {
	// OnEvent receives one entry from the backend's subscription feed.
	OnEvent func(kind string, tick uint64, payload json.RawMessage)
	// OnUpdate is called when the backend issues or refreshes the agent's
	// resume token.
	OnUpdate func(agentName, resumeToken string)
}

// Conn is a live session. Exclusively owned by its agent.
type Conn interface {
	AgentID() string
	Connected() bool
	// Call fires a remote procedure. Results come back asynchronously on
	// the read loop; a Call error means the write itself failed.
	Call(ctx context.Context, proc string, args any) error
	Close()
}

// Connector abstracts session establishment so the fleet manager and its
// tests do not depend on the websocket implementation.
type Connector interface {
	Connect(ctx context.Context, opts ConnectOpts, cb Callbacks) (Conn, error)
}
