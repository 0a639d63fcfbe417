package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	AgentName       string     `json:"agent_name"`
	Module          string     `json:"module"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AgentID         string `json:"agent_id"`
	ResumeToken     string `json:"resume_token"`
	TickRateHz      int    `json:"tick_rate_hz"`
	ServerTimeMs    int64  `json:"server_time_ms,omitempty"`
}

// EVENT (server -> client): one observed occurrence near the agent.
type EventMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Kind            string          `json:"kind"`
	Tick            uint64          `json:"tick"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// CALL (client -> server): invoke a remote procedure on the backend.
type CallMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	CallID          string          `json:"call_id"`
	Proc            string          `json:"proc"`
	Args            json.RawMessage `json:"args,omitempty"`
}

// RESULT (server -> client): outcome of a CALL.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CallID          string `json:"call_id"`
	OK              bool   `json:"ok"`
	ErrorCode       string `json:"error_code,omitempty"`
	ErrorMsg        string `json:"error_msg,omitempty"`
}

type PingMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SentAtMs        int64  `json:"sent_at_ms"`
}

type PongMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SentAtMs        int64  `json:"sent_at_ms"`
}
