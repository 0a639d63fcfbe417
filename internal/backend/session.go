package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"brothbots.ai/internal/protocol"
)

const (
	handshakeTimeout = 5 * time.Second
	welcomeTimeout   = 10 * time.Second
	readDeadline     = 60 * time.Second
	writeDeadline    = 5 * time.Second

	backoffStart = 200 * time.Millisecond
	backoffCap   = 5 * time.Second
)

// Dialer connects agents to one backend URL.
type Dialer struct {
	URL    string
	Logger *log.Logger
}

func (d *Dialer) Connect(ctx context.Context, opts ConnectOpts, cb Callbacks) (Conn, error) {
	s := &session{
		dialURL: d.URL,
		opts:    opts,
		cb:      cb,
		logger:  d.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	conn, err := s.dialAndHello(ctx)
	if err != nil {
		return nil, err
	}
	go s.run(conn)
	return s, nil
}

type session struct {
	dialURL string
	opts    ConnectOpts
	cb      Callbacks
	logger  *log.Logger

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	agentID   string
	lastErr   string

	writeMu sync.Mutex
}

func (s *session) AgentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agentID
}

func (s *session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *session) Call(ctx context.Context, proc string, args any) error {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshal args: %w", err)
		}
		raw = b
	}
	msg := protocol.CallMsg{
		Type:            protocol.TypeCall,
		ProtocolVersion: protocol.Version,
		CallID:          uuid.NewString(),
		Proc:            proc,
		Args:            raw,
	}
	b, _ := json.Marshal(msg)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	deadline := time.Now().Add(writeDeadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.disconnect()
		<-s.done
	})
}

func (s *session) disconnect() {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}

// dialAndHello performs one full handshake: dial, HELLO with the current
// resume token, block until WELCOME.
func (s *session) dialAndHello(ctx context.Context) (*websocket.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := d.DialContext(ctx, s.dialURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.dialURL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       s.opts.AgentName,
		Module:          s.opts.Module,
	}
	s.mu.RLock()
	token := s.opts.ResumeToken
	s.mu.RUnlock()
	if token != "" {
		hello.Auth = &protocol.HelloAuth{Token: token}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send HELLO: %w", err)
	}

	// Drain until WELCOME or give up.
	deadline := time.Now().Add(welcomeTimeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("await WELCOME: %w", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeWelcome {
			continue
		}
		var w protocol.WelcomeMsg
		if err := json.Unmarshal(msg, &w); err != nil {
			continue
		}
		if !protocol.IsSupportedVersion(w.ProtocolVersion) {
			_ = conn.Close()
			return nil, fmt.Errorf("unsupported protocol version %q", w.ProtocolVersion)
		}
		s.mu.Lock()
		s.conn = conn
		s.connected = true
		s.agentID = w.AgentID
		s.opts.ResumeToken = w.ResumeToken
		s.lastErr = ""
		s.mu.Unlock()
		if s.cb.OnUpdate != nil && w.ResumeToken != "" {
			s.cb.OnUpdate(s.opts.AgentName, w.ResumeToken)
		}
		return conn, nil
	}
}

// run owns the connection after the initial handshake: read until the
// connection drops, then reconnect with capped backoff until Close.
func (s *session) run(conn *websocket.Conn) {
	defer close(s.done)

	backoff := backoffStart
	for {
		err := s.readLoop(conn)
		s.disconnect()
		if err == nil {
			return
		}
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()

		for {
			select {
			case <-s.stop:
				return
			case <-time.After(backoff):
			}
			if backoff < backoffCap {
				backoff *= 2
				if backoff > backoffCap {
					backoff = backoffCap
				}
			}
			ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
			c, err := s.dialAndHello(ctx)
			cancel()
			if err != nil {
				if s.logger != nil {
					s.logger.Printf("reconnect %s: %v", s.opts.AgentName, err)
				}
				continue
			}
			conn = c
			backoff = backoffStart
			break
		}
	}
}

// readLoop pumps messages until the connection fails or Close is called.
// A nil return means a clean stop.
func (s *session) readLoop(conn *websocket.Conn) error {
	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stop:
				return nil
			default:
			}
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			if s.cb.OnEvent != nil {
				s.cb.OnEvent(ev.Kind, ev.Tick, ev.Payload)
			}

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			if !res.OK && s.logger != nil {
				s.logger.Printf("call %s failed: %s %s", res.CallID, res.ErrorCode, res.ErrorMsg)
			}

		case protocol.TypePing:
			var ping protocol.PingMsg
			if err := json.Unmarshal(msg, &ping); err != nil {
				continue
			}
			pong := protocol.PongMsg{
				Type:            protocol.TypePong,
				ProtocolVersion: protocol.Version,
				SentAtMs:        ping.SentAtMs,
			}
			b, _ := json.Marshal(pong)
			s.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = conn.WriteMessage(websocket.TextMessage, b)
			s.writeMu.Unlock()
		}
	}
}
