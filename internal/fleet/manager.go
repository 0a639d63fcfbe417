// Package fleet owns the set of live NPC agents: staggered boot against
// the backend, jittered start of the per-agent loops, and graceful drain.
package fleet

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"brothbots.ai/internal/backend"
	"brothbots.ai/internal/npc"
	"brothbots.ai/internal/sched"
)

const (
	// defaultBootStagger spaces out connection attempts so booting N
	// agents does not hit the backend as one burst.
	defaultBootStagger = 500 * time.Millisecond
	// defaultFlushDelay lets in-flight backend calls settle before
	// connections are torn down at shutdown.
	defaultFlushDelay = time.Second
)

// CredStore is the persisted resume-token surface the manager needs.
type CredStore interface {
	Get(agentName string) (string, error)
	Put(agentName, token string) error
}

type Config struct {
	Module          string
	Roster          []npc.Character
	FleetSize       int
	PlannerInterval time.Duration
	ReactiveHz      int

	// BootStagger and FlushDelay fall back to the defaults when zero.
	BootStagger time.Duration
	FlushDelay  time.Duration
}

// Manager runs the fleet. The agent map is mutated only during boot and
// shutdown, never concurrently with itself.
type Manager struct {
	cfg       Config
	connector backend.Connector
	creds     CredStore // optional
	planner   *npc.Planner
	logger    *log.Logger

	rng *rand.Rand

	mu       sync.Mutex
	agents   map[string]*npc.Agent
	shutdown bool
	drained  bool
}

func NewManager(cfg Config, connector backend.Connector, creds CredStore, planner *npc.Planner, logger *log.Logger) *Manager {
	if cfg.BootStagger <= 0 {
		cfg.BootStagger = defaultBootStagger
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = defaultFlushDelay
	}
	if cfg.FleetSize > len(cfg.Roster) {
		cfg.FleetSize = len(cfg.Roster)
	}
	return &Manager{
		cfg:       cfg,
		connector: connector,
		creds:     creds,
		planner:   planner,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		agents:    map[string]*npc.Agent{},
	}
}

// BootAll connects each roster character in turn. A failed connect
// excludes that one agent and boot proceeds; a concurrent Shutdown stops
// admitting new agents but keeps the ones already connected.
func (m *Manager) BootAll(ctx context.Context) {
	for i := 0; i < m.cfg.FleetSize; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.cfg.BootStagger):
			}
		}
		if m.shuttingDown() {
			if m.logger != nil {
				m.logger.Printf("boot: shutdown requested, %d of %d agents admitted", i, m.cfg.FleetSize)
			}
			return
		}
		m.bootOne(ctx, m.cfg.Roster[i])
	}
}

func (m *Manager) bootOne(ctx context.Context, ch npc.Character) {
	token := ""
	if m.creds != nil {
		t, err := m.creds.Get(ch.Name)
		if err != nil && m.logger != nil {
			m.logger.Printf("boot %s: load token: %v", ch.Name, err)
		}
		token = t
	}

	bb := npc.NewBlackboard()
	cb := backend.Callbacks{
		OnEvent: func(kind string, tick uint64, payload json.RawMessage) {
			bb.PushEvent(npc.Event{Kind: kind, Tick: tick, Payload: payload, At: time.Now()})
		},
	}
	if m.creds != nil {
		name := ch.Name
		cb.OnUpdate = func(_, tok string) {
			if err := m.creds.Put(name, tok); err != nil && m.logger != nil {
				m.logger.Printf("save token %s: %v", name, err)
			}
		}
	}

	conn, err := m.connector.Connect(ctx, backend.ConnectOpts{
		AgentName:   ch.Name,
		Module:      m.cfg.Module,
		ResumeToken: token,
	}, cb)
	if err != nil {
		if m.logger != nil {
			m.logger.Printf("boot %s: connect: %v (agent excluded)", ch.Name, err)
		}
		return
	}

	agent := npc.NewAgent(ch, conn, bb, m.planner,
		sched.Config{PlannerInterval: m.cfg.PlannerInterval}, m.cfg.ReactiveHz, m.logger)

	m.mu.Lock()
	if m.shutdown {
		// Shutdown won the race while this connect was in flight.
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.agents[ch.Name] = agent
	m.mu.Unlock()
	if m.logger != nil {
		m.logger.Printf("boot %s: connected as %s", ch.Name, conn.AgentID())
	}
}

// StartAll launches every booted agent's loops with a per-agent random
// jitter in [0, plannerInterval), desynchronizing the fleet's planning
// cadence.
func (m *Manager) StartAll() {
	m.mu.Lock()
	agents := make([]*npc.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	m.mu.Unlock()

	for _, a := range agents {
		jitter := time.Duration(0)
		if m.cfg.PlannerInterval > 0 {
			jitter = time.Duration(m.rng.Int63n(int64(m.cfg.PlannerInterval)))
		}
		a.Start(jitter)
	}
}

// Shutdown drains the fleet: stop loops, wait the flush delay so
// in-flight calls settle, disconnect, clear the map. Safe to call more
// than once; later calls are no-ops.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.drained {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	m.drained = true
	agents := make([]*npc.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	m.mu.Unlock()

	for _, a := range agents {
		a.Stop()
	}

	time.Sleep(m.cfg.FlushDelay)

	for _, a := range agents {
		a.Conn.Close()
	}

	m.mu.Lock()
	m.agents = map[string]*npc.Agent{}
	m.mu.Unlock()
	if m.logger != nil {
		m.logger.Printf("shutdown complete, %d agents disconnected", len(agents))
	}
}

// GetAgent looks up a live agent by character name.
func (m *Manager) GetAgent(name string) (*npc.Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[name]
	return a, ok
}

// Agents lists live agent names, sorted.
func (m *Manager) Agents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.agents))
	for name := range m.agents {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) shuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}
