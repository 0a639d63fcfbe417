// Package credstore persists per-agent resume tokens between runs so a
// restarted fleet reclaims its NPC identities instead of minting new ones.
package credstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open creates (or opens) credentials.db under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "credentials.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS tokens (
  agent_name   TEXT PRIMARY KEY,
  resume_token TEXT NOT NULL,
  updated_at   TEXT NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored token for an agent, or "" if none is known.
func (s *Store) Get(agentName string) (string, error) {
	var tok string
	err := s.db.QueryRow(
		`SELECT resume_token FROM tokens WHERE agent_name = ?`, agentName,
	).Scan(&tok)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get token %s: %w", agentName, err)
	}
	return tok, nil
}

// Put upserts an agent's token.
func (s *Store) Put(agentName, token string) error {
	_, err := s.db.Exec(`
INSERT INTO tokens (agent_name, resume_token, updated_at) VALUES (?, ?, ?)
ON CONFLICT(agent_name) DO UPDATE SET
  resume_token = excluded.resume_token,
  updated_at   = excluded.updated_at;`,
		agentName, token, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put token %s: %w", agentName, err)
	}
	return nil
}
