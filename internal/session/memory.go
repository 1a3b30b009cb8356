package session

import (
	"context"
	"sync"

	"github.com/rigup-sh/rigup/internal/manifest"
)

// Memory is an in-memory Multiplexer for tests. Sessions live in a map;
// DieOnLaunch simulates an installer that exits before the settle delay.
type Memory struct {
	mu          sync.Mutex
	sessions    map[string]manifest.Command
	Killed      []string
	Launched    []string
	DieOnLaunch map[string]bool
}

// NewMemory creates an empty in-memory multiplexer.
func NewMemory() *Memory {
	return &Memory{
		sessions:    make(map[string]manifest.Command),
		DieOnLaunch: make(map[string]bool),
	}
}

// Preload registers an existing session, for stale-session tests.
func (m *Memory) Preload(name string, cmd manifest.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[name] = cmd
}

func (m *Memory) Has(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[name]
	return ok, nil
}

func (m *Memory) Kill(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
	m.Killed = append(m.Killed, name)
	return nil
}

func (m *Memory) Launch(ctx context.Context, name string, cmd manifest.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Launched = append(m.Launched, name)
	if !m.DieOnLaunch[name] {
		m.sessions[name] = cmd
	}
	return nil
}
