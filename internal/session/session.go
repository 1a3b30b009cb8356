// Package session launches verified installers as detached, named,
// persistent sessions so long-running services don't block the pipeline.
// The Multiplexer interface keeps the engine independent of any
// particular terminal tool; Tmux is the production implementation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	shexec "github.com/rigup-sh/rigup/internal/exec"
	"github.com/rigup-sh/rigup/internal/manifest"
)

// ErrLaunchFailed is returned when a detached session could not be
// created or did not survive the settle delay.
var ErrLaunchFailed = errors.New("session launch failed")

// DefaultSettle is the bounded delay between launching a session and
// confirming it still exists.
const DefaultSettle = 2 * time.Second

// Multiplexer is a supervised detached process launcher: spawn by name,
// query by name, kill by name.
type Multiplexer interface {
	Has(ctx context.Context, name string) (bool, error)
	Kill(ctx context.Context, name string) error
	Launch(ctx context.Context, name string, cmd manifest.Command) error
}

// Tmux drives a tmux server through the exec Runner.
type Tmux struct {
	Exec shexec.Runner
}

// Has reports whether a session with the given name exists.
func (t *Tmux) Has(ctx context.Context, name string) (bool, error) {
	result, err := t.Exec.Run(ctx, "tmux", "has-session", "-t", name)
	if err != nil {
		// tmux exits 1 both when the session is absent and when no
		// server is running; treat either as "not present".
		if result.ExitCode != 0 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Kill terminates the named session.
func (t *Tmux) Kill(ctx context.Context, name string) error {
	_, err := t.Exec.Run(ctx, "tmux", "kill-session", "-t", name)
	return err
}

// Launch creates a detached session running cmd.
func (t *Tmux) Launch(ctx context.Context, name string, cmd manifest.Command) error {
	args := append([]string{"new-session", "-d", "-s", name, cmd.Program}, cmd.Args...)
	_, err := t.Exec.Run(ctx, "tmux", args...)
	return err
}

// Manager provides idempotent detached launches: a stale session with the
// same name is terminated before the new one is created, and the launch
// is confirmed after a bounded settle delay.
type Manager struct {
	mux    Multiplexer
	settle time.Duration
	logger *slog.Logger
}

// NewManager creates a Manager. A non-positive settle falls back to
// DefaultSettle.
func NewManager(mux Multiplexer, settle time.Duration, logger *slog.Logger) *Manager {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Manager{mux: mux, settle: settle, logger: logger}
}

// Start launches cmd detached under the given session name. The pipeline
// does not wait for the command to finish; Start returns once the session
// is confirmed alive.
func (m *Manager) Start(ctx context.Context, name string, cmd manifest.Command) error {
	exists, err := m.mux.Has(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: checking for stale session %q: %v", ErrLaunchFailed, name, err)
	}
	if exists {
		m.logger.Info("replacing stale session", slog.String("session", name))
		if err := m.mux.Kill(ctx, name); err != nil {
			return fmt.Errorf("%w: killing stale session %q: %v", ErrLaunchFailed, name, err)
		}
	}

	if err := m.mux.Launch(ctx, name, cmd); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrLaunchFailed, name, err)
	}

	// Bounded settle before confirming; a crash-on-start shows up here.
	select {
	case <-time.After(m.settle):
	case <-ctx.Done():
		return fmt.Errorf("%w: %q: %v", ErrLaunchFailed, name, ctx.Err())
	}

	alive, err := m.mux.Has(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: confirming session %q: %v", ErrLaunchFailed, name, err)
	}
	if !alive {
		return fmt.Errorf("%w: session %q exited during settle", ErrLaunchFailed, name)
	}

	m.logger.Info("detached session started",
		slog.String("session", name),
		slog.String("command", cmd.String()),
	)
	return nil
}
