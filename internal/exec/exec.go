// Package exec runs external commands and routes them to the right
// execution identity. The Runner interface is the seam tests use; the
// Router is the single chokepoint where dry-run is enforced.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the output and exit code of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. DefaultRunner spawns real
// processes; MockRunner answers from a canned table in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// DefaultRunner executes commands on the real system, capturing both
// output streams. It never goes through a shell; name and args reach
// the kernel exactly as given.
type DefaultRunner struct{}

func (d *DefaultRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, fmt.Errorf("command %q failed: %w\nstderr: %s", name, err, stderr.String())
}

// MockRunner is a test double keyed by the full invocation string
// ("name arg1 arg2 ..."). A configured non-zero exit code produces an
// error, matching DefaultRunner; an unconfigured command is always an
// error so tests catch unexpected executions.
type MockRunner struct {
	Results map[string]Result
	Calls   []string
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	m.Calls = append(m.Calls, key)

	result, ok := m.Results[key]
	if !ok {
		return Result{}, fmt.Errorf("unexpected command: %q", key)
	}
	if result.ExitCode != 0 {
		return result, fmt.Errorf("command %q exited with code %d", key, result.ExitCode)
	}
	return result, nil
}
