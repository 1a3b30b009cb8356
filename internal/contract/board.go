// Package contract tracks which dependency contracts have been satisfied
// during a run. It is a defensive safety net against manifest ordering
// bugs, not a scheduler: the manifest compiler is responsible for
// topological ordering, and the board only catches violations.
package contract

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnsatisfied is returned by Require when a contract key was never
// marked satisfied by an earlier module or bootstrap step.
var ErrUnsatisfied = errors.New("contract unsatisfied")

// Board is an append-only set of satisfied contract keys. Keys are never
// revoked within a run. The mutex guards against the detached-session
// code path observing the set mid-update.
type Board struct {
	mu        sync.Mutex
	satisfied map[string]bool
}

// NewBoard creates an empty Board.
func NewBoard() *Board {
	return &Board{satisfied: make(map[string]bool)}
}

// Satisfy marks a contract key as fulfilled.
func (b *Board) Satisfy(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.satisfied[key] = true
}

// Satisfied reports whether a contract key has been fulfilled.
func (b *Board) Satisfied(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.satisfied[key]
}

// Require returns nil if the key has been satisfied, or ErrUnsatisfied
// naming the key otherwise.
func (b *Board) Require(key string) error {
	if !b.Satisfied(key) {
		return fmt.Errorf("%w: %q", ErrUnsatisfied, key)
	}
	return nil
}

// Keys returns the satisfied keys in sorted order, for logging.
func (b *Board) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.satisfied))
	for k := range b.satisfied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
