// Package checksum maps tool identifiers to their trusted download URL
// and pinned sha256 digest. The registry is loaded once per run from a
// TOML file and is immutable afterwards.
package checksum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned by Lookup when no entry is pinned for a tool.
// Callers decide whether the miss is fatal; the registry does not.
var ErrNotFound = errors.New("no checksum entry for tool")

// Entry pins one tool's download URL and digest.
type Entry struct {
	Tool   string `toml:"tool"`
	URL    string `toml:"url"`
	SHA256 string `toml:"sha256"`
}

// Registry holds pinned entries keyed by tool name.
type Registry struct {
	entries map[string]Entry
}

type registryFile struct {
	Entries []Entry `toml:"entry"`
}

// Load reads a registry file. Every entry must carry a tool name, a URL,
// and a well-formed 64-hex-character sha256 digest.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading checksum registry: %w", err)
	}

	var f registryFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing checksum registry: %w", err)
	}

	return FromEntries(f.Entries)
}

// FromEntries builds a registry from in-memory entries, validating each.
func FromEntries(entries []Entry) (*Registry, error) {
	reg := &Registry{entries: make(map[string]Entry, len(entries))}
	for i, e := range entries {
		if e.Tool == "" || e.URL == "" {
			return nil, fmt.Errorf("registry entry %d: tool and url are required", i)
		}
		raw, err := hex.DecodeString(e.SHA256)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("registry entry for %q: malformed sha256 digest", e.Tool)
		}
		if _, dup := reg.entries[e.Tool]; dup {
			return nil, fmt.Errorf("registry entry for %q pinned twice", e.Tool)
		}
		reg.entries[e.Tool] = e
	}
	return reg, nil
}

// Empty returns a registry with no entries, for runs whose manifest has
// no verified-fetch steps.
func Empty() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Lookup returns the pinned entry for a tool, or ErrNotFound.
func (r *Registry) Lookup(tool string) (Entry, error) {
	e, ok := r.entries[tool]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, tool)
	}
	return e, nil
}

// Len reports the number of pinned entries.
func (r *Registry) Len() int { return len(r.entries) }
