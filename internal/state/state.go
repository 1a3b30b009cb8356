// Package state persists a small informational record of the last run.
// The engine never consults it to skip work; idempotence comes from the
// modules' own verify semantics, not from this file.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type State struct {
	LastRunID        string    `json:"last_run_id"`
	LastRun          time.Time `json:"last_run"`
	LastMode         string    `json:"last_mode"`
	InstalledModules []string  `json:"installed_modules"`
	SkippedModules   []string  `json:"skipped_modules"`
	RigupVersion     string    `json:"rigup_version"`
}

func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func Save(path string, s *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *State) AddInstalled(id string) {
	if !contains(s.InstalledModules, id) {
		s.InstalledModules = append(s.InstalledModules, id)
	}
}

func (s *State) AddSkipped(id string) {
	if !contains(s.SkippedModules, id) {
		s.SkippedModules = append(s.SkippedModules, id)
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
