package state

import (
	"path/filepath"
	"testing"
	"time"
)

func TestState_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s := &State{
		LastRunID:        "4b1c9f7e-aaaa-bbbb-cccc-0123456789ab",
		LastRun:          time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC),
		LastMode:         "full",
		InstalledModules: []string{"users.ubuntu", "nodejs"},
		SkippedModules:   []string{"bat"},
		RigupVersion:     "0.1.0",
	}

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.InstalledModules) != 2 {
		t.Errorf("InstalledModules = %v", loaded.InstalledModules)
	}
	if loaded.LastRunID != s.LastRunID {
		t.Errorf("LastRunID = %q", loaded.LastRunID)
	}
	if loaded.RigupVersion != "0.1.0" {
		t.Errorf("RigupVersion = %q", loaded.RigupVersion)
	}
}

func TestLoad_Missing(t *testing.T) {
	s, err := Load("/nonexistent/state.json")
	if err != nil {
		t.Fatalf("Load should not error on missing file: %v", err)
	}
	if s == nil {
		t.Fatal("should return empty state")
	}
	if len(s.InstalledModules) != 0 {
		t.Error("should be empty state")
	}
}

func TestState_AddInstalled(t *testing.T) {
	s := &State{}
	s.AddInstalled("users.ubuntu")
	s.AddInstalled("nodejs")
	s.AddInstalled("users.ubuntu") // duplicate

	if len(s.InstalledModules) != 2 {
		t.Errorf("InstalledModules = %v, want two entries", s.InstalledModules)
	}
}

func TestState_AddSkipped(t *testing.T) {
	s := &State{}
	s.AddSkipped("bat")
	s.AddSkipped("bat") // duplicate

	if len(s.SkippedModules) != 1 {
		t.Errorf("SkippedModules = %v", s.SkippedModules)
	}
}
