package doctor

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	shexec "github.com/rigup-sh/rigup/internal/exec"
	"github.com/rigup-sh/rigup/internal/logging"
	"github.com/rigup-sh/rigup/internal/manifest"
)

func newReconciler(results map[string]shexec.Result) (*Reconciler, *shexec.MockRunner) {
	mock := &shexec.MockRunner{Results: results}
	logger := slog.New(logging.NopHandler{})
	router := shexec.NewRouter(mock, "deploy", "/home/deploy", false, logger)
	return NewReconciler(router, logger), mock
}

func verifyModule(id string, required bool, program string, args ...string) manifest.Module {
	return manifest.Module{
		ID:       id,
		Identity: manifest.Root,
		Verify: []manifest.VerifyStep{
			{Command: manifest.Command{Program: program, Args: args}, Required: required},
		},
	}
}

func TestReconcile_AllHealthy(t *testing.T) {
	r, _ := newReconciler(map[string]shexec.Result{
		"git --version":  {},
		"node --version": {},
	})

	mods := []manifest.Module{
		verifyModule("git", true, "git", "--version"),
		verifyModule("nodejs", true, "node", "--version"),
	}

	report := r.Reconcile(context.Background(), mods)
	if report.Passed != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("tally = %d/%d/%d, want 2/0/0", report.Passed, report.Failed, report.Skipped)
	}
	if !report.Healthy() {
		t.Error("report should be healthy")
	}
}

func TestReconcile_RequiredFailure(t *testing.T) {
	r, _ := newReconciler(map[string]shexec.Result{
		"git --version": {ExitCode: 127},
	})

	report := r.Reconcile(context.Background(), []manifest.Module{
		verifyModule("git", true, "git", "--version"),
	})

	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if report.Healthy() {
		t.Error("report should be unhealthy")
	}
	if report.Checks[0].Status != StatusFailed {
		t.Errorf("check status = %q", report.Checks[0].Status)
	}
	if report.Checks[0].Detail != "git --version" {
		t.Errorf("detail = %q, should name the failing command", report.Checks[0].Detail)
	}
}

func TestReconcile_OptionalFailureSkips(t *testing.T) {
	r, _ := newReconciler(map[string]shexec.Result{
		"bat --version": {ExitCode: 1},
	})

	report := r.Reconcile(context.Background(), []manifest.Module{
		verifyModule("bat", false, "bat", "--version"),
	})

	if report.Skipped != 1 || report.Failed != 0 {
		t.Errorf("tally = %d/%d/%d, want 0/0/1", report.Passed, report.Failed, report.Skipped)
	}
	if !report.Healthy() {
		t.Error("optional failures leave the report healthy")
	}
}

func TestReconcile_NoVerifyStepsSkips(t *testing.T) {
	r, _ := newReconciler(map[string]shexec.Result{})

	report := r.Reconcile(context.Background(), []manifest.Module{{ID: "bare"}})
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}
	if report.Checks[0].Detail != "no verify steps" {
		t.Errorf("detail = %q", report.Checks[0].Detail)
	}
}

func TestReconcile_NeverInstalls(t *testing.T) {
	r, mock := newReconciler(map[string]shexec.Result{
		"git --version": {},
	})

	mod := verifyModule("git", true, "git", "--version")
	mod.Install = []manifest.InstallStep{
		{Run: &manifest.Command{Program: "apt-get", Args: []string{"install", "git"}}},
	}

	r.Reconcile(context.Background(), []manifest.Module{mod})
	for _, call := range mock.Calls {
		if call == "apt-get install git" {
			t.Fatal("reconcile must never run install steps")
		}
	}
}

func TestReconcile_StableOutput(t *testing.T) {
	results := map[string]shexec.Result{
		"git --version": {},
		"jq --version":  {ExitCode: 1},
	}
	mods := []manifest.Module{
		verifyModule("git", true, "git", "--version"),
		verifyModule("jq", false, "jq", "--version"),
	}

	r1, _ := newReconciler(results)
	r2, _ := newReconciler(results)

	first, err1 := json.Marshal(r1.Reconcile(context.Background(), mods))
	second, err2 := json.Marshal(r2.Reconcile(context.Background(), mods))
	if err1 != nil || err2 != nil {
		t.Fatalf("marshal: %v, %v", err1, err2)
	}
	if string(first) != string(second) {
		t.Errorf("reconcile output not stable:\n%s\n%s", first, second)
	}
}
