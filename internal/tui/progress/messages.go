package progress

import "github.com/rigup-sh/rigup/internal/engine"

// StepStartMsg is sent when an install or verify step begins executing.
type StepStartMsg struct {
	ModuleID string
	StepName string
	Index    int
	Total    int
}

// StepDoneMsg is sent when a step completes.
type StepDoneMsg struct {
	ModuleID string
	StepName string
	Index    int
	Total    int
}

// StepErrorMsg is sent when a step fails.
type StepErrorMsg struct {
	ModuleID string
	StepName string
	Index    int
	Total    int
	Err      error
}

// ModuleStartMsg is sent when a module begins.
type ModuleStartMsg struct {
	ModuleID    string
	Description string
	StepTotal   int
	Index       int
	Total       int
}

// RunDoneMsg is sent when the whole run has finished. Err is the run-level
// error (a required module failed), not the last step error.
type RunDoneMsg struct {
	Summary engine.Summary
	Err     error
}
