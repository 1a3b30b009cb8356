package progress

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rigup-sh/rigup/internal/engine"
	"github.com/rigup-sh/rigup/internal/manifest"
)

// Bridge runs the install pipeline in a background goroutine and produces
// tea.Msg values for the progress view via a channel.
type Bridge struct {
	installer *engine.Installer
	modules   []manifest.Module
	msgs      chan tea.Msg
	ctx       context.Context
	cancel    context.CancelFunc

	// mu guards summary and runErr: the view can abandon the run on
	// ctrl+c while the pipeline goroutine is still finishing up.
	mu      sync.Mutex
	summary engine.Summary
	runErr  error
}

// NewBridge creates a Bridge that will install the given modules.
func NewBridge(installer *engine.Installer, mods []manifest.Module) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		installer: installer,
		modules:   mods,
		msgs:      make(chan tea.Msg, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Cancel signals the pipeline goroutine to stop delivering messages.
func (b *Bridge) Cancel() {
	b.cancel()
}

// Summary returns the run outcome. Complete only after RunDoneMsg was
// seen; on a cancelled run it reports whatever the pipeline got to.
func (b *Bridge) Summary() (engine.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary, b.runErr
}

// send delivers a message on the channel, respecting context cancellation
// to prevent deadlocks if the view has been shut down.
func (b *Bridge) send(msg tea.Msg) bool {
	select {
	case b.msgs <- msg:
		return true
	case <-b.ctx.Done():
		return false
	}
}

// Start launches the install run in a background goroutine and returns a
// tea.Cmd that delivers the first message.
func (b *Bridge) Start() tea.Cmd {
	b.installer.SetPreStepCallback(func(mod *manifest.Module, stepName string, index, total int) {
		b.send(StepStartMsg{
			ModuleID: mod.ID,
			StepName: stepName,
			Index:    index,
			Total:    total,
		})
	})

	b.installer.SetCallback(func(mod *manifest.Module, stepName string, index, total int, err error) {
		if err != nil {
			b.send(StepErrorMsg{
				ModuleID: mod.ID,
				StepName: stepName,
				Index:    index,
				Total:    total,
				Err:      err,
			})
			return
		}
		b.send(StepDoneMsg{
			ModuleID: mod.ID,
			StepName: stepName,
			Index:    index,
			Total:    total,
		})
	})

	go b.run()

	return b.NextMsg()
}

func (b *Bridge) run() {
	defer close(b.msgs)

	summary, err := b.installer.InstallAll(b.ctx, b.modules, func(mod *manifest.Module, index, total int) {
		b.send(ModuleStartMsg{
			ModuleID:    mod.ID,
			Description: mod.Description,
			StepTotal:   len(mod.Install) + len(mod.Verify),
			Index:       index,
			Total:       total,
		})
	})

	b.mu.Lock()
	b.summary = summary
	b.runErr = err
	b.mu.Unlock()
	b.send(RunDoneMsg{Summary: summary, Err: err})
}

// NextMsg returns a tea.Cmd that waits for the next message from the channel.
func (b *Bridge) NextMsg() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.msgs
		if !ok {
			return nil
		}
		return msg
	}
}
