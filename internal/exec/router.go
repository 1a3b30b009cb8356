package exec

import (
	"context"
	"log/slog"

	"github.com/rigup-sh/rigup/internal/manifest"
)

// Router dispatches a structured command to one of two identities: the
// privileged administrator the process runs as, or the fixed unprivileged
// target user resolved once at startup.
//
// The Router never decides which identity a command uses; that is a
// module-declared property. It is also the single chokepoint for dry-run:
// when dryRun is set, nothing is spawned anywhere in the pipeline.
type Router struct {
	runner     Runner
	targetUser string
	targetHome string
	dryRun     bool
	logger     *slog.Logger
}

// NewRouter creates a Router over the given Runner.
func NewRouter(runner Runner, targetUser, targetHome string, dryRun bool, logger *slog.Logger) *Router {
	return &Router{
		runner:     runner,
		targetUser: targetUser,
		targetHome: targetHome,
		dryRun:     dryRun,
		logger:     logger,
	}
}

// DryRun reports whether the router is simulating.
func (r *Router) DryRun() bool { return r.dryRun }

// TargetHome returns the target user's home directory resolved at startup.
func (r *Router) TargetHome() string { return r.targetHome }

// Wrap rewrites a command so it executes under the given identity.
// Root commands pass through untouched; target-user commands are wrapped
// in a sudo invocation that also resets HOME. The detached session path
// uses Wrap directly so detached and synchronous execution share the same
// identity semantics.
func (r *Router) Wrap(id manifest.Identity, cmd manifest.Command) manifest.Command {
	if id == manifest.Root {
		return cmd
	}
	args := append([]string{"-u", r.targetUser, "-H", "--", cmd.Program}, cmd.Args...)
	return manifest.Command{Program: "sudo", Args: args}
}

// RunAs executes cmd under the given identity and returns the result.
// In dry-run mode it logs the would-be invocation and spawns nothing.
func (r *Router) RunAs(ctx context.Context, id manifest.Identity, cmd manifest.Command) (Result, error) {
	wrapped := r.Wrap(id, cmd)

	if r.dryRun {
		r.logger.Info("dry-run",
			slog.String("identity", id.String()),
			slog.String("would_run", wrapped.String()),
		)
		return Result{}, nil
	}

	r.logger.Debug("running command",
		slog.String("identity", id.String()),
		slog.String("command", wrapped.String()),
	)
	return r.runner.Run(ctx, wrapped.Program, wrapped.Args...)
}
