package runner

import (
	"context"
	"fmt"

	"github.com/soarcollab/sandbox-runner/internal/logx"
	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

// CreateSnapshot provisions a sandbox from the base image, clones the
// repository, warms every dependency cache and saves the result as the
// configured snapshot. The build sandbox is deleted afterwards; after a
// failure it is kept only when Options.KeepOnFailure is set.
func (r *Runner) CreateSnapshot(ctx context.Context) (err error) {
	logger := logx.LoggerWithRunID(ctx).With("component", "runner", "operation", "create-snapshot")
	r.printf("Creating RecordPlatform test snapshot...\n\n")

	sb, err := r.provider.Create(ctx, sandbox.CreateParams{
		Image:     r.cfg.BaseImage,
		Resources: DefaultResources,
		Target:    r.cfg.Target,
		Labels:    r.labels(ctx, "snapshot-build"),
	})
	if err != nil {
		if sb != nil {
			_ = r.release(ctx, sb.ID)
		}
		return fmt.Errorf("create build sandbox: %w", err)
	}
	r.printf("✓ Sandbox created: %s\n", sb.ID)
	logger = logger.With("sandbox_id", sb.ID)

	defer func() {
		if err != nil && r.opts.KeepOnFailure {
			r.printf("Keeping sandbox %s for inspection\n", sb.ID)
			return
		}
		if releaseErr := r.release(ctx, sb.ID); releaseErr != nil && err == nil {
			// The snapshot exists; a leaked build sandbox is bounded by the
			// provider's own expiry, so only report it.
			r.printf("Warning: failed to delete build sandbox %s: %v\n", sb.ID, releaseErr)
		}
	}()

	if err := r.provider.CloneRepo(ctx, sb.ID, r.cfg.RepoURL, ProjectDir, r.cfg.Branch); err != nil {
		return fmt.Errorf("clone repository: %w", err)
	}
	r.printf("✓ Repository cloned\n")

	res, err := r.provider.RunCommand(ctx, sb.ID, shellCommand(snapshotBuildScript), WorkspaceDir)
	if err != nil {
		return fmt.Errorf("run snapshot preparation: %w", err)
	}
	if !res.Succeeded() {
		logger.Error("snapshot preparation failed", "exit_code", res.ExitCode, "output", res.Output)
		return &CommandError{Stage: "snapshot preparation", ExitCode: res.ExitCode, Output: res.Output}
	}
	r.printf("✓ Dependencies cached\n")

	if err := r.provider.Snapshot(ctx, sb.ID, r.cfg.SnapshotName); err != nil {
		return fmt.Errorf("save snapshot %s: %w", r.cfg.SnapshotName, err)
	}
	logger.Info("snapshot created", "snapshot", r.cfg.SnapshotName)
	r.printf("\n✅ Snapshot '%s' created successfully!\n", r.cfg.SnapshotName)
	r.printf("\nNext steps:\n  sandbox-runner run-tests\n")
	return nil
}
