package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"github.com/soarcollab/sandbox-runner/internal/logx"
	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

// RunTests creates an ephemeral sandbox from the snapshot, refreshes the
// checkout, runs the backend and then the frontend suite, and collects
// coverage reports. The sandbox is deleted exactly once before RunTests
// returns, including when it returns an error or panics.
func (r *Runner) RunTests(ctx context.Context) (TestResults, error) {
	logger := logx.LoggerWithRunID(ctx).With("component", "runner", "operation", "run-tests")
	r.printf("Running RecordPlatform tests from snapshot...\n\n")
	start := r.now()

	sb, err := r.provider.Create(ctx, sandbox.CreateParams{
		Snapshot:         r.cfg.SnapshotName,
		Resources:        DefaultResources,
		Ephemeral:        true,
		AutoStopInterval: AutoStopMinutes,
		Target:           r.cfg.Target,
		Labels:           r.labels(ctx, "run-tests"),
	})
	if err != nil {
		if sb != nil {
			r.printf("\nCleaning up sandbox...\n")
			_ = r.release(ctx, sb.ID)
		}
		return TestResults{}, fmt.Errorf("create test sandbox: %w", err)
	}
	defer func() {
		r.printf("\nCleaning up sandbox...\n")
		_ = r.release(ctx, sb.ID)
	}()
	r.printf("✓ Sandbox created from snapshot: %s\n\n", sb.ID)
	logger = logger.With("sandbox_id", sb.ID)

	updated := false
	if err := r.updateRepository(ctx, sb.ID); err != nil {
		logger.Warn("repository update skipped", "error", err)
	} else {
		updated = true
		r.printf("✓ Repository updated\n\n")
	}

	r.printf("Running backend tests...\n")
	backendPassed, err := r.runStage(ctx, sb.ID, backendTestScript, ProjectDir)
	if err != nil {
		return TestResults{}, fmt.Errorf("backend tests: %w", err)
	}
	r.printf("%s\n", stageLine("Backend", backendPassed))

	r.printf("\nRunning frontend tests...\n")
	frontendPassed, err := r.runStage(ctx, sb.ID, frontendTestScript, FrontendDir)
	if err != nil {
		return TestResults{}, fmt.Errorf("frontend tests: %w", err)
	}
	r.printf("%s\n", stageLine("Frontend", frontendPassed))

	results := TestResults{
		SandboxID:         sb.ID,
		RepositoryUpdated: updated,
		BackendPassed:     backendPassed,
		FrontendPassed:    frontendPassed,
	}

	if file, err := r.fetchCoverage(ctx, sb.ID, BackendCoveragePath, "jacoco.xml"); err != nil {
		logger.Warn("backend coverage unavailable", "path", BackendCoveragePath, "error", err)
	} else {
		results.BackendCoverage = CoverageDownloaded
		results.BackendCoverageFile = file
	}
	if file, err := r.fetchCoverage(ctx, sb.ID, FrontendCoveragePath, "lcov.info"); err != nil {
		logger.Warn("frontend coverage unavailable", "path", FrontendCoveragePath, "error", err)
	} else {
		results.FrontendCoverage = CoverageDownloaded
		results.FrontendCoverageFile = file
	}

	results.Duration = r.now().Sub(start)
	logger.Info("test run finished",
		"backend_passed", backendPassed,
		"frontend_passed", frontendPassed,
		"duration", results.Duration,
	)
	return results, nil
}

// updateRepository pulls the latest changes into the snapshot's checkout.
func (r *Runner) updateRepository(ctx context.Context, sandboxID string) error {
	script := "cd " + shellquote.Join(ProjectDir) + " && git pull origin " + shellquote.Join(r.cfg.Branch)
	res, err := r.provider.RunCommand(ctx, sandboxID, shellCommand(script), WorkspaceDir)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return &CommandError{Stage: "git pull", ExitCode: res.ExitCode, Output: res.Output}
	}
	return nil
}

// runStage reports whether the stage's remote command exited 0. An error
// means the command could not be run at all.
func (r *Runner) runStage(ctx context.Context, sandboxID, script, dir string) (bool, error) {
	res, err := r.provider.RunCommand(ctx, sandboxID, shellCommand(script), dir)
	if err != nil {
		return false, err
	}
	return res.Succeeded(), nil
}

var errEmptyReport = errors.New("empty report")

// fetchCoverage downloads a report and, if a coverage dir is configured,
// writes it there. It returns the local file path, or "" when not saved.
func (r *Runner) fetchCoverage(ctx context.Context, sandboxID, remotePath, localName string) (string, error) {
	content, err := r.provider.DownloadFile(ctx, sandboxID, remotePath)
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", errEmptyReport
	}
	if r.opts.CoverageDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(r.opts.CoverageDir, 0o755); err != nil {
		return "", fmt.Errorf("create coverage dir: %w", err)
	}
	local := filepath.Join(r.opts.CoverageDir, localName)
	if err := os.WriteFile(local, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", local, err)
	}
	return local, nil
}

func stageLine(stage string, passed bool) string {
	if passed {
		return "✅ " + stage + " tests PASSED"
	}
	return "❌ " + stage + " tests FAILED"
}
