// Package runner drives the two sandbox workflows: preparing the reusable
// snapshot and running the project's test suites from it.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/soarcollab/sandbox-runner/internal/config"
	"github.com/soarcollab/sandbox-runner/internal/logx"
	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

const (
	WorkspaceDir = "/workspace"
	ProjectDir   = "/workspace/project"
	FrontendDir  = ProjectDir + "/platform-frontend"

	BackendCoveragePath  = ProjectDir + "/platform-backend/backend-web/target/site/jacoco/jacoco.xml"
	FrontendCoveragePath = FrontendDir + "/coverage/lcov.info"

	// AutoStopMinutes stops an idle test sandbox if cleanup never happens.
	AutoStopMinutes = 30

	cleanupTimeout = 2 * time.Minute
)

// DefaultResources is used for both the snapshot build and test sandboxes.
var DefaultResources = sandbox.Resources{CPU: 4, Memory: 8, Disk: 10}

const snapshotBuildScript = `set -e
cd /workspace/project

echo "Installing platform-api..."
mvn -f platform-api/pom.xml clean install -DskipTests -q

echo "Caching backend dependencies..."
mvn -f platform-backend/pom.xml dependency:go-offline -q
mvn -f platform-backend/pom.xml clean verify -DskipTests -q

echo "Caching frontend dependencies..."
cd platform-frontend
pnpm install --frozen-lockfile

echo "Snapshot preparation complete"
`

const backendTestScript = `cd /workspace/project
mvn -f platform-backend/pom.xml clean verify -pl backend-service,backend-web -am -Pit
`

const frontendTestScript = `cd /workspace/project/platform-frontend
pnpm install --frozen-lockfile
pnpm test:coverage
`

type Options struct {
	// CoverageDir, when set, receives downloaded coverage reports.
	CoverageDir string
	// KeepOnFailure leaves the snapshot build sandbox running after a failed
	// build so it can be inspected.
	KeepOnFailure bool
}

type Runner struct {
	provider sandbox.Provider
	cfg      *config.Config
	opts     Options
	out      io.Writer
	now      func() time.Time
}

// New creates a Runner. Progress lines are written to out.
func New(provider sandbox.Provider, cfg *config.Config, out io.Writer, opts Options) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		provider: provider,
		cfg:      cfg,
		opts:     opts,
		out:      out,
		now:      time.Now,
	}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) labels(ctx context.Context, purpose string) map[string]string {
	labels := map[string]string{
		"app":     "sandbox-runner",
		"purpose": purpose,
	}
	if id := logx.RunIDFromContext(ctx); id != "" {
		labels["run-id"] = id
	}
	return labels
}

// release deletes the sandbox with a context that survives cancellation of
// ctx, so an interrupted run still cleans up.
func (r *Runner) release(ctx context.Context, sandboxID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := r.provider.Delete(ctx, sandboxID); err != nil {
		logx.LoggerWithRunID(ctx).Warn("sandbox cleanup failed",
			"component", "runner",
			"sandbox_id", sandboxID,
			"error", err,
		)
		return err
	}
	return nil
}

// shellCommand runs script through sh so multi-line scripts and cd work
// with providers that exec the command directly.
func shellCommand(script string) string {
	return shellquote.Join("sh", "-c", script)
}
