package runner

import "time"

// CoverageDownloaded marks a coverage report that was retrieved.
const CoverageDownloaded = "Downloaded"

// TestResults is the outcome of one run-tests invocation. It is built once
// when the run finishes and handed out by value.
type TestResults struct {
	SandboxID         string
	RepositoryUpdated bool
	BackendPassed     bool
	FrontendPassed    bool
	Duration          time.Duration

	// BackendCoverage and FrontendCoverage are CoverageDownloaded or empty.
	BackendCoverage  string
	FrontendCoverage string

	// Local paths of saved reports, set only when a coverage dir was given.
	BackendCoverageFile  string
	FrontendCoverageFile string
}

// Passed reports whether both stages passed.
func (r TestResults) Passed() bool {
	return r.BackendPassed && r.FrontendPassed
}

// ExitCode is the process exit status for this result.
func (r TestResults) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}
