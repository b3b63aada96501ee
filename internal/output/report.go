package output

import (
	"math"

	"github.com/soarcollab/sandbox-runner/internal/runner"
)

// Report is the serialized shape of a test run.
type Report struct {
	Passed            bool        `json:"passed" yaml:"passed"`
	SandboxID         string      `json:"sandboxId,omitempty" yaml:"sandboxId,omitempty"`
	RepositoryUpdated bool        `json:"repositoryUpdated" yaml:"repositoryUpdated"`
	DurationSeconds   int64       `json:"durationSeconds" yaml:"durationSeconds"`
	Backend           StageReport `json:"backend" yaml:"backend"`
	Frontend          StageReport `json:"frontend" yaml:"frontend"`
}

type StageReport struct {
	Passed       bool   `json:"passed" yaml:"passed"`
	Coverage     string `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	CoverageFile string `json:"coverageFile,omitempty" yaml:"coverageFile,omitempty"`
}

// NewReport converts results into their serialized form.
func NewReport(r runner.TestResults) Report {
	return Report{
		Passed:            r.Passed(),
		SandboxID:         r.SandboxID,
		RepositoryUpdated: r.RepositoryUpdated,
		DurationSeconds:   int64(math.Round(r.Duration.Seconds())),
		Backend: StageReport{
			Passed:       r.BackendPassed,
			Coverage:     r.BackendCoverage,
			CoverageFile: r.BackendCoverageFile,
		},
		Frontend: StageReport{
			Passed:       r.FrontendPassed,
			Coverage:     r.FrontendCoverage,
			CoverageFile: r.FrontendCoverageFile,
		},
	}
}

// toReport passes through anything that is not a test result.
func toReport(data interface{}) interface{} {
	switch v := data.(type) {
	case runner.TestResults:
		return NewReport(v)
	case *runner.TestResults:
		if v == nil {
			return nil
		}
		return NewReport(*v)
	default:
		return data
	}
}
